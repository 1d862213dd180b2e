package transcript

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func sampleRound5() Round5Scalars {
	var e Round5Scalars
	vals := []*fr.Element{
		&e.A, &e.B, &e.C, &e.D, &e.ANext, &e.BNext, &e.DNext,
		&e.Sigma1, &e.Sigma2, &e.Sigma3,
		&e.Qarith, &e.Qc, &e.Ql, &e.Qr, &e.Qk,
		&e.Perm, &e.LookupPerm,
		&e.H1, &e.H1Next, &e.H2,
		&e.TEval, &e.REval,
	}
	for i, v := range vals {
		v.SetUint64(uint64(i) + 1)
	}
	return e
}

func runFullTranscript(t *testing.T) fr.Element {
	t.Helper()
	_, _, g1Gen, _ := bls12381.Generators()

	tr := New()
	zeta := tr.Round1(g1Gen, g1Gen, g1Gen, g1Gen)
	require.False(t, zeta.IsZero())

	beta, gamma, delta, epsilon := tr.Round2(g1Gen, g1Gen, g1Gen)
	require.False(t, beta.IsZero())
	require.False(t, gamma.IsZero())
	require.False(t, delta.IsZero())
	require.False(t, epsilon.IsZero())

	alpha, alphaRange, alphaLogic, alphaFixed, alphaVar, alphaLookup := tr.Round3(g1Gen, g1Gen)
	require.False(t, alpha.IsZero())
	require.False(t, alphaRange.IsZero())
	require.False(t, alphaLogic.IsZero())
	require.False(t, alphaFixed.IsZero())
	require.False(t, alphaVar.IsZero())
	require.False(t, alphaLookup.IsZero())

	zetaFrak := tr.Round4(g1Gen, g1Gen, g1Gen, g1Gen)
	require.False(t, zetaFrak.IsZero())

	v, u := tr.AbsorbEvaluations(sampleRound5())
	require.False(t, v.IsZero())
	require.False(t, u.IsZero())

	tr.AbsorbOpenings(g1Gen, g1Gen)
	r := tr.BatchChallenge()
	require.False(t, r.IsZero())
	return r
}

func TestTranscriptIsDeterministic(t *testing.T) {
	r1 := runFullTranscript(t)
	r2 := runFullTranscript(t)
	require.True(t, r1.Equal(&r2))
}

func TestTranscriptDivergesOnDifferentAbsorbedCommitment(t *testing.T) {
	_, _, g1Gen, _ := bls12381.Generators()
	var jac bls12381.G1Jac
	jac.FromAffine(&g1Gen)
	jac.ScalarMultiplication(&jac, big.NewInt(2))
	var other bls12381.G1Affine
	other.FromJacobian(&jac)

	tr1 := New()
	z1 := tr1.Round1(g1Gen, g1Gen, g1Gen, g1Gen)

	tr2 := New()
	z2 := tr2.Round1(other, g1Gen, g1Gen, g1Gen)

	require.False(t, z1.Equal(&z2))
}

func TestRound5ScalarsOrderedMatchesEvalLabelCount(t *testing.T) {
	e := sampleRound5()
	require.Len(t, e.ordered(), len(evalLabels))
}

func TestRound5ScalarsOrderedPreservesFieldOrder(t *testing.T) {
	e := sampleRound5()
	ordered := e.ordered()
	require.True(t, ordered[0].Equal(&e.A))
	require.True(t, ordered[len(ordered)-1].Equal(&e.REval))
}
