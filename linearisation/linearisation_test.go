package linearisation

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/plonkup/core/poly"
)

func someEvals() Evals {
	var e Evals
	e.A.SetUint64(2)
	e.B.SetUint64(3)
	e.C.SetUint64(4)
	e.D.SetUint64(5)
	e.Sigma1.SetUint64(6)
	e.Sigma2.SetUint64(7)
	e.Sigma3.SetUint64(8)
	e.Qarith.SetUint64(1)
	e.Qc.SetUint64(9)
	e.Ql.SetUint64(10)
	e.Qr.SetUint64(11)
	e.Qk.SetUint64(0)
	e.PermEval.SetUint64(12)
	e.LookupPermEval.SetUint64(13)
	e.H1.SetUint64(14)
	e.H1Next.SetUint64(15)
	e.H2.SetUint64(16)
	e.F.SetUint64(17)
	e.TPrime.SetUint64(18)
	e.TPrimeNext.SetUint64(19)
	e.PublicInput.SetUint64(20)
	return e
}

func someChallenges() Challenges {
	var c Challenges
	c.Alpha.SetUint64(21)
	c.AlphaRange.SetUint64(22)
	c.AlphaLogic.SetUint64(23)
	c.AlphaFixed.SetUint64(24)
	c.AlphaVar.SetUint64(25)
	c.AlphaLookup.SetUint64(26)
	c.Beta.SetUint64(27)
	c.Gamma.SetUint64(28)
	c.Delta.SetUint64(29)
	c.Epsilon.SetUint64(30)
	c.ZetaFrak.SetUint64(31)
	c.Omega.SetUint64(32)
	c.L1.SetUint64(33)
	c.CosetScalars[0].SetOne()
	c.CosetScalars[1].SetUint64(2)
	c.CosetScalars[2].SetUint64(3)
	c.CosetScalars[3].SetUint64(4)
	return c
}

func TestComputeScalarsGateTermsMatchDirectFormula(t *testing.T) {
	e := someEvals()
	ch := someChallenges()
	s := ComputeScalars(e, ch)

	var ab, wantQm fr.Element
	ab.Mul(&e.A, &e.B)
	wantQm.Mul(&ab, &e.Qarith)
	require.True(t, s.Qm.Equal(&wantQm))

	var wantQo fr.Element
	wantQo.Mul(&e.C, &e.Qarith)
	require.True(t, s.Qo.Equal(&wantQo))

	var wantQf fr.Element
	wantQf.Mul(&e.D, &e.Qarith)
	require.True(t, s.Qf.Equal(&wantQf))
}

func TestComputeScalarsIsZeroAtZeroEvalsAndChallenges(t *testing.T) {
	var e Evals
	var ch Challenges
	s := ComputeScalars(e, ch)

	require.True(t, s.Qm.IsZero())
	require.True(t, s.Qo.IsZero())
	require.True(t, s.Qf.IsZero())
	require.True(t, s.Qrange.IsZero())
	require.True(t, s.Qlogic.IsZero())
	require.True(t, s.QfixedGroupAdd.IsZero())
	require.True(t, s.QvariableGroupAdd.IsZero())
	require.True(t, s.Sigma4.IsZero())
	require.True(t, s.Z1.IsZero())
	require.True(t, s.Z2.IsZero())
}

func TestBuildEvaluationMatchesScalarFoldOfConstantFactors(t *testing.T) {
	e := someEvals()
	ch := someChallenges()
	s := ComputeScalars(e, ch)

	mk := func(v uint64) poly.Polynomial {
		p := poly.New(1)
		p[0].SetUint64(v)
		return p
	}
	f := PolynomialFactors{
		Qm: mk(2), Qo: mk(3), Qf: mk(5),
		Qrange: mk(7), Qlogic: mk(11),
		QfixedGroupAdd: mk(13), QvariableGroupAdd: mk(17),
		Sigma4: mk(19), Z1: mk(23), Z2: mk(29),
	}

	r := Build(s, f)

	var z fr.Element
	z.SetUint64(999) // constant polynomials: evaluation point is irrelevant
	got := r.Evaluate(z)

	scalars := []fr.Element{s.Qm, s.Qo, s.Qf, s.Qrange, s.Qlogic, s.QfixedGroupAdd, s.QvariableGroupAdd, s.Sigma4, s.Z1, s.Z2}
	consts := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	var want fr.Element
	for i, c := range consts {
		var cv, term fr.Element
		cv.SetUint64(c)
		term.Mul(&scalars[i], &cv)
		want.Add(&want, &term)
	}
	require.True(t, got.Equal(&want))
}

func TestReconstructMatchesManualMSMOverGenerator(t *testing.T) {
	_, _, g1Gen, _ := bls12381.Generators()

	scaled := func(v uint64) bls12381.G1Affine {
		var s fr.Element
		s.SetUint64(v)
		var bi big.Int
		s.BigInt(&bi)
		var jac bls12381.G1Jac
		jac.FromAffine(&g1Gen)
		jac.ScalarMultiplication(&jac, &bi)
		var aff bls12381.G1Affine
		aff.FromJacobian(&jac)
		return aff
	}

	var s Scalars
	s.Qm.SetUint64(2)
	s.Qo.SetUint64(3)
	s.Qf.SetUint64(5)
	s.Qrange.SetUint64(7)
	s.Qlogic.SetUint64(11)
	s.QfixedGroupAdd.SetUint64(13)
	s.QvariableGroupAdd.SetUint64(17)
	s.Sigma4.SetUint64(19)
	s.Z1.SetUint64(23)
	s.Z2.SetUint64(29)

	c := Commitments{
		Qm: scaled(1), Qo: scaled(1), Qf: scaled(1),
		Qrange: scaled(1), Qlogic: scaled(1),
		QfixedGroupAdd: scaled(1), QvariableGroupAdd: scaled(1),
		Sigma4: scaled(1), Z1: scaled(1), Z2: scaled(1),
	}

	got := Reconstruct(s, c)

	var sum fr.Element
	for _, v := range []fr.Element{s.Qm, s.Qo, s.Qf, s.Qrange, s.Qlogic, s.QfixedGroupAdd, s.QvariableGroupAdd, s.Sigma4, s.Z1, s.Z2} {
		sum.Add(&sum, &v)
	}
	var sumBI big.Int
	sum.BigInt(&sumBI)
	var jac bls12381.G1Jac
	jac.FromAffine(&g1Gen)
	jac.ScalarMultiplication(&jac, &sumBI)
	var want bls12381.G1Affine
	want.FromJacobian(&jac)

	require.True(t, got.Equal(&want))
}

func TestComputeConstantGateTermMatchesDirectFormula(t *testing.T) {
	e := someEvals()
	ch := someChallenges()
	c := ComputeConstant(e, ch)
	require.False(t, c.IsZero())

	// Changing PublicInput must move the constant by exactly
	// Qarith*(delta PublicInput), since that term enters linearly.
	e2 := e
	e2.PublicInput.SetUint64(e.PublicInput.Uint64() + 1)
	c2 := ComputeConstant(e2, ch)

	var diff fr.Element
	diff.Sub(&c2, &c)
	require.True(t, diff.Equal(&e.Qarith))
}
