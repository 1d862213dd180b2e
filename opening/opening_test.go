package opening

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/kzg"
	"github.com/stretchr/testify/require"

	"github.com/plonkup/core/errs"
	"github.com/plonkup/core/poly"
)

// toySRS builds a minimal, non-ceremony KZG setup for tests: a fixed secret
// tau, populated directly rather than through any production loader.
func toySRS(t *testing.T, degree int, tau uint64) (kzg.ProvingKey, kzg.VerifyingKey) {
	t.Helper()
	_, _, g1Gen, g2Gen := bls12381.Generators()

	var tauElem fr.Element
	tauElem.SetUint64(tau)

	g1s := make([]bls12381.G1Affine, degree+1)
	g1s[0] = g1Gen
	var pow fr.Element
	pow.SetOne()
	for i := 1; i <= degree; i++ {
		pow.Mul(&pow, &tauElem)
		var bi big.Int
		pow.BigInt(&bi)
		var jac bls12381.G1Jac
		jac.FromAffine(&g1Gen)
		jac.ScalarMultiplication(&jac, &bi)
		g1s[i].FromJacobian(&jac)
	}

	var tauBig big.Int
	tauElem.BigInt(&tauBig)
	var g2Tau bls12381.G2Affine
	var g2Jac bls12381.G2Jac
	g2Jac.FromAffine(&g2Gen)
	g2Jac.ScalarMultiplication(&g2Jac, &tauBig)
	g2Tau.FromJacobian(&g2Jac)

	pk := kzg.ProvingKey{G1: g1s}
	vk := kzg.VerifyingKey{G1: g1Gen, G2: [2]bls12381.G2Affine{g2Gen, g2Tau}}
	return pk, vk
}

func constPoly(v uint64) poly.Polynomial {
	p := poly.New(1)
	p[0].SetUint64(v)
	return p
}

func TestPowers(t *testing.T) {
	var x fr.Element
	x.SetUint64(3)
	got := powers(x, 4)
	require.Len(t, got, 4)

	want := []uint64{1, 3, 9, 27}
	for i, w := range want {
		var e fr.Element
		e.SetUint64(w)
		require.True(t, got[i].Equal(&e), "power %d", i)
	}
}

func TestAggregatePolynomialVanishesAtOpeningPointWhenEvalsCorrect(t *testing.T) {
	polys := []poly.Polynomial{constPoly(5), constPoly(7)}
	var z fr.Element
	z.SetUint64(42)

	evals := []fr.Element{polys[0].Evaluate(z), polys[1].Evaluate(z)}
	weights := []fr.Element{}
	var w1, w2 fr.Element
	w1.SetUint64(2)
	w2.SetUint64(9)
	weights = append(weights, w1, w2)

	agg := aggregatePolynomial(weights, polys, evals)
	got := agg.Evaluate(z)
	require.True(t, got.IsZero())
}

func TestBuildProducesWitnessesDivisibleByLinearFactor(t *testing.T) {
	var zetaFrak, zetaFrakOmega, v, u fr.Element
	zetaFrak.SetUint64(11)
	zetaFrakOmega.SetUint64(22)
	v.SetUint64(3)
	u.SetUint64(5)

	zf := ZetaFactors{
		T: constPoly(1), R: constPoly(2), A: constPoly(3), B: constPoly(4), C: constPoly(5), D: constPoly(6),
		Sigma1: constPoly(7), Sigma2: constPoly(8), Sigma3: constPoly(9),
		F: constPoly(10), H1: constPoly(11), H2: constPoly(12), TPrime: constPoly(13),
	}
	ze := ZetaEvals{
		T: zf.T[0], R: zf.R[0], A: zf.A[0], B: zf.B[0], C: zf.C[0], D: zf.D[0],
		Sigma1: zf.Sigma1[0], Sigma2: zf.Sigma2[0], Sigma3: zf.Sigma3[0],
		F: zf.F[0], H1: zf.H1[0], H2: zf.H2[0], TPrime: zf.TPrime[0],
	}
	zof := ZetaOmegaFactors{
		Z1: constPoly(14), A: constPoly(3), B: constPoly(4), D: constPoly(6), H1: constPoly(11), Z2: constPoly(15), TPrime: constPoly(13),
	}
	zoe := ZetaOmegaEvals{
		Z1: zof.Z1[0], A: zof.A[0], B: zof.B[0], D: zof.D[0], H1: zof.H1[0], Z2: zof.Z2[0], TPrime: zof.TPrime[0],
	}

	w := Build(zf, ze, zetaFrak, zof, zoe, zetaFrakOmega, v, u)

	// Constant aggregated polynomials minus their (equal) evaluations are the
	// zero polynomial, so both witnesses should be identically zero.
	require.True(t, len(w.WZeta) == 0 || allZero(w.WZeta))
	require.True(t, len(w.WZetaOmega) == 0 || allZero(w.WZetaOmega))
}

func allZero(p poly.Polynomial) bool {
	for _, c := range p {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

func TestCommitAndBatchCheckRoundTrip(t *testing.T) {
	pk, vk := toySRS(t, 8, 999)

	// Build a tiny scenario: a single non-trivial polynomial T opened at
	// zeta_frak, everything else held at a shared constant so every
	// "evaluation" is trivially consistent.
	var zetaFrak, zetaFrakOmega fr.Element
	zetaFrak.SetUint64(11)
	zetaFrakOmega.SetUint64(13)

	tPoly := poly.New(3)
	tPoly[0].SetUint64(1)
	tPoly[1].SetUint64(2)
	tPoly[2].SetUint64(3)
	tEval := tPoly.Evaluate(zetaFrak)

	rest := constPoly(4)
	restEval := rest[0]

	zf := ZetaFactors{
		T: tPoly, R: rest, A: rest, B: rest, C: rest, D: rest,
		Sigma1: rest, Sigma2: rest, Sigma3: rest,
		F: rest, H1: rest, H2: rest, TPrime: rest,
	}
	ze := ZetaEvals{
		T: tEval, R: restEval, A: restEval, B: restEval, C: restEval, D: restEval,
		Sigma1: restEval, Sigma2: restEval, Sigma3: restEval,
		F: restEval, H1: restEval, H2: restEval, TPrime: restEval,
	}
	zof := ZetaOmegaFactors{Z1: rest, A: rest, B: rest, D: rest, H1: rest, Z2: rest, TPrime: rest}
	zoe := ZetaOmegaEvals{Z1: restEval, A: restEval, B: restEval, D: restEval, H1: restEval, Z2: restEval, TPrime: restEval}

	var v, u, r fr.Element
	v.SetUint64(17)
	u.SetUint64(19)
	r.SetUint64(23)

	witnesses := Build(zf, ze, zetaFrak, zof, zoe, zetaFrakOmega, v, u)
	wZeta, wZetaOmega, err := Commit(witnesses, pk)
	require.NoError(t, err)

	commit := func(p poly.Polynomial) bls12381.G1Affine {
		c, err := kzg.Commit(p, pk)
		require.NoError(t, err)
		return bls12381.G1Affine(c)
	}
	zc := ZetaCommitments{
		T: commit(zf.T), R: commit(zf.R), A: commit(zf.A), B: commit(zf.B), C: commit(zf.C), D: commit(zf.D),
		Sigma1: commit(zf.Sigma1), Sigma2: commit(zf.Sigma2), Sigma3: commit(zf.Sigma3),
		F: commit(zf.F), H1: commit(zf.H1), H2: commit(zf.H2), TPrime: commit(zf.TPrime),
	}
	zoc := ZetaOmegaCommitments{
		Z1: commit(zof.Z1), A: commit(zof.A), B: commit(zof.B), D: commit(zof.D), H1: commit(zof.H1), Z2: commit(zof.Z2), TPrime: commit(zof.TPrime),
	}

	err = BatchCheck(zc, ze, zetaFrak, zoc, zoe, zetaFrakOmega, v, u, r, wZeta, wZetaOmega, vk.G1, vk.G2)
	require.NoError(t, err)
}

func TestBatchCheckRejectsTamperedEvaluation(t *testing.T) {
	pk, vk := toySRS(t, 8, 999)

	var zetaFrak, zetaFrakOmega fr.Element
	zetaFrak.SetUint64(11)
	zetaFrakOmega.SetUint64(13)

	tPoly := poly.New(3)
	tPoly[0].SetUint64(1)
	tPoly[1].SetUint64(2)
	tPoly[2].SetUint64(3)
	tEval := tPoly.Evaluate(zetaFrak)

	rest := constPoly(4)
	restEval := rest[0]

	zf := ZetaFactors{
		T: tPoly, R: rest, A: rest, B: rest, C: rest, D: rest,
		Sigma1: rest, Sigma2: rest, Sigma3: rest,
		F: rest, H1: rest, H2: rest, TPrime: rest,
	}
	ze := ZetaEvals{
		T: tEval, R: restEval, A: restEval, B: restEval, C: restEval, D: restEval,
		Sigma1: restEval, Sigma2: restEval, Sigma3: restEval,
		F: restEval, H1: restEval, H2: restEval, TPrime: restEval,
	}
	zof := ZetaOmegaFactors{Z1: rest, A: rest, B: rest, D: rest, H1: rest, Z2: rest, TPrime: rest}
	zoe := ZetaOmegaEvals{Z1: restEval, A: restEval, B: restEval, D: restEval, H1: restEval, Z2: restEval, TPrime: restEval}

	var v, u, r fr.Element
	v.SetUint64(17)
	u.SetUint64(19)
	r.SetUint64(23)

	witnesses := Build(zf, ze, zetaFrak, zof, zoe, zetaFrakOmega, v, u)
	wZeta, wZetaOmega, err := Commit(witnesses, pk)
	require.NoError(t, err)

	commit := func(p poly.Polynomial) bls12381.G1Affine {
		c, err := kzg.Commit(p, pk)
		require.NoError(t, err)
		return bls12381.G1Affine(c)
	}
	zc := ZetaCommitments{
		T: commit(zf.T), R: commit(zf.R), A: commit(zf.A), B: commit(zf.B), C: commit(zf.C), D: commit(zf.D),
		Sigma1: commit(zf.Sigma1), Sigma2: commit(zf.Sigma2), Sigma3: commit(zf.Sigma3),
		F: commit(zf.F), H1: commit(zf.H1), H2: commit(zf.H2), TPrime: commit(zf.TPrime),
	}
	zoc := ZetaOmegaCommitments{
		Z1: commit(zof.Z1), A: commit(zof.A), B: commit(zof.B), D: commit(zof.D), H1: commit(zof.H1), Z2: commit(zof.Z2), TPrime: commit(zof.TPrime),
	}

	// Tamper with the claimed T evaluation the verifier trusts.
	ze.T.SetUint64(999999)

	err = BatchCheck(zc, ze, zetaFrak, zoc, zoe, zetaFrakOmega, v, u, r, wZeta, wZetaOmega, vk.G1, vk.G2)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrBatchCheckFailed)
}
