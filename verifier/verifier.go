// Package verifier checks a PLONKup proof against a VerifierKey and a set
// of public inputs: it re-derives every transcript challenge exactly as the
// prover did, reconstructs [t]_1 and [r]_1 from commitments alone, derives
// t(zeta_frak) from the quotient identity, and delegates the final pairing
// check to opening.BatchCheck.
package verifier

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/rs/zerolog/log"

	"github.com/plonkup/core/composer"
	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/errs"
	"github.com/plonkup/core/linearisation"
	"github.com/plonkup/core/opening"
	"github.com/plonkup/core/poly"
	"github.com/plonkup/core/proof"
	"github.com/plonkup/core/srs"
	"github.com/plonkup/core/transcript"
)

// Verify checks p against vk and the sparse gate-index -> value public
// input map, returning nil only if every identity and the final batched
// KZG pairing check hold. Every internal failure collapses to the single
// errs.ErrProofVerificationError sentinel so callers cannot branch on
// which sub-check failed.
func Verify(vk *composer.VerifierKey, srsVk srs.SRS, publicInputs map[int]fr.Element, p *proof.Proof) error {
	log.Debug().Uint64("n", vk.N).Msg("plonk: verify: starting")

	d := domain.New(vk.N)

	tr := transcript.New()
	zeta := tr.Round1(p.AComm, p.BComm, p.CComm, p.DComm)
	_ = zeta // zeta is used again below, where tPrimeCommitment compresses the table commitments.

	beta, gamma, delta, epsilon := tr.Round2(p.FComm, p.H1Comm, p.H2Comm)

	alpha, alphaRange, alphaLogic, alphaFixed, alphaVar, alphaLookup := tr.Round3(p.Z1Comm, p.Z2Comm)

	zetaFrak := tr.Round4(p.QLowComm, p.QMidComm, p.QHighComm, p.Q4Comm)

	e := p.Evaluations

	// --- recompute the public-input evaluation and the linearisation's
	// constant term: t(zeta_frak) is never sent over the wire (see
	// proof.Evaluations), so the verifier derives it from the quotient
	// identity t*Z_H = constant + r before it is absorbed into the
	// transcript or checked against the opening.
	piEvals := make([]fr.Element, vk.N)
	for idx, val := range publicInputs {
		if idx < 0 || uint64(idx) >= vk.N {
			return fmt.Errorf("verifier: public input index %d out of range: %w", idx, errs.ErrProofVerificationError)
		}
		piEvals[idx] = val
	}
	piEval := d.BarycentricEval(piEvals, zetaFrak)

	zHEval := d.VanishingEval(zetaFrak)
	l1 := d.FirstLagrangeEval(zetaFrak, zHEval)

	omega := vk.Omega
	var zetaFrakOmega fr.Element
	zetaFrakOmega.Mul(&zetaFrak, &omega)

	linEvals := linearisation.Evals{
		A: e.A, B: e.B, C: e.C, D: e.D,
		Sigma1: e.Sigma1, Sigma2: e.Sigma2, Sigma3: e.Sigma3,
		Qarith: e.Qarith, Qc: e.Qc, Ql: e.Ql, Qr: e.Qr, Qk: e.Qk,
		PermEval: e.PermEval, LookupPermEval: e.LookupPermEval,
		H1: e.H1, H1Next: e.H1Next, H2: e.H2,
		F: e.F, TPrime: e.TPrime, TPrimeNext: e.TPrimeNext,
		PublicInput: piEval,
	}
	linCh := linearisation.Challenges{
		Alpha: alpha, AlphaRange: alphaRange, AlphaLogic: alphaLogic,
		AlphaFixed: alphaFixed, AlphaVar: alphaVar, AlphaLookup: alphaLookup,
		Beta: beta, Gamma: gamma, Delta: delta, Epsilon: epsilon,
		ZetaFrak: zetaFrak, Omega: omega, L1: l1,
		CosetScalars: vk.PermutationCosetScalars,
	}
	scalars := linearisation.ComputeScalars(linEvals, linCh)

	rComm := linearisation.Reconstruct(scalars, linearisation.Commitments{
		Qm: vk.Qm, Qo: vk.Qo, Qf: vk.Qf,
		Qrange: vk.Qrange, Qlogic: vk.Qlogic,
		QfixedGroupAdd: vk.QfixedGroupAdd, QvariableGroupAdd: vk.QvariableGroupAdd,
		Sigma4: vk.Sigma4,
		Z1:     p.Z1Comm, Z2: p.Z2Comm,
	})

	// t(zeta_frak) = (constant + r(zeta_frak)) / Z_H(zeta_frak): the
	// quotient identity itself, solved for the term the prover never
	// transmits. Whether this derived value is actually the evaluation of
	// the committed t polynomial is what the batched KZG opening below
	// checks; a lying prover produces a tEval here that its commitments
	// don't open to.
	constant := linearisation.ComputeConstant(linEvals, linCh)
	var rhs fr.Element
	rhs.Add(&constant, &e.REval)
	var zHInv fr.Element
	zHInv.Inverse(&zHEval)
	var tEval fr.Element
	tEval.Mul(&rhs, &zHInv)

	round5 := transcript.Round5Scalars{
		A: e.A, B: e.B, C: e.C, D: e.D,
		ANext: e.ANext, BNext: e.BNext, DNext: e.DNext,
		Sigma1: e.Sigma1, Sigma2: e.Sigma2, Sigma3: e.Sigma3,
		Qarith: e.Qarith, Qc: e.Qc, Ql: e.Ql, Qr: e.Qr, Qk: e.Qk,
		Perm: e.PermEval, LookupPerm: e.LookupPermEval,
		H1: e.H1, H1Next: e.H1Next, H2: e.H2,
		TEval: tEval, REval: e.REval,
	}
	v, u := tr.AbsorbEvaluations(round5)

	tr.AbsorbOpenings(p.WZetaComm, p.WZetaOmegaComm)
	r := tr.BatchChallenge()

	tComm := recombineCommitments(srsVk, []bls12381.G1Affine{p.QLowComm, p.QMidComm, p.QHighComm, p.Q4Comm}, vk.N, zetaFrak)

	zc := opening.ZetaCommitments{
		T: tComm, R: rComm, A: p.AComm, B: p.BComm, C: p.CComm, D: p.DComm,
		Sigma1: vk.Sigma1, Sigma2: vk.Sigma2, Sigma3: vk.Sigma3,
		F: p.FComm, H1: p.H1Comm, H2: p.H2Comm, TPrime: tPrimeCommitment(vk, zeta),
	}
	ze := opening.ZetaEvals{
		T: tEval, R: e.REval, A: e.A, B: e.B, C: e.C, D: e.D,
		Sigma1: e.Sigma1, Sigma2: e.Sigma2, Sigma3: e.Sigma3,
		F: e.F, H1: e.H1, H2: e.H2, TPrime: e.TPrime,
	}
	zoc := opening.ZetaOmegaCommitments{
		Z1: p.Z1Comm, A: p.AComm, B: p.BComm, D: p.DComm, H1: p.H1Comm, Z2: p.Z2Comm, TPrime: tPrimeCommitment(vk, zeta),
	}
	zoe := opening.ZetaOmegaEvals{
		Z1: e.PermEval, A: e.ANext, B: e.BNext, D: e.DNext, H1: e.H1Next, Z2: e.LookupPermEval, TPrime: e.TPrimeNext,
	}

	vkG1 := srsVk.Verifier.G1
	vkG2 := srsVk.Verifier.G2

	if err := opening.BatchCheck(zc, ze, zetaFrak, zoc, zoe, zetaFrakOmega, v, u, r, p.WZetaComm, p.WZetaOmegaComm, vkG1, vkG2); err != nil {
		return fmt.Errorf("verifier: %w: %w", err, errs.ErrProofVerificationError)
	}

	log.Debug().Msg("plonk: verify: accepted")
	return nil
}

// recombineCommitments reconstructs
// [t]_1 = [t_low]_1 + zeta_frak^n*[t_mid]_1 + zeta_frak^2n*[t_high]_1 + zeta_frak^3n*[t_4]_1
// per spec §4.3 step 5: the verifier never sees t's coefficients, only its
// chunk commitments, so it folds them by scaling each chunk commitment
// with the matching power of zeta_frak rather than poly.Recombine, which
// needs the coefficients themselves.
func recombineCommitments(srsVk srs.SRS, chunks []bls12381.G1Affine, n uint64, zetaFrak fr.Element) bls12381.G1Affine {
	_ = srsVk // chunks are already commitments; no SRS basis shift is needed here.

	var zetaFrakN fr.Element
	zetaFrakN.Exp(zetaFrak, new(big.Int).SetUint64(n))

	var scalar fr.Element
	scalar.SetOne()

	var acc bls12381.G1Jac
	for k, c := range chunks {
		var p bls12381.G1Jac
		p.FromAffine(&c)
		if k > 0 {
			bi := poly.ScalarToBigInt(scalar)
			p.ScalarMultiplication(&p, bi)
		}
		acc.AddAssign(&p)
		scalar.Mul(&scalar, &zetaFrakN)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return out
}

func tPrimeCommitment(vk *composer.VerifierKey, zeta fr.Element) bls12381.G1Affine {
	var z2, z3 fr.Element
	z2.Mul(&zeta, &zeta)
	z3.Mul(&z2, &zeta)

	terms := []struct {
		scalar fr.Element
		point  bls12381.G1Affine
	}{
		{oneElement(), vk.T1},
		{zeta, vk.T2},
		{z2, vk.T3},
		{z3, vk.T4},
	}

	var acc bls12381.G1Jac
	for _, t := range terms {
		var p bls12381.G1Jac
		p.FromAffine(&t.point)
		scalar := t.scalar
		bi := poly.ScalarToBigInt(scalar)
		p.ScalarMultiplication(&p, bi)
		acc.AddAssign(&p)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return out
}

func oneElement() fr.Element {
	var one fr.Element
	one.SetOne()
	return one
}
