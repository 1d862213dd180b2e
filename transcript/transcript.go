// Package transcript wraps gnark-crypto's Fiat-Shamir transcript with the
// exact label sequence spec.md §6 mandates, so the prover and verifier
// cannot accidentally diverge on absorb/challenge order — every round
// method here both appends the right things and, in the same call,
// returns the derived challenge.
package transcript

import (
	"crypto/sha256"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
)

// labels is the exact, fixed set of byte strings §6 names. Declaring them
// once here means a typo anywhere else fails to compile rather than
// silently producing a different transcript.
const (
	labelAW    = "a_w"
	labelBW    = "b_w"
	labelCW    = "c_w"
	labelDW    = "d_w"
	labelZeta  = "zeta"
	labelF     = "f"
	labelH1    = "h1"
	labelH2    = "h2"
	labelBeta  = "beta"
	labelGamma = "gamma"
	labelDelta = "delta"
	labelEps   = "epsilon"
	labelZ1    = "z_1"
	labelZ2    = "z_2"
	labelAlpha = "alpha"
	labelRange = "range separation challenge"
	labelLogic = "logic separation challenge"
	labelFixed = "fixed base separation challenge"
	labelVar   = "variable base separation challenge"
	labelLkp   = "lookup challenge"
	labelQLow  = "q_low"
	labelQMid  = "q_mid"
	labelQHigh = "q_high"
	labelQ4    = "q_4"
	labelZF    = "zeta_frak"
	labelWZ    = "w_z"
	labelWZW   = "w_z_w"
	labelV     = "v"
	labelU     = "u"
	labelR     = "r_batch"
)

// evalLabels is the fixed absorption order for the 22 scalars/commitments
// spec.md §6 names for round 5 (the three ProofEvaluations fields f_eval,
// t_prime_eval, t_prime_next_eval are never absorbed directly — a single
// recomputed t_eval takes their place; see SPEC_FULL.md).
var evalLabels = []string{
	"a_eval", "b_eval", "c_eval", "d_eval",
	"a_next_eval", "b_next_eval", "d_next_eval",
	"s_sigma_1_eval", "s_sigma_2_eval", "s_sigma_3_eval",
	"q_arith_eval", "q_c_eval", "q_l_eval", "q_r_eval", "q_k_eval",
	"perm_eval", "lookup_perm_eval",
	"h_1_eval", "h_1_next_eval", "h_2_eval",
	"t_eval", "r_eval",
}

// Transcript is a single-writer resource threaded linearly through the
// five prover rounds (or the mirrored verifier steps). It is never shared
// between concurrent tasks — see spec.md §5 and §9.
type Transcript struct {
	inner *fiatshamir.Transcript
}

// New builds a fresh transcript over SHA-256, pre-declaring every
// challenge label that will ever be drawn so gnark-crypto can validate
// the absorb/challenge interleaving for us.
func New() *Transcript {
	t := fiatshamir.NewTranscript(sha256.New(),
		labelZeta, labelBeta, labelGamma, labelDelta, labelEps,
		labelAlpha, labelRange, labelLogic, labelFixed, labelVar, labelLkp,
		labelZF, labelV, labelU, labelR,
	)
	return &Transcript{inner: t}
}

func (t *Transcript) bindScalar(label string, v fr.Element) {
	b := v.Bytes()
	if err := t.inner.Bind(label, b[:]); err != nil {
		panic(fmt.Sprintf("transcript: bind scalar %q: %v", label, err))
	}
}

func (t *Transcript) bindPoint(label string, p bls12381.G1Affine) {
	b := p.Bytes()
	if err := t.inner.Bind(label, b[:]); err != nil {
		panic(fmt.Sprintf("transcript: bind point %q: %v", label, err))
	}
}

func (t *Transcript) challenge(label string) fr.Element {
	b, err := t.inner.ComputeChallenge(label)
	if err != nil {
		panic(fmt.Sprintf("transcript: challenge %q: %v", label, err))
	}
	var out fr.Element
	out.SetBytes(b)
	return out
}

// Round1 absorbs the four wire commitments and draws zeta, the
// table-compression challenge.
func (t *Transcript) Round1(a, b, c, d bls12381.G1Affine) (zeta fr.Element) {
	t.bindPoint(labelAW, a)
	t.bindPoint(labelBW, b)
	t.bindPoint(labelCW, c)
	t.bindPoint(labelDW, d)
	return t.challenge(labelZeta)
}

// Round2 absorbs the lookup query and sorted-half commitments and draws
// the permutation challenges (beta, gamma) and the lookup challenges
// (delta, epsilon). Per spec §6, beta is re-absorbed as a scalar
// immediately after being drawn, before gamma is derived.
func (t *Transcript) Round2(f, h1, h2 bls12381.G1Affine) (beta, gamma, delta, epsilon fr.Element) {
	t.bindPoint(labelF, f)
	t.bindPoint(labelH1, h1)
	t.bindPoint(labelH2, h2)
	beta = t.challenge(labelBeta)
	t.bindScalar(labelBeta, beta)
	gamma = t.challenge(labelGamma)
	delta = t.challenge(labelDelta)
	epsilon = t.challenge(labelEps)
	return
}

// Round3 absorbs the two grand-product commitments and draws the
// quotient challenge alpha plus the five gadget separation challenges.
func (t *Transcript) Round3(z1, z2 bls12381.G1Affine) (alpha, alphaRange, alphaLogic, alphaFixed, alphaVar, alphaLookup fr.Element) {
	t.bindPoint(labelZ1, z1)
	t.bindPoint(labelZ2, z2)
	alpha = t.challenge(labelAlpha)
	alphaRange = t.challenge(labelRange)
	alphaLogic = t.challenge(labelLogic)
	alphaFixed = t.challenge(labelFixed)
	alphaVar = t.challenge(labelVar)
	alphaLookup = t.challenge(labelLkp)
	return
}

// Round4 absorbs the four quotient-split commitments and draws
// zeta_frak, the evaluation challenge.
func (t *Transcript) Round4(qLow, qMid, qHigh, q4 bls12381.G1Affine) (zetaFrak fr.Element) {
	t.bindPoint(labelQLow, qLow)
	t.bindPoint(labelQMid, qMid)
	t.bindPoint(labelQHigh, qHigh)
	t.bindPoint(labelQ4, q4)
	return t.challenge(labelZF)
}

// AbsorbEvaluations appends the 22 round-5 scalars in the fixed order
// spec.md §6 lists (tEval standing in for f_eval/t_prime_eval/
// t_prime_next_eval — see SPEC_FULL.md) and draws the opening randomizers
// v and u.
func (t *Transcript) AbsorbEvaluations(e Round5Scalars) (v, u fr.Element) {
	vals := e.ordered()
	for i, label := range evalLabels {
		t.bindScalar(label, vals[i])
	}
	v = t.challenge(labelV)
	u = t.challenge(labelU)
	return
}

// AbsorbOpenings appends the two final opening-witness commitments. Both
// prover and verifier call this last, after which no further challenges
// are drawn.
func (t *Transcript) AbsorbOpenings(wz, wzw bls12381.G1Affine) {
	t.bindPoint(labelWZ, wz)
	t.bindPoint(labelWZW, wzw)
}

// BatchChallenge draws the scalar the verifier uses to fold the two KZG
// pairing checks (at zeta_frak and zeta_frak*omega) into a single
// multi-pairing. Must be called after AbsorbOpenings, once both opening
// commitments are bound.
func (t *Transcript) BatchChallenge() fr.Element {
	return t.challenge(labelR)
}

// Round5Scalars holds the 22 scalars absorbed in round 5, in the order
// fields are declared below, which is also the transcript order.
type Round5Scalars struct {
	A, B, C, D             fr.Element
	ANext, BNext, DNext    fr.Element
	Sigma1, Sigma2, Sigma3 fr.Element
	Qarith, Qc, Ql, Qr, Qk fr.Element
	Perm, LookupPerm       fr.Element
	H1, H1Next, H2         fr.Element
	TEval                  fr.Element
	REval                  fr.Element
}

func (e Round5Scalars) ordered() []fr.Element {
	return []fr.Element{
		e.A, e.B, e.C, e.D,
		e.ANext, e.BNext, e.DNext,
		e.Sigma1, e.Sigma2, e.Sigma3,
		e.Qarith, e.Qc, e.Ql, e.Qr, e.Qk,
		e.Perm, e.LookupPerm,
		e.H1, e.H1Next, e.H2,
		e.TEval, e.REval,
	}
}
