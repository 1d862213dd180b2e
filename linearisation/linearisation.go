// Package linearisation builds the PLONK linearisation polynomial r(X):
// every quantity the round-5 evaluations already pin down is folded into
// a scalar coefficient, leaving X-dependence only in the handful of
// polynomials whose commitments the verifier holds but whose evaluation
// at zeta_frak was never sent — Qm, Qo, Qf, the exclusive-gadget
// selectors, Sigma4, and the two grand products Z1, Z2.
//
// Scalars is computed once from the round-5 evaluations and challenges
// and consumed identically by the prover (to fold polynomials with
// poly.AddScaled) and the verifier (to fold commitments with an MSM) —
// the same split spec.md §4.3 point 6 describes as delegating to each
// gadget's compute_linearisation_commitment.
package linearisation

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/plonkup/core/poly"
)

// Evals is the subset of round-5 scalar evaluations the linearisation
// scalars are derived from.
type Evals struct {
	A, B, C, D       fr.Element
	Sigma1, Sigma2, Sigma3 fr.Element
	Qarith, Qc, Ql, Qr, Qk fr.Element
	PermEval, LookupPermEval fr.Element // z1, z2 evaluated at zeta_frak*omega
	H1, H1Next, H2   fr.Element
	F, TPrime, TPrimeNext fr.Element
	PublicInput fr.Element
}

// Challenges bundles every separation/permutation/lookup challenge plus
// the evaluation point and domain constants needed to compute the
// linearisation scalars.
type Challenges struct {
	Alpha, AlphaRange, AlphaLogic, AlphaFixed, AlphaVar, AlphaLookup fr.Element
	Beta, Gamma, Delta, Epsilon fr.Element
	ZetaFrak, Omega             fr.Element
	L1                          fr.Element // L_1(zeta_frak)
	CosetScalars                [4]fr.Element
}

// Scalars holds one coefficient per X-dependent polynomial factor in
// r(X).
type Scalars struct {
	Qm, Qo, Qf                         fr.Element
	Qrange, Qlogic                     fr.Element
	QfixedGroupAdd, QvariableGroupAdd fr.Element
	Sigma4                             fr.Element
	Z1, Z2                             fr.Element
}

// delta(x) = x(x-1)(x-2)(x-3), mirroring quotient.delta; duplicated here
// (rather than imported) because the two packages must never develop a
// dependency on each other — both depend only on fr.Element arithmetic.
func delta(x fr.Element) fr.Element {
	var one, two, three, acc fr.Element
	one.SetOne()
	two.SetUint64(2)
	three.SetUint64(3)
	acc.Set(&x)
	var t fr.Element
	t.Sub(&x, &one)
	acc.Mul(&acc, &t)
	t.Sub(&x, &two)
	acc.Mul(&acc, &t)
	t.Sub(&x, &three)
	acc.Mul(&acc, &t)
	return acc
}

// ComputeScalars derives the coefficients of every X-dependent factor of
// r(X) from the round-5 evaluations and challenges. Both Build (prover)
// and Reconstruct (verifier) call this so they can never drift apart.
func ComputeScalars(e Evals, ch Challenges) Scalars {
	var s Scalars

	var ab fr.Element
	ab.Mul(&e.A, &e.B)
	s.Qm.Mul(&ab, &e.Qarith)
	s.Qo.Mul(&e.C, &e.Qarith)
	s.Qf.Mul(&e.D, &e.Qarith)

	rangeDelta := delta(e.C)
	var dB, dA fr.Element
	dB = delta(e.B)
	dA = delta(e.A)
	rangeDelta.Add(&rangeDelta, &dB)
	rangeDelta.Add(&rangeDelta, &dA)
	s.Qrange.Mul(&ch.AlphaRange, &rangeDelta)

	logicDelta := delta(e.A)
	dB2 := delta(e.B)
	logicDelta.Add(&logicDelta, &dB2)
	s.Qlogic.Mul(&ch.AlphaLogic, &logicDelta)

	dD := delta(e.D)
	s.QfixedGroupAdd.Mul(&ch.AlphaFixed, &dD)
	s.QvariableGroupAdd.Mul(&ch.AlphaVar, &dD)

	// Permutation: the "open" factor of the grand-product identity that
	// cannot be expressed via already-evaluated scalars because sigma_4
	// is only committed, never evaluated. The generalisation from three
	// wires to four keeps the same shape, adding the fourth
	// (wire, sigma) pair.
	var prod, t fr.Element
	prod.SetOne()

	t.Mul(&ch.Beta, &e.Sigma1)
	t.Add(&t, &e.A)
	t.Add(&t, &ch.Gamma)
	prod.Mul(&prod, &t)

	t.Mul(&ch.Beta, &e.Sigma2)
	t.Add(&t, &e.B)
	t.Add(&t, &ch.Gamma)
	prod.Mul(&prod, &t)

	t.Mul(&ch.Beta, &e.Sigma3)
	t.Add(&t, &e.C)
	t.Add(&t, &ch.Gamma)
	prod.Mul(&prod, &t)

	prod.Mul(&prod, &ch.Beta)
	prod.Mul(&prod, &e.PermEval)
	prod.Mul(&prod, &ch.Alpha)
	var neg fr.Element
	neg.Neg(&prod)
	s.Sigma4 = neg

	// Z1(X): the grand-product initialisation term (alpha^2 * L1) plus
	// the step term evaluated with the four coset-shifted wire
	// combinations at zeta_frak (sigma_j(zeta) replaced by k_j*zeta,
	// since that side of the identity never needs the permutation
	// itself).
	var stepProd fr.Element
	stepProd.SetOne()
	wires := [4]fr.Element{e.A, e.B, e.C, e.D}
	for j := 0; j < 4; j++ {
		var kTerm fr.Element
		kTerm.Mul(&ch.CosetScalars[j], &ch.ZetaFrak)
		kTerm.Mul(&kTerm, &ch.Beta)
		kTerm.Add(&kTerm, &wires[j])
		kTerm.Add(&kTerm, &ch.Gamma)
		stepProd.Mul(&stepProd, &kTerm)
	}
	stepProd.Mul(&stepProd, &ch.Alpha)

	var alpha2, initTerm fr.Element
	alpha2.Mul(&ch.Alpha, &ch.Alpha)
	initTerm.Mul(&alpha2, &ch.L1)

	s.Z1.Add(&stepProd, &initTerm)

	// Z2(X): mirrors lookup.GrandProduct's numerator factor, scaled by
	// alpha_lookup, plus its own initialisation term scaled by
	// alpha_lookup^2.
	var one, onePlusDelta, epsOnePlusDelta fr.Element
	one.SetOne()
	onePlusDelta.Add(&one, &ch.Delta)
	epsOnePlusDelta.Mul(&ch.Epsilon, &onePlusDelta)

	var a, b fr.Element
	a.Add(&ch.Epsilon, &e.F)
	a.Mul(&a, &onePlusDelta)
	b.Mul(&ch.Delta, &e.TPrimeNext)
	b.Add(&b, &e.TPrime)
	b.Add(&b, &epsOnePlusDelta)
	var lookupStep fr.Element
	lookupStep.Mul(&a, &b)
	lookupStep.Mul(&lookupStep, &ch.AlphaLookup)

	var alphaL2, lookupInit fr.Element
	alphaL2.Mul(&ch.AlphaLookup, &ch.AlphaLookup)
	lookupInit.Mul(&alphaL2, &ch.L1)

	s.Z2.Add(&lookupStep, &lookupInit)

	return s
}

// ComputeConstant computes the quotient identity's fully-scalar remainder:
// every addend term of t(X)*Z_H(X) whose factors are ALL already pinned
// down by round-5 evaluations, so it never touches a polynomial
// commitment and has nowhere to live inside r(X)/Scalars. The verifier's
// check is t_eval*Z_H(zeta_frak) == ComputeConstant(...) + r(zeta_frak);
// shared with nothing else so it can never drift from ComputeScalars,
// since both walk the same gate/permutation/lookup decomposition:
//
//   - gate: q_arith*(q_l*a + q_r*b + q_c + PI) — the part of the
//     arithmetic identity not attached to the unevaluated Qm/Qo/Qf.
//   - permutation denominator: -alpha*perm_eval*P3*(d+gamma), the part of
//     the sigma_4 factor not attached to the unevaluated Sigma4(X) (P3 is
//     the product over wires a,b,c with their evaluated sigmas).
//   - permutation init: -alpha^2*L1, the part of L_1*(Z1-1) not attached
//     to the unevaluated Z1(X).
//   - lookup denominator: -alpha_lookup*lookup_perm_eval*f0*f1, entirely
//     scalar since h1, h1_next, h2, f, t' are all evaluated and sent.
//   - lookup init: -alpha_lookup^2*L1, the scalar part of L_1*(Z2-1).
//   - lookup transition: +alpha_lookup^3*L1*(h2-h1), entirely scalar —
//     this is the term spec.md's design notes call out as dropped in the
//     source ("// + d"); it never needed a polynomial factor at all, so
//     including it here as a scalar (rather than as the commitment it was
//     mistaken for) is the fix.
func ComputeConstant(e Evals, ch Challenges) fr.Element {
	var c fr.Element

	// gate: q_arith*(q_l*a + q_r*b + q_c + PI)
	var gate, t fr.Element
	t.Mul(&e.Ql, &e.A)
	gate.Add(&gate, &t)
	t.Mul(&e.Qr, &e.B)
	gate.Add(&gate, &t)
	gate.Add(&gate, &e.Qc)
	gate.Add(&gate, &e.PublicInput)
	gate.Mul(&gate, &e.Qarith)
	c.Add(&c, &gate)

	// permutation denominator's evaluated remainder: -alpha*perm_eval*P3*(d+gamma)
	var p3, term fr.Element
	p3.SetOne()
	sigmas := [3]fr.Element{e.Sigma1, e.Sigma2, e.Sigma3}
	wires := [3]fr.Element{e.A, e.B, e.C}
	for j := 0; j < 3; j++ {
		term.Mul(&ch.Beta, &sigmas[j])
		term.Add(&term, &wires[j])
		term.Add(&term, &ch.Gamma)
		p3.Mul(&p3, &term)
	}
	var dPlusGamma, permDen fr.Element
	dPlusGamma.Add(&e.D, &ch.Gamma)
	permDen.Mul(&p3, &dPlusGamma)
	permDen.Mul(&permDen, &e.PermEval)
	permDen.Mul(&permDen, &ch.Alpha)
	c.Sub(&c, &permDen)

	// permutation init's evaluated remainder: -alpha^2*L1
	var alpha2, permInit fr.Element
	alpha2.Mul(&ch.Alpha, &ch.Alpha)
	permInit.Mul(&alpha2, &ch.L1)
	c.Sub(&c, &permInit)

	// lookup denominator: -alpha_lookup*lookup_perm_eval*f0*f1
	var one, onePlusDelta, epsOnePlusDelta fr.Element
	one.SetOne()
	onePlusDelta.Add(&one, &ch.Delta)
	epsOnePlusDelta.Mul(&ch.Epsilon, &onePlusDelta)

	var f0, f1 fr.Element
	f0.Mul(&ch.Delta, &e.H2)
	f0.Add(&f0, &e.H1)
	f0.Add(&f0, &epsOnePlusDelta)
	f1.Mul(&ch.Delta, &e.H1Next)
	f1.Add(&f1, &epsOnePlusDelta)

	var lkpDen fr.Element
	lkpDen.Mul(&f0, &f1)
	lkpDen.Mul(&lkpDen, &e.LookupPermEval)
	lkpDen.Mul(&lkpDen, &ch.AlphaLookup)
	c.Sub(&c, &lkpDen)

	// lookup init: -alpha_lookup^2*L1
	var alphaL2, lkpInit fr.Element
	alphaL2.Mul(&ch.AlphaLookup, &ch.AlphaLookup)
	lkpInit.Mul(&alphaL2, &ch.L1)
	c.Sub(&c, &lkpInit)

	// lookup transition: +alpha_lookup^3*L1*(h2-h1)
	var alphaL3, hDiff, lkpTransition fr.Element
	alphaL3.Mul(&alphaL2, &ch.AlphaLookup)
	hDiff.Sub(&e.H2, &e.H1)
	lkpTransition.Mul(&alphaL3, &ch.L1)
	lkpTransition.Mul(&lkpTransition, &hDiff)
	c.Add(&c, &lkpTransition)

	return c
}

// PolynomialFactors bundles the coefficient-form polynomials r(X) needs,
// in the same order Scalars names them.
type PolynomialFactors struct {
	Qm, Qo, Qf                         poly.Polynomial
	Qrange, Qlogic                     poly.Polynomial
	QfixedGroupAdd, QvariableGroupAdd poly.Polynomial
	Sigma4                             poly.Polynomial
	Z1, Z2                             poly.Polynomial
}

// Build folds Scalars into r(X) = sum_i scalar_i * factor_i(X).
func Build(s Scalars, f PolynomialFactors) poly.Polynomial {
	var r poly.Polynomial
	r = poly.AddScaled(r, s.Qm, f.Qm)
	r = poly.AddScaled(r, s.Qo, f.Qo)
	r = poly.AddScaled(r, s.Qf, f.Qf)
	r = poly.AddScaled(r, s.Qrange, f.Qrange)
	r = poly.AddScaled(r, s.Qlogic, f.Qlogic)
	r = poly.AddScaled(r, s.QfixedGroupAdd, f.QfixedGroupAdd)
	r = poly.AddScaled(r, s.QvariableGroupAdd, f.QvariableGroupAdd)
	r = poly.AddScaled(r, s.Sigma4, f.Sigma4)
	r = poly.AddScaled(r, s.Z1, f.Z1)
	r = poly.AddScaled(r, s.Z2, f.Z2)
	return r
}

// Commitments mirrors PolynomialFactors but holds the verifier-side
// commitments instead of coefficient polynomials.
type Commitments struct {
	Qm, Qo, Qf                         bls12381.G1Affine
	Qrange, Qlogic                     bls12381.G1Affine
	QfixedGroupAdd, QvariableGroupAdd bls12381.G1Affine
	Sigma4                             bls12381.G1Affine
	Z1, Z2                             bls12381.G1Affine
}

// Reconstruct computes [r]_1 = sum_i scalar_i * Commitments_i by naive
// scalar multiplication and summation (a small, fixed-size MSM — ten
// terms — not worth gnark-crypto's batched MSM machinery).
func Reconstruct(s Scalars, c Commitments) bls12381.G1Affine {
	type term struct {
		scalar fr.Element
		point  bls12381.G1Affine
	}
	terms := []term{
		{s.Qm, c.Qm}, {s.Qo, c.Qo}, {s.Qf, c.Qf},
		{s.Qrange, c.Qrange}, {s.Qlogic, c.Qlogic},
		{s.QfixedGroupAdd, c.QfixedGroupAdd}, {s.QvariableGroupAdd, c.QvariableGroupAdd},
		{s.Sigma4, c.Sigma4},
		{s.Z1, c.Z1}, {s.Z2, c.Z2},
	}

	var acc bls12381.G1Jac
	for _, t := range terms {
		var p bls12381.G1Jac
		p.FromAffine(&t.point)
		scalar := t.scalar
		var bi big.Int
		scalar.BigInt(&bi)
		p.ScalarMultiplication(&p, &bi)
		acc.AddAssign(&p)
	}

	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return out
}
