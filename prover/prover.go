// Package prover orchestrates the five PLONKup proving rounds spec.md §4.2
// describes, wiring together domain, permutation, lookup, quotient,
// linearisation, opening and transcript into the single Prove entry point.
package prover

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/kzg"
	"github.com/rs/zerolog/log"

	"github.com/plonkup/core/cdf"
	"github.com/plonkup/core/composer"
	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/gate"
	"github.com/plonkup/core/linearisation"
	"github.com/plonkup/core/lookup"
	"github.com/plonkup/core/opening"
	"github.com/plonkup/core/permutation"
	"github.com/plonkup/core/poly"
	"github.com/plonkup/core/proof"
	"github.com/plonkup/core/quotient"
	"github.com/plonkup/core/srs"
	"github.com/plonkup/core/transcript"
	"github.com/plonkup/core/witness"
)

// Circuit bundles the composer state the prover needs beyond the
// preprocessed key: the padded gate list, the witness registry, and the
// gate-index -> public-input-value map.
type Circuit struct {
	Gates        []gate.Gate
	Registry     *witness.Registry
	PublicInputs map[int]fr.Element
}

// FromComposer extracts a Circuit from a Composer in the same padded shape
// Preprocess used to build the ProverKey, so wire assignment vectors line
// up index-for-index with the key's selector and permutation polynomials.
func FromComposer(c *composer.Composer, d *domain.Domain) Circuit {
	n := int(d.Size())
	gates := make([]gate.Gate, n)
	copy(gates, c.Gates())
	for i := len(c.Gates()); i < n; i++ {
		gates[i] = gate.Zero()
	}
	return Circuit{Gates: gates, Registry: c.Registry(), PublicInputs: c.PublicInputs()}
}

// Prove runs the five-round PLONKup proving protocol and returns the
// resulting proof. rec may be nil; when non-nil it receives a CDF_OUTPUT
// debug trace that plays no part in the proof itself.
func Prove(pk *composer.ProverKey, srsPk kzg.ProvingKey, circuit Circuit, rec *cdf.Recorder) (*proof.Proof, error) {
	d := pk.Domain
	n := int(d.Size())

	log.Debug().Uint64("n", d.Size()).Msg("plonk: prove: starting")

	for i, v := range circuit.Registry.Values() {
		rec.RecordWitness(uint32(i), v)
	}

	// --- wire assignment + public input vectors -------------------------
	aLag := make([]fr.Element, n)
	bLag := make([]fr.Element, n)
	cLag := make([]fr.Element, n)
	dLag := make([]fr.Element, n)
	piLag := make([]fr.Element, n)

	for i, g := range circuit.Gates {
		aLag[i] = circuit.Registry.Value(g.A)
		bLag[i] = circuit.Registry.Value(g.B)
		cLag[i] = circuit.Registry.Value(g.C)
		dLag[i] = circuit.Registry.Value(g.D)
		if v, ok := circuit.PublicInputs[i]; ok {
			piLag[i] = v
		}
		rec.RecordConstraint(i, g, [4]fr.Element{aLag[i], bLag[i], cLag[i], dLag[i]}, piLag[i])
	}

	aCoeffs := poly.ToCoeffs(d, aLag)
	bCoeffs := poly.ToCoeffs(d, bLag)
	cCoeffs := poly.ToCoeffs(d, cLag)
	dCoeffs := poly.ToCoeffs(d, dLag)

	// --- round 1: commit wires, draw zeta --------------------------------
	aComm, err := commit(aCoeffs, srsPk, "a")
	if err != nil {
		return nil, err
	}
	bComm, err := commit(bCoeffs, srsPk, "b")
	if err != nil {
		return nil, err
	}
	cComm, err := commit(cCoeffs, srsPk, "c")
	if err != nil {
		return nil, err
	}
	dComm, err := commit(dCoeffs, srsPk, "d")
	if err != nil {
		return nil, err
	}

	tr := transcript.New()
	zeta := tr.Round1(aComm, bComm, cComm, dComm)

	// --- round 2: lookup compression, sort-and-split, commit -------------
	qkLag := poly.ToLagrange(d, pk.Qk.Coeffs)
	t1Lag := poly.ToLagrange(d, pk.T1.Coeffs)
	t2Lag := poly.ToLagrange(d, pk.T2.Coeffs)
	t3Lag := poly.ToLagrange(d, pk.T3.Coeffs)
	t4Lag := poly.ToLagrange(d, pk.T4.Coeffs)

	tPrimeLag := lookup.CompressTable(t1Lag, t2Lag, t3Lag, t4Lag, zeta)
	fLag := lookup.BuildQuery(qkLag, aLag, bLag, cLag, dLag, tPrimeLag, zeta)
	h1Lag, h2Lag := lookup.SortAndSplit(fLag, tPrimeLag)

	fCoeffs := poly.ToCoeffs(d, fLag)
	h1Coeffs := poly.ToCoeffs(d, h1Lag)
	h2Coeffs := poly.ToCoeffs(d, h2Lag)

	fComm, err := commit(fCoeffs, srsPk, "f")
	if err != nil {
		return nil, err
	}
	h1Comm, err := commit(h1Coeffs, srsPk, "h1")
	if err != nil {
		return nil, err
	}
	h2Comm, err := commit(h2Coeffs, srsPk, "h2")
	if err != nil {
		return nil, err
	}

	beta, gamma, delta, epsilon := tr.Round2(fComm, h1Comm, h2Comm)

	// --- round 3: grand products, commit ---------------------------------
	sigmas := permutation.Sigmas{
		S1: poly.ToLagrange(d, pk.Sigma1.Coeffs),
		S2: poly.ToLagrange(d, pk.Sigma2.Coeffs),
		S3: poly.ToLagrange(d, pk.Sigma3.Coeffs),
		S4: poly.ToLagrange(d, pk.Sigma4.Coeffs),
	}
	z1Lag := permutation.GrandProduct(d, [4][]fr.Element{aLag, bLag, cLag, dLag}, sigmas, beta, gamma)
	z2Lag := lookup.GrandProduct(fLag, tPrimeLag, h1Lag, h2Lag, delta, epsilon)

	z1Coeffs := poly.ToCoeffs(d, z1Lag)
	z2Coeffs := poly.ToCoeffs(d, z2Lag)

	z1Comm, err := commit(z1Coeffs, srsPk, "z1")
	if err != nil {
		return nil, err
	}
	z2Comm, err := commit(z2Coeffs, srsPk, "z2")
	if err != nil {
		return nil, err
	}

	alpha, alphaRange, alphaLogic, alphaFixed, alphaVar, alphaLookup := tr.Round3(z1Comm, z2Comm)

	// --- quotient: coset-evaluate everything the identity needs ----------
	piCoeffs := poly.ToCoeffs(d, piLag)

	aCoset := poly.EvalOnBigCoset(d, aCoeffs)
	bCoset := poly.EvalOnBigCoset(d, bCoeffs)
	cCoset := poly.EvalOnBigCoset(d, cCoeffs)
	dCoset := poly.EvalOnBigCoset(d, dCoeffs)
	piCoset := poly.EvalOnBigCoset(d, piCoeffs)
	z1Coset := poly.EvalOnBigCoset(d, z1Coeffs)
	z2Coset := poly.EvalOnBigCoset(d, z2Coeffs)
	fCoset := poly.EvalOnBigCoset(d, fCoeffs)
	h1Coset := poly.EvalOnBigCoset(d, h1Coeffs)
	h2Coset := poly.EvalOnBigCoset(d, h2Coeffs)
	tPrimeCoset := poly.EvalOnBigCoset(d, poly.ToCoeffs(d, tPrimeLag))

	const ratio = domain.CosetFactor

	qSel := quotient.Selectors{
		Qm: pk.Qm.CosetEvals, Ql: pk.Ql.CosetEvals, Qr: pk.Qr.CosetEvals,
		Qo: pk.Qo.CosetEvals, Qf: pk.Qf.CosetEvals, Qc: pk.Qc.CosetEvals,
		Qarith: pk.Qarith.CosetEvals, Qrange: pk.Qrange.CosetEvals, Qlogic: pk.Qlogic.CosetEvals,
		QfixedGroupAdd: pk.QfixedGroupAdd.CosetEvals, QvariableGroupAdd: pk.QvariableGroupAdd.CosetEvals,
		Qk: pk.Qk.CosetEvals,
	}
	qWires := quotient.Wires{
		A: aCoset, B: bCoset, C: cCoset, D: dCoset,
		ANext: shiftCoset(aCoset, ratio), BNext: shiftCoset(bCoset, ratio), DNext: shiftCoset(dCoset, ratio),
	}
	qPerm := quotient.Permutation{
		Sigma1: pk.Sigma1.CosetEvals, Sigma2: pk.Sigma2.CosetEvals,
		Sigma3: pk.Sigma3.CosetEvals, Sigma4: pk.Sigma4.CosetEvals,
		CosetScalars: pk.PermutationCosetScalars,
		Z1:           z1Coset, Z1Next: shiftCoset(z1Coset, ratio),
	}
	qLkp := quotient.Lookup{
		TPrime: tPrimeCoset, TPrimeNext: shiftCoset(tPrimeCoset, ratio),
		F: fCoset,
		H1: h1Coset, H1Next: shiftCoset(h1Coset, ratio), H2: h2Coset,
		Z2: z2Coset, Z2Next: shiftCoset(z2Coset, ratio),
	}
	qCh := quotient.Challenges{
		Alpha: alpha, AlphaRange: alphaRange, AlphaLogic: alphaLogic,
		AlphaFixed: alphaFixed, AlphaVar: alphaVar, AlphaLookup: alphaLookup,
		Beta: beta, Gamma: gamma, Delta: delta, Epsilon: epsilon, Zeta: zeta,
	}

	tChunks := quotient.Build(d, qSel, qWires, qPerm, qLkp, quotient.PublicInput(piCoset), qCh)

	qLowComm, err := commit(tChunks[0], srsPk, "q_low")
	if err != nil {
		return nil, err
	}
	qMidComm, err := commit(tChunks[1], srsPk, "q_mid")
	if err != nil {
		return nil, err
	}
	qHighComm, err := commit(tChunks[2], srsPk, "q_high")
	if err != nil {
		return nil, err
	}
	q4Comm, err := commit(tChunks[3], srsPk, "q_4")
	if err != nil {
		return nil, err
	}

	zetaFrak := tr.Round4(qLowComm, qMidComm, qHighComm, q4Comm)

	// --- round 5: evaluate everything at zeta_frak / zeta_frak*omega -----
	omega := d.Generator()
	var zetaFrakOmega fr.Element
	zetaFrakOmega.Mul(&zetaFrak, &omega)

	aEval := aCoeffs.Evaluate(zetaFrak)
	bEval := bCoeffs.Evaluate(zetaFrak)
	cEval := cCoeffs.Evaluate(zetaFrak)
	dEval := dCoeffs.Evaluate(zetaFrak)
	aNextEval := aCoeffs.Evaluate(zetaFrakOmega)
	bNextEval := bCoeffs.Evaluate(zetaFrakOmega)
	dNextEval := dCoeffs.Evaluate(zetaFrakOmega)

	sigma1Eval := pk.Sigma1.Coeffs.Evaluate(zetaFrak)
	sigma2Eval := pk.Sigma2.Coeffs.Evaluate(zetaFrak)
	sigma3Eval := pk.Sigma3.Coeffs.Evaluate(zetaFrak)

	qarithEval := pk.Qarith.Coeffs.Evaluate(zetaFrak)
	qcEval := pk.Qc.Coeffs.Evaluate(zetaFrak)
	qlEval := pk.Ql.Coeffs.Evaluate(zetaFrak)
	qrEval := pk.Qr.Coeffs.Evaluate(zetaFrak)
	qkEval := pk.Qk.Coeffs.Evaluate(zetaFrak)

	z1NextEval := z1Coeffs.Evaluate(zetaFrakOmega)
	z2NextEval := z2Coeffs.Evaluate(zetaFrakOmega)

	fEval := fCoeffs.Evaluate(zetaFrak)
	tPrimeEval := poly.ToCoeffs(d, tPrimeLag).Evaluate(zetaFrak)
	tPrimeNextEval := poly.ToCoeffs(d, tPrimeLag).Evaluate(zetaFrakOmega)
	h1Eval := h1Coeffs.Evaluate(zetaFrak)
	h1NextEval := h1Coeffs.Evaluate(zetaFrakOmega)
	h2Eval := h2Coeffs.Evaluate(zetaFrak)

	// tLin = t_low + zeta_frak^n*t_mid + zeta_frak^2n*t_high + zeta_frak^3n*t_4
	// is the polynomial the verifier's recombined [t]_1 commits to; it
	// agrees with t(X) at zeta_frak.
	var zetaFrakN, shift fr.Element
	zetaFrakN.Exp(zetaFrak, big.NewInt(int64(n)))
	shift.SetOne()
	var tLin poly.Polynomial
	for _, chunk := range tChunks {
		tLin = poly.AddScaled(tLin, shift, chunk)
		shift.Mul(&shift, &zetaFrakN)
	}
	tEval := tLin.Evaluate(zetaFrak)

	l1 := d.FirstLagrangeEval(zetaFrak, d.VanishingEval(zetaFrak))
	piEval := piCoeffs.Evaluate(zetaFrak)

	linEvals := linearisation.Evals{
		A: aEval, B: bEval, C: cEval, D: dEval,
		Sigma1: sigma1Eval, Sigma2: sigma2Eval, Sigma3: sigma3Eval,
		Qarith: qarithEval, Qc: qcEval, Ql: qlEval, Qr: qrEval, Qk: qkEval,
		PermEval: z1NextEval, LookupPermEval: z2NextEval,
		H1: h1Eval, H1Next: h1NextEval, H2: h2Eval,
		F: fEval, TPrime: tPrimeEval, TPrimeNext: tPrimeNextEval,
		PublicInput: piEval,
	}
	linCh := linearisation.Challenges{
		Alpha: alpha, AlphaRange: alphaRange, AlphaLogic: alphaLogic,
		AlphaFixed: alphaFixed, AlphaVar: alphaVar, AlphaLookup: alphaLookup,
		Beta: beta, Gamma: gamma, Delta: delta, Epsilon: epsilon,
		ZetaFrak: zetaFrak, Omega: omega, L1: l1,
		CosetScalars: pk.PermutationCosetScalars,
	}
	linScalars := linearisation.ComputeScalars(linEvals, linCh)
	rPoly := linearisation.Build(linScalars, linearisation.PolynomialFactors{
		Qm: pk.Qm.Coeffs, Qo: pk.Qo.Coeffs, Qf: pk.Qf.Coeffs,
		Qrange: pk.Qrange.Coeffs, Qlogic: pk.Qlogic.Coeffs,
		QfixedGroupAdd: pk.QfixedGroupAdd.Coeffs, QvariableGroupAdd: pk.QvariableGroupAdd.Coeffs,
		Sigma4: pk.Sigma4.Coeffs,
		Z1: z1Coeffs, Z2: z2Coeffs,
	})
	rEval := rPoly.Evaluate(zetaFrak)

	round5 := transcript.Round5Scalars{
		A: aEval, B: bEval, C: cEval, D: dEval,
		ANext: aNextEval, BNext: bNextEval, DNext: dNextEval,
		Sigma1: sigma1Eval, Sigma2: sigma2Eval, Sigma3: sigma3Eval,
		Qarith: qarithEval, Qc: qcEval, Ql: qlEval, Qr: qrEval, Qk: qkEval,
		Perm: z1NextEval, LookupPerm: z2NextEval,
		H1: h1Eval, H1Next: h1NextEval, H2: h2Eval,
		TEval: tEval, REval: rEval,
	}
	v, u := tr.AbsorbEvaluations(round5)

	// --- opening: batch both witnesses, commit, finalize transcript ------
	zf := opening.ZetaFactors{
		T: tLin, R: rPoly, A: aCoeffs, B: bCoeffs, C: cCoeffs, D: dCoeffs,
		Sigma1: pk.Sigma1.Coeffs, Sigma2: pk.Sigma2.Coeffs, Sigma3: pk.Sigma3.Coeffs,
		F: fCoeffs, H1: h1Coeffs, H2: h2Coeffs, TPrime: poly.ToCoeffs(d, tPrimeLag),
	}
	ze := opening.ZetaEvals{
		T: tEval, R: rEval, A: aEval, B: bEval, C: cEval, D: dEval,
		Sigma1: sigma1Eval, Sigma2: sigma2Eval, Sigma3: sigma3Eval,
		F: fEval, H1: h1Eval, H2: h2Eval, TPrime: tPrimeEval,
	}
	zof := opening.ZetaOmegaFactors{
		Z1: z1Coeffs, A: aCoeffs, B: bCoeffs, D: dCoeffs, H1: h1Coeffs, Z2: z2Coeffs, TPrime: poly.ToCoeffs(d, tPrimeLag),
	}
	zoe := opening.ZetaOmegaEvals{
		Z1: z1NextEval, A: aNextEval, B: bNextEval, D: dNextEval, H1: h1NextEval, Z2: z2NextEval, TPrime: tPrimeNextEval,
	}

	witnesses := opening.Build(zf, ze, zetaFrak, zof, zoe, zetaFrakOmega, v, u)
	wZetaComm, wZetaOmegaComm, err := opening.Commit(witnesses, srsPk)
	if err != nil {
		return nil, err
	}
	tr.AbsorbOpenings(wZetaComm, wZetaOmegaComm)

	if err := rec.Finish(); err != nil {
		log.Warn().Err(err).Msg("plonk: prove: cdf trace write failed")
	}

	log.Debug().Msg("plonk: prove: done")

	return &proof.Proof{
		AComm: aComm, BComm: bComm, CComm: cComm, DComm: dComm,
		FComm: fComm,
		H1Comm: h1Comm, H2Comm: h2Comm,
		Z1Comm: z1Comm, Z2Comm: z2Comm,
		QLowComm: qLowComm, QMidComm: qMidComm, QHighComm: qHighComm, Q4Comm: q4Comm,
		WZetaComm: wZetaComm, WZetaOmegaComm: wZetaOmegaComm,
		Evaluations: proof.Evaluations{
			A: aEval, B: bEval, C: cEval, D: dEval,
			ANext: aNextEval, BNext: bNextEval, DNext: dNextEval,
			Sigma1: sigma1Eval, Sigma2: sigma2Eval, Sigma3: sigma3Eval,
			Qarith: qarithEval, Qc: qcEval, Ql: qlEval, Qr: qrEval, Qk: qkEval,
			PermEval: z1NextEval, LookupPermEval: z2NextEval,
			F: fEval, TPrime: tPrimeEval, TPrimeNext: tPrimeNextEval,
			H1: h1Eval, H1Next: h1NextEval, H2: h2Eval,
			REval: rEval,
		},
	}, nil
}

func commit(p poly.Polynomial, pk kzg.ProvingKey, label string) (bls12381.G1Affine, error) {
	c, err := kzg.Commit(p, pk)
	if err != nil {
		return bls12381.G1Affine{}, fmt.Errorf("plonk: prove: commit %s: %w", label, err)
	}
	return bls12381.G1Affine(c), nil
}

// shiftCoset cyclically advances a big-coset evaluation vector by shift
// positions, recovering the "one small-domain step forward" evaluation at
// every point: since poly.EvalOnBigCoset produces natural-order (not
// bit-reversed) output and the small domain's generator is the big domain's
// generator raised to CosetFactor, stepping forward by one small-domain
// point is exactly a cyclic shift by CosetFactor positions in the big
// coset's natural index order.
func shiftCoset(vals []fr.Element, shift int) []fr.Element {
	n := len(vals)
	out := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		out[i] = vals[(i+shift)%n]
	}
	return out
}
