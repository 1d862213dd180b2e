// Package composer implements the constraint-system builder and
// preprocessor: the caller appends witnesses and gates, then Preprocess
// compiles the accumulated circuit into a ProverKey/VerifierKey pair.
package composer

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/kzg"
	"github.com/rs/zerolog/log"

	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/errs"
	"github.com/plonkup/core/gate"
	"github.com/plonkup/core/permutation"
	"github.com/plonkup/core/poly"
	"github.com/plonkup/core/srs"
	"github.com/plonkup/core/witness"
)

// Composer accumulates witnesses, gates, public inputs, and an optional
// lookup table. Witnesses and gates are appended monotonically; there is
// no operation to remove either.
type Composer struct {
	registry *witness.Registry
	gates    []gate.Gate

	// publicInputs maps gate index to the runtime public scalar bound
	// there. Gates absent from this map contribute zero public input.
	publicInputs map[int]fr.Element

	// lookup table columns, row-major; all four must have equal length.
	table [4][]fr.Element

	// gadgetMask marks, by gate index, which appended gates have one of
	// the four exclusive non-arithmetic gadgets active. Tracked
	// incrementally in AppendGate rather than re-derived from the
	// selectors later, since Validate already computed the same fact.
	gadgetMask *bitset.BitSet
}

// New returns an empty Composer, pre-seeded with the Zero/One constant
// witnesses.
func New() *Composer {
	return &Composer{
		registry:     witness.NewRegistry(),
		publicInputs: make(map[int]fr.Element),
		gadgetMask:   bitset.New(0),
	}
}

// AppendWitness registers a new variable bound to value and returns its
// handle.
func (c *Composer) AppendWitness(value fr.Element) witness.Witness {
	return c.registry.Append(value)
}

// AppendGate appends a constraint described by spec, validating the
// exclusive-gadget-selector invariant first.
func (c *Composer) AppendGate(spec gate.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	idx := uint(len(c.gates))
	c.gates = append(c.gates, spec.ToGate())
	if gadgetActive(spec) {
		c.gadgetMask.Set(idx)
	}
	return nil
}

func gadgetActive(s gate.Spec) bool {
	return !s.Qrange.IsZero() || !s.Qlogic.IsZero() || !s.QfixedGroupAdd.IsZero() || !s.QvariableGroupAdd.IsZero()
}

// GadgetActiveCount returns how many appended gates have a non-arithmetic
// gadget selector engaged, a cheap diagnostic Preprocess logs alongside the
// chosen domain size.
func (c *Composer) GadgetActiveCount() uint { return c.gadgetMask.Count() }

// AppendPublicInput emits a gate binding w to a runtime public value: the
// gate constrains q_l*a + pi = 0 with a=w, q_l=-1, q_arith=1, so the gate
// is satisfied exactly when w's witness value equals the public input. It
// returns the gate's index, which the caller supplies to the prover
// alongside the actual public input values at proving time.
func (c *Composer) AppendPublicInput(w witness.Witness) (int, error) {
	var one, negOne fr.Element
	one.SetOne()
	negOne.Neg(&one)
	err := c.AppendGate(gate.Spec{
		Ql: negOne, Qarith: one,
		A:  w, B: witness.Zero, C: witness.Zero, D: witness.Zero,
	})
	if err != nil {
		return 0, err
	}
	idx := len(c.gates) - 1
	return idx, nil
}

// BindPublicInput records the runtime value a public-input gate (returned
// by AppendPublicInput) should carry. Binding to an index past the current
// gate count is rejected with ErrInvalidPublicInputIndex.
func (c *Composer) BindPublicInput(gateIndex int, value fr.Element) error {
	if gateIndex < 0 || gateIndex >= len(c.gates) {
		return fmt.Errorf("composer: bind public input at gate %d: %w", gateIndex, errs.ErrInvalidPublicInputIndex)
	}
	c.publicInputs[gateIndex] = value
	return nil
}

// AppendLookupRow appends one row to the four-column lookup table. All
// rows must be appended before Preprocess is called.
func (c *Composer) AppendLookupRow(t1, t2, t3, t4 fr.Element) {
	c.table[0] = append(c.table[0], t1)
	c.table[1] = append(c.table[1], t2)
	c.table[2] = append(c.table[2], t3)
	c.table[3] = append(c.table[3], t4)
}

// NumGates returns the number of appended gates (pre-padding).
func (c *Composer) NumGates() int { return len(c.gates) }

// Registry exposes the witness registry, needed by the prover to resolve
// wire values from witness handles.
func (c *Composer) Registry() *witness.Registry { return c.registry }

// Gates exposes the appended gates (pre-padding), needed by the prover to
// build wire assignment vectors.
func (c *Composer) Gates() []gate.Gate { return c.gates }

// PublicInputs exposes the gate-index -> value map.
func (c *Composer) PublicInputs() map[int]fr.Element { return c.publicInputs }

// minSRSPowers is the number of G1 powers of tau Preprocess requires the
// SRS to support for a domain of size n: 4n (the coset used to evaluate
// t(X)) plus 6 extra for the various blinding/opening degree slack terms
// (§4.1's "4n+6"; §6's external-interface description states "D >= 4n+5",
// the more conservative 4n+6 from §4.1 is used here since it is never
// smaller).
func minSRSPowers(n uint64) uint64 { return 4*n + 6 }

// Preprocess pads the gate count to n, the next power of two, builds the
// twelve selector polynomials and the sigma_1..4 permutation polynomials
// from the padded wire-to-witness map, prepares the four lookup-table
// columns, and commits every one of those twenty polynomials through the
// supplied SRS.
func (c *Composer) Preprocess(ref *srs.SRS) (*ProverKey, *VerifierKey, error) {
	n := paddedSize(len(c.gates))
	d := domain.New(n)

	if need := minSRSPowers(d.Size()); uint64(len(ref.Prover.G1)) < need {
		return nil, nil, fmt.Errorf("composer: preprocess: %w (have %d, need %d)", errs.ErrSrsTooSmall, len(ref.Prover.G1), need)
	}

	log.Debug().Uint64("n", d.Size()).Int("gates", len(c.gates)).Uint("gadget_gates", c.GadgetActiveCount()).Msg("plonk: preprocessing circuit")

	padded := c.paddedGates(d.Size())
	selectors := extractSelectors(padded)

	sigmas := permutation.Build(d, c.registry.Len(), func(wire int, gateIdx uint64) witness.Witness {
		g := padded[gateIdx]
		w := g.Wires()
		return w[wire]
	})

	table := c.paddedTable(d.Size())

	pk := &ProverKey{
		Domain: d,

		Qm: poly.NewDual(d, selectors.Qm),
		Ql: poly.NewDual(d, selectors.Ql),
		Qr: poly.NewDual(d, selectors.Qr),
		Qo: poly.NewDual(d, selectors.Qo),
		Qf: poly.NewDual(d, selectors.Qf),
		Qc: poly.NewDual(d, selectors.Qc),

		Qarith: poly.NewDual(d, selectors.Qarith),
		Qrange: poly.NewDual(d, selectors.Qrange),
		Qlogic: poly.NewDual(d, selectors.Qlogic),

		QfixedGroupAdd:    poly.NewDual(d, selectors.QfixedGroupAdd),
		QvariableGroupAdd: poly.NewDual(d, selectors.QvariableGroupAdd),
		Qk:                poly.NewDual(d, selectors.Qk),

		Sigma1: poly.NewDual(d, sigmas.S1),
		Sigma2: poly.NewDual(d, sigmas.S2),
		Sigma3: poly.NewDual(d, sigmas.S3),
		Sigma4: poly.NewDual(d, sigmas.S4),

		T1: poly.NewDual(d, table[0]),
		T2: poly.NewDual(d, table[1]),
		T3: poly.NewDual(d, table[2]),
		T4: poly.NewDual(d, table[3]),

		PermutationCosetScalars: permutation.CosetScalars(d),
	}

	vk, err := commitVerifierKey(pk, ref.Prover)
	if err != nil {
		return nil, nil, err
	}
	pk.Verifier = vk

	return pk, vk, nil
}

func commitVerifierKey(pk *ProverKey, provingKey kzg.ProvingKey) (*VerifierKey, error) {
	vk := &VerifierKey{
		N:                       pk.Domain.Size(),
		Omega:                   pk.Domain.Generator(),
		PermutationCosetScalars: pk.PermutationCosetScalars,
	}

	type named struct {
		dst  *bls12381.G1Affine
		poly poly.Polynomial
	}

	items := []named{
		{&vk.Qm, pk.Qm.Coeffs}, {&vk.Ql, pk.Ql.Coeffs}, {&vk.Qr, pk.Qr.Coeffs},
		{&vk.Qo, pk.Qo.Coeffs}, {&vk.Qf, pk.Qf.Coeffs}, {&vk.Qc, pk.Qc.Coeffs},
		{&vk.Qarith, pk.Qarith.Coeffs}, {&vk.Qrange, pk.Qrange.Coeffs}, {&vk.Qlogic, pk.Qlogic.Coeffs},
		{&vk.QfixedGroupAdd, pk.QfixedGroupAdd.Coeffs}, {&vk.QvariableGroupAdd, pk.QvariableGroupAdd.Coeffs},
		{&vk.Qk, pk.Qk.Coeffs},
		{&vk.Sigma1, pk.Sigma1.Coeffs}, {&vk.Sigma2, pk.Sigma2.Coeffs},
		{&vk.Sigma3, pk.Sigma3.Coeffs}, {&vk.Sigma4, pk.Sigma4.Coeffs},
		{&vk.T1, pk.T1.Coeffs}, {&vk.T2, pk.T2.Coeffs}, {&vk.T3, pk.T3.Coeffs}, {&vk.T4, pk.T4.Coeffs},
	}

	for _, it := range items {
		c, err := kzg.Commit(it.poly, provingKey)
		if err != nil {
			return nil, fmt.Errorf("composer: commit preprocessed polynomial: %w", err)
		}
		*it.dst = bls12381.G1Affine(c)
	}

	return vk, nil
}

// paddedSize returns the next power of two >= max(numGates, 1).
func paddedSize(numGates int) uint64 {
	if numGates == 0 {
		return 1
	}
	return domain.NextPowerOfTwo(uint64(numGates))
}

// paddedGates returns the gate list padded with gate.Zero() up to size n.
func (c *Composer) paddedGates(n uint64) []gate.Gate {
	out := make([]gate.Gate, n)
	copy(out, c.gates)
	for i := len(c.gates); i < int(n); i++ {
		out[i] = gate.Zero()
	}
	return out
}

// paddedTable pads each lookup-table column to length n by repeating its
// last row (or the zero row, if the table is empty), so a lookup with no
// registered rows still yields a well-formed, if trivial, table.
func (c *Composer) paddedTable(n uint64) [4][]fr.Element {
	var out [4][]fr.Element
	rows := len(c.table[0])
	for col := 0; col < 4; col++ {
		out[col] = make([]fr.Element, n)
		copy(out[col], c.table[col])
		if rows == 0 {
			continue
		}
		last := c.table[col][rows-1]
		for i := rows; i < int(n); i++ {
			out[col][i] = last
		}
	}
	return out
}

type selectorVectors struct {
	Qm, Ql, Qr, Qo, Qf, Qc             []fr.Element
	Qarith, Qrange, Qlogic             []fr.Element
	QfixedGroupAdd, QvariableGroupAdd []fr.Element
	Qk                                 []fr.Element
}

func extractSelectors(gates []gate.Gate) selectorVectors {
	n := len(gates)
	v := selectorVectors{
		Qm: make([]fr.Element, n), Ql: make([]fr.Element, n), Qr: make([]fr.Element, n),
		Qo: make([]fr.Element, n), Qf: make([]fr.Element, n), Qc: make([]fr.Element, n),
		Qarith: make([]fr.Element, n), Qrange: make([]fr.Element, n), Qlogic: make([]fr.Element, n),
		QfixedGroupAdd: make([]fr.Element, n), QvariableGroupAdd: make([]fr.Element, n),
		Qk: make([]fr.Element, n),
	}
	for i, g := range gates {
		v.Qm[i] = g.Qm
		v.Ql[i] = g.Ql
		v.Qr[i] = g.Qr
		v.Qo[i] = g.Qo
		v.Qf[i] = g.Qf
		v.Qc[i] = g.Qc
		v.Qarith[i] = g.Qarith
		v.Qrange[i] = g.Qrange
		v.Qlogic[i] = g.Qlogic
		v.QfixedGroupAdd[i] = g.QfixedGroupAdd
		v.QvariableGroupAdd[i] = g.QvariableGroupAdd
		v.Qk[i] = g.Qk
	}
	return v
}
