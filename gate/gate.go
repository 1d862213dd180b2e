// Package gate defines the twelve-selector, four-wire PLONK gate that the
// composer accumulates one per constraint.
package gate

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/plonkup/core/errs"
	"github.com/plonkup/core/witness"
)

// Wire identifies one of the four wire slots a gate carries.
type Wire int

const (
	WireA Wire = iota
	WireB
	WireC
	WireD
	NumWires
)

// Selectors holds the twelve per-gate selector scalars. q_k is the lookup
// selector: spec.md's prose lists eleven selectors by name and separately
// states the tuple has twelve entries; q_k is the implied twelfth, named
// explicitly everywhere the lookup argument and ProverKey/VerifierKey are
// described (see DESIGN.md).
type Selectors struct {
	Qm                fr.Element
	Ql                fr.Element
	Qr                fr.Element
	Qo                fr.Element
	Qf                fr.Element
	Qc                fr.Element
	Qarith            fr.Element
	Qrange            fr.Element
	Qlogic            fr.Element
	QfixedGroupAdd    fr.Element
	QvariableGroupAdd fr.Element
	Qk                fr.Element
}

// Gate is one row of the constraint system: twelve selectors plus the four
// wire witness handles they act on.
type Gate struct {
	Selectors
	A, B, C, D witness.Witness
}

// Spec is the caller-facing gate description passed to Composer.AppendGate.
// It mirrors Gate exactly; the split exists so call sites can build a gate
// with named fields without importing the witness package's internal
// wiring details.
type Spec struct {
	Qm, Ql, Qr, Qo, Qf, Qc                       fr.Element
	Qarith, Qrange, Qlogic                       fr.Element
	QfixedGroupAdd, QvariableGroupAdd            fr.Element
	Qk                                           fr.Element
	A, B, C, D                                   witness.Witness
}

// Validate enforces the one cross-selector invariant spec.md calls out: at
// most one of {q_range, q_logic, q_fixed_group_add, q_variable_group_add}
// may be non-zero on a single gate, because exactly one non-arithmetic
// gadget may be active per gate.
func (s Spec) Validate() error {
	active := 0
	for _, sel := range []fr.Element{s.Qrange, s.Qlogic, s.QfixedGroupAdd, s.QvariableGroupAdd} {
		if !sel.IsZero() {
			active++
		}
	}
	if active > 1 {
		return errs.ErrInvalidGateCombination
	}
	return nil
}

// ToGate converts a validated Spec into the internal Gate representation.
func (s Spec) ToGate() Gate {
	return Gate{
		Selectors: Selectors{
			Qm: s.Qm, Ql: s.Ql, Qr: s.Qr, Qo: s.Qo, Qf: s.Qf, Qc: s.Qc,
			Qarith: s.Qarith, Qrange: s.Qrange, Qlogic: s.Qlogic,
			QfixedGroupAdd: s.QfixedGroupAdd, QvariableGroupAdd: s.QvariableGroupAdd,
			Qk: s.Qk,
		},
		A: s.A, B: s.B, C: s.C, D: s.D,
	}
}

// Zero returns the all-zero gate used to pad the domain up to a power of
// two: every selector is zero and all four wires reference the Zero
// witness, so the gate constraint 0=0 is trivially satisfied.
func Zero() Gate {
	return Gate{A: witness.Zero, B: witness.Zero, C: witness.Zero, D: witness.Zero}
}

// Wires returns the gate's four wire witnesses in (a, b, c, d) order,
// indexed by Wire.
func (g Gate) Wires() [NumWires]witness.Witness {
	return [NumWires]witness.Witness{g.A, g.B, g.C, g.D}
}
