// Package cdf implements the CDF_OUTPUT debugger side channel, modeled on
// original_source/src/debugger.rs's Debugger: every witness append and
// every appended gate is recorded, and the accumulated trace is written out
// once proving finishes, but only if the CDF_OUTPUT environment variable
// names a destination file. A Recorder with no CDF_OUTPUT set costs a few
// no-op method calls; it never feeds back into proving or verification, and
// its absence never changes either outcome.
package cdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bitset"
	compress "github.com/consensys/compress/lzss"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/fxamacker/cbor/v2"
	"github.com/icza/bitio"
	"github.com/ronanh/intcomp"

	"github.com/plonkup/core/gate"
)

// witnessRecord is one WitnessAppended event, mirroring debugger.rs's
// (EncodableSource, Witness, BlsScalar) tuple minus the backtrace-resolved
// call site, which has no equivalent in a Go build without debug symbols
// parsed at runtime.
type witnessRecord struct {
	Index uint32 `cbor:"i"`
	Value []byte `cbor:"v"`
}

// constraintRecord is one ConstraintAppended event: the gate's twelve
// selectors, its four wire witness indices, and whether the arithmetic
// identity it encodes evaluates to zero given the witness values known at
// record time.
type constraintRecord struct {
	Index       int      `cbor:"i"`
	Selectors   [12][]byte `cbor:"s"`
	A           uint32   `cbor:"a"`
	B           uint32   `cbor:"b"`
	C           uint32   `cbor:"c"`
	D           uint32   `cbor:"d"`
	Satisfied   bool     `cbor:"ok"`
	ActiveGadget bool    `cbor:"g"`
}

// Trace is the full decoded structure written to CDF_OUTPUT: every recorded
// witness, every recorded constraint, and a run-length/delta-compressed
// view of which witness indices were ever wired into a constraint (the
// detail original_source's Encoder keeps to let a debugger UI jump straight
// to "where is witness N used").
type Trace struct {
	Witnesses         []witnessRecord    `cbor:"witnesses"`
	Constraints       []constraintRecord `cbor:"constraints"`
	WiredWitnessIndex []uint32           `cbor:"wired"`
}

// Recorder accumulates witness and constraint events in memory. Call
// RecordWitness/RecordConstraint as the composer builds up the circuit (or
// replay them from the composer's own bookkeeping just before proving), then
// Finish once at the end of Prove.
type Recorder struct {
	enabled bool
	path    string

	witnesses   []witnessRecord
	constraints []constraintRecord
	activeMask  *bitset.BitSet
	wired       []uint32
}

// New returns a Recorder, active only if CDF_OUTPUT is set in the
// environment. An inactive Recorder still accepts every call below; it
// simply never allocates or writes anything.
func New() *Recorder {
	path, ok := os.LookupEnv("CDF_OUTPUT")
	return &Recorder{enabled: ok, path: path, activeMask: bitset.New(0)}
}

// RecordWitness appends a WitnessAppended event.
func (r *Recorder) RecordWitness(index uint32, v fr.Element) {
	if r == nil || !r.enabled {
		return
	}
	b := v.Bytes()
	r.witnesses = append(r.witnesses, witnessRecord{Index: index, Value: b[:]})
}

// RecordConstraint appends a ConstraintAppended event: idx is the gate's
// position in the padded circuit, g its selectors and wire handles, and
// values the four wire witnesses' bound field values (needed to compute the
// recorded satisfied flag; the prover already has these on hand when
// building the wire assignment vectors).
func (r *Recorder) RecordConstraint(idx int, g gate.Gate, values [4]fr.Element, pi fr.Element) {
	if r == nil || !r.enabled {
		return
	}

	var evaluation fr.Element
	var t fr.Element
	t.Mul(&g.Qm, &values[0])
	t.Mul(&t, &values[1])
	evaluation.Add(&evaluation, &t)
	t.Mul(&g.Ql, &values[0])
	evaluation.Add(&evaluation, &t)
	t.Mul(&g.Qr, &values[1])
	evaluation.Add(&evaluation, &t)
	t.Mul(&g.Qo, &values[2])
	evaluation.Add(&evaluation, &t)
	t.Mul(&g.Qf, &values[3])
	evaluation.Add(&evaluation, &t)
	evaluation.Add(&evaluation, &g.Qc)
	evaluation.Add(&evaluation, &pi)

	active := !g.Qrange.IsZero() || !g.Qlogic.IsZero() || !g.QfixedGroupAdd.IsZero() || !g.QvariableGroupAdd.IsZero()
	if active {
		r.activeMask.Set(uint(idx))
	}

	sel := [12]fr.Element{g.Qm, g.Ql, g.Qr, g.Qo, g.Qf, g.Qc, g.Qarith, g.Qrange, g.Qlogic, g.QfixedGroupAdd, g.QvariableGroupAdd, g.Qk}
	var selBytes [12][]byte
	for i, s := range sel {
		b := s.Bytes()
		selBytes[i] = append([]byte(nil), b[:]...)
	}

	r.constraints = append(r.constraints, constraintRecord{
		Index:        idx,
		Selectors:    selBytes,
		A:            uint32(g.A), B: uint32(g.B), C: uint32(g.C), D: uint32(g.D),
		Satisfied:    evaluation.IsZero(),
		ActiveGadget: active,
	})
	r.wired = append(r.wired, uint32(g.A), uint32(g.B), uint32(g.C), uint32(g.D))
}

// Finish packs the accumulated trace and writes it to CDF_OUTPUT. Called
// exactly once, after proving completes; a no-op if the Recorder was never
// enabled.
func (r *Recorder) Finish() error {
	if r == nil || !r.enabled {
		return nil
	}

	wired := intcomp.CompressUint32(append([]uint32(nil), r.wired...), nil)

	var gadgetBuf bytes.Buffer
	bw := bitio.NewWriter(&gadgetBuf)
	for i := 0; i < len(r.constraints); i++ {
		if err := bw.WriteBool(r.activeMask.Test(uint(i))); err != nil {
			return fmt.Errorf("cdf: pack active-gadget bits: %w", err)
		}
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("cdf: pack active-gadget bits: %w", err)
	}

	trace := Trace{
		Witnesses:         r.witnesses,
		Constraints:       r.constraints,
		WiredWitnessIndex: wired,
	}

	encoded, err := cbor.Marshal(trace)
	if err != nil {
		return fmt.Errorf("cdf: encode trace: %w", err)
	}

	compressor, err := compress.NewCompressor(gadgetBuf.Bytes(), compress.BestCompression)
	if err != nil {
		return fmt.Errorf("cdf: init gadget-mask compressor: %w", err)
	}
	gadgetMask, err := compressor.Compress(gadgetBuf.Bytes())
	if err != nil {
		return fmt.Errorf("cdf: compress gadget mask: %w", err)
	}

	out := make([]byte, 0, len(encoded)+len(gadgetMask)+8)
	var lenBuf [4]byte
	putUint32(lenBuf[:], uint32(len(encoded)))
	out = append(out, lenBuf[:]...)
	out = append(out, encoded...)
	putUint32(lenBuf[:], uint32(len(gadgetMask)))
	out = append(out, lenBuf[:]...)
	out = append(out, gadgetMask...)

	return os.WriteFile(r.path, out, 0o644)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
