// Package proof defines the wire format the prover emits and the verifier
// consumes: fifteen G1 commitments plus twenty-four scalar evaluations, in
// the fixed order spec.md §6 lists them, serialized the same
// compressed-point/canonical-scalar way transcript.go already binds them
// into the Fiat-Shamir transcript.
package proof

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/plonkup/core/errs"
)

const (
	numCommitments = 15
	numEvaluations = 24

	g1Size  = bls12381.SizeOfG1AffineCompressed
	frSize  = fr.Bytes
	sizeOf  = numCommitments*g1Size + numEvaluations*frSize
)

// Proof is the fifteen-commitment, twenty-four-evaluation PLONKup proof
// object: everything the verifier needs beyond the verifying key and public
// inputs.
type Proof struct {
	AComm, BComm, CComm, DComm       bls12381.G1Affine
	FComm                            bls12381.G1Affine
	H1Comm, H2Comm                   bls12381.G1Affine
	Z1Comm, Z2Comm                   bls12381.G1Affine
	QLowComm, QMidComm, QHighComm, Q4Comm bls12381.G1Affine
	WZetaComm, WZetaOmegaComm        bls12381.G1Affine

	Evaluations Evaluations
}

// Evaluations holds every scalar opened at zeta_frak or zeta_frak*omega,
// reconstructing the 24-entry set original_source/src/proof_system/
// proof.rs's ProofEvaluations names, with the fourth-wire/PLONKup fields
// this module adds. The public-input evaluation is not carried here: the
// verifier recomputes it from the public inputs it is given directly.
// t(zeta_frak) is not carried here either: the prover evaluates its own
// quotient chunks at zeta_frak and the verifier derives the value from the
// quotient identity t*Z_H = constant + r, matching
// original_source's ProofEvaluations, which has no t_eval field.
type Evaluations struct {
	A, B, C, D          fr.Element
	ANext, BNext, DNext fr.Element

	Sigma1, Sigma2, Sigma3 fr.Element

	Qarith, Qc, Ql, Qr, Qk fr.Element

	PermEval, LookupPermEval fr.Element // z1, z2 at zeta_frak*omega

	F, TPrime, TPrimeNext fr.Element
	H1, H1Next, H2        fr.Element

	REval fr.Element
}

func (p *Proof) commitments() []*bls12381.G1Affine {
	return []*bls12381.G1Affine{
		&p.AComm, &p.BComm, &p.CComm, &p.DComm,
		&p.FComm,
		&p.H1Comm, &p.H2Comm,
		&p.Z1Comm, &p.Z2Comm,
		&p.QLowComm, &p.QMidComm, &p.QHighComm, &p.Q4Comm,
		&p.WZetaComm, &p.WZetaOmegaComm,
	}
}

func (e *Evaluations) scalars() []*fr.Element {
	return []*fr.Element{
		&e.A, &e.B, &e.C, &e.D,
		&e.ANext, &e.BNext, &e.DNext,
		&e.Sigma1, &e.Sigma2, &e.Sigma3,
		&e.Qarith, &e.Qc, &e.Ql, &e.Qr, &e.Qk,
		&e.PermEval, &e.LookupPermEval,
		&e.F, &e.TPrime, &e.TPrimeNext,
		&e.H1, &e.H1Next, &e.H2,
		&e.REval,
	}
}

// Size returns the fixed on-wire byte length of a proof.
func Size() int { return sizeOf }

// ToBytes serializes the proof as fifteen compressed G1 points followed by
// twenty-four canonical scalars, in declaration order.
func (p *Proof) ToBytes() []byte {
	out := make([]byte, 0, sizeOf)
	for _, c := range p.commitments() {
		b := c.Bytes()
		out = append(out, b[:]...)
	}
	for _, s := range p.Evaluations.scalars() {
		b := s.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// FromBytes deserializes a proof, rejecting anything whose length is wrong,
// whose encoded points fail the on-curve/subgroup check, or whose scalars
// are not canonical field encodings.
func FromBytes(data []byte) (*Proof, error) {
	if len(data) != sizeOf {
		return nil, fmt.Errorf("proof: decode: length %d, want %d: %w", len(data), sizeOf, errs.ErrProofBytesMalformed)
	}

	p := &Proof{}
	offset := 0
	for _, dst := range p.commitments() {
		var buf [bls12381.SizeOfG1AffineCompressed]byte
		copy(buf[:], data[offset:offset+g1Size])
		if _, err := dst.SetBytes(buf[:]); err != nil {
			return nil, fmt.Errorf("proof: decode commitment: %w: %w", err, errs.ErrProofBytesMalformed)
		}
		if !dst.IsInSubGroup() {
			return nil, fmt.Errorf("proof: decode commitment: point outside prime-order subgroup: %w", errs.ErrProofBytesMalformed)
		}
		offset += g1Size
	}

	for _, dst := range p.Evaluations.scalars() {
		var buf [fr.Bytes]byte
		copy(buf[:], data[offset:offset+frSize])
		if err := dst.SetBytesCanonical(buf[:]); err != nil {
			return nil, fmt.Errorf("proof: decode evaluation: %w: %w", err, errs.ErrProofBytesMalformed)
		}
		offset += frSize
	}

	return p, nil
}
