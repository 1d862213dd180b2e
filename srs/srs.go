// Package srs loads and validates the structured reference string the
// trusted-setup ceremony produces. Generating the SRS is explicitly out of
// scope (spec.md §1 Non-goals): this package only accepts one as input and
// checks it is internally consistent.
package srs

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/kzg"
)

// SRS is the trusted-setup material: {[tau^i]_1 : 0 <= i <= D} plus
// [1]_2, [tau]_2, wrapped around gnark-crypto's kzg.SRS so both the
// proving-key (G1 powers) and verifying-key (G2 side) views are available
// from one loaded object.
type SRS struct {
	Prover   kzg.ProvingKey
	Verifier kzg.VerifyingKey
}

// Degree returns D, the largest power of tau committed in G1.
func (s *SRS) Degree() int {
	return len(s.Prover.G1) - 1
}

// Validate checks e([tau]_1, [1]_2) == e([1]_1, [tau]_2), the one
// consistency check spec.md §6 requires at load time. G1/G2 subgroup
// membership of every stored power is assumed to already hold by
// construction of kzg.ProvingKey/VerifyingKey (gnark-crypto's loader
// performs that check); this function only checks the tau binding between
// the G1 and G2 halves.
func (s *SRS) Validate() error {
	lhs, err := bls12381.Pair([]bls12381.G1Affine{s.Prover.G1[1]}, []bls12381.G2Affine{s.Verifier.G2[0]})
	if err != nil {
		return fmt.Errorf("plonk: srs validation pairing failed: %w", err)
	}
	rhs, err := bls12381.Pair([]bls12381.G1Affine{s.Verifier.G1}, []bls12381.G2Affine{s.Verifier.G2[1]})
	if err != nil {
		return fmt.Errorf("plonk: srs validation pairing failed: %w", err)
	}
	if !lhs.Equal(&rhs) {
		return fmt.Errorf("plonk: srs validation failed: e([tau]1,[1]2) != e([1]1,[tau]2)")
	}
	return nil
}

// New wraps an already-materialized kzg.SRS (however it was produced —
// ceremony transcript, test toy setup, etc.) into the shape the rest of
// this module expects.
func New(pk kzg.ProvingKey, vk kzg.VerifyingKey) *SRS {
	return &SRS{Prover: pk, Verifier: vk}
}
