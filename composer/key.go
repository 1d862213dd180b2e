package composer

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/poly"
)

// ProverKey holds everything the prover needs to turn a witness assignment
// into a Proof: the twelve selector polynomials and four permutation
// polynomials, each in both coefficient and 4n-coset-evaluation form, the
// four lookup table column polynomials in the same dual form, and the
// domain constants n, omega, n^{-1}.
type ProverKey struct {
	Domain *domain.Domain

	Qm, Ql, Qr, Qo, Qf, Qc             poly.Dual
	Qarith, Qrange, Qlogic             poly.Dual
	QfixedGroupAdd, QvariableGroupAdd poly.Dual
	Qk                                 poly.Dual

	Sigma1, Sigma2, Sigma3, Sigma4 poly.Dual
	T1, T2, T3, T4                 poly.Dual

	// PermutationCosetScalars are k_0=1, k_1, k_2, k_3.
	PermutationCosetScalars [4]fr.Element

	// Verifier is embedded so the prover can hand it straight back out
	// without the caller needing to keep its own copy.
	Verifier *VerifierKey
}

// VerifierKey holds KZG commitments to everything ProverKey carries in
// coefficient form, plus the domain size and generator.
type VerifierKey struct {
	N     uint64
	Omega fr.Element

	Qm, Ql, Qr, Qo, Qf, Qc             bls12381.G1Affine
	Qarith, Qrange, Qlogic             bls12381.G1Affine
	QfixedGroupAdd, QvariableGroupAdd bls12381.G1Affine
	Qk                                 bls12381.G1Affine

	Sigma1, Sigma2, Sigma3, Sigma4 bls12381.G1Affine
	T1, T2, T3, T4                 bls12381.G1Affine

	PermutationCosetScalars [4]fr.Element
}
