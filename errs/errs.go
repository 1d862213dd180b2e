// Package errs defines the error taxonomy shared by the composer, prover,
// and verifier.
//
// Composer/preprocessor errors are recoverable: the caller fed in a bad
// circuit and can fix it. Prover arithmetic errors indicate an invariant
// was violated somewhere upstream (e.g. a division by zero on the vanishing
// polynomial) and are fatal to the proving session. Verifier errors are
// never distinguished by cause beyond the single ProofVerificationError
// sentinel: the accept/reject boolean is the only thing that may leak to a
// caller.
package errs

import "errors"

// Kind identifies which part of the taxonomy an error belongs to, for
// callers that want to branch on category rather than on the sentinel
// itself (e.g. to decide whether a retry with a larger SRS is sensible).
type Kind int

const (
	// KindComposer covers gate/witness construction mistakes.
	KindComposer Kind = iota
	// KindPreprocess covers circuit-to-key compilation failures.
	KindPreprocess
	// KindProver covers internal prover faults (programmer errors).
	KindProver
	// KindProof covers malformed proof bytes.
	KindProof
	// KindVerifier covers the single boolean verification outcome.
	KindVerifier
)

// Sentinel errors. Wrap with fmt.Errorf("plonk: %s: %w", detail, Err...) at
// the call site; compare with errors.Is.
var (
	// ErrInvalidGateCombination is returned by the composer when more than
	// one of {q_range, q_logic, q_fixed_group_add, q_variable_group_add} is
	// non-zero on the same gate.
	ErrInvalidGateCombination = errors.New("plonk: invalid gate combination: at most one exclusive gadget selector may be set")

	// ErrSrsTooSmall is returned by preprocessing when the supplied SRS does
	// not support enough powers of tau for the padded circuit size.
	ErrSrsTooSmall = errors.New("plonk: srs too small for circuit size")

	// ErrPolynomialDegreeTooLarge is an internal invariant violation: a
	// division or evaluation referenced a coefficient index past the
	// polynomial's allocated degree.
	ErrPolynomialDegreeTooLarge = errors.New("plonk: polynomial degree too large")

	// ErrInvalidPublicInputIndex is returned when a public input is bound
	// to a gate index that does not exist in the circuit.
	ErrInvalidPublicInputIndex = errors.New("plonk: public input bound to nonexistent gate index")

	// ErrProofBytesMalformed is returned by deserialisation on wrong
	// length, bad field encoding, or a curve point outside the correct
	// prime-order subgroup.
	ErrProofBytesMalformed = errors.New("plonk: proof bytes malformed")

	// ErrProofVerificationError is the single outcome surfaced to callers
	// of Verify when the pairing check rejects. Internal reasons for
	// rejection are never distinguished beyond this sentinel.
	ErrProofVerificationError = errors.New("plonk: proof verification failed")

	// ErrBatchCheckFailed is returned internally by the KZG batch opening
	// check; Verify folds it into ErrProofVerificationError before
	// returning to its caller.
	ErrBatchCheckFailed = errors.New("plonk: kzg batch check failed")
)
