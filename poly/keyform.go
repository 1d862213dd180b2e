package poly

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/plonkup/core/domain"
)

// Dual bundles a polynomial's coefficient form with its evaluations on the
// 4n-sized coset used to build the quotient. ProverKey stores each of its
// twelve selectors, four permutations, and four lookup-table columns as a
// Dual, exactly as spec.md §3 requires ("the coefficient form of the
// polynomial AND its evaluations on the coset of size 4n").
type Dual struct {
	Coeffs     Polynomial
	CosetEvals []fr.Element
}

// NewDual builds a Dual from Lagrange-basis evaluations on the small
// domain: interpolates to coefficient form, then evaluates that polynomial
// on the big coset.
func NewDual(d *domain.Domain, lagrangeEvals []fr.Element) Dual {
	coeffs := ToCoeffs(d, lagrangeEvals)
	return Dual{
		Coeffs:     coeffs,
		CosetEvals: EvalOnBigCoset(d, coeffs),
	}
}
