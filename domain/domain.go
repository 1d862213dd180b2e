// Package domain wraps gnark-crypto's fr/fft evaluation domain with the
// extras the PLONK IOP needs on top of plain FFT/iFFT: a 4n-sized coset for
// quotient evaluation, the vanishing polynomial Z_H(X) = X^n - 1, and
// barycentric evaluation of a sparse (mostly-zero) vector such as the
// public input assignment.
package domain

import (
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

// Domain is the multiplicative subgroup of size n = 2^k used to interpolate
// wire/selector/permutation/lookup vectors, plus the 4n-sized coset used to
// evaluate the quotient polynomial pointwise.
type Domain struct {
	// Small is the size-n domain, generator omega.
	Small *fft.Domain
	// Big is the size-4n domain used to evaluate t(X) on a coset where
	// Z_H is never zero, so division by Z_H can be done pointwise.
	Big *fft.Domain

	n    uint64
	nInv fr.Element
}

// CosetFactor is the number of quotient-degree multiples the big domain
// must support: t(X) has degree < 4n, so the coset must have size >= 4n.
const CosetFactor = 4

// New builds a Domain whose small subgroup has cardinality n, the next
// power of two >= size. Panics if size is 0; that indicates a composer bug
// upstream (the composer pads even an empty circuit to at least one gate).
func New(size uint64) *Domain {
	if size == 0 {
		panic("domain: size must be non-zero")
	}
	n := NextPowerOfTwo(size)

	small := fft.NewDomain(n)
	big := fft.NewDomain(n * CosetFactor)

	d := &Domain{Small: small, Big: big, n: n}
	d.nInv.SetUint64(n).Inverse(&d.nInv)
	return d
}

// Size returns n, the small domain's cardinality.
func (d *Domain) Size() uint64 { return d.n }

// SizeInv returns n^{-1} in Fr.
func (d *Domain) SizeInv() fr.Element { return d.nInv }

// Generator returns omega, the small domain's generator.
func (d *Domain) Generator() fr.Element { return d.Small.Generator }

// NextPowerOfTwo returns the smallest power of two >= v. A circuit whose
// gate count exactly equals a power of two incurs zero padding; one gate
// past a power of two doubles n, matching the boundary behavior in spec §8.
// NextPowerOfTwo(0) is 1. Generic over any unsigned integer type; the
// composer converts its int gate count to uint64 before calling it.
func NextPowerOfTwo[T constraints.Unsigned](v T) T {
	if v == 0 {
		return 1
	}
	if v&(v-1) == 0 {
		return v
	}
	return T(1) << bits.Len64(uint64(v))
}

// VanishingEval evaluates Z_H(X) = X^n - 1 at the point z.
func (d *Domain) VanishingEval(z fr.Element) fr.Element {
	var zn, one fr.Element
	one.SetOne()
	zn.Exp(z, new(big.Int).SetUint64(d.n))
	zn.Sub(&zn, &one)
	return zn
}

// FirstLagrangeEval computes L_1(z) = Z_H(z) / (n * (z - 1)), the evaluation
// of the first Lagrange basis polynomial (the one that is 1 at omega^0 and 0
// elsewhere on the domain) at an arbitrary point z. At z = 1, where the
// formula is 0/0, it returns 1.
func (d *Domain) FirstLagrangeEval(z, zHEval fr.Element) fr.Element {
	var one, denom, nFr fr.Element
	one.SetOne()
	if z.Equal(&one) {
		return one
	}
	nFr.SetUint64(d.n)
	denom.Sub(&z, &one)
	denom.Mul(&denom, &nFr)
	denom.Inverse(&denom)
	var out fr.Element
	out.Mul(&zHEval, &denom)
	return out
}

// BarycentricEval evaluates, at point z, the unique degree-<n polynomial
// whose values on the domain are given by evals (indices beyond len(evals)
// are treated as zero — this is how public-input evaluation works: most
// gates carry no public input). Only the non-zero entries are summed,
// matching the parallel-over-nonzero-entries model in spec §5: the vector
// is split into fixed-size chunks, each chunk's partial sum computed on its
// own goroutine, and the partials summed one after another in chunk order
// so the result never depends on goroutine scheduling. At a domain point
// z = omega^i the result is evals[i] (zero when i >= len(evals)).
func (d *Domain) BarycentricEval(evals []fr.Element, z fr.Element) fr.Element {
	var acc fr.Element
	if len(evals) == 0 {
		return acc
	}

	var zn, one, numerator fr.Element
	one.SetOne()
	zn.Exp(z, new(big.Int).SetUint64(d.n))
	numerator.Sub(&zn, &one)
	numerator.Mul(&numerator, &d.nInv)

	w := d.Generator()

	if numerator.IsZero() {
		var pt fr.Element
		pt.SetOne()
		for i := 0; i < len(evals) && uint64(i) < d.n; i++ {
			if pt.Equal(&z) {
				return evals[i]
			}
			pt.Mul(&pt, &w)
		}
		return acc
	}

	const chunkSize = 1024
	numChunks := (len(evals) + chunkSize - 1) / chunkSize
	partials := make([]fr.Element, numChunks)

	var g errgroup.Group
	for c := 0; c < numChunks; c++ {
		c := c
		g.Go(func() error {
			start := c * chunkSize
			end := start + chunkSize
			if end > len(evals) {
				end = len(evals)
			}

			var wPow fr.Element
			wPow.Exp(w, big.NewInt(int64(start)))

			var sum fr.Element
			for i := start; i < end; i++ {
				e := evals[i]
				if !e.IsZero() {
					var denom, term fr.Element
					denom.Sub(&z, &wPow)
					denom.Inverse(&denom)
					term.Mul(&numerator, &wPow)
					term.Mul(&term, &denom)
					term.Mul(&term, &e)
					sum.Add(&sum, &term)
				}
				wPow.Mul(&wPow, &w)
			}
			partials[c] = sum
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range partials {
		acc.Add(&acc, &p)
	}
	return acc
}
