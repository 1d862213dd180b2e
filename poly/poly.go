// Package poly implements the dense polynomial arithmetic the IOP engine
// needs on top of gnark-crypto's field and FFT primitives: addition,
// scaling, Horner evaluation, synthetic division by a linear factor
// (X - z), splitting into degree-<n chunks, and coset evaluation for the
// quotient's 4n-sized domain.
package poly

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"golang.org/x/exp/slices"

	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/errs"
)

// Polynomial is a dense coefficient vector, ascending degree: P(X) = sum_i
// Polynomial[i] * X^i.
type Polynomial []fr.Element

// New returns a zero polynomial with size coefficients pre-allocated.
func New(size int) Polynomial {
	return make(Polynomial, size)
}

// Clone returns a deep copy.
func (p Polynomial) Clone() Polynomial {
	out := make(Polynomial, len(p))
	copy(out, p)
	return out
}

// Evaluate computes P(z) by Horner's method.
func (p Polynomial) Evaluate(z fr.Element) fr.Element {
	var acc fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(&acc, &z)
		acc.Add(&acc, &p[i])
	}
	return acc
}

// Add returns p + q, sized to the larger of the two.
func Add(p, q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Polynomial, n)
	copy(out, p)
	for i, c := range q {
		out[i].Add(&out[i], &c)
	}
	return out
}

// AddScaled returns p + scalar*q.
func AddScaled(p Polynomial, scalar fr.Element, q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Polynomial, n)
	copy(out, p)
	for i, c := range q {
		var t fr.Element
		t.Mul(&scalar, &c)
		out[i].Add(&out[i], &t)
	}
	return out
}

// Scale returns scalar*p.
func Scale(scalar fr.Element, p Polynomial) Polynomial {
	out := make(Polynomial, len(p))
	for i, c := range p {
		out[i].Mul(&scalar, &c)
	}
	return out
}

// SubScalar returns p with its constant term reduced by v: P(X) - v.
func SubScalar(p Polynomial, v fr.Element) Polynomial {
	out := p.Clone()
	if len(out) == 0 {
		out = make(Polynomial, 1)
	}
	out[0].Sub(&out[0], &v)
	return out
}

// DivideByLinear computes Q(X) = (P(X) - P(z)) / (X - z) by synthetic
// (Horner-style) division in a single pass, without allocating a
// full-length scratch buffer beyond the output. The division runs on P(X)
// as given; its remainder, which equals P(z), is dropped rather than
// subtracted first, so the returned quotient is the same as that of
// P(X) - P(z). P(z) itself is never returned or checked.
func DivideByLinear(p Polynomial, z fr.Element) Polynomial {
	n := len(p)
	if n == 0 {
		return Polynomial{}
	}
	q := make(Polynomial, n-1)
	var carry fr.Element
	carry.Set(&p[n-1])
	if n >= 2 {
		q[n-2] = carry
	}
	for i := n - 2; i >= 1; i-- {
		carry.Mul(&carry, &z)
		carry.Add(&carry, &p[i])
		q[i-1] = carry
	}
	return q
}

// QuotientOfValueSubtracted computes (P(X) - P(z)) / (X - z) directly,
// evaluating P(z) first. This is the form used by the opening builder: the
// caller does not need to separately subtract the evaluation.
func QuotientOfValueSubtracted(p Polynomial, z fr.Element) Polynomial {
	pz := p.Evaluate(z)
	shifted := SubScalar(p, pz)
	return DivideByLinear(shifted, z)
}

// ToCoeffs interpolates Lagrange-basis evaluations (on the domain's small
// subgroup) into coefficient form via inverse FFT.
func ToCoeffs(d *domain.Domain, evals []fr.Element) Polynomial {
	buf := make(Polynomial, len(evals))
	copy(buf, evals)
	d.Small.FFTInverse(buf, fft.DIF)
	fft.BitReverse(buf)
	return buf
}

// ToLagrange evaluates a coefficient-form polynomial on the domain's small
// subgroup via forward FFT. The polynomial is padded/truncated to the
// domain size.
func ToLagrange(d *domain.Domain, p Polynomial) []fr.Element {
	buf := make(Polynomial, d.Size())
	copy(buf, p)
	fft.BitReverse(buf)
	d.Small.FFT(buf, fft.DIT)
	return buf
}

// EvalOnBigCoset evaluates a coefficient-form polynomial pointwise on the
// 4n-sized coset g*H (g = the big domain's multiplicative generator), the
// set on which the quotient t(X) is constructed because Z_H never
// vanishes there. Coefficients are first scaled by g^i (standard coset-FFT
// trick) so a plain forward FFT over the big domain yields evaluations on
// g*H rather than on H itself.
func EvalOnBigCoset(d *domain.Domain, p Polynomial) []fr.Element {
	size := d.Big.Cardinality
	buf := make(Polynomial, size)
	copy(buf, p)
	scaleByCosetPowers(d, buf, false)
	fft.BitReverse(buf)
	d.Big.FFT(buf, fft.DIT)
	return buf
}

// CoeffsFromBigCoset is the inverse of EvalOnBigCoset: given the pointwise
// evaluations of some polynomial on g*H, recovers its coefficient form.
func CoeffsFromBigCoset(d *domain.Domain, evals []fr.Element) Polynomial {
	buf := make(Polynomial, len(evals))
	copy(buf, evals)
	d.Big.FFTInverse(buf, fft.DIF)
	fft.BitReverse(buf)
	scaleByCosetPowers(d, buf, true)
	return buf
}

// scaleByCosetPowers multiplies buf[i] by g^i (or g^{-i} when inverse is
// true), where g is the big domain's multiplicative generator shifting H
// into g*H.
func scaleByCosetPowers(d *domain.Domain, buf Polynomial, inverse bool) {
	g := d.Big.FrMultiplicativeGen
	if inverse {
		g.Inverse(&g)
	}
	var pow fr.Element
	pow.SetOne()
	for i := range buf {
		buf[i].Mul(&buf[i], &pow)
		pow.Mul(&pow, &g)
	}
}

// Split breaks p into chunks of exactly chunkSize coefficients each,
// zero-padding the final chunk, so that
//
//	p(X) = sum_k X^{k*chunkSize} * chunks[k](X).
//
// Panics, wrapping errs.ErrPolynomialDegreeTooLarge, if p carries a nonzero
// coefficient beyond chunkSize*numChunks: silently dropping it would corrupt
// the quotient identity instead of failing where the mistake was made, and a
// degree overrun here can only be a prover-side bug (an under-sized SRS is
// caught earlier, at preprocessing).
func Split(p Polynomial, chunkSize int, numChunks int) []Polynomial {
	capacity := chunkSize * numChunks
	for i := capacity; i < len(p); i++ {
		if !p[i].IsZero() {
			panic(fmt.Errorf("poly: split: degree %d exceeds capacity %d: %w", len(p)-1, capacity, errs.ErrPolynomialDegreeTooLarge))
		}
	}

	out := make([]Polynomial, numChunks)
	for k := 0; k < numChunks; k++ {
		chunk := make(Polynomial, chunkSize)
		start := k * chunkSize
		for i := 0; i < chunkSize; i++ {
			if start+i < len(p) {
				chunk[i] = p[start+i]
			}
		}
		out[k] = chunk
	}
	return out
}

// Reassemble inverts Split at the polynomial level rather than at a single
// point: it returns t(X) = sum_k X^{k*chunkSize} * chunks[k](X) in full
// coefficient form, which tests use to check Split. Since Split always
// produces fixed-chunkSize chunks,
// reassembly is exactly end-to-end concatenation of the chunk coefficient
// vectors; chunkSize is accepted only so callers can assert the expected
// total length.
func Reassemble(chunks []Polynomial, chunkSize int) Polynomial {
	out := slices.Concat(chunks...)
	if len(out) != chunkSize*len(chunks) {
		panic("poly: reassemble: chunk size mismatch")
	}
	return out
}

// ScalarToBigInt converts a field element to its canonical big.Int
// representation, the form gnark-crypto's ScalarMultiplication expects.
// Kept here rather than inlined at each of its call sites in verifier.go
// since both reconstruct a commitment via the same "scalar -> *big.Int ->
// ScalarMultiplication" step.
func ScalarToBigInt(s fr.Element) *big.Int {
	var bi big.Int
	s.BigInt(&bi)
	return &bi
}

// Recombine reassembles chunks produced by Split at the point z, computing
// sum_k z^{k*chunkSize} * chunks[k](z). Used by tests to check the
// splitting round-trips; the verifier folds chunk commitments itself.
func Recombine(chunks []Polynomial, chunkSize int, z fr.Element) fr.Element {
	var acc, zPow fr.Element
	zPow.SetOne()
	var shift fr.Element
	shift.Exp(z, big.NewInt(int64(chunkSize)))
	for _, c := range chunks {
		v := c.Evaluate(z)
		v.Mul(&v, &zPow)
		acc.Add(&acc, &v)
		zPow.Mul(&zPow, &shift)
	}
	return acc
}
