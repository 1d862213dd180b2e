// Package lookup implements the PLONKup table-lookup argument: compressing
// the four table columns into one, building the query polynomial from the
// q_k-selected wire slots, sorting the concatenation into h_1/h_2, and the
// lookup grand product z_2.
package lookup

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// CompressTable folds the four lookup-table columns into a single vector
// t' = t1 + zeta*t2 + zeta^2*t3 + zeta^3*t4, evaluated row-wise.
func CompressTable(t1, t2, t3, t4 []fr.Element, zeta fr.Element) []fr.Element {
	n := len(t1)
	out := make([]fr.Element, n)
	var z2, z3 fr.Element
	z2.Mul(&zeta, &zeta)
	z3.Mul(&z2, &zeta)
	for i := 0; i < n; i++ {
		var acc fr.Element
		acc.Mul(&zeta, &t2[i])
		acc.Add(&acc, &t1[i])
		var t3term fr.Element
		t3term.Mul(&z2, &t3[i])
		acc.Add(&acc, &t3term)
		var t4term fr.Element
		t4term.Mul(&z3, &t4[i])
		acc.Add(&acc, &t4term)
		out[i] = acc
	}
	return out
}

// BuildQuery constructs the compressed query vector f: at rows where q_k
// is non-zero, f compresses the four wires with the same zeta folding used
// for the table; at every other row, f copies the already-computed
// compressed table value tPrime so the query contributes nothing new to
// the multiset and the lookup argument is trivially satisfied there.
func BuildQuery(qk, a, b, c, d, tPrime []fr.Element, zeta fr.Element) []fr.Element {
	n := len(qk)
	active := activeQueryRows(qk)
	out := make([]fr.Element, n)
	var z2, z3 fr.Element
	z2.Mul(&zeta, &zeta)
	z3.Mul(&z2, &zeta)
	for i := 0; i < n; i++ {
		if !active.Test(uint(i)) {
			out[i] = tPrime[i]
			continue
		}
		var acc fr.Element
		acc.Mul(&zeta, &b[i])
		acc.Add(&acc, &a[i])
		var ct, dt fr.Element
		ct.Mul(&z2, &c[i])
		acc.Add(&acc, &ct)
		dt.Mul(&z3, &d[i])
		acc.Add(&acc, &dt)
		out[i] = acc
	}
	return out
}

// activeQueryRows marks which rows have the lookup selector q_k engaged, so
// BuildQuery's hot loop tests a packed bit rather than re-examining a field
// element's internal limbs on every row.
func activeQueryRows(qk []fr.Element) *bitset.BitSet {
	mask := bitset.New(uint(len(qk)))
	for i, v := range qk {
		if !v.IsZero() {
			mask.Set(uint(i))
		}
	}
	return mask
}

// SortAndSplit concatenates f and t', sorts the 2n-length result into
// canonical ascending order (multiset equality is the only thing that
// matters, so any total order works — field-element Cmp gives a
// deterministic one), and splits it into the two overlapping halves the
// PLONKup grand product needs: h_1 takes the even-indexed entries, h_2 the
// odd-indexed ones, and the very first entry of h_2 is overwritten with
// the last entry of h_1 so the two halves share their boundary value, the
// way the grand-product recurrence requires.
func SortAndSplit(f, tPrime []fr.Element) (h1, h2 []fr.Element) {
	n := len(f)
	s := make([]fr.Element, 0, 2*n)
	s = append(s, f...)
	s = append(s, tPrime...)
	sort.Slice(s, func(i, j int) bool { return s[i].Cmp(&s[j]) < 0 })

	h1 = make([]fr.Element, n)
	h2 = make([]fr.Element, n)
	for i := 0; i < n; i++ {
		h1[i] = s[2*i]
		h2[i] = s[2*i+1]
	}
	h2[0] = h1[n-1]
	return h1, h2
}

// GrandProduct computes the Lagrange-basis evaluations of z_2, the
// PLONKup accumulator polynomial:
//
//	z_2(omega^0) = 1
//	z_2(omega^{i+1}) = z_2(omega^i) *
//	    (1+delta)*(epsilon+f(i)) * (epsilon(1+delta)+t'(i)+delta*t'(i+1))
//	    / [ (epsilon(1+delta)+h1(i)+delta*h2(i)) * (epsilon(1+delta)+delta*h1(i+1)) ]
//
// Indices wrap: t'(n), h1(n) refer to row 0 (the domain is cyclic).
func GrandProduct(f, tPrime, h1, h2 []fr.Element, delta, epsilon fr.Element) []fr.Element {
	n := len(f)

	var onePlusDelta, epsOnePlusDelta, one fr.Element
	one.SetOne()
	onePlusDelta.Add(&one, &delta)
	epsOnePlusDelta.Mul(&epsilon, &onePlusDelta)

	num := make([]fr.Element, n)
	den := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		next := (i + 1) % n

		var a, b fr.Element
		a.Add(&epsilon, &f[i])
		a.Mul(&a, &onePlusDelta)
		b.Mul(&delta, &tPrime[next])
		b.Add(&b, &tPrime[i])
		b.Add(&b, &epsOnePlusDelta)
		num[i].Mul(&a, &b)

		var f0, f1 fr.Element
		f0.Mul(&delta, &h2[i])
		f0.Add(&f0, &h1[i])
		f0.Add(&f0, &epsOnePlusDelta)
		f1.Mul(&delta, &h1[next])
		f1.Add(&f1, &epsOnePlusDelta)
		den[i].Mul(&f0, &f1)
	}

	den = fr.BatchInvert(den)

	z := make([]fr.Element, n)
	z[0].SetOne()
	for i := 0; i+1 < n; i++ {
		var ratio fr.Element
		ratio.Mul(&num[i], &den[i])
		z[i+1].Mul(&z[i], &ratio)
	}
	return z
}
