// Package permutation builds the PLONK copy-constraint permutation
// sigma_1..sigma_4 from a circuit's wire-to-witness map, and the grand
// product polynomial z_1 that collapses it into a single check.
package permutation

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/witness"
)

// NumWires is the number of wire slots per gate (a, b, c, d).
const NumWires = 4

// CosetScalars returns k_0=1, k_1, k_2, k_3 such that k_j*H for j=0..3 are
// pairwise disjoint cosets of the domain's small subgroup H. Following the
// teacher's (gnark's) two-wire-coset scheme, k_j = g^j where g is the
// domain's quadratic-nonresidue multiplicative generator, generalized from
// two extra cosets to three.
func CosetScalars(d *domain.Domain) [NumWires]fr.Element {
	g := d.Small.FrMultiplicativeGen
	var out [NumWires]fr.Element
	out[0].SetOne()
	for j := 1; j < NumWires; j++ {
		out[j].Mul(&out[j-1], &g)
	}
	return out
}

// Sigmas is the Lagrange-basis (evaluations-on-H) form of sigma_1..sigma_4,
// each of length n.
type Sigmas struct {
	S1, S2, S3, S4 []fr.Element
}

// Build constructs sigma_1..sigma_4 from the per-gate wire-to-witness
// assignment. wireOf(wire, gateIndex) must return the witness occupying
// that slot for every gateIndex in [0, n); n is the (already padded)
// domain size.
//
// The permutation is the maximal-length-cycle decomposition of the
// "same witness" equivalence relation over the 4n wire slots, encoded as
// in the teacher's buildPermutation: a slot holding witness w points to
// the slot where w was last seen, and the chain is closed into a cycle
// once every occurrence has been visited. Ties (multiple slots first
// introducing the same witness) are broken by (wire, gate) lexicographic
// order, which is exactly the iteration order below.
func Build(d *domain.Domain, nbVariables int, wireOf func(wire int, gate uint64) witness.Witness) Sigmas {
	n := d.Size()
	total := NumWires * int(n)

	lro := make([]int, total)
	for wire := 0; wire < NumWires; wire++ {
		for gateIdx := uint64(0); gateIdx < n; gateIdx++ {
			lro[uint64(wire)*n+gateIdx] = int(wireOf(wire, gateIdx))
		}
	}

	cycle := make([]int64, nbVariables)
	for i := range cycle {
		cycle[i] = -1
	}
	perm := make([]int64, total)
	for i := range perm {
		perm[i] = -1
	}
	for i := 0; i < total; i++ {
		if cycle[lro[i]] != -1 {
			perm[i] = cycle[lro[i]]
		}
		cycle[lro[i]] = int64(i)
	}
	for i := 0; i < total; i++ {
		if perm[i] == -1 {
			perm[i] = cycle[lro[i]]
		}
	}

	support := buildSupport(d)

	out := Sigmas{
		S1: make([]fr.Element, n),
		S2: make([]fr.Element, n),
		S3: make([]fr.Element, n),
		S4: make([]fr.Element, n),
	}
	dst := [NumWires][]fr.Element{out.S1, out.S2, out.S3, out.S4}
	for wire := 0; wire < NumWires; wire++ {
		for i := uint64(0); i < n; i++ {
			dst[wire][i] = support[perm[uint64(wire)*n+i]]
		}
	}
	return out
}

// buildSupport returns the length-4n vector [k_0*H, k_1*H, k_2*H, k_3*H]
// concatenated, the set the permutation acts on before being split back
// into four length-n pieces.
func buildSupport(d *domain.Domain) []fr.Element {
	n := d.Size()
	k := CosetScalars(d)
	w := d.Generator()

	support := make([]fr.Element, NumWires*n)
	for wire := 0; wire < NumWires; wire++ {
		base := uint64(wire) * n
		support[base] = k[wire]
		for i := uint64(1); i < n; i++ {
			support[base+i].Mul(&support[base+i-1], &w)
		}
	}
	return support
}

// GrandProduct computes the Lagrange-basis evaluations of z_1, the PLONK
// permutation accumulator:
//
//	z_1(omega^0)   = 1
//	z_1(omega^{i+1}) = z_1(omega^i) * prod_{wire} (w_wire(i) + beta*k_wire*omega^i + gamma)
//	                                / (w_wire(i) + beta*sigma_wire(i) + gamma)
//
// where w_wire(i) is the wire's witness value at gate i. wireValues must be
// [4][n]fr.Element (a, b, c, d rows); sigmas is the Build output.
func GrandProduct(d *domain.Domain, wireValues [NumWires][]fr.Element, sigmas Sigmas, beta, gamma fr.Element) []fr.Element {
	n := d.Size()
	k := CosetScalars(d)
	w := d.Generator()

	sigmaRows := [NumWires][]fr.Element{sigmas.S1, sigmas.S2, sigmas.S3, sigmas.S4}

	num := make([]fr.Element, n)
	den := make([]fr.Element, n)
	var omegaPow fr.Element
	omegaPow.SetOne()
	for i := uint64(0); i < n; i++ {
		num[i].SetOne()
		den[i].SetOne()
		for wire := 0; wire < NumWires; wire++ {
			var kw, nTerm, dTerm fr.Element
			kw.Mul(&k[wire], &omegaPow)
			nTerm.Mul(&beta, &kw)
			nTerm.Add(&nTerm, &wireValues[wire][i])
			nTerm.Add(&nTerm, &gamma)
			num[i].Mul(&num[i], &nTerm)

			dTerm.Mul(&beta, &sigmaRows[wire][i])
			dTerm.Add(&dTerm, &wireValues[wire][i])
			dTerm.Add(&dTerm, &gamma)
			den[i].Mul(&den[i], &dTerm)
		}
		omegaPow.Mul(&omegaPow, &w)
	}

	den = fr.BatchInvert(den)

	z := make([]fr.Element, n)
	z[0].SetOne()
	for i := uint64(0); i+1 < n; i++ {
		var ratio fr.Element
		ratio.Mul(&num[i], &den[i])
		z[i+1].Mul(&z[i], &ratio)
	}
	return z
}
