package domain

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[uint64]uint64{
		0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 17: 32, 1024: 1024,
	}
	for in, want := range cases {
		require.Equal(t, want, NextPowerOfTwo(in), "input %d", in)
	}
}

func TestNewPadsToPowerOfTwo(t *testing.T) {
	d := New(5)
	require.Equal(t, uint64(8), d.Size())
	require.Equal(t, uint64(32), d.Big.Cardinality)
}

func TestVanishingEvalZeroOnSmallDomain(t *testing.T) {
	d := New(8)
	w := d.Generator()
	var pow fr.Element
	pow.SetOne()
	for i := 0; i < 8; i++ {
		require.True(t, d.VanishingEval(pow).IsZero(), "point %d", i)
		pow.Mul(&pow, &w)
	}
}

func TestVanishingEvalNonZeroOffDomain(t *testing.T) {
	d := New(8)
	var z fr.Element
	z.SetUint64(12345)
	require.False(t, d.VanishingEval(z).IsZero())
}

func TestFirstLagrangeEvalIsIndicator(t *testing.T) {
	d := New(8)
	w := d.Generator()

	var one fr.Element
	one.SetOne()
	zh := d.VanishingEval(one)
	require.True(t, d.FirstLagrangeEval(one, zh).Equal(&one))

	var notOne fr.Element
	notOne.Set(&w)
	zhNotOne := d.VanishingEval(notOne)
	require.True(t, d.FirstLagrangeEval(notOne, zhNotOne).IsZero())
}

func TestBarycentricEvalReproducesValuesOnDomain(t *testing.T) {
	d := New(8)
	w := d.Generator()

	evals := make([]fr.Element, 8)
	for i := range evals {
		evals[i].SetUint64(uint64(i) * 3)
	}

	var pow fr.Element
	pow.SetOne()
	for i := 0; i < 8; i++ {
		got := d.BarycentricEval(evals, pow)
		require.True(t, got.Equal(&evals[i]), "domain point %d: got %s want %s", i, got.String(), evals[i].String())
		pow.Mul(&pow, &w)
	}
}

func TestBarycentricEvalZeroForEmptyVector(t *testing.T) {
	d := New(8)
	var z fr.Element
	z.SetUint64(99)
	got := d.BarycentricEval(nil, z)
	require.True(t, got.IsZero())
}

func TestBarycentricEvalSparseMatchesDensePadding(t *testing.T) {
	d := New(8)

	sparse := []fr.Element{{}, {}}
	sparse[1].SetUint64(7)

	dense := make([]fr.Element, 8)
	dense[1].SetUint64(7)

	var z fr.Element
	z.SetUint64(31)

	got := d.BarycentricEval(sparse, z)
	want := d.BarycentricEval(dense, z)
	require.True(t, got.Equal(&want))
}

func TestSizeInvIsMultiplicativeInverseOfN(t *testing.T) {
	d := New(16)
	var n, prod fr.Element
	n.SetUint64(16)
	inv := d.SizeInv()
	prod.Mul(&n, &inv)
	var one fr.Element
	one.SetOne()
	require.True(t, prod.Equal(&one))
}

func TestVanishingEvalMatchesDirectExponentiation(t *testing.T) {
	d := New(8)
	var z, exp, one fr.Element
	z.SetUint64(55)
	one.SetOne()
	exp.Exp(z, new(big.Int).SetUint64(d.Size()))
	exp.Sub(&exp, &one)
	got := d.VanishingEval(z)
	require.True(t, got.Equal(&exp))
}
