package srs

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/kzg"
	"github.com/stretchr/testify/require"
)

func buildToy(t *testing.T, degree int, tau uint64) *SRS {
	t.Helper()
	_, _, g1Gen, g2Gen := bls12381.Generators()

	var tauElem fr.Element
	tauElem.SetUint64(tau)

	g1s := make([]bls12381.G1Affine, degree+1)
	g1s[0] = g1Gen
	var pow fr.Element
	pow.SetOne()
	for i := 1; i <= degree; i++ {
		pow.Mul(&pow, &tauElem)
		var bi big.Int
		pow.BigInt(&bi)
		var jac bls12381.G1Jac
		jac.FromAffine(&g1Gen)
		jac.ScalarMultiplication(&jac, &bi)
		g1s[i].FromJacobian(&jac)
	}

	var tauBig big.Int
	tauElem.BigInt(&tauBig)
	var g2Jac bls12381.G2Jac
	g2Jac.FromAffine(&g2Gen)
	g2Jac.ScalarMultiplication(&g2Jac, &tauBig)
	var g2Tau bls12381.G2Affine
	g2Tau.FromJacobian(&g2Jac)

	pk := kzg.ProvingKey{G1: g1s}
	vk := kzg.VerifyingKey{G1: g1Gen, G2: [2]bls12381.G2Affine{g2Gen, g2Tau}}
	return New(pk, vk)
}

func TestDegreeReflectsG1Length(t *testing.T) {
	s := buildToy(t, 7, 42)
	require.Equal(t, 7, s.Degree())
}

func TestValidateAcceptsConsistentSRS(t *testing.T) {
	s := buildToy(t, 4, 1234)
	require.NoError(t, s.Validate())
}

func TestValidateRejectsMismatchedTau(t *testing.T) {
	s := buildToy(t, 4, 1234)
	// Corrupt the verifier's tau-shifted G2 point so it no longer matches
	// the G1 side's tau.
	_, _, _, g2Gen := bls12381.Generators()
	var wrongTau fr.Element
	wrongTau.SetUint64(9999)
	var wrongBig big.Int
	wrongTau.BigInt(&wrongBig)
	var jac bls12381.G2Jac
	jac.FromAffine(&g2Gen)
	jac.ScalarMultiplication(&jac, &wrongBig)
	var corrupted bls12381.G2Affine
	corrupted.FromJacobian(&jac)
	s.Verifier.G2[1] = corrupted

	require.Error(t, s.Validate())
}
