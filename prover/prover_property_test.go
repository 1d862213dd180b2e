package prover_test

import (
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/plonkup/core/composer"
	"github.com/plonkup/core/domain"
	"github.com/plonkup/core/gate"
	"github.com/plonkup/core/prover"
	"github.com/plonkup/core/verifier"
	"github.com/plonkup/core/witness"
)

// cryptoCompareOpts compares fr.Element and bls12381.G1Affine through their
// own Equal methods, the idiom the corpus's gnark-crypto-backed tests use
// for these value types rather than reflecting into their limb arrays.
var cryptoCompareOpts = cmp.Options{
	cmp.Comparer(func(a, b fr.Element) bool { return a.Equal(&b) }),
	cmp.Comparer(func(a, b bls12381.G1Affine) bool { return a.Equal(&b) }),
}

// buildCompletenessCircuit builds an a*b=out multiplication circuit for
// arbitrary small factors, mirroring buildMultiplicationCircuit but
// parameterised so the completeness property can drive it across a random
// sample of inputs.
func buildCompletenessCircuit(t *testing.T, av, bv uint64) (*composer.Composer, int, fr.Element) {
	t.Helper()
	c := composer.New()

	a := c.AppendWitness(elem(av))
	b := c.AppendWitness(elem(bv))
	out := c.AppendWitness(elem(av * bv))

	one := elem(1)
	negOne := elem(1)
	negOne.Neg(&negOne)

	require.NoError(t, c.AppendGate(gate.Spec{
		Qm: one, Qo: negOne, Qarith: one,
		A: a, B: b, C: out, D: witness.Zero,
	}))
	idx, err := c.AppendPublicInput(out)
	require.NoError(t, err)

	return c, idx, elem(av * bv)
}

// TestPropertyCompletenessHoldsForArbitraryFactors is spec.md §8's
// completeness property: an honestly-generated proof for an honestly-built
// circuit always verifies, for any pair of factors small enough that their
// product doesn't overflow the toy domain's single arithmetic gate.
func TestPropertyCompletenessHoldsForArbitraryFactors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 15
	properties := gopter.NewProperties(parameters)

	properties.Property("Preprocess/Prove/Verify accepts every honestly-built multiplication circuit", prop.ForAll(
		func(av, bv, tau uint64) bool {
			c, idx, publicValue := buildCompletenessCircuit(t, av, bv)
			if err := c.BindPublicInput(idx, publicValue); err != nil {
				return false
			}

			ref := toySRS(t, 64, tau+1)
			pk, vk, err := c.Preprocess(ref)
			if err != nil {
				return false
			}

			d := domain.New(vk.N)
			circuit := prover.FromComposer(c, d)

			p, err := prover.Prove(pk, ref.Prover, circuit, nil)
			if err != nil {
				return false
			}

			return verifier.Verify(vk, *ref, circuit.PublicInputs, p) == nil
		},
		gen.UInt64Range(0, 1000),
		gen.UInt64Range(0, 1000),
		gen.UInt64Range(1, 1<<31),
	))

	properties.TestingRun(t)
}

// TestProveIsDeterministic checks that proving the same circuit against the
// same SRS twice produces structurally identical proofs: the prover
// carries no blinding randomness (see prover.go), so Prove's output should
// be a pure function of (pk, srsPk, circuit).
func TestProveIsDeterministic(t *testing.T) {
	c, idx, publicValue := buildMultiplicationCircuit(t)
	require.NoError(t, c.BindPublicInput(idx, publicValue))

	ref := toySRS(t, 64, 314159)
	pk, vk, err := c.Preprocess(ref)
	require.NoError(t, err)

	d := domain.New(vk.N)
	circuit := prover.FromComposer(c, d)

	p1, err := prover.Prove(pk, ref.Prover, circuit, nil)
	require.NoError(t, err)
	p2, err := prover.Prove(pk, ref.Prover, circuit, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(p1, p2, cryptoCompareOpts); diff != "" {
		t.Fatalf("Prove is not deterministic:\n%s", diff)
	}
}
