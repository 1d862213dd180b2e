package cdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/plonkup/core/gate"
	"github.com/plonkup/core/witness"
)

func TestNewIsDisabledWithoutEnvVar(t *testing.T) {
	r := New()
	require.False(t, r.enabled)

	r.RecordWitness(0, fr.Element{})
	require.NoError(t, r.Finish())
	require.Empty(t, r.witnesses)
}

func TestNilRecorderMethodsAreNoOps(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.RecordWitness(0, fr.Element{})
		r.RecordConstraint(0, gate.Zero(), [4]fr.Element{}, fr.Element{})
	})
	require.NoError(t, r.Finish())
}

func TestFinishWritesLengthPrefixedSections(t *testing.T) {
	out := filepath.Join(t.TempDir(), "trace.cdf")
	t.Setenv("CDF_OUTPUT", out)

	r := New()
	require.True(t, r.enabled)

	var v fr.Element
	v.SetUint64(7)
	r.RecordWitness(0, v)
	r.RecordWitness(1, v)

	var one fr.Element
	one.SetOne()
	g := gate.Gate{
		Selectors: gate.Selectors{Qm: one, Qarith: one},
		A:         witness.Witness(0),
		B:         witness.Witness(1),
		C:         witness.Zero,
		D:         witness.Zero,
	}
	r.RecordConstraint(0, g, [4]fr.Element{v, v, fr.Element{}, fr.Element{}}, fr.Element{})

	require.NoError(t, r.Finish())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)

	encodedLen := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	require.LessOrEqual(t, int(8+encodedLen), len(data))

	gadgetLenOffset := 4 + int(encodedLen)
	gadgetLen := uint32(data[gadgetLenOffset]) | uint32(data[gadgetLenOffset+1])<<8 |
		uint32(data[gadgetLenOffset+2])<<16 | uint32(data[gadgetLenOffset+3])<<24
	require.Equal(t, len(data), gadgetLenOffset+4+int(gadgetLen))
}
