package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidGateCombination,
		ErrSrsTooSmall,
		ErrPolynomialDegreeTooLarge,
		ErrInvalidPublicInputIndex,
		ErrProofBytesMalformed,
		ErrProofVerificationError,
		ErrBatchCheckFailed,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			require.False(t, errors.Is(a, b), "sentinels %d and %d should not satisfy errors.Is", i, j)
		}
	}
}

func TestWrappedSentinelStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("composer: preprocess: %w", ErrSrsTooSmall)
	require.ErrorIs(t, wrapped, ErrSrsTooSmall)
	require.NotErrorIs(t, wrapped, ErrInvalidGateCombination)
}
