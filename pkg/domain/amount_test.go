package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coffer/pkg/domain-errors"
)

func TestCheckedAdd(t *testing.T) {
	t.Run("plain addition", func(t *testing.T) {
		got, err := CheckedAdd(40, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got)
	})

	t.Run("overflow fails instead of wrapping", func(t *testing.T) {
		_, err := CheckedAdd(math.MaxInt64, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))
	})

	t.Run("negative overflow", func(t *testing.T) {
		_, err := CheckedAdd(math.MinInt64, -1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))
	})
}

func TestCheckedSub(t *testing.T) {
	got, err := CheckedSub(100, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got)

	_, err = CheckedSub(math.MinInt64, 1)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOverflow))
}
