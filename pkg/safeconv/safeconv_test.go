package safeconv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/crackfang/pkg/safeconv"
)

func TestClampUint64ToInt64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), safeconv.ClampUint64ToInt64(0))
	assert.Equal(t, int64(42), safeconv.ClampUint64ToInt64(42))
	assert.Equal(t, int64(math.MaxInt64), safeconv.ClampUint64ToInt64(math.MaxInt64))
	assert.Equal(t, int64(math.MaxInt64), safeconv.ClampUint64ToInt64(math.MaxUint64))
}

func TestMustIntToUint64(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(95), safeconv.MustIntToUint64(95))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: negative int to uint64 conversion", func() {
			safeconv.MustIntToUint64(-1)
		})
	})
}

func TestMustUint64ToInt(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 7, safeconv.MustUint64ToInt(7))
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: uint64 to int overflow", func() {
			safeconv.MustUint64ToInt(math.MaxUint64)
		})
	})
}
