package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), MustIntToUint32(0))
	assert.Equal(t, uint32(math.MaxUint32), MustIntToUint32(int(MaxUint32)))

	require.Panics(t, func() { MustIntToUint32(-1) })
}

func TestMustIntToUint16(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint16(42), MustIntToUint16(42))
	assert.Equal(t, uint16(math.MaxUint16), MustIntToUint16(math.MaxUint16))

	require.Panics(t, func() { MustIntToUint16(-1) })
	require.Panics(t, func() { MustIntToUint16(math.MaxUint16 + 1) })
}

func TestMustIntToInt32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(-7), MustIntToInt32(-7))

	require.Panics(t, func() { MustIntToInt32(math.MaxInt32 + 1) })
}
