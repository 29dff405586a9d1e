package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treeseq/pkg/arena"
)

type record struct {
	value int
}

func TestAllocFreeRecycles(t *testing.T) {
	t.Parallel()

	pool, err := arena.New[record](4, nil)
	require.NoError(t, err)

	first, err := pool.Alloc()
	require.NoError(t, err)

	first.value = 42

	assert.Equal(t, 1, pool.NumAllocated())

	pool.Free(first)
	assert.Equal(t, 0, pool.NumAllocated())

	second, err := pool.Alloc()
	require.NoError(t, err)

	// The freed slot is reused before the bump pointer advances.
	assert.Same(t, first, second)
}

func TestExpandOnExhaustion(t *testing.T) {
	t.Parallel()

	pool, err := arena.New[record](2, nil)
	require.NoError(t, err)

	ptrs := make([]*record, 0, 5)

	for i := range 5 {
		obj, allocErr := pool.Alloc()
		require.NoError(t, allocErr)

		obj.value = i
		ptrs = append(ptrs, obj)
	}

	assert.Equal(t, 5, pool.NumAllocated())
	assert.Equal(t, 3, pool.NumBlocks())

	// Records never move when the pool grows.
	for i, p := range ptrs {
		assert.Equal(t, i, p.value)
	}
}

func TestInitCallback(t *testing.T) {
	t.Parallel()

	pool, err := arena.New[record](3, func(r *record) { r.value = -1 })
	require.NoError(t, err)

	obj, err := pool.Alloc()
	require.NoError(t, err)
	assert.Equal(t, -1, obj.value)
}

func TestMaxBlocks(t *testing.T) {
	t.Parallel()

	pool, err := arena.New[record](1, nil)
	require.NoError(t, err)

	pool.MaxBlocks = 2

	_, err = pool.Alloc()
	require.NoError(t, err)
	_, err = pool.Alloc()
	require.NoError(t, err)

	_, err = pool.Alloc()
	require.ErrorIs(t, err, arena.ErrExhausted)
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	pool, err := arena.New[record](1, nil)
	require.NoError(t, err)

	assert.False(t, pool.Empty())

	obj, err := pool.Alloc()
	require.NoError(t, err)
	assert.True(t, pool.Empty())

	pool.Free(obj)
	assert.False(t, pool.Empty())
}

func TestBadBlockSize(t *testing.T) {
	t.Parallel()

	_, err := arena.New[record](0, nil)
	require.Error(t, err)
}
