package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuffer_Lifecycle tests that a buffer deallocates through its allocator.
func TestBuffer_Lifecycle(t *testing.T) {
	c := NewCounting(System())
	b, err := NewBuffer(c, 128, CacheLineAlignment)
	require.NoError(t, err)

	assert.Equal(t, Bytes(128), b.Size())
	assert.Len(t, b.Bytes(), 128)
	assert.True(t, CacheLineAlignment.IsAligned(b.Span().Begin()))
	assert.True(t, Same(c, b.Allocator()))
	assert.Equal(t, CacheLineAlignment, b.Alignment())
	assert.Equal(t, int64(1), c.AllocationCount())

	b.Release()
	b.Release()
	assert.Zero(t, b.Size())
	assert.Zero(t, c.AllocationCount())
	assert.Equal(t, int64(1), c.DeallocationCount(), "second release is a no-op")
}

// TestBuffer_OutOfMemory tests that an empty span becomes ErrOutOfMemory.
func TestBuffer_OutOfMemory(t *testing.T) {
	_, err := NewBuffer(NewQuota(System(), 64), 65, DefaultAlignment)
	require.ErrorIs(t, err, ErrOutOfMemory)

	_, err = NewBuffer(Null(), 1, DefaultAlignment)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

// TestBuffer_InvalidArguments tests constructor validation.
func TestBuffer_InvalidArguments(t *testing.T) {
	_, err := NewBuffer(System(), 8, Alignment(6))
	require.ErrorIs(t, err, ErrInvalidAlignment)

	_, err = NewBuffer(System(), -1, DefaultAlignment)
	require.ErrorIs(t, err, ErrInvalidSize)

	empty, err := NewBuffer(Null(), 0, DefaultAlignment)
	require.NoError(t, err, "zero size never reaches the allocator")
	assert.Zero(t, empty.Size())
	assert.True(t, Same(Null(), empty.Allocator()))
}

// TestBuffer_Scoped tests that scoped buffers bind the active allocator.
func TestBuffer_Scoped(t *testing.T) {
	c := NewCounting(System())
	scope := Enter(c)
	b, err := NewScopedBuffer(32, DefaultAlignment)
	scope.Exit()
	require.NoError(t, err)

	assert.True(t, Same(c, b.Allocator()), "binding outlives the scope")
	b.Release()
	assert.Zero(t, c.AllocationCount())
}

// TestBuffer_Clone tests deep copies on the same allocator.
func TestBuffer_Clone(t *testing.T) {
	c := NewCounting(System())
	b, err := NewBuffer(c, 16, DefaultAlignment)
	require.NoError(t, err)
	copy(b.Bytes(), "0123456789abcdef")

	dup, err := b.Clone()
	require.NoError(t, err)
	assert.Equal(t, b.Bytes(), dup.Bytes())
	assert.NotEqual(t, b.Span().Begin(), dup.Span().Begin())
	assert.Equal(t, int64(2), c.AllocationCount())

	dup.Bytes()[0] = 'X'
	assert.Equal(t, byte('0'), b.Bytes()[0])
	b.Release()
	dup.Release()
}

// TestBuffer_MoveSameAllocator tests that moving within an allocator steals
// the storage.
func TestBuffer_MoveSameAllocator(t *testing.T) {
	c := NewCounting(System())
	b, err := NewBuffer(c, 16, DefaultAlignment)
	require.NoError(t, err)
	addr := b.Span().Begin()

	moved, err := b.MoveTo(c)
	require.NoError(t, err)
	assert.Equal(t, addr, moved.Span().Begin())
	assert.Zero(t, b.Size())
	assert.Equal(t, int64(1), c.ProgressiveAllocationCount(), "no copy made")
	moved.Release()
}

// TestBuffer_MoveOtherAllocator tests that moving across allocators copies
// and releases the source through its own allocator.
func TestBuffer_MoveOtherAllocator(t *testing.T) {
	src := NewCounting(System())
	dst := NewCounting(System())
	b, err := NewBuffer(src, 8, DefaultAlignment)
	require.NoError(t, err)
	copy(b.Bytes(), "payload!")

	moved, err := b.MoveTo(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload!", string(moved.Bytes()))
	assert.True(t, Same(dst, moved.Allocator()))
	assert.Zero(t, src.AllocationCount(), "source released through its own allocator")
	assert.Equal(t, int64(1), dst.AllocationCount())
	assert.Zero(t, b.Size())

	// A failed move leaves the source intact.
	again, err := moved.MoveTo(Null())
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Nil(t, again)
	assert.Equal(t, "payload!", string(moved.Bytes()))
	moved.Release()
}

// TestBuffer_MoveNonComparable tests moving between allocators that cannot be
// compared by identity.
func TestBuffer_MoveNonComparable(t *testing.T) {
	b, err := NewBuffer(sliceBacked{tags: []string{"src"}}, 8, DefaultAlignment)
	require.NoError(t, err)
	copy(b.Bytes(), "payload!")

	var moved *Buffer
	require.NotPanics(t, func() {
		moved, err = b.MoveTo(sliceBacked{tags: []string{"dst"}})
	})
	require.NoError(t, err)
	assert.Equal(t, "payload!", string(moved.Bytes()))
	assert.Zero(t, b.Size())
	moved.Release()
}

// TestBuffer_Resize tests growth, shrinkage and failure.
func TestBuffer_Resize(t *testing.T) {
	q := NewQuota(System(), 64)
	b, err := NewBuffer(q, 8, DefaultAlignment)
	require.NoError(t, err)
	copy(b.Bytes(), "abcdefgh")

	require.NoError(t, b.Resize(32))
	assert.Equal(t, "abcdefgh", string(b.Bytes()[:8]))
	assert.Equal(t, Bytes(32), q.Usage())

	require.NoError(t, b.Resize(4))
	assert.Equal(t, "abcd", string(b.Bytes()))
	assert.Equal(t, Bytes(4), q.Usage())

	err = b.Resize(100)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, "abcd", string(b.Bytes()), "unchanged on failure")

	require.NoError(t, b.Resize(0))
	assert.Zero(t, q.Usage())
	require.NoError(t, b.Resize(16))
	assert.Equal(t, Bytes(16), b.Size())
	b.Release()

	require.ErrorIs(t, b.Resize(-2), ErrInvalidSize)
}
