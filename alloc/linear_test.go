package alloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallChunks(granularity Bytes) *LinearOptions {
	opts := DefaultLinearOptions()
	opts.ChunkGranularity = granularity
	return opts
}

// TestLinear_ChunkRequests tests that three 10-byte requests share one 64-byte
// chunk and a following 40-byte request costs exactly one more chunk.
func TestLinear_ChunkRequests(t *testing.T) {
	under := NewCounting(System())
	l := NewLinear(under, smallChunks(64))
	require.Same(t, under, l.Underlying())

	for i := range 3 {
		b := l.Allocate(10, ByteAlignment)
		require.False(t, b.IsEmpty(), "request %d", i)
	}
	require.Equal(t, int64(1), under.ProgressiveAllocationCount())
	require.Equal(t, Bytes(30), l.SizeInUse())

	b := l.Allocate(40, ByteAlignment)
	require.False(t, b.IsEmpty())
	assert.Equal(t, int64(2), under.ProgressiveAllocationCount())
	assert.Equal(t, 2, l.NumChunks())

	l.DeallocateAll()
	assert.Zero(t, under.AllocationCount(), "every chunk returned")
	assert.Zero(t, l.NumChunks())
}

// TestLinear_Sequential tests that blocks are carved in address order.
func TestLinear_Sequential(t *testing.T) {
	l := NewLinear(System(), nil)

	prev := l.Allocate(8, DefaultAlignment)
	require.False(t, prev.IsEmpty())
	for range 50 {
		b := l.Allocate(24, DefaultAlignment)
		require.False(t, b.IsEmpty())
		assert.GreaterOrEqual(t, b.Begin(), prev.End(), "blocks must not overlap")
		prev = b
	}
	assert.Equal(t, 1, l.NumChunks())
}

// TestLinear_Alignment tests alignment stricter than the chunk alignment.
func TestLinear_Alignment(t *testing.T) {
	l := NewLinear(System(), smallChunks(64))

	require.False(t, l.Allocate(1, ByteAlignment).IsEmpty())
	for _, a := range []Alignment{2, 8, 16, 64, 256, 4096} {
		b := l.Allocate(3, a)
		require.False(t, b.IsEmpty(), "alignment %v", a)
		assert.True(t, a.IsAligned(b.Begin()), "alignment %v addr %#x", a, b.Begin())
		assert.Equal(t, Bytes(3), b.Size())
	}
	l.DeallocateAll()
}

// TestLinear_Oversized tests a request larger than the granularity.
func TestLinear_Oversized(t *testing.T) {
	under := NewCounting(System())
	l := NewLinear(under, smallChunks(64))

	b := l.Allocate(1000, DefaultAlignment)
	require.False(t, b.IsEmpty())
	assert.Equal(t, Bytes(1000), b.Size())
	assert.Equal(t, Bytes(1024), l.Capacity(), "chunk rounded up to the granularity")
	l.DeallocateAll()
}

// TestLinear_UnderlyingFailure tests that a refused chunk surfaces as an
// empty span and leaves the allocator usable.
func TestLinear_UnderlyingFailure(t *testing.T) {
	q := NewQuota(System(), 128)
	l := NewLinear(q, smallChunks(64))

	require.False(t, l.Allocate(60, ByteAlignment).IsEmpty())
	require.False(t, l.Allocate(60, ByteAlignment).IsEmpty())
	assert.True(t, l.Allocate(60, ByteAlignment).IsEmpty(), "quota exhausted")
	assert.Equal(t, 2, l.NumChunks())

	l.DeallocateAll()
	assert.Zero(t, q.Usage())
	assert.False(t, l.Allocate(60, ByteAlignment).IsEmpty())
	l.DeallocateAll()
}

// TestLinear_Rejects tests requests rejected before reaching the underlying
// allocator.
func TestLinear_Rejects(t *testing.T) {
	under := NewCounting(System())
	l := NewLinear(under, nil)
	assert.True(t, l.Allocate(0, DefaultAlignment).IsEmpty())
	assert.True(t, l.Allocate(8, Alignment(12)).IsEmpty())
	assert.True(t, l.Allocate(maxBytes, CacheLineAlignment).IsEmpty())
	assert.Zero(t, under.ProgressiveAllocationCount())
}

// TestLinear_Ownership tests Owns and the deallocation checks.
func TestLinear_Ownership(t *testing.T) {
	l := NewLinear(System(), nil)
	b := l.Allocate(16, DefaultAlignment)
	require.False(t, b.IsEmpty())

	assert.True(t, l.Owns(b.ReadOnly()))
	assert.False(t, l.Owns(NewByteSpan(make([]byte, 16))))
	assert.False(t, l.Owns(ByteSpan{}))

	l.Deallocate(b, DefaultAlignment)
	assert.True(t, l.Owns(b.ReadOnly()), "deallocate does not release individual blocks")

	requireViolation(t, func() {
		l.Deallocate(make(RWByteSpan, 16), DefaultAlignment)
	})
	l.DeallocateAll()
}

// TestLinear_Reset tests that Reset reuses retained chunks.
func TestLinear_Reset(t *testing.T) {
	under := NewCounting(System())
	l := NewLinear(under, smallChunks(64))

	first := l.Allocate(48, ByteAlignment)
	require.False(t, first.IsEmpty())
	for range 3 {
		require.False(t, l.Allocate(48, ByteAlignment).IsEmpty())
	}
	require.Equal(t, 4, l.NumChunks())

	l.Reset()
	assert.Zero(t, l.SizeInUse())
	assert.Equal(t, 4, l.NumChunks())

	again := l.Allocate(48, ByteAlignment)
	assert.Equal(t, first.Begin(), again.Begin(), "reset rewinds to the first chunk")
	for range 3 {
		require.False(t, l.Allocate(48, ByteAlignment).IsEmpty())
	}
	assert.Equal(t, int64(4), under.ProgressiveAllocationCount(), "no new chunks after reset")

	m := l.Metrics()
	assert.Equal(t, Bytes(4*48), m.SizeInUse)
	assert.Equal(t, Bytes(4*64), m.Capacity)
	assert.InDelta(t, 0.75, m.Utilization, 1e-9)
	assert.Equal(t, Bytes(64), m.ChunkGranularity)

	l.DeallocateAll()
	l.Reset()
	assert.Zero(t, l.NumChunks())
}

// TestLinear_Logging tests that chunk traffic is logged at debug level.
func TestLinear_Logging(t *testing.T) {
	var out bytes.Buffer
	opts := smallChunks(64)
	opts.Logger = slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l := NewLinear(System(), opts)
	require.False(t, l.Allocate(8, DefaultAlignment).IsEmpty())
	l.DeallocateAll()

	assert.Contains(t, out.String(), "linear: acquired chunk")
	assert.Contains(t, out.String(), "linear: released chunks")
}

// TestLinearOptions_Normalize tests default filling.
func TestLinearOptions_Normalize(t *testing.T) {
	var nilOpts *LinearOptions
	o := nilOpts.normalize()
	assert.Equal(t, DefaultChunkGranularity, o.ChunkGranularity)
	assert.Equal(t, MaxAlignment, o.ChunkAlignment)
	require.NotNil(t, o.Logger)
	assert.False(t, o.Logger.Enabled(t.Context(), slog.LevelError), "default logger drops every record")

	o = (&LinearOptions{ChunkGranularity: -1, ChunkAlignment: 3}).normalize()
	assert.Equal(t, DefaultChunkGranularity, o.ChunkGranularity)
	assert.Equal(t, MaxAlignment, o.ChunkAlignment)
}
