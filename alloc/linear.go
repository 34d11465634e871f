package alloc

import (
	"log/slog"
	"slices"
)

// chunk is a region obtained from the underlying allocator.
type chunk struct {
	mem RWByteSpan

	// used is the watermark: bytes consumed from the start of mem.
	used Bytes

	// serial identifies one activation of the chunk; checkpoints taken
	// against an earlier activation are stale.
	serial uint64
}

// LinearAllocator carves sequential blocks out of chunks obtained from an
// underlying allocator.
//
// Key characteristics:
//   - O(1) allocation: align the watermark, bump it, return the slice
//   - Zero per-block bookkeeping: Deallocate is a no-op beyond an ownership check
//   - Bulk release only: DeallocateAll returns every chunk to the underlying
//     allocator, Reset keeps them for reuse
//
// Chunks live in an owned vector with a cursor on the active one; nothing is
// stored in-band, so a chunk's whole capacity is usable.
//
// NOT thread-safe. Wrap it in a SynchronizedAllocator to share it.
type LinearAllocator[A Allocator] struct {
	underlying     A
	granularity    Bytes
	chunkAlignment Alignment
	log            *slog.Logger

	chunks []chunk

	// cursor indexes the active chunk; -1 until the first allocation.
	cursor int

	nextSerial uint64
}

// NewLinear creates a linear allocator drawing chunks from underlying.
// A nil opts uses DefaultLinearOptions.
func NewLinear[A Allocator](underlying A, opts *LinearOptions) *LinearAllocator[A] {
	l := newLinear(underlying, opts)
	return &l
}

func newLinear[A Allocator](underlying A, opts *LinearOptions) LinearAllocator[A] {
	o := opts.normalize()
	return LinearAllocator[A]{
		underlying:     underlying,
		granularity:    o.ChunkGranularity,
		chunkAlignment: o.ChunkAlignment,
		log:            o.Logger,
		cursor:         -1,
	}
}

// Underlying returns the allocator chunks are drawn from.
func (l *LinearAllocator[A]) Underlying() A { return l.underlying }

// Allocate implements Allocator.
func (l *LinearAllocator[A]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if !validRequest(size, alignment) {
		return nil
	}
	if block := l.bump(size, alignment); block != nil {
		return block
	}
	return l.allocateSlow(size, alignment)
}

// bump is the fast path: carve from the active chunk or report nil.
func (l *LinearAllocator[A]) bump(size Bytes, alignment Alignment) RWByteSpan {
	if l.cursor < 0 {
		return nil
	}
	c := &l.chunks[l.cursor]
	start := c.used + Bytes(alignment.Padding(c.mem.Begin()+uintptr(c.used)))
	if start > c.mem.Size() || size > c.mem.Size()-start {
		return nil
	}
	c.used = start + size
	return c.mem[start.Int():c.used.Int():c.used.Int()]
}

// allocateSlow moves to a retained chunk or acquires a new one, then retries
// the fast path.
func (l *LinearAllocator[A]) allocateSlow(size Bytes, alignment Alignment) RWByteSpan {
	for l.cursor+1 < len(l.chunks) {
		l.activate(l.cursor + 1)
		if block := l.bump(size, alignment); block != nil {
			return block
		}
	}

	need := size
	if alignment > l.chunkAlignment {
		if alignment.Bytes() > maxBytes-size {
			return nil
		}
		need += alignment.Bytes() - 1
	}
	chunkSize := need.RoundUp(l.granularity)
	if chunkSize < need {
		return nil
	}

	mem := l.underlying.Allocate(chunkSize, l.chunkAlignment)
	if mem.IsEmpty() {
		l.log.Debug("linear: underlying allocator refused chunk",
			slog.Int64("size", int64(chunkSize)),
			slog.Int("chunks", len(l.chunks)))
		return nil
	}
	l.chunks = append(l.chunks, chunk{mem: mem})
	l.activate(len(l.chunks) - 1)
	l.log.Debug("linear: acquired chunk",
		slog.Int64("size", int64(chunkSize)),
		slog.Int("chunks", len(l.chunks)))

	return l.bump(size, alignment)
}

// activate makes chunk i the active chunk with an empty watermark.
func (l *LinearAllocator[A]) activate(i int) {
	l.cursor = i
	l.nextSerial++
	l.chunks[i].used = 0
	l.chunks[i].serial = l.nextSerial
}

// Deallocate implements Allocator. Individual blocks cannot be returned to a
// linear allocator; the call only checks ownership.
func (l *LinearAllocator[A]) Deallocate(block RWByteSpan, alignment Alignment) {
	if checked && !block.IsEmpty() {
		assertf(l.Owns(block.ReadOnly()), "linear: block %#x not owned", block.Begin())
		assertf(alignment.IsAligned(block.Begin()),
			"linear: block %#x does not satisfy %v", block.Begin(), alignment)
	}
}

// Owns implements Allocator: the block lies inside one of the chunks.
func (l *LinearAllocator[A]) Owns(block ByteSpan) bool {
	for i := range l.chunks {
		if containsRange(l.chunks[i].mem.Begin(), l.chunks[i].mem.End(), block) {
			return true
		}
	}
	return false
}

// DeallocateAll implements BulkDeallocator. Every chunk goes back to the
// underlying allocator; every outstanding block and checkpoint is invalidated.
func (l *LinearAllocator[A]) DeallocateAll() {
	l.release(0, len(l.chunks))
	l.cursor = -1
}

// Reset invalidates every outstanding block but keeps the chunks for reuse,
// rewinding to the first one.
func (l *LinearAllocator[A]) Reset() {
	if len(l.chunks) == 0 {
		return
	}
	for i := range l.chunks {
		l.chunks[i].used = 0
		l.chunks[i].serial = 0
	}
	l.activate(0)
}

// release returns chunks[lo:hi] to the underlying allocator, newest first,
// and closes the gap. Chunks after hi keep their order.
func (l *LinearAllocator[A]) release(lo, hi int) {
	if lo >= hi {
		return
	}
	for j := hi - 1; j >= lo; j-- {
		l.underlying.Deallocate(l.chunks[j].mem, l.chunkAlignment)
	}
	l.chunks = slices.Delete(l.chunks, lo, hi)
	l.log.Debug("linear: released chunks",
		slog.Int("released", hi-lo),
		slog.Int("remaining", len(l.chunks)))
}

// Compile-time interface checks
var (
	_ Allocator       = (*LinearAllocator[Allocator])(nil)
	_ BulkDeallocator = (*LinearAllocator[Allocator])(nil)
)
