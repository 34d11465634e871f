package alloc

import "log/slog"

// Checkpoint is an opaque snapshot of a StackAllocator's position.
//
// Rewinding to a checkpoint invalidates every checkpoint taken after it.
// Rewinding to a checkpoint taken on another allocator, or to an invalidated
// one, is a contract violation.
type Checkpoint struct {
	owner     any
	chunk     int
	serial    uint64
	watermark Bytes
}

// StackAllocator is a LinearAllocator that can also rewind to an earlier
// position, releasing only the most recent allocations.
//
// Rewind returns every chunk activated after the checkpoint's chunk to the
// underlying allocator and restores the watermark inside that chunk, which is
// strictly cheaper than DeallocateAll when only the tail needs unwinding.
//
// NOT thread-safe.
type StackAllocator[A Allocator] struct {
	LinearAllocator[A]
}

// NewStack creates a stack allocator drawing chunks from underlying.
// A nil opts uses DefaultLinearOptions.
func NewStack[A Allocator](underlying A, opts *LinearOptions) *StackAllocator[A] {
	return &StackAllocator[A]{LinearAllocator: newLinear(underlying, opts)}
}

// Checkpoint captures the active chunk and its watermark.
func (s *StackAllocator[A]) Checkpoint() Checkpoint {
	cp := Checkpoint{owner: &s.LinearAllocator, chunk: s.cursor}
	if s.cursor >= 0 {
		c := &s.chunks[s.cursor]
		cp.serial = c.serial
		cp.watermark = c.used
	}
	return cp
}

// Rewind restores the allocator to cp. Every block allocated after cp was
// taken is invalidated. Chunks activated since cp go back to the underlying
// allocator; chunks retained by Reset and not yet reached are kept.
func (s *StackAllocator[A]) Rewind(cp Checkpoint) {
	if checked {
		s.validate(cp)
	}
	if cp.chunk < 0 {
		s.DeallocateAll()
		return
	}
	s.release(cp.chunk+1, s.cursor+1)
	s.cursor = cp.chunk
	s.chunks[cp.chunk].used = cp.watermark
	s.log.Debug("stack: rewound",
		slog.Int("chunk", cp.chunk),
		slog.Int64("watermark", int64(cp.watermark)))
}

func (s *StackAllocator[A]) validate(cp Checkpoint) {
	if cp.owner != any(&s.LinearAllocator) {
		violation("stack: checkpoint taken on another allocator")
	}
	if cp.chunk < 0 {
		return
	}
	if cp.chunk > s.cursor || s.chunks[cp.chunk].serial != cp.serial {
		violation("stack: stale checkpoint (chunk %d)", cp.chunk)
	}
	if cp.chunk == s.cursor && cp.watermark > s.chunks[cp.chunk].used {
		violation("stack: stale checkpoint (watermark %d beyond %d)",
			cp.watermark, s.chunks[cp.chunk].used)
	}
}

// Compile-time interface checks
var (
	_ Allocator       = (*StackAllocator[Allocator])(nil)
	_ BulkDeallocator = (*StackAllocator[Allocator])(nil)
)
