package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/vm"
)

// VirtualCheckpoint is an opaque snapshot of a VirtualStackAllocator's
// watermark.
type VirtualCheckpoint struct {
	owner     *VirtualStackAllocator
	watermark Bytes
}

// VirtualStackStats is a snapshot of a VirtualStackAllocator.
type VirtualStackStats struct {
	Reserved  Bytes
	Committed Bytes
	InUse     Bytes
	Commits   int64
	Decommits int64
}

// VirtualStackAllocator is a stack allocator over a single reserved range of
// address space. The committed prefix grows page-wise as the watermark
// advances and shrinks back on Rewind, so blocks never move and there is no
// chunk list to walk.
//
// NOT thread-safe.
type VirtualStackAllocator struct {
	region *vm.Region
	step   Bytes
	log    *slog.Logger

	committed Bytes
	watermark Bytes

	commits   int64
	decommits int64
}

// NewVirtualStack reserves capacity bytes of address space. opts.PageSize sets
// the commit step, rounded up to the system page size. A nil opts uses
// DefaultVirtualOptions.
func NewVirtualStack(capacity Bytes, opts *VirtualOptions) (*VirtualStackAllocator, error) {
	o := opts.normalize()
	sys := Bytes(vm.PageSize())
	step := o.PageSize
	if step <= 0 {
		step = sys
	}
	step = step.RoundUp(sys)
	if capacity <= 0 || capacity > maxBytes-step {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidSize, capacity)
	}

	region, err := vm.Reserve(capacity.RoundUp(step).Int())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReserve, err)
	}
	return &VirtualStackAllocator{region: region, step: step, log: o.Logger}, nil
}

// Allocate implements Allocator.
func (s *VirtualStackAllocator) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if s.region == nil || !validRequest(size, alignment) {
		return nil
	}
	limit := Bytes(s.region.Len())
	start := s.watermark + Bytes(alignment.Padding(s.region.Base()+uintptr(s.watermark)))
	if start > limit || size > limit-start {
		return nil
	}
	end := start + size
	if end > s.committed && !s.grow(end) {
		return nil
	}
	s.watermark = end
	return RWByteSpan(s.region.Bytes()[start.Int():end.Int():end.Int()])
}

// grow commits enough steps to cover [0, end).
func (s *VirtualStackAllocator) grow(end Bytes) bool {
	target := end.RoundUp(s.step)
	if limit := Bytes(s.region.Len()); target > limit {
		target = limit
	}
	if err := s.region.Commit(s.committed.Int(), (target - s.committed).Int()); err != nil {
		s.log.Warn("virtual stack: commit failed",
			slog.Int64("committed", int64(s.committed)),
			slog.Int64("target", int64(target)),
			slog.Any("error", err))
		return false
	}
	s.commits++
	s.committed = target
	return true
}

// Deallocate implements Allocator. Blocks are released only by Rewind or
// DeallocateAll; the call only checks ownership.
func (s *VirtualStackAllocator) Deallocate(block RWByteSpan, alignment Alignment) {
	if checked && !block.IsEmpty() {
		assertf(s.Owns(block.ReadOnly()), "virtual stack: block %#x not owned", block.Begin())
		assertf(alignment.IsAligned(block.Begin()),
			"virtual stack: block %#x does not satisfy %v", block.Begin(), alignment)
	}
}

// Owns implements Allocator: the block lies below the watermark.
func (s *VirtualStackAllocator) Owns(block ByteSpan) bool {
	if s.region == nil {
		return false
	}
	base := s.region.Base()
	return containsRange(base, base+uintptr(s.watermark), block)
}

// Checkpoint captures the current watermark.
func (s *VirtualStackAllocator) Checkpoint() VirtualCheckpoint {
	return VirtualCheckpoint{owner: s, watermark: s.watermark}
}

// Rewind restores the watermark to cp and decommits the pages above it.
// Every block allocated after cp was taken is invalidated.
func (s *VirtualStackAllocator) Rewind(cp VirtualCheckpoint) {
	if checked {
		if cp.owner != s {
			violation("virtual stack: checkpoint taken on another allocator")
		}
		if cp.watermark > s.watermark {
			violation("virtual stack: stale checkpoint (watermark %d beyond %d)",
				cp.watermark, s.watermark)
		}
	}
	s.watermark = cp.watermark
	s.shrink()
}

// DeallocateAll implements BulkDeallocator.
func (s *VirtualStackAllocator) DeallocateAll() {
	s.watermark = 0
	s.shrink()
}

// shrink decommits committed steps wholly above the watermark.
func (s *VirtualStackAllocator) shrink() {
	if s.region == nil {
		return
	}
	keep := s.watermark.RoundUp(s.step)
	if keep >= s.committed {
		return
	}
	if err := s.region.Decommit(keep.Int(), (s.committed - keep).Int()); err != nil {
		s.log.Warn("virtual stack: decommit failed", slog.Any("error", err))
		return
	}
	s.decommits++
	s.log.Debug("virtual stack: decommitted",
		slog.Int64("from", int64(keep)),
		slog.Int64("to", int64(s.committed)))
	s.committed = keep
}

// Stats returns a snapshot of the allocator's commit accounting.
func (s *VirtualStackAllocator) Stats() VirtualStackStats {
	st := VirtualStackStats{
		Committed: s.committed,
		InUse:     s.watermark,
		Commits:   s.commits,
		Decommits: s.decommits,
	}
	if s.region != nil {
		st.Reserved = Bytes(s.region.Len())
	}
	return st
}

// Close releases the reservation. Every block becomes invalid.
func (s *VirtualStackAllocator) Close() error {
	if s.region == nil {
		return nil
	}
	err := s.region.Release()
	s.region = nil
	s.committed, s.watermark = 0, 0
	return err
}

// Compile-time interface checks
var (
	_ Allocator       = (*VirtualStackAllocator)(nil)
	_ BulkDeallocator = (*VirtualStackAllocator)(nil)
)
