package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/vm"
)

// VirtualStats is a snapshot of a VirtualAllocator.
type VirtualStats struct {
	Reserved       Bytes // Size of the reserved address range
	PageSize       Bytes // Size of each page handed out
	CapacityPages  int   // Pages that fit in the reservation
	CommittedPages int   // Pages currently backed by storage
	InUsePages     int   // Pages handed out and not yet deallocated
	FreePages      int   // Pages on the free list (committed or trimmed)
	Commits        int64 // Commit calls made over the allocator's lifetime
	Decommits      int64 // Decommit calls made over the allocator's lifetime
}

// VirtualAllocator hands out fixed-size pages from a reserved range of
// virtual address space.
//
// Reserving the range up front decouples maximum capacity from physical
// memory and guarantees pointer stability: growth commits more of the same
// range and never moves a page.
//
// Allocate pops a page off the free list, or commits the next never-used page
// from the tail of the reservation when the list is empty. Deallocate pushes
// the page back without any system call; Trim decommits free pages in
// coalesced batches. A trimmed page is recommitted when it is reused.
//
// NOT thread-safe.
type VirtualAllocator struct {
	region   *vm.Region
	pageSize Bytes
	sysPage  Alignment
	capacity int
	log      *slog.Logger

	// next is the first page never committed.
	next int
	// free holds released page indices, most recent last.
	free []int

	inUse   pageBits
	trimmed pageBits
	nTrim   int

	pending *vm.RangeSet
	// decommitter applies Trim batches, normally the region itself.
	decommitter vm.Decommitter

	commits   int64
	decommits int64
}

// NewVirtual reserves capacity bytes of address space for pages of
// opts.PageSize bytes (rounded up to the system page size). A nil opts uses
// DefaultVirtualOptions.
func NewVirtual(capacity Bytes, opts *VirtualOptions) (*VirtualAllocator, error) {
	o := opts.normalize()
	sys := Bytes(vm.PageSize())

	pageSize := o.PageSize
	if pageSize <= 0 {
		pageSize = sys
	}
	pageSize = pageSize.RoundUp(sys)
	if capacity <= 0 || capacity > maxBytes-pageSize {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidSize, capacity)
	}
	capacity = capacity.RoundUp(pageSize)

	region, err := vm.Reserve(capacity.Int())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReserve, err)
	}
	pages := int(capacity / pageSize)
	o.Logger.Debug("virtual: reserved",
		slog.Int64("capacity", int64(capacity)),
		slog.Int64("page_size", int64(pageSize)))

	return &VirtualAllocator{
		region:      region,
		pageSize:    pageSize,
		sysPage:     Alignment(sys),
		capacity:    pages,
		log:         o.Logger,
		inUse:       newPageBits(pages),
		trimmed:     newPageBits(pages),
		pending:     vm.NewRangeSet(int(sys)),
		decommitter: region,
	}, nil
}

// PageSize returns the size of the pages handed out.
func (v *VirtualAllocator) PageSize() Bytes { return v.pageSize }

// Allocate implements Allocator. Requests larger than a page, or aligned more
// strictly than the system page size, fail.
func (v *VirtualAllocator) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if !validRequest(size, alignment) || size > v.pageSize || alignment > v.sysPage {
		return nil
	}
	page := v.take()
	if page == nil {
		return nil
	}
	return page[:size.Int():size.Int()]
}

// Reserve returns one whole page, or an empty span when the reservation is
// exhausted. Release it with Deallocate.
func (v *VirtualAllocator) Reserve() RWByteSpan {
	return v.take()
}

func (v *VirtualAllocator) take() RWByteSpan {
	if v.region == nil {
		return nil
	}
	var idx int
	switch {
	case len(v.free) > 0:
		idx = v.free[len(v.free)-1]
		v.free = v.free[:len(v.free)-1]
		if v.trimmed.get(idx) {
			if !v.commit(idx) {
				v.free = append(v.free, idx)
				return nil
			}
			v.trimmed.clear(idx)
			v.nTrim--
		}
	case v.next < v.capacity:
		idx = v.next
		if !v.commit(idx) {
			return nil
		}
		v.next++
	default:
		return nil
	}
	v.inUse.set(idx)
	off := v.offset(idx)
	return RWByteSpan(v.region.Bytes()[off : off+v.pageSize.Int() : off+v.pageSize.Int()])
}

func (v *VirtualAllocator) commit(idx int) bool {
	if err := v.region.Commit(v.offset(idx), v.pageSize.Int()); err != nil {
		v.log.Warn("virtual: commit failed", slog.Int("page", idx), slog.Any("error", err))
		return false
	}
	v.commits++
	return true
}

func (v *VirtualAllocator) offset(idx int) int { return idx * v.pageSize.Int() }

// Deallocate implements Allocator. The page goes back on the free list; it
// stays committed until Trim.
func (v *VirtualAllocator) Deallocate(block RWByteSpan, alignment Alignment) {
	if block.IsEmpty() {
		return
	}
	assertf(v.Owns(block.ReadOnly()), "virtual: block %#x not owned", block.Begin())
	rel := block.Begin() - v.region.Base()
	idx := int(rel / uintptr(v.pageSize))
	if checked {
		assertf(rel%uintptr(v.pageSize) == 0, "virtual: block %#x is not a page start", block.Begin())
		assertf(v.inUse.get(idx), "virtual: page %d deallocated twice", idx)
	}
	v.inUse.clear(idx)
	v.free = append(v.free, idx)
}

// Owns implements Allocator: the block lies inside the reservation.
func (v *VirtualAllocator) Owns(block ByteSpan) bool {
	if v.region == nil || block.IsEmpty() {
		return false
	}
	return v.region.Contains(block.Begin(), block.Len())
}

// Trim decommits every free page that is still committed, batching adjacent
// pages into single system calls, and returns the number of pages trimmed.
// When a call fails, the pages decommitted by earlier calls are still
// accounted as trimmed and the rest stay committed for the next Trim.
func (v *VirtualAllocator) Trim() (int, error) {
	if v.region == nil {
		return 0, ErrReleased
	}
	var batch []int
	for _, idx := range v.free {
		if !v.trimmed.get(idx) {
			v.pending.Add(v.offset(idx), v.pageSize.Int())
			batch = append(batch, idx)
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}
	done, err := v.pending.Decommit(v.decommitter)
	v.decommits += int64(len(done))
	// Free pages are gathered afresh on every call.
	v.pending.Reset()

	n := 0
	for _, idx := range batch {
		if covered(done, v.offset(idx)) {
			v.trimmed.set(idx)
			n++
		}
	}
	v.nTrim += n
	if err != nil {
		v.log.Warn("virtual: trim stopped early",
			slog.Int("pages", n),
			slog.Int("pending", len(batch)-n),
			slog.Any("error", err))
		return n, fmt.Errorf("virtual: trim: %w", err)
	}
	v.log.Debug("virtual: trimmed",
		slog.Int("pages", n),
		slog.Int("calls", len(done)))
	return n, nil
}

// covered reports whether off falls inside one of ranges.
func covered(ranges []vm.Range, off int) bool {
	o := int64(off)
	for _, r := range ranges {
		if o >= r.Off && o < r.End() {
			return true
		}
	}
	return false
}

// Stats returns a snapshot of the allocator's page accounting.
func (v *VirtualAllocator) Stats() VirtualStats {
	s := VirtualStats{
		PageSize:      v.pageSize,
		CapacityPages: v.capacity,
		FreePages:     len(v.free),
		Commits:       v.commits,
		Decommits:     v.decommits,
	}
	if v.region != nil {
		s.Reserved = Bytes(v.region.Len())
	}
	s.CommittedPages = v.next - v.nTrim
	s.InUsePages = v.next - len(v.free)
	return s
}

// Close releases the reservation. Every page becomes invalid.
func (v *VirtualAllocator) Close() error {
	if v.region == nil {
		return nil
	}
	err := v.region.Release()
	v.region = nil
	v.free = nil
	return err
}

// pageBits is a fixed-size bitset indexed by page.
type pageBits []uint64

func newPageBits(n int) pageBits { return make(pageBits, (n+63)/64) }

func (b pageBits) get(i int) bool { return b[i/64]&(1<<(i%64)) != 0 }
func (b pageBits) set(i int)      { b[i/64] |= 1 << (i % 64) }
func (b pageBits) clear(i int)    { b[i/64] &^= 1 << (i % 64) }

// Compile-time interface check
var _ Allocator = (*VirtualAllocator)(nil)

// PageSize returns the system page granularity that virtual allocators
// round to.
func PageSize() Bytes { return Bytes(vm.PageSize()) }
