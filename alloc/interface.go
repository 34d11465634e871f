package alloc

// Allocator is the contract shared by every allocator in this package.
//
// Implementations:
//   - SystemAllocator: Go heap, allocator of last resort
//   - NullAllocator: rejects everything
//   - VirtualAllocator: fixed-size pages from reserved address space
//   - LinearAllocator, StackAllocator: bump allocation out of chunks
//   - VirtualStackAllocator: bump allocation over one reservation
//   - CountingAllocator, QuotaAllocator, FallbackAllocator,
//     PassthroughAllocator, SynchronizedAllocator: decorators
//
// Allocators are identified by identity, so implementations should be pointer
// types. A value whose dynamic type is not comparable has no identity: Same
// never reports it equal to anything. Every block must be returned to the
// allocator that produced it, with the alignment it was requested with.
type Allocator interface {
	// Allocate returns a block of exactly size bytes whose first byte is
	// aligned to alignment, or an empty span when the request cannot be
	// satisfied. It never panics on resource exhaustion.
	Allocate(size Bytes, alignment Alignment) RWByteSpan

	// Deallocate returns block to the allocator. block must come from a prior
	// Allocate on the same allocator with the same alignment and must not have
	// been deallocated already. Violations are contract violations, checked
	// by assertions only.
	Deallocate(block RWByteSpan, alignment Alignment)

	// Owns reports whether this allocator is a legal target for deallocating
	// block. It has no side effects.
	Owns(block ByteSpan) bool
}

// BulkDeallocator is implemented by allocators that can release every
// outstanding block at once.
type BulkDeallocator interface {
	DeallocateAll()
}

// Same reports whether a and b are the same allocator instance. It reports
// false when the comparison would panic on a non-comparable dynamic type.
func Same(a, b Allocator) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// DeallocateAll releases every block of a when a supports bulk
// deallocation and reports whether it did.
func DeallocateAll(a Allocator) bool {
	bulk, ok := a.(BulkDeallocator)
	if !ok {
		return false
	}
	bulk.DeallocateAll()
	return true
}

// validRequest filters requests every allocator rejects up front.
func validRequest(size Bytes, alignment Alignment) bool {
	return size > 0 && size <= maxBytes && alignment.IsValid()
}
