package alloc

// AllocatorT stores a concrete allocator and exposes it through the Allocator
// interface while keeping the concrete type reachable through Get.
//
// Go interfaces already erase types; AllocatorT exists so that a value of a
// concrete allocator type gets one stable identity that can be passed around
// as an Allocator, and so that optional capabilities are surfaced only when
// the wrapped type has them (see Erase).
type AllocatorT[A Allocator] struct {
	alloc A
}

// NewAllocatorT wraps a.
func NewAllocatorT[A Allocator](a A) *AllocatorT[A] {
	return &AllocatorT[A]{alloc: a}
}

// Get returns the wrapped allocator.
func (t *AllocatorT[A]) Get() A { return t.alloc }

// Allocate implements Allocator.
func (t *AllocatorT[A]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	return t.alloc.Allocate(size, alignment)
}

// Deallocate implements Allocator.
func (t *AllocatorT[A]) Deallocate(block RWByteSpan, alignment Alignment) {
	t.alloc.Deallocate(block, alignment)
}

// Owns implements Allocator.
func (t *AllocatorT[A]) Owns(block ByteSpan) bool {
	return t.alloc.Owns(block)
}

// bulkAllocatorT is the AllocatorT flavour handed out for allocators that
// also implement BulkDeallocator.
type bulkAllocatorT[A Allocator] struct {
	*AllocatorT[A]
	bulk BulkDeallocator
}

// DeallocateAll implements BulkDeallocator.
func (b *bulkAllocatorT[A]) DeallocateAll() { b.bulk.DeallocateAll() }

// Erase wraps a in an AllocatorT. The dynamic type of the result implements
// BulkDeallocator exactly when A does, so callers can detect the
// capability with a type assertion.
func Erase[A Allocator](a A) Allocator {
	t := NewAllocatorT(a)
	if bulk, ok := any(a).(BulkDeallocator); ok {
		return &bulkAllocatorT[A]{AllocatorT: t, bulk: bulk}
	}
	return t
}

// Compile-time interface checks
var (
	_ Allocator       = (*AllocatorT[*SystemAllocator])(nil)
	_ BulkDeallocator = (*bulkAllocatorT[*SystemAllocator])(nil)
)
