package alloc

// QuotaAllocator limits the number of bytes simultaneously outstanding from
// the decorated allocator.
//
// A request that would exceed the quota is denied without reaching the
// decorated allocator. A request the decorated allocator fails consumes no
// quota. Deallocate returns exactly the size of the block to the quota.
//
// NOT thread-safe. Bookkeeping needs external serialization when shared.
type QuotaAllocator[A Allocator] struct {
	inner A
	limit Bytes
	used  Bytes
}

// NewQuota wraps inner with a ceiling of limit bytes.
func NewQuota[A Allocator](inner A, limit Bytes) *QuotaAllocator[A] {
	if limit < 0 {
		limit = 0
	}
	return &QuotaAllocator[A]{inner: inner, limit: limit}
}

// Inner returns the decorated allocator.
func (q *QuotaAllocator[A]) Inner() A { return q.inner }

// Allocate implements Allocator.
func (q *QuotaAllocator[A]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if size <= 0 || size > q.limit-q.used {
		return nil
	}
	block := q.inner.Allocate(size, alignment)
	if block.IsEmpty() {
		return nil
	}
	q.used += block.Size()
	return block
}

// Deallocate implements Allocator.
func (q *QuotaAllocator[A]) Deallocate(block RWByteSpan, alignment Alignment) {
	assertf(block.Size() <= q.used,
		"quota: returning %d bytes with only %d outstanding", len(block), q.used)
	q.inner.Deallocate(block, alignment)
	q.used -= block.Size()
}

// Owns implements Allocator.
func (q *QuotaAllocator[A]) Owns(block ByteSpan) bool {
	return q.inner.Owns(block)
}

// Max returns the quota ceiling.
func (q *QuotaAllocator[A]) Max() Bytes { return q.limit }

// Usage returns the number of bytes currently granted.
func (q *QuotaAllocator[A]) Usage() Bytes { return q.used }

// Available returns the number of bytes that may still be granted.
func (q *QuotaAllocator[A]) Available() Bytes { return q.limit - q.used }

// Compile-time interface check
var _ Allocator = (*QuotaAllocator[Allocator])(nil)
