package alloc

// CountingAllocator counts successful allocations and deallocations passing
// through it. It never changes an allocation outcome.
//
// NOT thread-safe. Wrap it in a SynchronizedAllocator to share it.
type CountingAllocator[A Allocator] struct {
	inner A

	allocations   int64
	deallocations int64
}

// NewCounting wraps inner.
func NewCounting[A Allocator](inner A) *CountingAllocator[A] {
	return &CountingAllocator[A]{inner: inner}
}

// Inner returns the decorated allocator.
func (c *CountingAllocator[A]) Inner() A { return c.inner }

// Allocate implements Allocator.
func (c *CountingAllocator[A]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	block := c.inner.Allocate(size, alignment)
	if !block.IsEmpty() {
		c.allocations++
	}
	return block
}

// Deallocate implements Allocator.
func (c *CountingAllocator[A]) Deallocate(block RWByteSpan, alignment Alignment) {
	c.inner.Deallocate(block, alignment)
	if !block.IsEmpty() {
		c.deallocations++
	}
}

// Owns implements Allocator.
func (c *CountingAllocator[A]) Owns(block ByteSpan) bool {
	return c.inner.Owns(block)
}

// AllocationCount returns the number of blocks currently outstanding.
func (c *CountingAllocator[A]) AllocationCount() int64 {
	return c.allocations - c.deallocations
}

// ProgressiveAllocationCount returns the number of successful allocations
// over the allocator's lifetime.
func (c *CountingAllocator[A]) ProgressiveAllocationCount() int64 {
	return c.allocations
}

// DeallocationCount returns the number of deallocations observed.
func (c *CountingAllocator[A]) DeallocationCount() int64 {
	return c.deallocations
}

// Compile-time interface check
var _ Allocator = (*CountingAllocator[Allocator])(nil)
