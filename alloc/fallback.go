package alloc

// FallbackAllocator tries a primary allocator first and retries on a
// fallback allocator when the primary returns an empty span.
//
// Deallocation is routed by asking the primary whether it owns the block, so
// the primary should be the cheaper, more local tier (a pool or an arena in
// front of the heap). Callers never need to know which tier served a block.
type FallbackAllocator[P, F Allocator] struct {
	primary  P
	fallback F
}

// NewFallback composes primary and fallback.
func NewFallback[P, F Allocator](primary P, fallback F) *FallbackAllocator[P, F] {
	return &FallbackAllocator[P, F]{primary: primary, fallback: fallback}
}

// Primary returns the first-tier allocator.
func (f *FallbackAllocator[P, F]) Primary() P { return f.primary }

// Fallback returns the second-tier allocator.
func (f *FallbackAllocator[P, F]) Fallback() F { return f.fallback }

// Allocate implements Allocator.
func (f *FallbackAllocator[P, F]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if block := f.primary.Allocate(size, alignment); !block.IsEmpty() {
		return block
	}
	return f.fallback.Allocate(size, alignment)
}

// Deallocate implements Allocator.
func (f *FallbackAllocator[P, F]) Deallocate(block RWByteSpan, alignment Alignment) {
	ro := block.ReadOnly()
	if f.primary.Owns(ro) {
		f.primary.Deallocate(block, alignment)
		return
	}
	assertf(f.fallback.Owns(ro), "fallback: block %#x owned by neither tier", block.Begin())
	f.fallback.Deallocate(block, alignment)
}

// Owns implements Allocator.
func (f *FallbackAllocator[P, F]) Owns(block ByteSpan) bool {
	return f.primary.Owns(block) || f.fallback.Owns(block)
}

// Compile-time interface check
var _ Allocator = (*FallbackAllocator[Allocator, Allocator])(nil)
