package alloc

// NullAllocator never allocates. It owns only empty spans, which makes it the
// safe sentinel at the bottom of a composed policy and the behaviour of an
// unbound PassthroughAllocator.
type NullAllocator struct{}

var null = &NullAllocator{}

// Null returns the shared null allocator.
func Null() *NullAllocator { return null }

// Allocate implements Allocator. It always returns an empty span.
func (n *NullAllocator) Allocate(Bytes, Alignment) RWByteSpan { return nil }

// Deallocate implements Allocator. The only block a null allocator can have
// handed out is the empty span.
func (n *NullAllocator) Deallocate(block RWByteSpan, _ Alignment) {
	assertf(block.IsEmpty(), "null: deallocating non-empty block of %d bytes", len(block))
}

// Owns implements Allocator. It reports true only for empty spans.
func (n *NullAllocator) Owns(block ByteSpan) bool { return block.IsEmpty() }

// Compile-time interface check
var _ Allocator = (*NullAllocator)(nil)
