package alloc

// PassthroughAllocator forwards every call to an allocator it does not own.
// While unbound it behaves exactly like NullAllocator.
//
// The referenced allocator must outlive the passthrough and every block
// obtained through it.
type PassthroughAllocator[A Allocator] struct {
	target A
	bound  bool
}

// NewPassthrough returns a passthrough bound to target.
func NewPassthrough[A Allocator](target A) *PassthroughAllocator[A] {
	return &PassthroughAllocator[A]{target: target, bound: true}
}

// Bind points the passthrough at target.
func (p *PassthroughAllocator[A]) Bind(target A) {
	p.target = target
	p.bound = true
}

// Unbind detaches the passthrough; it then rejects every allocation.
func (p *PassthroughAllocator[A]) Unbind() {
	var zero A
	p.target = zero
	p.bound = false
}

// Target returns the referenced allocator and whether one is bound.
func (p *PassthroughAllocator[A]) Target() (A, bool) {
	return p.target, p.bound
}

// Allocate implements Allocator.
func (p *PassthroughAllocator[A]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if !p.bound {
		return nil
	}
	return p.target.Allocate(size, alignment)
}

// Deallocate implements Allocator.
func (p *PassthroughAllocator[A]) Deallocate(block RWByteSpan, alignment Alignment) {
	if !p.bound {
		null.Deallocate(block, alignment)
		return
	}
	p.target.Deallocate(block, alignment)
}

// Owns implements Allocator.
func (p *PassthroughAllocator[A]) Owns(block ByteSpan) bool {
	if !p.bound {
		return block.IsEmpty()
	}
	return p.target.Owns(block)
}

// AllocatorReference presents a borrowed allocator through the same
// polymorphic surface as an owned AllocatorT, without copying it or
// extending its lifetime.
type AllocatorReference[A Allocator] = AllocatorT[*PassthroughAllocator[A]]

// Reference returns an AllocatorReference to target.
func Reference[A Allocator](target A) *AllocatorReference[A] {
	return NewAllocatorT(NewPassthrough(target))
}

// Compile-time interface check
var _ Allocator = (*PassthroughAllocator[Allocator])(nil)
