package alloc

import "fmt"

// Buffer is an owning byte buffer bound to one allocator and one alignment for
// its whole lifetime. Its storage is always returned through the allocator it
// came from.
//
// Buffers are not copied implicitly: use Clone, CopyTo or MoveTo. Moving to a
// different allocator degrades to a deep copy followed by a release.
type Buffer struct {
	alloc     Allocator
	alignment Alignment
	data      RWByteSpan
}

// NewBuffer allocates size bytes from a. A zero size yields an empty buffer
// that still remembers a and alignment. An empty span from a for a non-zero
// size is reported as ErrOutOfMemory.
func NewBuffer(a Allocator, size Bytes, alignment Alignment) (*Buffer, error) {
	assertf(a != nil, "buffer: nil allocator")
	if !alignment.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, uintptr(alignment))
	}
	if size < 0 || size > maxBytes {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	b := &Buffer{alloc: a, alignment: alignment}
	if size == 0 {
		return b, nil
	}
	b.data = a.Allocate(size, alignment)
	if b.data.IsEmpty() {
		return nil, fmt.Errorf("buffer: allocate %v at %v: %w", size, alignment, ErrOutOfMemory)
	}
	return b, nil
}

// NewScopedBuffer allocates from the goroutine's active allocator.
func NewScopedBuffer(size Bytes, alignment Alignment) (*Buffer, error) {
	return NewBuffer(Active(), size, alignment)
}

// Bytes returns the buffer's storage. The slice is invalid after Release,
// MoveTo or Resize.
func (b *Buffer) Bytes() []byte { return b.data }

// Span returns the buffer's storage as a span.
func (b *Buffer) Span() RWByteSpan { return b.data }

// Size returns the buffer length.
func (b *Buffer) Size() Bytes { return b.data.Size() }

// Allocator returns the bound allocator.
func (b *Buffer) Allocator() Allocator { return b.alloc }

// Alignment returns the bound alignment.
func (b *Buffer) Alignment() Alignment { return b.alignment }

// Release returns the storage to the bound allocator. The buffer stays bound
// and can be grown again with Resize. Calling Release twice is a no-op.
func (b *Buffer) Release() {
	if b.data.IsEmpty() {
		return
	}
	b.alloc.Deallocate(b.data, b.alignment)
	b.data = nil
}

// Clone returns a deep copy bound to the same allocator.
func (b *Buffer) Clone() (*Buffer, error) {
	return b.CopyTo(b.alloc)
}

// CopyTo returns a deep copy bound to a. b is left untouched.
func (b *Buffer) CopyTo(a Allocator) (*Buffer, error) {
	nb, err := NewBuffer(a, b.Size(), b.alignment)
	if err != nil {
		return nil, err
	}
	copy(nb.data, b.data)
	return nb, nil
}

// MoveTo transfers the contents to a buffer bound to a. When a is the bound
// allocator the storage is handed over as is; otherwise it is copied and the
// original released. b is empty afterwards unless an error is returned.
func (b *Buffer) MoveTo(a Allocator) (*Buffer, error) {
	if Same(a, b.alloc) {
		nb := &Buffer{alloc: b.alloc, alignment: b.alignment, data: b.data}
		b.data = nil
		return nb, nil
	}
	nb, err := b.CopyTo(a)
	if err != nil {
		return nil, err
	}
	b.Release()
	return nb, nil
}

// Resize reallocates the buffer through the bound allocator, preserving the
// common prefix. On failure the buffer is unchanged.
func (b *Buffer) Resize(size Bytes) error {
	if size < 0 || size > maxBytes {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == b.Size() {
		return nil
	}
	if size == 0 {
		b.Release()
		return nil
	}
	data := b.alloc.Allocate(size, b.alignment)
	if data.IsEmpty() {
		return fmt.Errorf("buffer: resize to %v: %w", size, ErrOutOfMemory)
	}
	copy(data, b.data)
	b.Release()
	b.data = data
	return nil
}
