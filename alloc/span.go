package alloc

import "unsafe"

// RWByteSpan is a mutable, non-owning view over a contiguous byte range.
//
// An empty span (nil or zero length) is the failure sentinel returned by every
// Allocate call that cannot be satisfied. Spans never imply ownership; only an
// allocator's Allocate call does.
type RWByteSpan []byte

// ByteSpan is a read-only, non-owning view over a contiguous byte range.
// The zero value is the empty span.
type ByteSpan struct {
	data []byte
}

// NewByteSpan wraps b as a read-only span.
func NewByteSpan(b []byte) ByteSpan { return ByteSpan{data: b} }

// IsEmpty reports whether s has no bytes.
func (s RWByteSpan) IsEmpty() bool { return len(s) == 0 }

// Size returns the length of s.
func (s RWByteSpan) Size() Bytes { return Bytes(len(s)) }

// ReadOnly returns a read-only view of the same bytes.
func (s RWByteSpan) ReadOnly() ByteSpan { return ByteSpan{data: s} }

// Begin returns the address of the first byte, or 0 for an empty span.
func (s RWByteSpan) Begin() uintptr { return addrOf(s) }

// End returns the address one past the last byte, or 0 for an empty span.
func (s RWByteSpan) End() uintptr {
	if len(s) == 0 {
		return 0
	}
	return addrOf(s) + uintptr(len(s))
}

// IsEmpty reports whether s has no bytes.
func (s ByteSpan) IsEmpty() bool { return len(s.data) == 0 }

// Size returns the length of s.
func (s ByteSpan) Size() Bytes { return Bytes(len(s.data)) }

// Len returns the length of s as an int.
func (s ByteSpan) Len() int { return len(s.data) }

// At returns the byte at index i.
func (s ByteSpan) At(i int) byte { return s.data[i] }

// Begin returns the address of the first byte, or 0 for an empty span.
func (s ByteSpan) Begin() uintptr { return addrOf(s.data) }

// End returns the address one past the last byte, or 0 for an empty span.
func (s ByteSpan) End() uintptr {
	if len(s.data) == 0 {
		return 0
	}
	return addrOf(s.data) + uintptr(len(s.data))
}

// Contains reports whether inner lies entirely within s. An empty inner span
// is never contained.
func (s ByteSpan) Contains(inner ByteSpan) bool {
	if s.IsEmpty() || inner.IsEmpty() {
		return false
	}
	return inner.Begin() >= s.Begin() && inner.End() <= s.End()
}

// CopyTo copies the span into dst and returns the number of bytes copied.
func (s ByteSpan) CopyTo(dst []byte) int { return copy(dst, s.data) }

func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// containsRange reports whether block lies entirely inside
// [lo, hi).
func containsRange(lo, hi uintptr, block ByteSpan) bool {
	if block.IsEmpty() {
		return false
	}
	return block.Begin() >= lo && block.End() <= hi
}
