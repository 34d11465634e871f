package alloc

import (
	"unsafe"

	"github.com/joshuapare/memkit/internal/buf"
)

// New carves a zeroed T out of a and returns a pointer to it, or nil if a
// cannot satisfy the request. Release it with Free on the same allocator.
//
// T must not contain Go pointers (pointers, slices, strings, maps, channels,
// interfaces or funcs): allocator memory is opaque to the garbage collector.
func New[T any](a Allocator) *T {
	size := SizeOf[T]()
	if size == 0 {
		return new(T)
	}
	block := a.Allocate(size, AlignOf[T]())
	if block.IsEmpty() {
		return nil
	}
	clear(block)
	return (*T)(unsafe.Pointer(unsafe.SliceData(block)))
}

// Free returns a value obtained from New to a.
func Free[T any](a Allocator, p *T) {
	size := SizeOf[T]()
	if p == nil || size == 0 {
		return
	}
	a.Deallocate(unsafe.Slice((*byte)(unsafe.Pointer(p)), size.Int()), AlignOf[T]())
}

// MakeSlice carves a zeroed []T of length n out of a, or returns nil if a
// cannot satisfy the request or n*sizeof(T) overflows. The same restriction
// on pointer-carrying T as New applies.
func MakeSlice[T any](a Allocator, n int) []T {
	if n <= 0 {
		return nil
	}
	elem := SizeOf[T]()
	if elem == 0 {
		return make([]T, n)
	}
	total, err := buf.ArraySize(n, elem.Int())
	if err != nil {
		return nil
	}
	block := a.Allocate(Bytes(total), AlignOf[T]())
	if block.IsEmpty() {
		return nil
	}
	clear(block)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(block))), n)
}

// FreeSlice returns a slice obtained from MakeSlice to a. s must be the slice
// as returned, not a reslice of it.
func FreeSlice[T any](a Allocator, s []T) {
	elem := SizeOf[T]()
	if len(s) == 0 || elem == 0 {
		return
	}
	n := len(s) * elem.Int()
	a.Deallocate(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n), AlignOf[T]())
}
