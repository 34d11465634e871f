package vm

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/buf"
)

// Region is a reserved range of virtual address space.
type Region struct {
	mem      []byte
	pageSize int
}

// PageSize returns the system page granularity.
func PageSize() int { return pageSize() }

// AlignPage rounds n up to a multiple of the system page size.
func AlignPage(n int) int {
	ps := pageSize()
	return (n + ps - 1) &^ (ps - 1)
}

// Reserve reserves at least size bytes of address space, rounded up to the
// page size. No page is committed.
func Reserve(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	ps := pageSize()
	rounded, ok := buf.AlignUpOverflowSafe(size, ps)
	if !ok {
		return nil, fmt.Errorf("vm: reserve %d bytes: %w", size, ErrOutOfRange)
	}
	mem, err := reserve(rounded)
	if err != nil {
		return nil, fmt.Errorf("vm: reserve %d bytes: %w", rounded, err)
	}
	return &Region{mem: mem, pageSize: ps}, nil
}

// Bytes returns the whole reservation. Only committed pages may be touched.
func (r *Region) Bytes() []byte { return r.mem }

// Len returns the size of the reservation.
func (r *Region) Len() int { return len(r.mem) }

// PageSize returns the page granularity of the reservation.
func (r *Region) PageSize() int { return r.pageSize }

// Base returns the address of the first reserved byte.
func (r *Region) Base() uintptr {
	if len(r.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(r.mem)))
}

// Contains reports whether [addr, addr+n) lies inside the reservation.
func (r *Region) Contains(addr uintptr, n int) bool {
	base := r.Base()
	if base == 0 || n < 0 || addr < base {
		return false
	}
	return addr-base <= uintptr(len(r.mem)) && uintptr(n) <= uintptr(len(r.mem))-(addr-base)
}

// Commit backs [off, off+n) with storage. Both must be page aligned.
func (r *Region) Commit(off, n int) error {
	b, err := r.pages(off, n)
	if err != nil || len(b) == 0 {
		return err
	}
	if err := commit(b); err != nil {
		return fmt.Errorf("vm: commit [%d, %d): %w", off, off+n, err)
	}
	return nil
}

// Decommit returns the storage behind [off, off+n) to the operating system.
// The range stays reserved and may be committed again.
func (r *Region) Decommit(off, n int) error {
	b, err := r.pages(off, n)
	if err != nil || len(b) == 0 {
		return err
	}
	if err := decommit(b); err != nil {
		return fmt.Errorf("vm: decommit [%d, %d): %w", off, off+n, err)
	}
	return nil
}

// Release unmaps the reservation. Calling it twice is a no-op.
func (r *Region) Release() error {
	if r.mem == nil {
		return nil
	}
	err := release(r.mem)
	r.mem = nil
	return err
}

// pages validates and slices a page-aligned range.
func (r *Region) pages(off, n int) ([]byte, error) {
	if r.mem == nil {
		return nil, ErrReleased
	}
	mask := r.pageSize - 1
	if off&mask != 0 || n&mask != 0 {
		return nil, fmt.Errorf("%w: [%d, +%d)", ErrUnaligned, off, n)
	}
	b, ok := buf.Slice(r.mem, off, n)
	if !ok {
		return nil, fmt.Errorf("%w: [%d, +%d) of %d", ErrOutOfRange, off, n, len(r.mem))
	}
	return b, nil
}
