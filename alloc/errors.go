package alloc

import "errors"

var (
	// ErrInvalidAlignment indicates an alignment that is not a non-zero power of two.
	ErrInvalidAlignment = errors.New("alloc: alignment must be a power of two")

	// ErrInvalidSize indicates a negative or unrepresentable size.
	ErrInvalidSize = errors.New("alloc: invalid size")

	// ErrOutOfMemory indicates the bound allocator returned an empty span.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrReserve indicates that reserving virtual address space failed.
	ErrReserve = errors.New("alloc: reserve failed")

	// ErrReleased indicates use of a buffer or allocator after it was released.
	ErrReleased = errors.New("alloc: use after release")

	// ErrContractViolation is wrapped by every assertion failure: deallocating a
	// foreign block, mismatched alignment, rewinding to a stale checkpoint, or
	// exiting an allocation context out of order.
	ErrContractViolation = errors.New("alloc: contract violation")
)
