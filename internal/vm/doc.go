// Package vm provides platform-specific helpers for reserving virtual address
// space and committing or decommitting pages inside the reservation.
//
// # Overview
//
// A Region is a contiguous range of address space reserved up front without
// backing storage. Pages are made usable with Commit and handed back to the
// operating system with Decommit; the address range itself stays reserved
// until Release, so no pointer into it is ever invalidated by growth.
//
//	r, err := vm.Reserve(1 << 20)
//	if err != nil {
//	    return err
//	}
//	defer r.Release()
//
//	if err := r.Commit(0, vm.PageSize()); err != nil {
//	    return err
//	}
//	page := r.Bytes()[:vm.PageSize()]
//
// # Platforms
//
//   - Unix: mmap(PROT_NONE) to reserve, mprotect to commit,
//     madvise(MADV_DONTNEED) + mprotect(PROT_NONE) to decommit, munmap to release
//   - Windows: VirtualAlloc(MEM_RESERVE / MEM_COMMIT), VirtualFree(MEM_DECOMMIT / MEM_RELEASE)
//   - Others: a heap slice; commit and decommit are no-ops
//
// # Batching
//
// RangeSet accumulates byte ranges, then page-aligns, sorts and merges them so
// that a batch of released pages is decommitted with as few system calls as
// possible.
//
// # Thread Safety
//
// Region and RangeSet are NOT thread-safe. Callers must synchronize access.
package vm
