// Package alloc provides composable low-level memory allocators behind a single
// Allocate/Deallocate/Owns contract.
//
// # Overview
//
// Every allocator hands out raw byte spans. A request that cannot be satisfied
// returns an empty span; no allocator panics or returns an error on resource
// failure. Allocators compose leaf-first: arenas draw chunks from a leaf,
// decorators wrap any layer, and consumers such as Buffer take whatever
// Allocator is in scope.
//
// # Allocator Interface
//
//   - Allocate(size, alignment): at least size bytes at alignment, or empty
//   - Deallocate(block, alignment): return a block to the allocator that made it
//   - Owns(block): whether this allocator may deallocate block
//
// Allocators that can release everything at once also implement
// BulkDeallocator. Erase boxes a concrete allocator as an Allocator while
// keeping that capability visible.
//
// # Implementations
//
// Leaves:
//
//   - SystemAllocator: Go heap, over-allocates to honour alignment; maps
//     blocks of DirectMapThreshold and up straight from the OS
//   - NullAllocator: never allocates, owns only empty spans
//   - VirtualAllocator: fixed-size pages from reserved address space
//
// Arenas:
//
//   - LinearAllocator: bump allocation in chunks, bulk release only
//   - StackAllocator: LinearAllocator plus Checkpoint/Rewind
//   - VirtualStackAllocator: stack over one reservation, commits on demand
//
// Decorators:
//
//   - CountingAllocator: live and lifetime allocation counts
//   - QuotaAllocator: byte budget
//   - FallbackAllocator: primary, then fallback
//   - PassthroughAllocator / AllocatorReference: borrowed allocator
//   - SynchronizedAllocator: mutex for sharing between goroutines
//
// # Usage Example
//
//	arena := alloc.NewStack(alloc.System(), nil)
//	defer arena.DeallocateAll()
//
//	cp := arena.Checkpoint()
//	block := arena.Allocate(256, alloc.DefaultAlignment)
//	if block.IsEmpty() {
//	    return alloc.ErrOutOfMemory
//	}
//	copy(block, payload)
//	arena.Rewind(cp)
//
// # Active Allocator
//
// Each goroutine has an active allocator, System until changed. Enter installs
// one for a scope and Exit restores the previous one:
//
//	ctx := alloc.Enter(arena)
//	defer ctx.Exit()
//
//	buf, err := alloc.NewScopedBuffer(4*alloc.KiB, alloc.DefaultAlignment)
//
// Scopes do not follow work onto new goroutines. NewContext and FromContext
// carry an allocator through a context.Context instead.
//
// # Contract Violations
//
// Deallocating a foreign block, mismatched alignment, rewinding to a stale
// checkpoint and misnested scopes panic with an error wrapping
// ErrContractViolation. Building with -tags memkit_unchecked removes these
// checks from the hot paths.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Wrap a shared allocator in
// NewSynchronized, or give each goroutine its own.
//
// # Related Packages
//
//   - github.com/joshuapare/memkit/internal/vm: Address space reservation and paging
//   - github.com/joshuapare/memkit/cmd/allocctl: Allocator stack simulator
package alloc
