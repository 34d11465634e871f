package alloc

import "sync"

// SynchronizedAllocator serializes every call to the decorated allocator with
// a mutex, making any allocator safe to share between goroutines.
type SynchronizedAllocator[A Allocator] struct {
	mu    sync.Mutex
	inner A
}

// NewSynchronized wraps inner.
func NewSynchronized[A Allocator](inner A) *SynchronizedAllocator[A] {
	return &SynchronizedAllocator[A]{inner: inner}
}

// Allocate implements Allocator.
func (s *SynchronizedAllocator[A]) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Allocate(size, alignment)
}

// Deallocate implements Allocator.
func (s *SynchronizedAllocator[A]) Deallocate(block RWByteSpan, alignment Alignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Deallocate(block, alignment)
}

// Owns implements Allocator.
func (s *SynchronizedAllocator[A]) Owns(block ByteSpan) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Owns(block)
}

// TryDeallocateAll releases every block when the decorated allocator supports
// bulk deallocation and reports whether it did.
func (s *SynchronizedAllocator[A]) TryDeallocateAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DeallocateAll(s.inner)
}

// Do runs fn with the lock held, for reading statistics or checkpointing the
// decorated allocator consistently.
func (s *SynchronizedAllocator[A]) Do(fn func(inner A)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.inner)
}

// Compile-time interface check
var _ Allocator = (*SynchronizedAllocator[Allocator])(nil)
