package alloc

import (
	"sync"

	"github.com/joshuapare/memkit/internal/vm"
)

// DirectMapThreshold is the padded request size from which SystemAllocator
// maps blocks straight from the operating system instead of the Go heap.
const DirectMapThreshold = MiB

// SystemAllocator is the allocator of last resort. It owns every block.
//
// Requests below DirectMapThreshold come from the Go heap. The heap only
// guarantees size-class alignment, so they are padded by alignment-1 bytes
// and the returned span is sliced out of the padded allocation, the same way
// Arrow's GoAllocator provides 64-byte alignment. Deallocate is a no-op for
// them; the garbage collector reclaims a block once no span refers to it.
//
// Larger requests are reserved and committed through the virtual memory
// layer, where exhaustion is reported as an error and turned into an empty
// span. The runtime heap instead aborts the process when it cannot map a
// huge object. Such blocks are tracked by address and unmapped by Deallocate;
// one that is never deallocated stays mapped until the process exits.
//
// SystemAllocator is safe for concurrent use.
type SystemAllocator struct{}

var (
	systemOnce sync.Once
	system     *SystemAllocator

	// mapped holds directly mapped blocks, keyed by their first address.
	mapped sync.Map
)

// System returns the process-wide system allocator, constructing it on
// first use.
func System() *SystemAllocator {
	systemOnce.Do(func() {
		system = &SystemAllocator{}
	})
	return system
}

// Allocate implements Allocator.
func (s *SystemAllocator) Allocate(size Bytes, alignment Alignment) RWByteSpan {
	if !validRequest(size, alignment) || alignment.Bytes() > maxBytes-size {
		return nil
	}
	if size+alignment.Bytes()-1 >= DirectMapThreshold {
		return mapAllocate(size, alignment)
	}
	return heapAllocate(size, alignment)
}

// Deallocate implements Allocator.
func (s *SystemAllocator) Deallocate(block RWByteSpan, alignment Alignment) {
	assertf(alignment.IsAligned(block.Begin()),
		"system: block %#x does not satisfy %v", block.Begin(), alignment)
	if block.Size()+alignment.Bytes()-1 < DirectMapThreshold {
		return
	}
	if r, ok := mapped.LoadAndDelete(block.Begin()); ok {
		err := r.(*vm.Region).Release()
		assertf(err == nil, "system: unmap %#x: %v", block.Begin(), err)
	}
}

// Owns implements Allocator. It always returns true.
func (s *SystemAllocator) Owns(ByteSpan) bool { return true }

// heapAllocate pads the request so an aligned window of size bytes exists in
// the result. The padded size is below DirectMapThreshold.
func heapAllocate(size Bytes, alignment Alignment) RWByteSpan {
	// Tiny noscan objects may sit at odd addresses, so even small alignments
	// get padded.
	total := size + alignment.Bytes() - 1
	buf := make([]byte, total.Int())
	off := int(alignment.Padding(addrOf(buf)))
	return RWByteSpan(buf[off : off+size.Int() : off+size.Int()])
}

// mapAllocate reserves a padded range and commits only the pages covering the
// aligned window.
func mapAllocate(size Bytes, alignment Alignment) RWByteSpan {
	total := size + alignment.Bytes() - 1
	r, err := vm.Reserve(total.Int())
	if err != nil {
		return nil
	}
	off := int(alignment.Padding(r.Base()))
	end := off + size.Int()
	lo := off &^ (r.PageSize() - 1)
	hi := vm.AlignPage(end)
	if err := r.Commit(lo, hi-lo); err != nil {
		_ = r.Release()
		return nil
	}
	span := RWByteSpan(r.Bytes()[off:end:end])
	mapped.Store(span.Begin(), r)
	return span
}

// Compile-time interface check
var _ Allocator = (*SystemAllocator)(nil)
