package alloc

import "log/slog"

// DefaultChunkGranularity is the default chunk size multiple for linear and
// stack allocators (64 KiB).
const DefaultChunkGranularity = 64 * KiB

// LinearOptions configures LinearAllocator and StackAllocator.
type LinearOptions struct {
	// ChunkGranularity rounds up the size of every chunk requested from the
	// underlying allocator. A request larger than one granule gets a chunk
	// sized to fit it.
	// Default: DefaultChunkGranularity
	ChunkGranularity Bytes

	// ChunkAlignment is the alignment requested for each chunk. Blocks with a
	// stricter alignment pay worst-case padding inside the chunk.
	// Default: MaxAlignment
	ChunkAlignment Alignment

	// Logger receives debug records for chunk acquisition and release.
	// Default: discard
	Logger *slog.Logger
}

// DefaultLinearOptions returns the recommended options for linear and stack
// allocators.
func DefaultLinearOptions() *LinearOptions {
	return &LinearOptions{
		ChunkGranularity: DefaultChunkGranularity,
		ChunkAlignment:   MaxAlignment,
		Logger:           discardLogger,
	}
}

// normalize fills zero fields with defaults.
func (o *LinearOptions) normalize() LinearOptions {
	def := DefaultLinearOptions()
	if o == nil {
		return *def
	}
	out := *o
	if out.ChunkGranularity <= 0 {
		out.ChunkGranularity = def.ChunkGranularity
	}
	if !out.ChunkAlignment.IsValid() {
		out.ChunkAlignment = def.ChunkAlignment
	}
	if out.Logger == nil {
		out.Logger = def.Logger
	}
	return out
}

// VirtualOptions configures VirtualAllocator and VirtualStackAllocator.
type VirtualOptions struct {
	// PageSize is the size of each page handed out by VirtualAllocator and the
	// commit step of VirtualStackAllocator. It is rounded up to the system
	// page granularity.
	// Default: system page size
	PageSize Bytes

	// Logger receives debug records for commits and decommits.
	// Default: discard
	Logger *slog.Logger
}

// DefaultVirtualOptions returns options using the system page size.
func DefaultVirtualOptions() *VirtualOptions {
	return &VirtualOptions{Logger: discardLogger}
}

func (o *VirtualOptions) normalize() VirtualOptions {
	if o == nil {
		return *DefaultVirtualOptions()
	}
	out := *o
	if out.Logger == nil {
		out.Logger = discardLogger
	}
	return out
}

var discardLogger = slog.New(slog.DiscardHandler)
