package alloc

// LinearMetrics is a snapshot of a linear or stack allocator's chunk usage.
type LinearMetrics struct {
	SizeInUse        Bytes   // Bytes consumed up to the watermark, padding included
	Capacity         Bytes   // Total size of all chunks held
	NumChunks        int     // Chunks held, including ones retained by Reset
	ChunkGranularity Bytes   // Chunk size multiple
	Utilization      float64 // SizeInUse / Capacity (0.0-1.0)
}

// SizeInUse returns the bytes consumed in the active chunk and every chunk
// before it, including alignment padding.
func (l *LinearAllocator[A]) SizeInUse() Bytes {
	var sum Bytes
	for i := 0; i <= l.cursor && i < len(l.chunks); i++ {
		sum += l.chunks[i].used
	}
	return sum
}

// Capacity returns the total size of the chunks held.
func (l *LinearAllocator[A]) Capacity() Bytes {
	var sum Bytes
	for i := range l.chunks {
		sum += l.chunks[i].mem.Size()
	}
	return sum
}

// NumChunks returns the number of chunks held.
func (l *LinearAllocator[A]) NumChunks() int { return len(l.chunks) }

// Metrics returns a snapshot of the allocator's statistics.
func (l *LinearAllocator[A]) Metrics() LinearMetrics {
	m := LinearMetrics{
		SizeInUse:        l.SizeInUse(),
		Capacity:         l.Capacity(),
		NumChunks:        l.NumChunks(),
		ChunkGranularity: l.granularity,
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	}
	return m
}
