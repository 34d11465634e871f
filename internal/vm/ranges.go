package vm

import "sort"

// defaultRangeCapacity is the pre-allocated capacity for pending ranges.
const defaultRangeCapacity = 64

// Range is a byte range relative to the start of a Region.
type Range struct {
	Off int64
	Len int64
}

// End returns the offset one past the range.
func (r Range) End() int64 { return r.Off + r.Len }

// RangeSet accumulates byte ranges and applies them to a Region in batches.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type RangeSet struct {
	ranges   []Range
	pageSize int64
}

// NewRangeSet creates a range set that aligns to pageSize, which must be a
// power of two. A non-positive pageSize uses the system page size.
func NewRangeSet(pageSize int) *RangeSet {
	if pageSize <= 0 {
		pageSize = PageSize()
	}
	return &RangeSet{
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: int64(pageSize),
	}
}

// Add records [off, off+length). Ranges are aligned and merged lazily.
func (s *RangeSet) Add(off, length int) {
	if length <= 0 {
		return
	}
	s.ranges = append(s.ranges, Range{Off: int64(off), Len: int64(length)})
}

// Len returns the number of raw ranges recorded.
func (s *RangeSet) Len() int { return len(s.ranges) }

// Reset clears all recorded ranges.
func (s *RangeSet) Reset() { s.ranges = s.ranges[:0] }

// Ranges returns a copy of the raw, uncoalesced ranges.
func (s *RangeSet) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Coalesced returns the recorded ranges page-aligned (start rounded down,
// end rounded up), sorted by offset, with overlapping and adjacent ranges
// merged.
func (s *RangeSet) Coalesced() []Range {
	if len(s.ranges) == 0 {
		return nil
	}

	mask := s.pageSize - 1
	aligned := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		start := r.Off &^ mask
		end := (r.End() + mask) &^ mask
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// Decommitter releases the storage behind a page-aligned range. *Region
// implements it.
type Decommitter interface {
	Decommit(off, n int) error
}

// Decommit decommits every coalesced range through d, clears the set and
// returns the ranges decommitted, one call each. On error the ranges already
// decommitted are returned and dropped from the set; the rest stay recorded
// so the caller can retry.
func (s *RangeSet) Decommit(d Decommitter) ([]Range, error) {
	ranges := s.Coalesced()
	for i, rg := range ranges {
		if err := d.Decommit(int(rg.Off), int(rg.Len)); err != nil {
			s.ranges = append(s.ranges[:0], ranges[i:]...)
			return ranges[:i], err
		}
	}
	s.Reset()
	return ranges, nil
}
