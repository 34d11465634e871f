package alloc

import (
	"fmt"
	"math"
	"math/bits"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// Bytes is a byte count. It is a distinct type so that byte sizes are never
// silently mixed with element counts or offsets; convert explicitly with
// Bytes(n) and b.Int().
type Bytes int64

// Common sizes.
const (
	Byte Bytes = 1
	KiB        = 1024 * Byte
	MiB        = 1024 * KiB
	GiB        = 1024 * MiB
)

// maxBytes is the largest request any allocator in this package will attempt.
const maxBytes = Bytes(math.MaxInt >> 1)

// Int returns b as an int. The caller must know b fits.
func (b Bytes) Int() int { return int(b) }

// AlignUp rounds b up to the next multiple of a.
func (b Bytes) AlignUp(a Alignment) Bytes {
	mask := Bytes(a) - 1
	return (b + mask) &^ mask
}

// AlignDown rounds b down to a multiple of a.
func (b Bytes) AlignDown(a Alignment) Bytes {
	return b &^ (Bytes(a) - 1)
}

// RoundUp rounds b up to a multiple of granularity, which need not be a power of two.
// A non-positive granularity returns b unchanged.
func (b Bytes) RoundUp(granularity Bytes) Bytes {
	if granularity <= 0 {
		return b
	}
	if r := b % granularity; r != 0 {
		return b + granularity - r
	}
	return b
}

// String formats b with binary units, rounded to one decimal above 10 bytes.
func (b Bytes) String() string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}

// SizeOf returns the size of T.
func SizeOf[T any]() Bytes {
	var zero T
	return Bytes(unsafe.Sizeof(zero))
}

// Alignment is a power-of-two address alignment.
//
// Values produced by NewAlignment, MustAlignment, AlignOf and the predefined
// constants are always valid. A converted literal such as Alignment(3) is not,
// and allocators reject it by returning an empty span.
type Alignment uintptr

// Predefined alignments.
const (
	// ByteAlignment places no constraint on the address.
	ByteAlignment Alignment = 1

	// DefaultAlignment matches the platform pointer size.
	DefaultAlignment Alignment = Alignment(unsafe.Sizeof(uintptr(0)))

	// MaxAlignment is the strictest alignment of any fundamental Go type,
	// doubled for SIMD-friendly loads (the max_align_t equivalent).
	MaxAlignment Alignment = 16

	// CacheLineAlignment is the typical cache line width.
	CacheLineAlignment Alignment = 64
)

// NewAlignment validates n as a power of two.
func NewAlignment(n uintptr) (Alignment, error) {
	a := Alignment(n)
	if !a.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAlignment, n)
	}
	return a, nil
}

// MustAlignment is like NewAlignment but panics on invalid input.
// Intended for package-level variables and tests.
func MustAlignment(n uintptr) Alignment {
	a, err := NewAlignment(n)
	if err != nil {
		panic(err)
	}
	return a
}

// AlignOf returns the natural alignment of T.
func AlignOf[T any]() Alignment {
	var zero T
	return Alignment(unsafe.Alignof(zero))
}

// IsValid reports whether a is a non-zero power of two.
func (a Alignment) IsValid() bool {
	return a != 0 && a&(a-1) == 0
}

// Log2 returns the base-two logarithm of a valid alignment.
func (a Alignment) Log2() int {
	return bits.TrailingZeros64(uint64(a))
}

// Bytes returns the alignment as a byte count.
func (a Alignment) Bytes() Bytes { return Bytes(a) }

// Padding returns the number of bytes needed to advance addr to the next
// multiple of a.
func (a Alignment) Padding(addr uintptr) uintptr {
	mask := uintptr(a) - 1
	return ((addr + mask) &^ mask) - addr
}

// IsAligned reports whether addr is a multiple of a.
func (a Alignment) IsAligned(addr uintptr) bool {
	return addr&(uintptr(a)-1) == 0
}

func (a Alignment) String() string {
	return fmt.Sprintf("align(%d)", uintptr(a))
}
