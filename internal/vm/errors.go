package vm

import "errors"

var (
	// ErrUnaligned indicates an offset or length that is not a multiple of the page size.
	ErrUnaligned = errors.New("vm: range not page aligned")

	// ErrOutOfRange indicates a range outside the reservation.
	ErrOutOfRange = errors.New("vm: range outside reservation")

	// ErrReleased indicates use of a region after Release.
	ErrReleased = errors.New("vm: region released")

	// ErrBadSize indicates a non-positive reservation size.
	ErrBadSize = errors.New("vm: reservation size must be positive")
)
