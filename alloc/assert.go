package alloc

import "fmt"

// violation panics with an error wrapping ErrContractViolation.
func violation(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrContractViolation}, args...)...))
}

// assertf panics when checks are compiled in and cond is false.
// Callers guard expensive conditions with `if checked`.
func assertf(cond bool, format string, args ...any) {
	if checked && !cond {
		violation(format, args...)
	}
}
