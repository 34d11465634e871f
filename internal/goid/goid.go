// Package goid identifies the calling goroutine.
//
// The runtime does not expose goroutine ids; the id is parsed from the header
// line of the caller's stack trace ("goroutine 42 [running]:"). The result is
// stable for the lifetime of the goroutine and is never reused while it runs.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// Get returns the id of the calling goroutine, or 0 if the stack header could
// not be parsed.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

func parse(b []byte) uint64 {
	b, ok := bytes.CutPrefix(b, prefix)
	if !ok {
		return 0
	}
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
