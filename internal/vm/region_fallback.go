//go:build !linux && !darwin && !freebsd && !windows

package vm

import "os"

func pageSize() int { return os.Getpagesize() }

// reserve allocates the whole range on the heap when no virtual memory API
// is available; commit and decommit have nothing to do.
func reserve(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func commit([]byte) error { return nil }

func decommit(b []byte) error {
	clear(b)
	return nil
}

func release([]byte) error { return nil }
