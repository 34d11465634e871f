//go:build linux || darwin || freebsd

package vm

import (
	"errors"

	"golang.org/x/sys/unix"
)

func pageSize() int { return unix.Getpagesize() }

// reserve maps inaccessible anonymous memory; nothing is charged against
// physical memory until pages are made accessible.
func reserve(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func commit(b []byte) error {
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}

// decommit drops the backing pages, then revokes access so stray touches
// fault instead of silently recommitting.
func decommit(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
		return err
	}
	return unix.Mprotect(b, unix.PROT_NONE)
}

// release requires the slice returned by reserve.
func release(b []byte) error {
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
