//go:build unix

// Package arena provides platform-specific backing storage for the managed
// physical-memory span.
package arena

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map reserves an anonymous private mapping of the given size and returns it
// with a release function. The mapping is the "RAM" the allocators manage;
// keeping it out of the Go heap means the span's lifetime is explicit and its
// pages are untouched until written.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("arena: invalid mapping size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	release := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, release, nil
}
