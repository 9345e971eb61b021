//go:build !unix

// Package arena provides platform-specific backing storage for the managed
// physical-memory span.
package arena

import "fmt"

// Map allocates the span from the Go heap when mmap is not available.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("arena: invalid mapping size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
