package pmem

import "errors"

var (
	// ErrEmptyRegion indicates region bounds with no whole frame between them.
	ErrEmptyRegion = errors.New("pmem: region holds no whole frame")

	// ErrOutOfRange indicates an address outside the managed span.
	ErrOutOfRange = errors.New("pmem: address out of range")

	// ErrBadLayout indicates RAM bounds the memory map cannot be derived from.
	ErrBadLayout = errors.New("pmem: unusable memory layout")
)
