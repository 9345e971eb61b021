package buddy

import "errors"

var (
	// ErrOutOfMemory indicates no free block of the required order exists.
	ErrOutOfMemory = errors.New("buddy: out of memory")

	// ErrBadOrder indicates a requested order above the allocator's maximum.
	ErrBadOrder = errors.New("buddy: order out of range")
)
