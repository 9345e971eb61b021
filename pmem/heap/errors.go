package heap

import (
	"errors"

	"github.com/framekit/framekit/pmem/buddy"
)

// ErrOutOfMemory aliases the buddy allocator's exhaustion error so callers
// can match it at the facade without importing the layers below.
var ErrOutOfMemory = buddy.ErrOutOfMemory

var (
	// ErrInvalidSize indicates a zero-sized allocation request.
	ErrInvalidSize = errors.New("heap: invalid allocation size")

	// ErrBadAlign indicates an alignment that is not a power of two or
	// exceeds the frame size.
	ErrBadAlign = errors.New("heap: unsupported alignment")

	// ErrAlreadyInitialized indicates a second Init of the process-wide heap.
	ErrAlreadyInitialized = errors.New("heap: already initialized")

	// ErrNotInitialized indicates use of the process-wide heap before Init.
	ErrNotInitialized = errors.New("heap: not initialized")
)
