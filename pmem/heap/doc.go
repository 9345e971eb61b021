// Package heap is the single allocation entry point the rest of the system
// uses: it owns the buddy and slub layers and routes each request to the
// right one.
//
// # Overview
//
// A request is classified by max(size, align): at or below the largest slab
// class it goes to the slub allocator, above that it rounds up to the
// covering buddy order and takes whole frames. The returned Handle encodes
// which path served it, and the class or order it came from, so Free
// dispatches directly without re-deriving the request or consulting a lookup
// table.
//
//	err := heap.Init(heap.Config{Size: 64 << 20})
//	...
//	hd, err := heap.Alloc(96, 8)
//	buf, _ := heap.Bytes(hd)
//	...
//	heap.Free(hd)
//
// # Process-wide instance
//
// Init constructs the instance exactly once; a second Init fails with
// ErrAlreadyInitialized and leaves the first instance untouched. The
// package-level Alloc, Free and Bytes operate on it from any goroutine.
// Embedders that want isolated heaps (tests, simulations) use New directly.
//
// # Failure
//
// Exhaustion surfaces as ErrOutOfMemory. Freeing a zero or corrupted Handle
// panics: handles only come from Alloc, so a bad one is a caller bug this
// layer cannot contain.
package heap
