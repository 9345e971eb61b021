// Package buddy implements the physical-frame allocator: power-of-two-sized,
// naturally aligned blocks of frames with split-on-allocate and
// coalesce-on-free.
//
// # Overview
//
// The allocator manages one contiguous Region through its frame Table. Free
// blocks are threaded into per-order doubly linked lists through the frame
// metadata entries themselves, and a 64-bit occupancy bitmap records which
// orders currently have free blocks, so finding the smallest suitable block
// is a single find-first-set.
//
//   - Alloc(order): pop the smallest free block of order >= the request,
//     splitting upper halves back onto lower lists until it fits
//   - Free(addr, order): merge with the buddy block (address XOR block size)
//     as long as the buddy is free at the same order, then push the result
//
// # Seeding
//
// New decomposes the usable span greedily into the largest aligned
// power-of-two blocks that fit, seeding each order's list. A 1 MiB region
// becomes a single order-8 block; odd-sized regions become a descending run
// of blocks.
//
// # Failure
//
// Alloc fails with ErrOutOfMemory when no order >= the request has a free
// block, and in that case changes nothing. Cheap contract violations on Free
// (address outside the region, misaligned for the order, block not currently
// allocated, order mismatch) panic: this layer has no isolation domain to
// contain the corruption silent acceptance would cause.
//
// # Thread Safety
//
// One internal mutex serializes Alloc and Free for their full duration,
// including cascading splits and merges. Callers layered above must acquire
// their own locks before calling in, never the other way around.
package buddy
