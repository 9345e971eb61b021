// Package pmem models a span of physical memory as the allocator layers see
// it: addresses, frame-granular regions, the frame metadata table, and the
// computed memory map.
//
// # Overview
//
// A machine hands the kernel one contiguous span of RAM, known only by its
// start address and size. This package turns that span into the structures
// the dynamic-memory layers build on:
//
//   - PhysAddr / Region: address arithmetic and frame-granular bounds
//   - Map: the derived layout (reserved span, allocatable span, frame count)
//   - Table: per-frame metadata (order, state, free-list links)
//   - Arena: bounds-checked byte access into the managed span
//
// # Frames
//
// The atomic allocation unit is a 4 KiB frame. Regions round inward to frame
// boundaries; the Table holds one small metadata entry per frame, so block
// state never lives inside allocated memory.
//
// # Address space
//
// Addresses are abstract: an Arena binds a base PhysAddr (DefaultBase is the
// conventional RAM base, 0x8000_0000) to a backing byte span, and all
// translation goes through it. Nothing in this package dereferences raw
// pointers.
//
// # Related Packages
//
//   - github.com/framekit/framekit/pmem/buddy: frame allocator over a Table
//   - github.com/framekit/framekit/pmem/slub: object caches over buddy blocks
//   - github.com/framekit/framekit/pmem/heap: the allocation facade
package pmem
