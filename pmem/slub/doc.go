// Package slub serves small fixed-size allocations from slabs carved out of
// buddy blocks, amortizing frame-allocator calls over many objects.
//
// # Overview
//
// One SlabCache exists per configured size class. A cache owns three disjoint
// pools of slabs (partially used, full, and empty) and satisfies a request
// from a partial slab first, then an empty one, and only then asks the buddy
// allocator for a fresh block.
//
// A slab's free objects form an intrusive list threaded through the objects'
// own bytes: the first four bytes of each free object hold the index of the
// next free object. Allocated objects carry no metadata at all.
//
// # Size Classes
//
// The class table is configured at construction (ClassConfig); classes are
// ascending powers of two so object offsets are naturally aligned to the
// class size. A request is served by the smallest class >= max(size, align).
// The default table spans 8 bytes to 2 KiB.
//
// # Slab Return
//
// When a free empties a slab and the cache already holds its configured
// surplus of empty slabs, the oldest empty slab's frames go back to the buddy
// allocator. The retained surplus is hysteresis: a cache oscillating around a
// slab boundary does not thrash the frame allocator.
//
// # Thread Safety
//
// One mutex serializes the whole allocator, held across any nested buddy
// call. The lock order is strictly top-down (slub before buddy); the buddy
// allocator never calls back up.
package slub
