package slub

import (
	"fmt"

	"github.com/framekit/framekit/internal/memfmt"
	"github.com/framekit/framekit/pmem"
	"github.com/framekit/framekit/pmem/buddy"
)

// cache is the SlabCache for one size class: three disjoint slab pools plus
// the class's fixed object-size contract. The owning Allocator's mutex
// serializes all access.
type cache struct {
	objSize  uint32
	order    uint8  // buddy order backing each slab
	capacity uint32 // objects per slab

	partial slabList // at least one object free and one in use
	full    slabList // no object free
	empty   slabList // no object in use; back of the list is oldest

	retention int // empty slabs kept before returning surplus

	slabsCreated  uint64
	slabsReleased uint64
}

func newCache(objSize uint32, slabObjects, retention int) *cache {
	bytes := uint64(objSize) * uint64(slabObjects)
	frames := memfmt.AlignUp(bytes, pmem.FrameSize) >> pmem.FrameShift
	order := memfmt.OrderForFrames(frames)
	return &cache{
		objSize:   objSize,
		order:     order,
		capacity:  uint32(buddy.BlockBytes(order) / uint64(objSize)),
		retention: retention,
	}
}

func (c *cache) blockBytes() uint64 {
	return buddy.BlockBytes(c.order)
}

// alloc takes one object, growing the cache by one fresh slab when neither
// the partial nor the empty pool can serve.
func (c *cache) alloc(arena *pmem.Arena, frames *buddy.Allocator) (pmem.PhysAddr, error) {
	s := c.partial.head
	if s == nil {
		if s = c.empty.popBack(); s == nil {
			base, err := frames.Alloc(c.order)
			if err != nil {
				return 0, fmt.Errorf("slub: class %d: %w", c.objSize, err)
			}
			s = &slab{base: base}
			s.carve(arena, c.objSize, c.capacity)
			c.slabsCreated++
		}
		c.partial.pushFront(s)
	}

	idx := s.take(arena, c.objSize)
	if s.inuse == c.capacity {
		c.partial.remove(s)
		c.full.pushFront(s)
	}
	return s.base.Add(uint64(idx) * uint64(c.objSize)), nil
}

// free returns one object, moving its slab between pools as it transitions
// and releasing surplus empty slabs back to the frame allocator.
func (c *cache) free(arena *pmem.Arena, frames *buddy.Allocator, addr pmem.PhysAddr) {
	s, wasFull := c.find(addr)
	if s == nil {
		panic(fmt.Sprintf("slub: free %s: no slab of class %d owns it", addr, c.objSize))
	}
	off := addr.Sub(s.base)
	if off%uint64(c.objSize) != 0 {
		panic(fmt.Sprintf("slub: free %s: misaligned for class %d", addr, c.objSize))
	}

	s.put(arena, c.objSize, uint32(off/uint64(c.objSize)))

	if wasFull {
		c.full.remove(s)
		c.partial.pushFront(s)
	}
	if s.inuse == 0 {
		c.partial.remove(s)
		c.empty.pushFront(s)
		if c.empty.count > c.retention {
			old := c.empty.popBack()
			frames.Free(old.base, c.order)
			c.slabsReleased++
		}
	}
}

// find locates the slab owning addr by range containment across the pools
// that can hold live objects.
func (c *cache) find(addr pmem.PhysAddr) (s *slab, wasFull bool) {
	bytes := c.blockBytes()
	for s := c.partial.head; s != nil; s = s.next {
		if s.contains(addr, bytes) {
			return s, false
		}
	}
	for s := c.full.head; s != nil; s = s.next {
		if s.contains(addr, bytes) {
			return s, true
		}
	}
	return nil, false
}
