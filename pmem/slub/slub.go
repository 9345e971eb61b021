package slub

import (
	"fmt"
	"sync"

	"github.com/framekit/framekit/pmem"
	"github.com/framekit/framekit/pmem/buddy"
)

// Stats holds allocator counters aggregated across all caches.
type Stats struct {
	AllocCalls    uint64 // Alloc() calls
	FreeCalls     uint64 // Free() calls
	CachesCreated uint64 // size classes touched at least once
	SlabsCreated  uint64 // fresh slabs obtained from the frame allocator
	SlabsReleased uint64 // surplus empty slabs returned to it
	SlabFrames    uint64 // frames currently backing live slabs
}

// Allocator routes small allocations to per-class SlabCaches, growing and
// shrinking each cache against the frame allocator underneath.
type Allocator struct {
	mu sync.Mutex

	cfg    ClassConfig
	arena  *pmem.Arena
	frames *buddy.Allocator

	// caches is indexed by class; entries are created lazily on first use
	// of a class and live for the allocator's lifetime.
	caches []*cache

	stats Stats
}

// New builds a slub allocator over the given arena and frame allocator.
// A nil config selects DefaultConfig.
func New(arena *pmem.Arena, frames *buddy.Allocator, config *ClassConfig) (*Allocator, error) {
	if config == nil {
		config = &DefaultConfig
	}
	cfg, err := config.normalize()
	if err != nil {
		return nil, err
	}
	return &Allocator{
		cfg:    cfg,
		arena:  arena,
		frames: frames,
		caches: make([]*cache, len(cfg.Classes)),
	}, nil
}

// Config returns the normalized class configuration.
func (a *Allocator) Config() ClassConfig {
	return a.cfg
}

// MaxClass returns the largest object size this allocator serves; anything
// bigger belongs on the frame-allocator path.
func (a *Allocator) MaxClass() uint32 {
	return a.cfg.MaxClass()
}

// ClassFor returns the class index serving a (size, align) request: the
// smallest class >= max(size, align). ok is false when the request exceeds
// the largest class.
func (a *Allocator) ClassFor(size, align uint64) (idx int, ok bool) {
	need := size
	if align > need {
		need = align
	}
	return a.cfg.classFor(need)
}

// ClassSize returns the object size of the given class.
func (a *Allocator) ClassSize(idx int) uint32 {
	return a.cfg.Classes[idx]
}

// Alloc takes one object from the class serving (size, align) and returns
// its address together with the class index, which the matching Free needs.
// Fails with ErrNoClass for requests above the largest class and propagates
// buddy.ErrOutOfMemory when no slab can be obtained.
func (a *Allocator) Alloc(size, align uint64) (pmem.PhysAddr, int, error) {
	idx, ok := a.ClassFor(size, align)
	if !ok {
		return 0, 0, fmt.Errorf("%w: need %d, largest class %d",
			ErrNoClass, max(size, align), a.MaxClass())
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.AllocCalls++

	c := a.caches[idx]
	if c == nil {
		c = newCache(a.cfg.Classes[idx], a.cfg.SlabObjects, a.cfg.EmptyRetention)
		a.caches[idx] = c
		a.stats.CachesCreated++
	}
	addr, err := c.alloc(a.arena, a.frames)
	if err != nil {
		return 0, 0, err
	}
	return addr, idx, nil
}

// Free returns the object at addr to the class it was allocated from.
// A class without a cache, or an address no slab of the class owns, is a
// caller contract violation and panics.
func (a *Allocator) Free(addr pmem.PhysAddr, class int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.FreeCalls++

	if class < 0 || class >= len(a.caches) || a.caches[class] == nil {
		panic(fmt.Sprintf("slub: free %s: no such class %d", addr, class))
	}
	a.caches[class].free(a.arena, a.frames, addr)
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.stats
	for _, c := range a.caches {
		if c == nil {
			continue
		}
		s.SlabsCreated += c.slabsCreated
		s.SlabsReleased += c.slabsReleased
		live := c.slabsCreated - c.slabsReleased
		s.SlabFrames += live * (c.blockBytes() >> pmem.FrameShift)
	}
	return s
}
