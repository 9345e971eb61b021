package slub

import (
	"fmt"

	"github.com/framekit/framekit/internal/memfmt"
)

// MinClass is the smallest legal object size: a free object must hold the
// 4-byte link to the next free object, and sub-8-byte classes fragment slabs
// for no practical gain.
const MinClass = 8

// ClassConfig defines the size-class strategy for a SlubAllocator.
// Different configurations trade internal fragmentation against slab count.
type ClassConfig struct {
	// Name for this configuration (for reporting and benchmarking).
	Name string

	// Classes are the object sizes served, ascending powers of two.
	Classes []uint32

	// SlabObjects is the object count a fresh slab is sized to hold at
	// minimum; it drives the buddy order backing each class's slabs.
	// Zero means DefaultSlabObjects.
	SlabObjects int

	// EmptyRetention is how many fully empty slabs a cache keeps before
	// returning surplus ones to the frame allocator. Negative means zero
	// (return every empty slab immediately); zero means DefaultEmptyRetention.
	EmptyRetention int
}

const (
	// DefaultSlabObjects is the default per-slab object target.
	DefaultSlabObjects = 32

	// DefaultEmptyRetention is the default empty-slab surplus kept per cache.
	DefaultEmptyRetention = 1
)

// Predefined configurations.
var (
	// General: the full class ladder, 8 B to 2 KiB.
	ConfigGeneral = ClassConfig{
		Name:           "General",
		Classes:        []uint32{8, 16, 32, 64, 128, 256, 512, 1024, 2048},
		SlabObjects:    DefaultSlabObjects,
		EmptyRetention: DefaultEmptyRetention,
	}

	// Compact: a short ladder for workloads of small objects only;
	// anything above 256 bytes goes straight to the frame allocator.
	ConfigCompact = ClassConfig{
		Name:           "Compact",
		Classes:        []uint32{16, 32, 64, 128, 256},
		SlabObjects:    64,
		EmptyRetention: DefaultEmptyRetention,
	}

	// DefaultConfig is used when no configuration is specified.
	DefaultConfig = ConfigGeneral
)

// normalize fills defaulted fields and validates the table.
func (c ClassConfig) normalize() (ClassConfig, error) {
	if len(c.Classes) == 0 {
		return c, fmt.Errorf("%w: empty class table", ErrBadConfig)
	}
	prev := uint32(0)
	for _, size := range c.Classes {
		if size < MinClass || !memfmt.IsPowerOfTwo(uint64(size)) {
			return c, fmt.Errorf("%w: class %d must be a power of two >= %d",
				ErrBadConfig, size, MinClass)
		}
		if size <= prev {
			return c, fmt.Errorf("%w: classes must ascend, %d after %d",
				ErrBadConfig, size, prev)
		}
		prev = size
	}
	if c.SlabObjects == 0 {
		c.SlabObjects = DefaultSlabObjects
	}
	if c.SlabObjects < 0 {
		return c, fmt.Errorf("%w: negative SlabObjects", ErrBadConfig)
	}
	switch {
	case c.EmptyRetention == 0:
		c.EmptyRetention = DefaultEmptyRetention
	case c.EmptyRetention < 0:
		c.EmptyRetention = 0
	}
	return c, nil
}

// MaxClass returns the largest configured object size.
func (c ClassConfig) MaxClass() uint32 {
	return c.Classes[len(c.Classes)-1]
}

// classFor returns the index of the smallest class >= need.
func (c ClassConfig) classFor(need uint64) (int, bool) {
	for i, size := range c.Classes {
		if uint64(size) >= need {
			return i, true
		}
	}
	return 0, false
}

func (c ClassConfig) String() string {
	return c.Name
}
