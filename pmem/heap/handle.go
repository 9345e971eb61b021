package heap

import (
	"fmt"

	"github.com/framekit/framekit/pmem"
)

// Handle identifies one live allocation and carries its provenance: which
// layer served it and the class or order it came from. The zero Handle is
// invalid.
//
// Layout (most significant bits first):
//
//	Bits   Width  Field
//	62-63  2      path tag (1 = slab, 2 = buddy)
//	48-55  8      slab class index, or buddy order
//	0-47   48     physical address
type Handle uint64

const (
	handleAddrMask = 1<<48 - 1

	tagShift = 62
	tagSlab  = 1
	tagBuddy = 2

	auxShift = 48
	auxMask  = 0xFF
)

func newSlabHandle(addr pmem.PhysAddr, class int) Handle {
	return Handle(uint64(addr)&handleAddrMask |
		uint64(class)<<auxShift |
		tagSlab<<tagShift)
}

func newBuddyHandle(addr pmem.PhysAddr, order uint8) Handle {
	return Handle(uint64(addr)&handleAddrMask |
		uint64(order)<<auxShift |
		tagBuddy<<tagShift)
}

// Valid reports whether the handle came from an Alloc call.
func (h Handle) Valid() bool {
	tag := h.tag()
	return tag == tagSlab || tag == tagBuddy
}

// Addr returns the allocation's physical address.
func (h Handle) Addr() pmem.PhysAddr {
	return pmem.PhysAddr(h & handleAddrMask)
}

func (h Handle) tag() uint64 {
	return uint64(h) >> tagShift
}

func (h Handle) aux() uint8 {
	return uint8(uint64(h) >> auxShift & auxMask)
}

func (h Handle) String() string {
	switch h.tag() {
	case tagSlab:
		return fmt.Sprintf("slab(%s, class %d)", h.Addr(), h.aux())
	case tagBuddy:
		return fmt.Sprintf("buddy(%s, order %d)", h.Addr(), h.aux())
	default:
		return "invalid handle"
	}
}
