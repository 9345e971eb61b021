package pmem

import (
	"fmt"

	"github.com/framekit/framekit/internal/memfmt"
)

const (
	// FrameShift is log2 of the frame size.
	FrameShift = 12

	// FrameSize is the atomic unit of physical memory, in bytes.
	FrameSize = 1 << FrameShift

	// DefaultBase is the conventional base address of RAM.
	DefaultBase PhysAddr = 0x8000_0000
)

// PhysAddr is a physical memory address.
type PhysAddr uint64

// Add returns the address advanced by n bytes.
func (a PhysAddr) Add(n uint64) PhysAddr {
	return a + PhysAddr(n)
}

// Sub returns the byte distance from b to a. a must not precede b.
func (a PhysAddr) Sub(b PhysAddr) uint64 {
	return uint64(a - b)
}

// IsAligned reports whether the address is a multiple of align.
// align must be a power of two.
func (a PhysAddr) IsAligned(align uint64) bool {
	return uint64(a)&(align-1) == 0
}

// AlignUp returns the address rounded up to the next multiple of align.
func (a PhysAddr) AlignUp(align uint64) PhysAddr {
	return PhysAddr(memfmt.AlignUp(uint64(a), align))
}

// AlignDown returns the address rounded down to the previous multiple of align.
func (a PhysAddr) AlignDown(align uint64) PhysAddr {
	return PhysAddr(memfmt.AlignDown(uint64(a), align))
}

func (a PhysAddr) String() string {
	return fmt.Sprintf("%#010x", uint64(a))
}
