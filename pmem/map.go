package pmem

import (
	"fmt"
	"strings"

	"github.com/framekit/framekit/internal/memfmt"
)

// Map is the derived layout of a RAM span: the leading reserved portion
// (kernel image and boot stacks, or whatever the embedder sets aside) and the
// span left over for dynamic allocation.
type Map struct {
	// RAM is the whole managed span.
	RAM Region

	// Reserved is the leading part of RAM excluded from allocation.
	// Zero-sized when nothing is reserved.
	Reserved Region

	// Free is the span available to the frame allocator.
	Free Region
}

// CalculateMap derives the memory map from RAM bounds and the number of
// leading bytes to reserve. reserve is rounded up to a frame boundary.
func CalculateMap(ramStart PhysAddr, ramSize, reserve uint64) (Map, error) {
	ram, err := NewRegion(ramStart, ramStart.Add(ramSize))
	if err != nil {
		return Map{}, err
	}

	reserved := Region{Start: ram.Start, Size: memfmt.AlignUp(reserve, FrameSize)}
	if reserved.Size >= ram.Size {
		return Map{}, fmt.Errorf("%w: reserve %d covers all of RAM", ErrBadLayout, reserve)
	}

	free, err := NewRegion(reserved.End(), ram.End())
	if err != nil {
		return Map{}, err
	}

	return Map{RAM: ram, Reserved: reserved, Free: free}, nil
}

// NumFrames returns the total number of frames in RAM.
func (m Map) NumFrames() uint64 {
	return m.RAM.Frames()
}

// String renders the layout, one region per line.
func (m Map) String() string {
	const line = "═══════════════════════════════════════════════════════"

	var sb strings.Builder
	sb.WriteString("PHYSICAL MEMORY LAYOUT\n")
	sb.WriteString(line + "\n")
	if m.Reserved.Size > 0 {
		fmt.Fprintf(&sb, "%-12s | %s\n", "Reserved", m.Reserved)
	}
	fmt.Fprintf(&sb, "%-12s | %s\n", "Free RAM", m.Free)
	sb.WriteString(line + "\n")
	fmt.Fprintf(&sb, "Total RAM:    %d KiB\n", m.RAM.Size/1024)
	fmt.Fprintf(&sb, "Total Frames: %d\n", m.NumFrames())
	return sb.String()
}
