package pmem

import "fmt"

// NilFrame is the sentinel index marking the end of a frame list.
const NilFrame int32 = -1

// FrameState tracks what a frame's metadata entry currently describes.
// Only the head frame of a block carries meaningful order/state; interior
// frames of a multi-frame block stay Untracked.
type FrameState uint8

const (
	// FrameUntracked marks a frame that is not the head of any block.
	FrameUntracked FrameState = iota

	// FrameFree marks the head of a block sitting on a free list.
	FrameFree

	// FrameAllocated marks the head of a block handed out to a caller.
	FrameAllocated
)

func (s FrameState) String() string {
	switch s {
	case FrameUntracked:
		return "untracked"
	case FrameFree:
		return "free"
	case FrameAllocated:
		return "allocated"
	default:
		return fmt.Sprintf("FrameState(%d)", uint8(s))
	}
}

// Frame is the metadata entry for one physical frame. While the frame heads a
// free block, Next and Prev thread it into the free list for its order.
type Frame struct {
	Next, Prev int32

	Order uint8
	State FrameState
}

// Table holds one Frame entry per frame of a region and converts between
// addresses and frame indices.
type Table struct {
	region Region
	frames []Frame
}

// NewTable builds a frame table covering the region, all entries Untracked.
func NewTable(region Region) *Table {
	frames := make([]Frame, region.Frames())
	for i := range frames {
		frames[i].Next = NilFrame
		frames[i].Prev = NilFrame
	}
	return &Table{region: region, frames: frames}
}

// Region returns the span the table covers.
func (t *Table) Region() Region {
	return t.region
}

// Len returns the number of frames tracked.
func (t *Table) Len() int {
	return len(t.frames)
}

// Frame returns the metadata entry for the given frame index.
func (t *Table) Frame(idx int32) *Frame {
	return &t.frames[idx]
}

// Index converts a frame-aligned address inside the region to its frame
// index. Returns ErrOutOfRange for addresses outside the region and
// misaligned addresses.
func (t *Table) Index(addr PhysAddr) (int32, error) {
	if !t.region.Contains(addr) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, addr)
	}
	if !addr.IsAligned(FrameSize) {
		return 0, fmt.Errorf("%w: %s not frame-aligned", ErrOutOfRange, addr)
	}
	return int32(addr.Sub(t.region.Start) >> FrameShift), nil
}

// Addr converts a frame index back to the frame's physical address.
func (t *Table) Addr(idx int32) PhysAddr {
	return t.region.Start.Add(uint64(idx) << FrameShift)
}
