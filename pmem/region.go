package pmem

import "fmt"

// Region is a frame-granular span of physical memory [Start, Start+Size).
type Region struct {
	Start PhysAddr
	Size  uint64
}

// NewRegion builds a Region from raw [start, end) bounds, rounding start up
// and end down to frame boundaries. Returns ErrEmptyRegion when no whole
// frame fits between them.
func NewRegion(start, end PhysAddr) (Region, error) {
	start = start.AlignUp(FrameSize)
	end = end.AlignDown(FrameSize)
	if end <= start {
		return Region{}, fmt.Errorf("%w: [%s, %s)", ErrEmptyRegion, start, end)
	}
	return Region{Start: start, Size: end.Sub(start)}, nil
}

// End returns the exclusive upper bound of the region.
func (r Region) End() PhysAddr {
	return r.Start.Add(r.Size)
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr PhysAddr) bool {
	return addr >= r.Start && addr < r.End()
}

// Frames returns the number of whole frames the region spans.
func (r Region) Frames() uint64 {
	return r.Size >> FrameShift
}

func (r Region) String() string {
	return fmt.Sprintf("%s ──> %s | %8d KiB", r.Start, r.End(), r.Size/1024)
}
