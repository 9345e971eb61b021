package buddy

import (
	"math/bits"

	"github.com/framekit/framekit/pmem"
)

// freeLists holds one list head per order plus an occupancy bitmap. List
// linkage lives in the frame table entries, so a block's membership costs no
// extra storage. The bitmap caps the allocator at 64 orders, far beyond any
// addressable region.
type freeLists struct {
	table  *pmem.Table
	heads  []int32
	bitmap uint64

	// freeFrames counts frames across all lists for O(1) conservation checks.
	freeFrames uint64
}

func newFreeLists(table *pmem.Table, orders uint8) *freeLists {
	heads := make([]int32, orders)
	for i := range heads {
		heads[i] = pmem.NilFrame
	}
	return &freeLists{table: table, heads: heads}
}

// push inserts the block headed by idx at the front of its order's list and
// marks the head frame free.
func (fl *freeLists) push(idx int32, order uint8) {
	f := fl.table.Frame(idx)
	f.Order = order
	f.State = pmem.FrameFree
	f.Prev = pmem.NilFrame
	f.Next = fl.heads[order]
	if f.Next != pmem.NilFrame {
		fl.table.Frame(f.Next).Prev = idx
	}
	fl.heads[order] = idx
	fl.bitmap |= 1 << order
	fl.freeFrames += 1 << order
}

// pop removes and returns the first block of the given order, or NilFrame.
func (fl *freeLists) pop(order uint8) int32 {
	idx := fl.heads[order]
	if idx == pmem.NilFrame {
		return pmem.NilFrame
	}
	fl.unlink(idx, order)
	return idx
}

// remove takes a specific block out of its order's list.
func (fl *freeLists) remove(idx int32, order uint8) {
	fl.unlink(idx, order)
}

func (fl *freeLists) unlink(idx int32, order uint8) {
	f := fl.table.Frame(idx)
	if f.Prev != pmem.NilFrame {
		fl.table.Frame(f.Prev).Next = f.Next
	} else {
		fl.heads[order] = f.Next
	}
	if f.Next != pmem.NilFrame {
		fl.table.Frame(f.Next).Prev = f.Prev
	}
	f.Next = pmem.NilFrame
	f.Prev = pmem.NilFrame
	if fl.heads[order] == pmem.NilFrame {
		fl.bitmap &^= 1 << order
	}
	fl.freeFrames -= 1 << order
}

// firstFrom returns the smallest order >= from with a non-empty list.
func (fl *freeLists) firstFrom(from uint8) (uint8, bool) {
	suitable := fl.bitmap &^ (1<<from - 1)
	if suitable == 0 {
		return 0, false
	}
	return uint8(bits.TrailingZeros64(suitable)), true
}
