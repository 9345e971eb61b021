package buddy

import (
	"fmt"
	"sync"

	"github.com/framekit/framekit/internal/memfmt"
	"github.com/framekit/framekit/pmem"
)

// DefaultMaxOrder caps tracked blocks at 2^11 frames (8 MiB at 4 KiB frames)
// unless the region is smaller or the cap is overridden.
const DefaultMaxOrder = 11

// Options configures an Allocator.
type Options struct {
	// MaxOrder caps the largest block order tracked as one unit.
	// Zero means DefaultMaxOrder. The effective maximum never exceeds
	// what the region can hold.
	MaxOrder uint8
}

// Stats holds allocator counters. FreeFrames and TotalFrames together give
// the conservation invariant: FreeFrames plus frames handed out always equals
// TotalFrames.
type Stats struct {
	AllocCalls   uint64 // Alloc() calls
	FreeCalls    uint64 // Free() calls
	FailedAllocs uint64 // Alloc() calls that returned ErrOutOfMemory
	Splits       uint64 // block splits during allocation
	Merges       uint64 // buddy merges during free
	FreeFrames   uint64 // frames currently on free lists
	TotalFrames  uint64 // frames managed
}

// Allocator hands out power-of-two blocks of frames from one region.
type Allocator struct {
	mu sync.Mutex

	table  *pmem.Table
	region pmem.Region
	lists  *freeLists

	maxOrder uint8
	stats    Stats
}

// New builds an allocator over the region covered by table and seeds the free
// lists by greedy decomposition of the span into the largest aligned
// power-of-two blocks that fit.
func New(table *pmem.Table, opts *Options) (*Allocator, error) {
	region := table.Region()
	frames := region.Frames()
	if frames == 0 {
		return nil, fmt.Errorf("buddy: %w", pmem.ErrEmptyRegion)
	}

	orderCap := uint8(DefaultMaxOrder)
	if opts != nil && opts.MaxOrder != 0 {
		orderCap = opts.MaxOrder
	}
	maxOrder := memfmt.Log2(frames)
	if maxOrder > orderCap {
		maxOrder = orderCap
	}

	a := &Allocator{
		table:    table,
		region:   region,
		lists:    newFreeLists(table, maxOrder+1),
		maxOrder: maxOrder,
	}
	a.seed(frames)
	a.stats.TotalFrames = frames
	return a, nil
}

// seed distributes the span into free lists, largest aligned blocks first.
func (a *Allocator) seed(frames uint64) {
	idx := int32(0)
	left := frames
	for left > 0 {
		order := memfmt.Log2(left)
		if order > a.maxOrder {
			order = a.maxOrder
		}
		// A block must be naturally aligned within the region.
		for order > 0 && idx&(1<<order-1) != 0 {
			order--
		}
		a.lists.push(idx, order)
		idx += 1 << order
		left -= 1 << order
	}
}

// MaxOrder returns the largest order the allocator tracks as one block.
func (a *Allocator) MaxOrder() uint8 {
	return a.maxOrder
}

// Region returns the span the allocator manages.
func (a *Allocator) Region() pmem.Region {
	return a.region
}

// BlockBytes returns the byte size of an order-k block.
func BlockBytes(order uint8) uint64 {
	return pmem.FrameSize << order
}

// Alloc removes and returns the address of a free, naturally aligned block of
// 2^order frames. When only larger blocks are free, one is split down,
// pushing each upper half onto the next lower list. Fails with ErrOutOfMemory
// without touching any state when no order >= the request has a free block.
func (a *Allocator) Alloc(order uint8) (pmem.PhysAddr, error) {
	if order > a.maxOrder {
		return 0, fmt.Errorf("%w: %d > max %d", ErrBadOrder, order, a.maxOrder)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.AllocCalls++

	found, ok := a.lists.firstFrom(order)
	if !ok {
		a.stats.FailedAllocs++
		return 0, fmt.Errorf("%w: no free block of order >= %d", ErrOutOfMemory, order)
	}

	idx := a.lists.pop(found)
	for k := found; k > order; k-- {
		a.lists.push(idx+1<<(k-1), k-1)
		a.stats.Splits++
	}

	head := a.table.Frame(idx)
	head.Order = order
	head.State = pmem.FrameAllocated
	return a.table.Addr(idx), nil
}

// Free returns a block previously obtained from Alloc at the same order.
// While the buddy block (address differing only in the order's bit) is free
// at the same order, the two merge and the result is freed one order up,
// stopping at MaxOrder. Contract violations that are cheap to detect panic.
func (a *Allocator) Free(addr pmem.PhysAddr, order uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.FreeCalls++

	idx, err := a.table.Index(addr)
	if err != nil {
		panic(fmt.Sprintf("buddy: free %s: %v", addr, err))
	}
	if order > a.maxOrder {
		panic(fmt.Sprintf("buddy: free %s: order %d > max %d", addr, order, a.maxOrder))
	}
	if idx&(1<<order-1) != 0 {
		panic(fmt.Sprintf("buddy: free %s: misaligned for order %d", addr, order))
	}

	head := a.table.Frame(idx)
	switch {
	case head.State == pmem.FrameFree:
		panic(fmt.Sprintf("buddy: double free of %s (order %d)", addr, order))
	case head.State != pmem.FrameAllocated:
		panic(fmt.Sprintf("buddy: free %s: not a block head", addr))
	case head.Order != order:
		panic(fmt.Sprintf("buddy: free %s: order mismatch (allocated %d, freed %d)",
			addr, head.Order, order))
	}
	head.State = pmem.FrameUntracked

	cur := idx
	for order < a.maxOrder {
		buddyIdx := cur ^ 1<<order
		if buddyIdx >= int32(a.table.Len()) {
			break
		}
		buddy := a.table.Frame(buddyIdx)
		if buddy.State != pmem.FrameFree || buddy.Order != order {
			break
		}

		a.lists.remove(buddyIdx, order)
		buddy.State = pmem.FrameUntracked
		if buddyIdx < cur {
			cur = buddyIdx
		}
		order++
		a.stats.Merges++
	}

	a.lists.push(cur, order)
}

// FreeFrames returns the number of frames currently on free lists.
func (a *Allocator) FreeFrames() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lists.freeFrames
}

// TotalFrames returns the number of frames the allocator manages.
func (a *Allocator) TotalFrames() uint64 {
	return a.stats.TotalFrames
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.stats
	s.FreeFrames = a.lists.freeFrames
	return s
}
