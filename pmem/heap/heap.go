package heap

import (
	"fmt"
	"os"

	"github.com/framekit/framekit/internal/arena"
	"github.com/framekit/framekit/internal/memfmt"
	"github.com/framekit/framekit/pmem"
	"github.com/framekit/framekit/pmem/buddy"
	"github.com/framekit/framekit/pmem/slub"
)

// Runtime debug flag for allocation tracing - controlled by FRAMEKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("FRAMEKIT_LOG_ALLOC") != ""

// DefaultSize is the managed span size when Config.Size is zero.
const DefaultSize = 64 << 20

// Config describes the span a Heap manages and how its layers are tuned.
type Config struct {
	// Base is the address of the first byte of the span.
	// Zero means pmem.DefaultBase.
	Base pmem.PhysAddr

	// Size is the span length in bytes, rounded to whole frames.
	// Zero means DefaultSize.
	Size uint64

	// Reserve excludes the leading bytes from allocation, standing in for
	// the kernel image and boot stacks a real memory map would carve out.
	Reserve uint64

	// MaxOrder caps the buddy allocator's largest tracked block.
	// Zero means buddy.DefaultMaxOrder.
	MaxOrder uint8

	// Classes configures the slub layer. Nil means slub.DefaultConfig.
	Classes *slub.ClassConfig
}

// Stats aggregates the counters of both layers.
type Stats struct {
	Buddy buddy.Stats
	Slub  slub.Stats
}

// Heap owns one managed span and the allocator layers over it.
type Heap struct {
	layout  pmem.Map
	arena   *pmem.Arena
	release func() error

	frames *buddy.Allocator
	objs   *slub.Allocator
}

// New maps a span per cfg and builds the allocator layers over it.
func New(cfg Config) (*Heap, error) {
	if cfg.Base == 0 {
		cfg.Base = pmem.DefaultBase
	}
	if cfg.Size == 0 {
		cfg.Size = DefaultSize
	}

	layout, err := pmem.CalculateMap(cfg.Base, cfg.Size, cfg.Reserve)
	if err != nil {
		return nil, err
	}

	data, release, err := arena.Map(int(layout.RAM.Size))
	if err != nil {
		return nil, err
	}

	table := pmem.NewTable(layout.Free)
	frames, err := buddy.New(table, &buddy.Options{MaxOrder: cfg.MaxOrder})
	if err != nil {
		release() //nolint:errcheck // construction failed, best-effort unmap
		return nil, err
	}

	ar := pmem.NewArena(layout.RAM.Start, data)
	objs, err := slub.New(ar, frames, cfg.Classes)
	if err != nil {
		release() //nolint:errcheck // construction failed, best-effort unmap
		return nil, err
	}

	return &Heap{
		layout:  layout,
		arena:   ar,
		release: release,
		frames:  frames,
		objs:    objs,
	}, nil
}

// Close releases the backing mapping. The heap must not be used afterwards.
func (h *Heap) Close() error {
	return h.release()
}

// Layout returns the computed memory map of the managed span.
func (h *Heap) Layout() pmem.Map {
	return h.layout
}

// Alloc serves a (size, align) request and returns a handle carrying its
// provenance. Requests at or below the largest slab class go to the slub
// layer; larger ones round up to the covering buddy order.
func (h *Heap) Alloc(size, align uint64) (Handle, error) {
	if size == 0 {
		return 0, ErrInvalidSize
	}
	if align == 0 {
		align = 1
	}
	if !memfmt.IsPowerOfTwo(align) || align > pmem.FrameSize {
		return 0, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}

	need := size
	if align > need {
		need = align
	}

	if need <= uint64(h.objs.MaxClass()) {
		addr, class, err := h.objs.Alloc(size, align)
		if err != nil {
			return 0, err
		}
		hd := newSlabHandle(addr, class)
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[ALLOC] %d/%d -> %s\n", size, align, hd)
		}
		return hd, nil
	}

	frames := memfmt.AlignUp(need, pmem.FrameSize) >> pmem.FrameShift
	order := memfmt.OrderForFrames(frames)
	if order > h.frames.MaxOrder() {
		return 0, fmt.Errorf("%w: %d bytes exceeds the largest block", ErrOutOfMemory, size)
	}
	addr, err := h.frames.Alloc(order)
	if err != nil {
		return 0, err
	}
	hd := newBuddyHandle(addr, order)
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] %d/%d -> %s\n", size, align, hd)
	}
	return hd, nil
}

// Free returns the allocation behind hd to the layer that served it.
// Panics on a handle that did not come from Alloc.
func (h *Heap) Free(hd Handle) {
	switch hd.tag() {
	case tagSlab:
		h.objs.Free(hd.Addr(), int(hd.aux()))
	case tagBuddy:
		h.frames.Free(hd.Addr(), hd.aux())
	default:
		panic(fmt.Sprintf("heap: free of %s", hd))
	}
}

// Bytes returns the full usable extent behind hd: the class size for slab
// allocations, the block size for buddy ones.
func (h *Heap) Bytes(hd Handle) []byte {
	switch hd.tag() {
	case tagSlab:
		return h.arena.Bytes(hd.Addr(), uint64(h.objs.ClassSize(int(hd.aux()))))
	case tagBuddy:
		return h.arena.Bytes(hd.Addr(), buddy.BlockBytes(hd.aux()))
	default:
		panic(fmt.Sprintf("heap: bytes of %s", hd))
	}
}

// MaxClass returns the size ceiling of the slub path.
func (h *Heap) MaxClass() uint32 {
	return h.objs.MaxClass()
}

// Stats returns a snapshot of both layers' counters.
func (h *Heap) Stats() Stats {
	return Stats{Buddy: h.frames.Stats(), Slub: h.objs.Stats()}
}
