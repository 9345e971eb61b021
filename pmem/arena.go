package pmem

import "fmt"

// Arena binds a base physical address to the byte span backing it and hands
// out bounds-checked windows into it. It is the only route from a PhysAddr to
// actual memory; allocator bookkeeping that lives inside free memory (slab
// free-object links) goes through it.
type Arena struct {
	base PhysAddr
	data []byte
}

// NewArena wraps data as the span starting at base.
func NewArena(base PhysAddr, data []byte) *Arena {
	return &Arena{base: base, data: data}
}

// Base returns the address of the first byte of the span.
func (a *Arena) Base() PhysAddr {
	return a.base
}

// Size returns the span length in bytes.
func (a *Arena) Size() uint64 {
	return uint64(len(a.data))
}

// Bytes returns the n-byte window starting at addr. Panics when the window
// falls outside the span: handing out memory the arena does not own would be
// a bookkeeping bug, not a caller error.
func (a *Arena) Bytes(addr PhysAddr, n uint64) []byte {
	off := addr.Sub(a.base)
	if addr < a.base || off+n > a.Size() {
		panic(fmt.Sprintf("pmem: arena access [%s, +%d) outside span [%s, +%d)",
			addr, n, a.base, a.Size()))
	}
	return a.data[off : off+n : off+n]
}
