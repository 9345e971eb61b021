package slub

import (
	"github.com/framekit/framekit/internal/memfmt"
	"github.com/framekit/framekit/pmem"
)

// nilObject terminates a slab's free-object chain.
const nilObject = ^uint32(0)

// slab is one buddy block carved into equal-size objects of a single class.
// Free objects chain through their own first four bytes; the slab header here
// only remembers where the chain starts and how much is in use.
type slab struct {
	next, prev *slab

	base     pmem.PhysAddr
	freeHead uint32
	inuse    uint32
}

// carve threads the free-object chain through a fresh block.
func (s *slab) carve(arena *pmem.Arena, objSize, capacity uint32) {
	for i := uint32(0); i < capacity-1; i++ {
		memfmt.PutU32LE(arena.Bytes(s.base.Add(uint64(i)*uint64(objSize)), 4), i+1)
	}
	// Terminate explicitly: the block may hold stale garbage from a
	// previous life.
	memfmt.PutU32LE(arena.Bytes(s.base.Add(uint64(capacity-1)*uint64(objSize)), 4), nilObject)
	s.freeHead = 0
	s.inuse = 0
}

// take pops the next free object and returns its index.
func (s *slab) take(arena *pmem.Arena, objSize uint32) uint32 {
	idx := s.freeHead
	s.freeHead = memfmt.U32LE(arena.Bytes(s.base.Add(uint64(idx)*uint64(objSize)), 4))
	s.inuse++
	return idx
}

// put pushes object idx back onto the free chain.
func (s *slab) put(arena *pmem.Arena, objSize, idx uint32) {
	memfmt.PutU32LE(arena.Bytes(s.base.Add(uint64(idx)*uint64(objSize)), 4), s.freeHead)
	s.freeHead = idx
	s.inuse--
}

// contains reports whether addr falls inside the slab's block.
func (s *slab) contains(addr pmem.PhysAddr, blockBytes uint64) bool {
	return addr >= s.base && addr < s.base.Add(blockBytes)
}

// slabList is a doubly linked pool of slabs. Pools push at the front and
// drain surplus from the back, so the back is always the oldest member.
type slabList struct {
	head, tail *slab
	count      int
}

func (l *slabList) pushFront(s *slab) {
	s.prev = nil
	s.next = l.head
	if l.head != nil {
		l.head.prev = s
	}
	l.head = s
	if l.tail == nil {
		l.tail = s
	}
	l.count++
}

func (l *slabList) remove(s *slab) {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	} else {
		l.tail = s.prev
	}
	s.next = nil
	s.prev = nil
	l.count--
}

func (l *slabList) popBack() *slab {
	s := l.tail
	if s != nil {
		l.remove(s)
	}
	return s
}
