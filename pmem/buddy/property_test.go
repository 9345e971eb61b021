package buddy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/framekit/framekit/pmem"
)

// Test_ConservationUnderRandomWorkload drives a randomized alloc/free
// sequence and checks the frame conservation invariant after every
// operation: free frames plus live frames always equals the region total.
func Test_ConservationUnderRandomWorkload(t *testing.T) {
	const (
		frames = 128
		ops    = 5000
		seed   = 0x5eed
	)

	a := newTestAllocator(t, frames, nil)
	rng := rand.New(rand.NewSource(seed))

	type block struct {
		addr  pmem.PhysAddr
		order uint8
	}
	var live []block
	var liveFrames uint64

	for i := 0; i < ops; i++ {
		if rng.Intn(2) == 0 || len(live) == 0 {
			order := uint8(rng.Intn(5))
			addr, err := a.Alloc(order)
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfMemory)
			} else {
				live = append(live, block{addr, order})
				liveFrames += 1 << order
			}
		} else {
			j := rng.Intn(len(live))
			b := live[j]
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			a.Free(b.addr, b.order)
			liveFrames -= 1 << b.order
		}

		require.Equal(t, uint64(frames), a.FreeFrames()+liveFrames,
			"conservation violated after op %d", i)
	}

	for _, b := range live {
		a.Free(b.addr, b.order)
	}
	require.Equal(t, uint64(frames), a.FreeFrames())

	// With nothing live, coalescing must have restored the seeded block.
	_, err := a.Alloc(a.MaxOrder())
	require.NoError(t, err)
}

// Test_RandomWorkloadNeverAliases checks that no two live blocks ever
// overlap, order by order, across a randomized workload.
func Test_RandomWorkloadNeverAliases(t *testing.T) {
	const frames = 64

	a := newTestAllocator(t, frames, nil)
	rng := rand.New(rand.NewSource(7))

	owner := make(map[pmem.PhysAddr]uint8) // live block head -> order

	overlaps := func(addr pmem.PhysAddr, order uint8) bool {
		for other, o := range owner {
			lo, hi := other, other.Add(BlockBytes(o))
			alo, ahi := addr, addr.Add(BlockBytes(order))
			if alo < hi && other < ahi && (alo != lo || order != o) {
				return true
			}
			if alo == lo {
				return true
			}
		}
		return false
	}

	for i := 0; i < 2000; i++ {
		if rng.Intn(3) > 0 || len(owner) == 0 {
			order := uint8(rng.Intn(4))
			addr, err := a.Alloc(order)
			if err != nil {
				continue
			}
			require.False(t, overlaps(addr, order),
				"op %d: block %s order %d overlaps a live block", i, addr, order)
			owner[addr] = order
		} else {
			for addr, order := range owner {
				a.Free(addr, order)
				delete(owner, addr)
				break
			}
		}
	}
}
