package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/framekit/framekit/pmem"
)

func Test_CoalesceBuddyPair(t *testing.T) {
	// Two adjacent order-2 buddies freed in either order must satisfy an
	// order-3 allocation immediately afterwards.
	for _, reversed := range []bool{false, true} {
		name := "free low then high"
		if reversed {
			name = "free high then low"
		}
		t.Run(name, func(t *testing.T) {
			a := newTestAllocator(t, 256, nil)

			low, err := a.Alloc(2)
			require.NoError(t, err)
			high, err := a.Alloc(2)
			require.NoError(t, err)

			// Fresh seeding hands out the two halves of one order-3 block.
			require.Equal(t, low.Sub(pmem.DefaultBase)^BlockBytes(2), high.Sub(pmem.DefaultBase))

			if reversed {
				a.Free(high, 2)
				a.Free(low, 2)
			} else {
				a.Free(low, 2)
				a.Free(high, 2)
			}

			got, err := a.Alloc(3)
			require.NoError(t, err)
			require.Equal(t, low, got)
		})
	}
}

func Test_CoalesceCascadesToMaxOrder(t *testing.T) {
	a := newTestAllocator(t, 256, nil)

	addrs := make([]pmem.PhysAddr, 0, 256)
	for i := 0; i < 256; i++ {
		addr, err := a.Alloc(0)
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	require.Equal(t, uint64(0), a.FreeFrames())

	for _, addr := range addrs {
		a.Free(addr, 0)
	}
	require.Equal(t, uint64(256), a.FreeFrames())

	// Everything must have merged back into the single seeded block.
	got, err := a.Alloc(a.MaxOrder())
	require.NoError(t, err)
	require.Equal(t, pmem.DefaultBase, got)
}

func Test_CoalesceStopsWhenBuddyAllocated(t *testing.T) {
	a := newTestAllocator(t, 4, nil)

	a0, err := a.Alloc(0)
	require.NoError(t, err)
	a1, err := a.Alloc(0)
	require.NoError(t, err)

	// Freeing one of the pair must not merge while its buddy is live.
	a.Free(a0, 0)
	_, err = a.Alloc(1)
	require.NoError(t, err, "the untouched upper half is still available")
	_, err = a.Alloc(1)
	require.ErrorIs(t, err, ErrOutOfMemory)

	a.Free(a1, 0)
	got, err := a.Alloc(1)
	require.NoError(t, err)
	require.Equal(t, a0, got)
}

func Test_MergeStopsAtMaxOrder(t *testing.T) {
	// Cap orders below what the region could hold: merging must stop at the
	// cap instead of producing an untracked giant block.
	a := newTestAllocator(t, 8, &Options{MaxOrder: 2})
	require.Equal(t, uint8(2), a.MaxOrder())

	b0, err := a.Alloc(2)
	require.NoError(t, err)
	b1, err := a.Alloc(2)
	require.NoError(t, err)

	a.Free(b0, 2)
	a.Free(b1, 2)
	require.Equal(t, uint64(8), a.FreeFrames())

	for i := 0; i < 2; i++ {
		_, err := a.Alloc(2)
		require.NoError(t, err)
	}
}
