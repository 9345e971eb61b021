package slub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/framekit/framekit/internal/testutil"
	"github.com/framekit/framekit/pmem"
	"github.com/framekit/framekit/pmem/buddy"
)

func newTestSlub(t *testing.T, frames uint64, cfg *ClassConfig) (*Allocator, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t, frames)
	a, err := New(env.Arena, env.Frames, cfg)
	require.NoError(t, err)
	return a, env
}

func Test_ClassRouting(t *testing.T) {
	a, _ := newTestSlub(t, 64, &ConfigCompact)

	cases := []struct {
		size, align uint64
		wantClass   uint32
	}{
		{1, 1, 16},
		{16, 1, 16},
		{17, 1, 32},
		{33, 8, 64},
		{100, 1, 128},
		{129, 1, 256},
		{256, 256, 256},
		{8, 64, 64}, // alignment drives the class up
	}
	for _, tc := range cases {
		idx, ok := a.ClassFor(tc.size, tc.align)
		require.True(t, ok, "size %d align %d", tc.size, tc.align)
		require.Equal(t, tc.wantClass, a.ClassSize(idx),
			"size %d align %d", tc.size, tc.align)
	}

	_, ok := a.ClassFor(257, 1)
	require.False(t, ok)
	_, _, err := a.Alloc(257, 1)
	require.ErrorIs(t, err, ErrNoClass)
}

func Test_AllocReturnsAlignedObjects(t *testing.T) {
	a, _ := newTestSlub(t, 64, nil)

	for _, align := range []uint64{8, 16, 64, 256} {
		addr, _, err := a.Alloc(8, align)
		require.NoError(t, err)
		require.True(t, addr.IsAligned(align), "addr %s align %d", addr, align)
	}
}

func Test_AllocDistinctObjects(t *testing.T) {
	a, _ := newTestSlub(t, 64, nil)

	seen := make(map[pmem.PhysAddr]bool)
	for i := 0; i < 100; i++ {
		addr, class, err := a.Alloc(64, 1)
		require.NoError(t, err)
		require.Equal(t, uint32(64), a.ClassSize(class))
		require.False(t, seen[addr], "object %s handed out twice", addr)
		seen[addr] = true
	}
}

func Test_SlabSpillCreatesSecondSlab(t *testing.T) {
	// Filling a slab to capacity and taking one more object must cost
	// exactly one more frame-allocator call, not an allocation failure.
	a, env := newTestSlub(t, 64, nil)

	idx, ok := a.ClassFor(64, 1)
	require.True(t, ok)
	capacity := int(buddy.BlockBytes(0) / 64) // class 64 slabs are one frame

	for i := 0; i < capacity; i++ {
		_, _, err := a.Alloc(64, 1)
		require.NoError(t, err)
	}
	require.Equal(t, uint64(1), a.Stats().SlabsCreated)
	allocsBefore := env.Frames.Stats().AllocCalls

	addr, class, err := a.Alloc(64, 1)
	require.NoError(t, err)
	require.Equal(t, idx, class)
	require.NotEqual(t, pmem.PhysAddr(0), addr)
	require.Equal(t, uint64(2), a.Stats().SlabsCreated)
	require.Equal(t, allocsBefore+1, env.Frames.Stats().AllocCalls)
}

func Test_FreeReusesObject(t *testing.T) {
	a, _ := newTestSlub(t, 64, nil)

	addr, class, err := a.Alloc(32, 1)
	require.NoError(t, err)
	a.Free(addr, class)

	again, _, err := a.Alloc(32, 1)
	require.NoError(t, err)
	require.Equal(t, addr, again)
}

func Test_FullSlabReturnsToPartialOnFree(t *testing.T) {
	cfg := ClassConfig{Name: "test", Classes: []uint32{512}, SlabObjects: 8}
	a, _ := newTestSlub(t, 64, &cfg)

	capacity := int(buddy.BlockBytes(0) / 512)
	addrs := make([]pmem.PhysAddr, 0, capacity)
	for i := 0; i < capacity; i++ {
		addr, _, err := a.Alloc(512, 1)
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}

	// The slab is full; freeing one object must make it serve again
	// without growing.
	a.Free(addrs[3], 0)
	addr, _, err := a.Alloc(512, 1)
	require.NoError(t, err)
	require.Equal(t, addrs[3], addr)
	require.Equal(t, uint64(1), a.Stats().SlabsCreated)
}

func Test_EmptySlabRetentionAndRelease(t *testing.T) {
	// Retention 1: the first slab to empty is kept, the next surplus one
	// goes back to the frame allocator.
	cfg := ClassConfig{Name: "test", Classes: []uint32{1024}, SlabObjects: 4, EmptyRetention: 1}
	a, env := newTestSlub(t, 64, &cfg)

	capacity := int(buddy.BlockBytes(0) / 1024)

	// Two full slabs.
	first := make([]pmem.PhysAddr, 0, capacity)
	second := make([]pmem.PhysAddr, 0, capacity)
	for i := 0; i < capacity; i++ {
		addr, _, err := a.Alloc(1024, 1)
		require.NoError(t, err)
		first = append(first, addr)
	}
	for i := 0; i < capacity; i++ {
		addr, _, err := a.Alloc(1024, 1)
		require.NoError(t, err)
		second = append(second, addr)
	}
	require.Equal(t, uint64(2), a.Stats().SlabsCreated)

	buddyFreeBefore := env.Frames.Stats().FreeCalls

	for _, addr := range first {
		a.Free(addr, 0)
	}
	require.Equal(t, uint64(0), a.Stats().SlabsReleased, "first empty slab is retained")
	require.Equal(t, buddyFreeBefore, env.Frames.Stats().FreeCalls)

	for _, addr := range second {
		a.Free(addr, 0)
	}
	require.Equal(t, uint64(1), a.Stats().SlabsReleased, "surplus empty slab released")
	require.Equal(t, buddyFreeBefore+1, env.Frames.Stats().FreeCalls)
}

func Test_RetainedEmptySlabServesAgain(t *testing.T) {
	cfg := ClassConfig{Name: "test", Classes: []uint32{256}, EmptyRetention: 1}
	a, _ := newTestSlub(t, 64, &cfg)

	addr, class, err := a.Alloc(256, 1)
	require.NoError(t, err)
	a.Free(addr, class)

	// The slab emptied but was retained; the next alloc must reuse it
	// without a fresh buddy block.
	again, _, err := a.Alloc(256, 1)
	require.NoError(t, err)
	require.Equal(t, addr, again)
	require.Equal(t, uint64(1), a.Stats().SlabsCreated)
}

func Test_AllocPropagatesOutOfMemory(t *testing.T) {
	// 1-frame region: the first slab consumes it, the next class exhausts.
	a, _ := newTestSlub(t, 1, &ClassConfig{Name: "test", Classes: []uint32{64, 128}})

	_, _, err := a.Alloc(64, 1)
	require.NoError(t, err)

	_, _, err = a.Alloc(128, 1)
	require.ErrorIs(t, err, buddy.ErrOutOfMemory)
}

func Test_FreeContractViolationsPanic(t *testing.T) {
	a, _ := newTestSlub(t, 64, nil)

	addr, class, err := a.Alloc(64, 1)
	require.NoError(t, err)

	require.Panics(t, func() { a.Free(addr, class+1) }, "class never used")
	require.Panics(t, func() { a.Free(addr+1, class) }, "misaligned object")
	require.Panics(t, func() { a.Free(pmem.DefaultBase+1<<20, class) }, "address in no slab")

	a.Free(addr, class)
}

func Test_ConfigValidation(t *testing.T) {
	env := testutil.NewEnv(t, 16)

	bad := []ClassConfig{
		{Name: "empty"},
		{Name: "nonpow2", Classes: []uint32{24}},
		{Name: "toosmall", Classes: []uint32{4}},
		{Name: "descending", Classes: []uint32{64, 32}},
		{Name: "duplicate", Classes: []uint32{64, 64}},
	}
	for _, cfg := range bad {
		_, err := New(env.Arena, env.Frames, &cfg)
		require.ErrorIs(t, err, ErrBadConfig, cfg.Name)
	}

	a, err := New(env.Arena, env.Frames, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig.Name, a.Config().Name)
	require.Equal(t, uint32(2048), a.MaxClass())
}
