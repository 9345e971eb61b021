// Package testutil provides shared fixtures for allocator tests.
package testutil

import (
	"testing"

	"github.com/framekit/framekit/internal/arena"
	"github.com/framekit/framekit/pmem"
	"github.com/framekit/framekit/pmem/buddy"
)

// Env bundles a mapped span with the frame table and buddy allocator
// covering it, ready for layering tests on top.
type Env struct {
	Arena  *pmem.Arena
	Table  *pmem.Table
	Frames *buddy.Allocator
}

// NewEnv maps a span of the given frame count at the conventional RAM base
// and builds the buddy allocator over it. The mapping is released when the
// test finishes.
//
// Example:
//
//	env := testutil.NewEnv(t, 256)
//	addr, err := env.Frames.Alloc(0)
func NewEnv(t *testing.T, frames uint64) *Env {
	t.Helper()

	data, release, err := arena.Map(int(frames * pmem.FrameSize))
	if err != nil {
		t.Fatalf("map arena: %v", err)
	}
	t.Cleanup(func() {
		if err := release(); err != nil {
			t.Errorf("release arena: %v", err)
		}
	})

	region, err := pmem.NewRegion(pmem.DefaultBase, pmem.DefaultBase.Add(frames*pmem.FrameSize))
	if err != nil {
		t.Fatalf("build region: %v", err)
	}
	table := pmem.NewTable(region)
	frameAlloc, err := buddy.New(table, nil)
	if err != nil {
		t.Fatalf("build buddy allocator: %v", err)
	}

	return &Env{
		Arena:  pmem.NewArena(pmem.DefaultBase, data),
		Table:  table,
		Frames: frameAlloc,
	}
}
