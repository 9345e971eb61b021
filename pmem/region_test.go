package pmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NewRegionRoundsInward(t *testing.T) {
	r, err := NewRegion(DefaultBase+1, DefaultBase+3*FrameSize+100)
	require.NoError(t, err)
	require.Equal(t, DefaultBase+FrameSize, r.Start)
	require.Equal(t, uint64(2*FrameSize), r.Size)
	require.Equal(t, uint64(2), r.Frames())
}

func Test_NewRegionAlreadyAligned(t *testing.T) {
	r, err := NewRegion(DefaultBase, DefaultBase+1<<20)
	require.NoError(t, err)
	require.Equal(t, DefaultBase, r.Start)
	require.Equal(t, uint64(1<<20), r.Size)
	require.Equal(t, uint64(256), r.Frames())
}

func Test_NewRegionEmpty(t *testing.T) {
	_, err := NewRegion(DefaultBase+1, DefaultBase+FrameSize)
	require.ErrorIs(t, err, ErrEmptyRegion)

	_, err = NewRegion(DefaultBase, DefaultBase)
	require.ErrorIs(t, err, ErrEmptyRegion)
}

func Test_RegionContains(t *testing.T) {
	r, err := NewRegion(DefaultBase, DefaultBase+FrameSize)
	require.NoError(t, err)
	require.True(t, r.Contains(DefaultBase))
	require.True(t, r.Contains(DefaultBase+FrameSize-1))
	require.False(t, r.Contains(DefaultBase+FrameSize))
	require.False(t, r.Contains(DefaultBase-1))
}
