package memfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_AlignUp(t *testing.T) {
	require.Equal(t, uint64(0), AlignUp(0, 4096))
	require.Equal(t, uint64(4096), AlignUp(1, 4096))
	require.Equal(t, uint64(4096), AlignUp(4096, 4096))
	require.Equal(t, uint64(8192), AlignUp(4097, 4096))
	require.Equal(t, uint64(16), AlignUp(9, 8))
}

func Test_AlignDown(t *testing.T) {
	require.Equal(t, uint64(0), AlignDown(4095, 4096))
	require.Equal(t, uint64(4096), AlignDown(4096, 4096))
	require.Equal(t, uint64(4096), AlignDown(8191, 4096))
}

func Test_IsPowerOfTwo(t *testing.T) {
	require.False(t, IsPowerOfTwo(0))
	require.True(t, IsPowerOfTwo(1))
	require.True(t, IsPowerOfTwo(2))
	require.False(t, IsPowerOfTwo(3))
	require.True(t, IsPowerOfTwo(4096))
	require.False(t, IsPowerOfTwo(4097))
}

func Test_OrderForFrames(t *testing.T) {
	require.Equal(t, uint8(0), OrderForFrames(1))
	require.Equal(t, uint8(1), OrderForFrames(2))
	require.Equal(t, uint8(2), OrderForFrames(3))
	require.Equal(t, uint8(2), OrderForFrames(4))
	require.Equal(t, uint8(3), OrderForFrames(5))
	require.Equal(t, uint8(8), OrderForFrames(256))
}

func Test_U32LERoundTrip(t *testing.T) {
	b := make([]byte, 4)
	PutU32LE(b, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), U32LE(b))

	// Short buffers are tolerated.
	require.Equal(t, uint32(0), U32LE(b[:3]))
	PutU32LE(b[:3], 1) // must not panic
}
