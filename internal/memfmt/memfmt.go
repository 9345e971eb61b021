// Package memfmt contains alignment and order arithmetic shared by the
// physical-memory allocators, plus endian-safe access helpers for metadata
// stored inside managed memory.
package memfmt

import "math/bits"

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(1, 4096)    = 4096
//	AlignUp(4096, 4096) = 4096
//	AlignUp(4097, 4096) = 8192
func AlignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// AlignDown returns n rounded down to the previous multiple of align.
// align must be a power of two.
func AlignDown(n, align uint64) uint64 {
	return n &^ (align - 1)
}

// IsPowerOfTwo reports whether n is a power of two. Zero is not.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Log2 returns the floor of log2(n). n must be non-zero.
func Log2(n uint64) uint8 {
	return uint8(bits.Len64(n) - 1)
}

// OrderForFrames returns the smallest order whose block covers the given
// number of frames, i.e. the ceiling of log2(frames). frames must be non-zero.
func OrderForFrames(frames uint64) uint8 {
	if frames == 1 {
		return 0
	}
	return uint8(bits.Len64(frames - 1))
}
