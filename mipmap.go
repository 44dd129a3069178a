package ktx

import "math/bits"

// maxLevelCount returns 1 + floor(log2(dim)), the length of a full mip chain
// for a texture whose largest dimension is dim. A zero dimension has no levels.
func maxLevelCount(dim uint32) uint32 {
	// #nosec G115 -- bits.Len32 is at most 32.
	return uint32(bits.Len32(dim))
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level uint32) uint32 {
	if level >= 32 {
		return 1
	}
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}
