// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx

package ktx

const (
	maxUint32 = uint64(^uint32(0))
)

// u32FromInt converts an int to a uint32.
func u32FromInt(n int) (uint32, error) {
	if n < 0 || uint64(n) > maxUint32 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint32(n), nil
}

// intFromU64 converts a size computed in uint64 back to an int.
func intFromU64(n uint64) (int, error) {
	if n > uint64(int(^uint(0)>>1)) {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return int(n), nil
}

// align4 rounds n up to the next multiple of 4.
func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// pad4 returns the number of zero bytes needed to align n to 4.
func pad4(n uint64) uint64 {
	return align4(n) - n
}
