// SPDX-License-Identifier: MIT

/*
Package bitint provides the power-of-two helpers used to size analysis
frames. Capture frames feed a radix-2 friendly FFT, so configuration
rejects sizes that are not a power of two and suggests the nearest
larger one.

Both helpers are O(1), allocation free and safe to call from the
capture hot path.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Subtracting one before taking the bit length keeps exact powers of
// two unchanged (8 -> 8, 9 -> 16).
//
//	Input  Output
//	2048   2048
//	2000   2048
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of two have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
