// SPDX-License-Identifier: MIT
package analysis

import (
	"audioviz/pkg/bitint"
	"math"
)

// fft performs an in-place radix-2 decimation-in-time FFT on the complex
// values held in the parallel re/im slices. Both slices must have the same
// length, which must be a power of two (FFTSize here, enforced at the call
// site since the frame size is a compile-time constant).
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}
	if !bitint.IsPowerOfTwo(n) {
		panic("fft: length must be a power of 2")
	}

	// Bit-reversal permutation reorders the input before the butterfly
	// passes (standard DIT precondition).
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	// Butterfly passes for sizes 2, 4, ..., n. Twiddle factors are full
	// precision cos/sin of k·π/half, no table or approximation.
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		for base := 0; base < n; base += size {
			for k := 0; k < half; k++ {
				angle := -math.Pi * float64(k) / float64(half)
				wr := math.Cos(angle)
				wi := math.Sin(angle)
				i0 := base + k
				i1 := i0 + half
				tr := wr*re[i1] - wi*im[i1]
				ti := wr*im[i1] + wi*re[i1]
				re[i1] = re[i0] - tr
				im[i1] = im[i0] - ti
				re[i0] += tr
				im[i0] += ti
			}
		}
	}
}
