// SPDX-License-Identifier: MIT
package bitint

import "testing"

func TestNextPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{-8, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{255, 256},
		{256, 256},
		{257, 512},
		{1000, 1024},
	}
	for _, tc := range tests {
		if got := NextPowerOfTwo(tc.in); got != tc.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want bool
	}{
		{-8, false},
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{256, true},
		{257, false},
		{1 << 30, true},
	}
	for _, tc := range tests {
		if got := IsPowerOfTwo(tc.in); got != tc.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestZeroAllocations(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = NextPowerOfTwo(1000)
		_ = IsPowerOfTwo(1024)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations, got %.1f", allocs)
	}
}
