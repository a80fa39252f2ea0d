// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

func TestFFTImpulse(t *testing.T) {
	t.Parallel()

	// A unit impulse transforms to a flat spectrum of magnitude 1.
	re := make([]float64, FFTSize)
	im := make([]float64, FFTSize)
	re[0] = 1

	fft(re, im)

	for i := range re {
		mag := math.Hypot(re[i], im[i])
		if math.Abs(mag-1) > 1e-12 {
			t.Errorf("bin %d magnitude %v, want 1", i, mag)
		}
	}
}

func TestFFTPureTone(t *testing.T) {
	t.Parallel()

	// A sine with k whole cycles concentrates in bins k and N-k, each with
	// magnitude N/2.
	const k = 10
	re := make([]float64, FFTSize)
	im := make([]float64, FFTSize)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * k * float64(i) / FFTSize)
	}

	fft(re, im)

	for i := 0; i < FFTSize/2; i++ {
		mag := math.Hypot(re[i], im[i])
		want := 0.0
		if i == k {
			want = FFTSize / 2
		}
		if math.Abs(mag-want) > 1e-9 {
			t.Errorf("bin %d magnitude %v, want %v", i, mag, want)
		}
	}
}

func TestFFTMatchesReferenceTransform(t *testing.T) {
	t.Parallel()

	// Cross-check the hand-rolled radix-2 transform against gonum's FFT on
	// deterministic pseudo-random input.
	rng := rand.New(rand.NewSource(42))
	input := make([]float64, FFTSize)
	for i := range input {
		input[i] = rng.Float64()*2 - 1
	}

	re := make([]float64, FFTSize)
	im := make([]float64, FFTSize)
	copy(re, input)
	fft(re, im)

	ref := fourier.NewFFT(FFTSize)
	coeffs := ref.Coefficients(nil, input)

	for i := 0; i <= FFTSize/2; i++ {
		got := math.Hypot(re[i], im[i])
		want := math.Hypot(real(coeffs[i]), imag(coeffs[i]))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("bin %d magnitude %v, reference %v", i, got, want)
		}
	}
}

func TestFFTSmallSizes(t *testing.T) {
	t.Parallel()

	// Degenerate lengths are identity transforms.
	re := []float64{3.5}
	im := []float64{0}
	fft(re, im)
	if re[0] != 3.5 || im[0] != 0 {
		t.Errorf("size-1 transform changed values: (%v, %v)", re[0], im[0])
	}

	// Size 2: X0 = x0+x1, X1 = x0-x1.
	re = []float64{1, 2}
	im = []float64{0, 0}
	fft(re, im)
	if re[0] != 3 || re[1] != -1 {
		t.Errorf("size-2 transform = %v, want [3 -1]", re)
	}
}

func TestFFTRejectsNonPowerOfTwo(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-power-of-two length")
		}
	}()
	fft(make([]float64, 100), make([]float64, 100))
}

func BenchmarkFFT(b *testing.B) {
	re := make([]float64, FFTSize)
	im := make([]float64, FFTSize)
	src := make([]float64, FFTSize)
	for i := range src {
		src[i] = math.Sin(2 * math.Pi * 10 * float64(i) / FFTSize)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		copy(re, src)
		for i := range im {
			im[i] = 0
		}
		fft(re, im)
	}
}
