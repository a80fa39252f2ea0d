// SPDX-License-Identifier: MIT
/*
Package analysis converts raw float32 PCM byte buffers into fixed-length
visualization vectors suitable for driving audio-reactive rendering.

Two interchangeable methods are provided:
  - FFT: a 256-point Hann-windowed spectrum, regrouped into 128 bins on a
    squared frequency progression (more resolution at the low end).
  - RMS: 128 equal-width amplitude segments over the whole decoded buffer.

Both methods are pure functions of their input. The analyzer holds no
mutable state between calls, so a single instance is safe for concurrent
use from any number of callers.
*/
package analysis

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	// FFTSize is the fixed transform length in samples. Shorter input is
	// zero-padded, longer input is truncated to the first FFTSize samples.
	FFTSize = 256

	// NumBins is the length of every non-empty visualization vector.
	NumBins = FFTSize / 2

	// bytesPerSample is the width of one little-endian float32 PCM sample.
	bytesPerSample = 4
)

// Method selects the analysis algorithm.
type Method int

const (
	MethodFFT Method = iota // frequency spectrum (default)
	MethodRMS               // segment amplitude
)

// String returns the config/CLI name of the method.
func (m Method) String() string {
	switch m {
	case MethodRMS:
		return "rms"
	default:
		return "fft"
	}
}

// ParseMethod converts a string (case-insensitive) to a Method.
// The empty string selects the default FFT method; unknown names return
// MethodFFT and an error.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "", "fft", "spectrum":
		return MethodFFT, nil
	case "rms", "amplitude":
		return MethodRMS, nil
	default:
		return MethodFFT, fmt.Errorf("unknown analysis method: %q", name)
	}
}

// Analyzer computes visualization vectors from raw PCM buffers.
// The zero cost of construction is paid once: the Hann coefficients are
// precomputed and never mutated afterwards.
type Analyzer struct {
	window [FFTSize]float64
}

// New returns an Analyzer with precomputed Hann window coefficients.
func New() *Analyzer {
	a := &Analyzer{}
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/FFTSize))
	}
	return a
}

// Analyze decodes data as interleaved little-endian float32 PCM and returns
// a fresh vector of NumBins values, each in [0, 1]. An empty buffer (or one
// too short to hold a single sample) yields a nil result by contract, not an
// error: callers must check the length before indexing. Trailing bytes that
// do not form a whole sample are discarded.
func (a *Analyzer) Analyze(data []byte, method Method) []float64 {
	if len(data) < bytesPerSample {
		return nil
	}
	out := make([]float64, NumBins)
	a.analyzeInto(out, data, method)
	return out
}

// AnalyzeInto is the allocation-free variant of Analyze for hot-path
// consumers that reuse an output slice across frames. It writes up to
// NumBins values into dst and returns the number written: NumBins for
// non-empty input, 0 for empty input. dst must hold at least NumBins
// elements.
func (a *Analyzer) AnalyzeInto(dst []float64, data []byte, method Method) (int, error) {
	if len(dst) < NumBins {
		return 0, fmt.Errorf("destination slice length %d is below required length %d", len(dst), NumBins)
	}
	if len(data) < bytesPerSample {
		return 0, nil
	}
	a.analyzeInto(dst[:NumBins], data, method)
	return NumBins, nil
}

func (a *Analyzer) analyzeInto(dst []float64, data []byte, method Method) {
	switch method {
	case MethodRMS:
		a.amplitudeBins(dst, data)
	default:
		a.spectrumBins(dst, data)
	}
}

// sampleAt decodes the i-th little-endian float32 sample from data.
func sampleAt(data []byte, i int) float64 {
	bits := binary.LittleEndian.Uint32(data[i*bytesPerSample:])
	return float64(math.Float32frombits(bits))
}

// spectrumBins implements the FFT method: window, transform, magnitudes,
// then the squared-progression regrouping into NumBins output bins.
func (a *Analyzer) spectrumBins(dst []float64, data []byte) {
	n := len(data) / bytesPerSample

	// Fixed-size working arrays keep the transform off the heap; anything
	// past the decoded input stays zero-padded.
	var re, im [FFTSize]float64
	for i := 0; i < FFTSize && i < n; i++ {
		re[i] = sampleAt(data, i) * a.window[i]
	}

	fft(re[:], im[:])

	// Only the first half of the transform carries information for real
	// input (Hermitian symmetry).
	var mags [NumBins]float64
	for i := range mags {
		mags[i] = math.Sqrt(re[i]*re[i] + im[i]*im[i])
	}

	// Squared bin mapping: output bin i averages raw bins
	// [i²/128, (i+1)²/128), concentrating resolution at low frequencies.
	// Early output bins can map to an empty range; those read as 0.
	// The ×4 gain is an empirically tuned display constant.
	for i := range dst {
		start := i * i / NumBins
		end := (i + 1) * (i + 1) / NumBins
		if end > NumBins {
			end = NumBins
		}
		if end <= start {
			dst[i] = 0
			continue
		}
		var sum float64
		for k := start; k < end; k++ {
			sum += mags[k]
		}
		dst[i] = clamp01(sum / float64(end-start) * 4)
	}
}

// amplitudeBins implements the RMS method over the entire decoded buffer,
// not just one transform window: the frame is split into NumBins contiguous
// equal-width segments and each bin is the segment's root mean square.
// The ×2 gain matches the FFT path's display scaling.
func (a *Analyzer) amplitudeBins(dst []float64, data []byte) {
	n := len(data) / bytesPerSample
	perBin := n / NumBins
	for i := range dst {
		start := i * perBin
		end := start + perBin
		if end > n {
			end = n
		}
		if end <= start {
			// Fewer samples than bins; zero-length segments read as 0.
			dst[i] = 0
			continue
		}
		var sum float64
		for k := start; k < end; k++ {
			s := sampleAt(data, k)
			sum += s * s
		}
		dst[i] = clamp01(math.Sqrt(sum/float64(end-start)) * 2)
	}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
