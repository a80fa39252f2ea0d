// SPDX-License-Identifier: MIT
//
// Package viztest provides shared helpers for tests that feed synthetic
// float32 PCM into the analysis pipeline and inspect the resulting bins.
package viztest

import (
	"encoding/binary"
	"math"
	"sync"
)

// Bytes encodes samples as interleaved little-endian float32 PCM, the wire
// form the analyzer consumes.
func Bytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// SineCycles generates n samples of a pure sine completing exactly cycles
// periods over the frame, so a 256-point transform places its energy in raw
// frequency bin round(cycles).
func SineCycles(n int, cycles, amplitude float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(amplitude * math.Sin(2*math.Pi*cycles*float64(i)/float64(n)))
	}
	return buf
}

// SineWave generates n samples of a sine at frequency Hz for the given
// sample rate.
func SineWave(n int, sampleRate, frequency, amplitude float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buf
}

// ComplexWave generates a 440Hz fundamental plus harmonics, useful as
// arbitrary non-trivial program material.
func ComplexWave(n int, sampleRate float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = float32(math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2)
	}
	return buf
}

// Constant generates n samples of the fixed value v.
func Constant(n int, v float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

// FindPeakBin returns the index of the largest value in bins[start:end+1].
func FindPeakBin(bins []float64, start, end int) int {
	if len(bins) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if end >= len(bins) {
		end = len(bins) - 1
	}
	peak := start
	for i := start + 1; i <= end; i++ {
		if bins[i] > bins[peak] {
			peak = i
		}
	}
	return peak
}

// MockTransport records every vector it is asked to send, for inspection
// instead of transmission. Safe for concurrent use.
type MockTransport struct {
	mu     sync.Mutex
	frames [][]float64
}

// Send stores a copy of the vector.
func (m *MockTransport) Send(bins []float64) error {
	cp := make([]float64, len(bins))
	copy(cp, bins)
	m.mu.Lock()
	m.frames = append(m.frames, cp)
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error { return nil }

// Frames returns the vectors recorded so far.
func (m *MockTransport) Frames() [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float64, len(m.frames))
	copy(out, m.frames)
	return out
}
