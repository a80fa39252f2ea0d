// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	applog "audioviz/internal/log"
)

// WAVFile replays a WAV file from disk as float32 PCM frames, for offline
// analysis and development without a live capture feed. Multi-channel files
// are downmixed to mono by averaging.
type WAVFile struct {
	samples      []float32
	sampleRate   float64
	frameSamples int
	loop         bool
	pos          int
	buf          []byte
}

// OpenWAV decodes the entire file up front; visualization sources are short
// program material, not multi-hour archives.
func OpenWAV(path string, frameSamples int, loop bool) (*WAVFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV data: %w", err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("WAV file reports %d channels", channels)
	}

	// Scale integer PCM to [-1, 1] by bit depth, downmixing as we go.
	scale := float32(int64(1) << (dec.BitDepth - 1))
	frames := len(pcm.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(pcm.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	applog.Infof("Source: loaded %s (%d samples, %d Hz, %d channels)",
		path, frames, dec.SampleRate, channels)

	return &WAVFile{
		samples:      samples,
		sampleRate:   float64(dec.SampleRate),
		frameSamples: frameSamples,
		loop:         loop,
		buf:          make([]byte, frameSamples*4),
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (w *WAVFile) SampleRate() float64 { return w.sampleRate }

// ReadFrame returns the next frame of the file. At the end it either wraps
// (loop mode) or reports io.EOF; a final partial frame is delivered short.
func (w *WAVFile) ReadFrame() ([]byte, error) {
	if w.pos >= len(w.samples) {
		if !w.loop || len(w.samples) == 0 {
			return nil, io.EOF
		}
		w.pos = 0
	}

	n := w.frameSamples
	if remaining := len(w.samples) - w.pos; n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		putSample(w.buf, i, w.samples[w.pos+i])
	}
	w.pos += n
	return w.buf[:n*4], nil
}

// Close is a no-op; the file handle is released after decoding.
func (w *WAVFile) Close() error { return nil }

var _ Source = (*WAVFile)(nil)
