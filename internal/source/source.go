// SPDX-License-Identifier: MIT
/*
Package source produces raw audio snapshots for the analysis engine.

A Source stands in for whatever capture mechanism the host system uses:
a synthetic generator, a WAV file replayed from disk, or an opaque byte
stream piped in from an external capture process. Every frame is a byte
buffer of interleaved little-endian float32 PCM, the exact form the
analyzer consumes.
*/
package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Source produces one raw PCM byte snapshot per call.
// ReadFrame returns io.EOF when the source is exhausted; the returned slice
// is only valid until the next call, callers must not retain it.
type Source interface {
	ReadFrame() ([]byte, error)
	Close() error
}

// Kind names for config/CLI selection.
const (
	KindSine  = "sine"
	KindWAV   = "wav"
	KindStdin = "stdin"
)

// Sine is a synthetic capture source generating a fundamental with two
// harmonics, phase-continuous across frames. It never reaches EOF.
type Sine struct {
	frameSamples int
	sampleRate   float64
	frequency    float64
	pos          int64
	buf          []byte
}

// NewSine creates a Sine source emitting frames of frameSamples samples.
func NewSine(frameSamples int, sampleRate, frequency float64) *Sine {
	return &Sine{
		frameSamples: frameSamples,
		sampleRate:   sampleRate,
		frequency:    frequency,
		buf:          make([]byte, frameSamples*4),
	}
}

// ReadFrame fills the next frame of the waveform.
func (s *Sine) ReadFrame() ([]byte, error) {
	for i := 0; i < s.frameSamples; i++ {
		t := float64(s.pos+int64(i)) / s.sampleRate
		v := math.Sin(2*math.Pi*s.frequency*t)*0.5 +
			math.Sin(2*math.Pi*2*s.frequency*t)*0.3 +
			math.Sin(2*math.Pi*3*s.frequency*t)*0.2
		putSample(s.buf, i, float32(v))
	}
	s.pos += int64(s.frameSamples)
	return s.buf, nil
}

// Close is a no-op for the generator.
func (s *Sine) Close() error { return nil }

// Reader wraps an arbitrary byte stream (typically stdin fed by an external
// capture process) into fixed-size frames. The final short frame, if any,
// is delivered as-is; the analyzer tolerates ragged tails.
type Reader struct {
	r         io.Reader
	c         io.Closer // optional
	buf       []byte
	exhausted bool
}

// NewReader creates a frame reader over r with frames of frameBytes bytes.
// When r is also an io.Closer, Close closes it.
func NewReader(r io.Reader, frameBytes int) *Reader {
	c, _ := r.(io.Closer)
	return &Reader{
		r:   r,
		c:   c,
		buf: make([]byte, frameBytes),
	}
}

// NewStdin creates a frame reader over standard input.
func NewStdin(frameBytes int) *Reader {
	return NewReader(os.Stdin, frameBytes)
}

// ReadFrame returns the next frame, or io.EOF when the stream ends.
func (s *Reader) ReadFrame() ([]byte, error) {
	if s.exhausted {
		return nil, io.EOF
	}
	n, err := io.ReadFull(s.r, s.buf)
	switch err {
	case nil:
		return s.buf, nil
	case io.ErrUnexpectedEOF:
		s.exhausted = true
		return s.buf[:n], nil
	case io.EOF:
		s.exhausted = true
		return nil, io.EOF
	default:
		return nil, err
	}
}

// Close closes the underlying stream when it is closable.
func (s *Reader) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

// Options configures New.
type Options struct {
	Kind         string
	FrameSamples int
	SampleRate   float64
	Frequency    float64 // sine fundamental
	WAVPath      string
	Loop         bool // wav only
}

// New constructs a Source from configuration.
func New(opts Options) (Source, error) {
	switch strings.ToLower(opts.Kind) {
	case "", KindSine:
		return NewSine(opts.FrameSamples, opts.SampleRate, opts.Frequency), nil
	case KindWAV:
		return OpenWAV(opts.WAVPath, opts.FrameSamples, opts.Loop)
	case KindStdin:
		return NewStdin(opts.FrameSamples * 4), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %q", opts.Kind)
	}
}

// putSample encodes a little-endian float32 sample at index i.
func putSample(buf []byte, i int, v float32) {
	bits := math.Float32bits(v)
	buf[i*4] = byte(bits)
	buf[i*4+1] = byte(bits >> 8)
	buf[i*4+2] = byte(bits >> 16)
	buf[i*4+3] = byte(bits >> 24)
}
