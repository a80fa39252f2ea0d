// SPDX-License-Identifier: MIT
package source

import (
	"bytes"
	"io"
	"reflect"
	"testing"
)

func TestSineFrameShape(t *testing.T) {
	t.Parallel()

	s := NewSine(512, 44100, 440)
	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(frame) != 512*4 {
		t.Fatalf("frame of %d bytes, want %d", len(frame), 512*4)
	}
}

func TestSinePhaseContinuity(t *testing.T) {
	t.Parallel()

	// Two sources, one reading 2x256 and one reading 1x512, must produce
	// the same waveform: frames continue the phase, not restart it.
	a := NewSine(256, 44100, 440)
	b := NewSine(512, 44100, 440)

	first, _ := a.ReadFrame()
	combined := append([]byte{}, first...)
	second, _ := a.ReadFrame()
	combined = append(combined, second...)

	whole, _ := b.ReadFrame()
	if !reflect.DeepEqual(combined, whole) {
		t.Error("consecutive frames are not phase-continuous")
	}
}

func TestReaderFraming(t *testing.T) {
	t.Parallel()

	// 10 bytes through 4-byte frames: two whole frames, then a short tail,
	// then EOF.
	src := NewReader(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}), 4)

	frame, err := src.ReadFrame()
	if err != nil || !reflect.DeepEqual(frame, []byte{0, 1, 2, 3}) {
		t.Fatalf("first frame = (%v, %v)", frame, err)
	}
	frame, err = src.ReadFrame()
	if err != nil || !reflect.DeepEqual(frame, []byte{4, 5, 6, 7}) {
		t.Fatalf("second frame = (%v, %v)", frame, err)
	}
	frame, err = src.ReadFrame()
	if err != nil || !reflect.DeepEqual(frame, []byte{8, 9}) {
		t.Fatalf("tail frame = (%v, %v)", frame, err)
	}
	if _, err = src.ReadFrame(); err != io.EOF {
		t.Fatalf("expected io.EOF after tail, got %v", err)
	}
}

func TestReaderEmptyStream(t *testing.T) {
	t.Parallel()

	src := NewReader(bytes.NewReader(nil), 4)
	if _, err := src.ReadFrame(); err != io.EOF {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestNewSelectsKind(t *testing.T) {
	t.Parallel()

	opts := Options{Kind: "sine", FrameSamples: 256, SampleRate: 44100, Frequency: 440}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New(sine): %v", err)
	}
	if _, ok := s.(*Sine); !ok {
		t.Errorf("New(sine) returned %T", s)
	}

	if _, err := New(Options{Kind: "theremin"}); err == nil {
		t.Error("expected error for unknown source kind")
	}
}
