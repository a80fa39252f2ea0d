// SPDX-License-Identifier: MIT
package engine

import (
	"bytes"
	"testing"
	"time"

	"audioviz/internal/analysis"
	"audioviz/internal/metrics"
	"audioviz/internal/source"
	"audioviz/internal/transport"
	"audioviz/pkg/viztest"
)

func waitForFrames(t *testing.T, mock *viztest.MockTransport, want int) [][]float64 {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if frames := mock.Frames(); len(frames) >= want {
			return frames
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames", want)
	return nil
}

func TestEngineDeliversVectors(t *testing.T) {
	t.Parallel()

	mock := &viztest.MockTransport{}
	src := source.NewSine(2048, 44100, 440)
	e := New(src, analysis.MethodFFT, time.Millisecond, []transport.Transport{mock}, metrics.New())

	e.Start()
	frames := waitForFrames(t, mock, 3)
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for i, frame := range frames {
		if len(frame) != analysis.NumBins {
			t.Fatalf("frame %d has %d bins, want %d", i, len(frame), analysis.NumBins)
		}
		for j, v := range frame {
			if v < 0 || v > 1 {
				t.Errorf("frame %d bin %d = %v, out of [0,1]", i, j, v)
			}
		}
	}
}

func TestEngineStopsAtSourceEOF(t *testing.T) {
	t.Parallel()

	// A reader source over a finite buffer reaches EOF; the loop must stop
	// on its own and Stop must still return cleanly afterwards.
	raw := viztest.Bytes(viztest.ComplexWave(4096, 44100))
	mock := &viztest.MockTransport{}
	src := source.NewReader(bytes.NewReader(raw), 1024*4)
	e := New(src, analysis.MethodRMS, time.Millisecond, []transport.Transport{mock}, nil)

	e.Start()
	frames := waitForFrames(t, mock, 4)
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(frames) < 4 {
		t.Fatalf("got %d frames from a 4-frame source", len(frames))
	}
}

func TestEngineStartStopIdempotent(t *testing.T) {
	t.Parallel()

	src := source.NewSine(256, 44100, 440)
	e := New(src, analysis.MethodFFT, time.Millisecond, nil, nil)

	if err := e.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
	e.Start()
	e.Start() // no-op
	if err := e.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
