// SPDX-License-Identifier: MIT
package source

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV encodes samples (in [-1,1]) as a 16-bit mono WAV file.
func writeTestWAV(t *testing.T, samples []float64, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp WAV: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
	return path
}

func TestOpenWAVRoundTrip(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}
	path := writeTestWAV(t, samples, 44100)

	src, err := OpenWAV(path, 256, false)
	if err != nil {
		t.Fatalf("OpenWAV: %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 44100 {
		t.Errorf("sample rate %v, want 44100", src.SampleRate())
	}

	var total int
	for {
		frame, err := src.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if len(frame)%4 != 0 {
			t.Fatalf("frame of %d bytes is not whole samples", len(frame))
		}
		total += len(frame) / 4
	}
	if total != len(samples) {
		t.Errorf("replayed %d samples, want %d", total, len(samples))
	}

	// Spot-check amplitude survived the 16-bit round trip.
	src2, err := OpenWAV(path, len(samples), false)
	if err != nil {
		t.Fatalf("OpenWAV: %v", err)
	}
	frame, err := src2.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	// Sample 25 is sin at 1/4 period of the 440Hz tone, near the 0.5 peak.
	got := float64(math.Float32frombits(leUint32(frame[25*4:])))
	if math.Abs(got-samples[25]) > 1e-3 {
		t.Errorf("sample 25 = %v, want ~%v", got, samples[25])
	}
}

func TestOpenWAVLoop(t *testing.T) {
	t.Parallel()

	path := writeTestWAV(t, make([]float64, 300), 8000)
	src, err := OpenWAV(path, 256, true)
	if err != nil {
		t.Fatalf("OpenWAV: %v", err)
	}
	defer src.Close()

	// 300 samples in loop mode: 256, then the 44 tail, then wrap to 256
	// again without EOF.
	wantLens := []int{256 * 4, 44 * 4, 256 * 4}
	for i, want := range wantLens {
		frame, err := src.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		if len(frame) != want {
			t.Errorf("frame %d has %d bytes, want %d", i, len(frame), want)
		}
	}
}

func TestOpenWAVErrors(t *testing.T) {
	t.Parallel()

	if _, err := OpenWAV(filepath.Join(t.TempDir(), "missing.wav"), 256, false); err == nil {
		t.Error("expected error for missing file")
	}

	garbage := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(garbage, []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenWAV(garbage, 256, false); err == nil {
		t.Error("expected error for invalid WAV data")
	}
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
