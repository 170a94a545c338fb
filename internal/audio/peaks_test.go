/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWav synthesizes a mono 16-bit sine wave file and returns its path.
func writeTestWav(t *testing.T, rate int, seconds float64, freq float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	frames := int(float64(rate) * seconds)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, frames),
	}
	for i := 0; i < frames; i++ {
		buf.Data[i] = int(30000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadWavPeaks(t *testing.T) {
	path := writeTestWav(t, 8000, 0.5, 440)
	ps, err := LoadWavPeaks(path)
	if err != nil {
		t.Fatalf("LoadWavPeaks: %v", err)
	}
	if ps.SampleRate != 8000 {
		t.Fatalf("sample rate: got %d", ps.SampleRate)
	}
	if math.Abs(ps.DurationSec-0.5) > 0.01 {
		t.Fatalf("duration: got %f", ps.DurationSec)
	}
	if len(ps.Peaks) != 5 {
		t.Fatalf("bucket count: got %d, want 0.5s * %d", len(ps.Peaks), BucketsPerSec)
	}
	// A full-scale-ish sine should swing well past +/- 0.5 in every bucket;
	// at 100ms per bucket each one covers dozens of 440Hz cycles.
	for i, p := range ps.Peaks {
		if p.Max < 0.5 || p.Min > -0.5 {
			t.Fatalf("bucket %d has weak peaks: %+v", i, p)
		}
	}
}

func TestLoadWavPeaksBucketCountTracksDuration(t *testing.T) {
	short, err := LoadWavPeaks(writeTestWav(t, 8000, 0.5, 440))
	if err != nil {
		t.Fatalf("LoadWavPeaks short: %v", err)
	}
	long, err := LoadWavPeaks(writeTestWav(t, 8000, 2, 440))
	if err != nil {
		t.Fatalf("LoadWavPeaks long: %v", err)
	}
	if len(short.Peaks) != 5 || len(long.Peaks) != 20 {
		t.Fatalf("bucket counts: short %d, long %d", len(short.Peaks), len(long.Peaks))
	}
}

func TestLoadWavPeaksMissingFile(t *testing.T) {
	if _, err := LoadWavPeaks(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPeaksEncodeDecodeRoundTrip(t *testing.T) {
	ps := &PeakSet{
		SampleRate:  44100,
		DurationSec: 181.25,
		Peaks:       []Peak{{Min: -0.5, Max: 0.75}, {Min: -1, Max: 1}, {}},
	}
	raw, err := ps.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodePeaks(raw)
	if err != nil {
		t.Fatalf("DecodePeaks: %v", err)
	}
	if got.SampleRate != ps.SampleRate || got.DurationSec != ps.DurationSec {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Peaks) != len(ps.Peaks) {
		t.Fatalf("peak count mismatch: %d", len(got.Peaks))
	}
	for i := range ps.Peaks {
		if got.Peaks[i] != ps.Peaks[i] {
			t.Fatalf("peak %d mismatch: %+v vs %+v", i, got.Peaks[i], ps.Peaks[i])
		}
	}
}

func TestDecodePeaksRejectsGarbage(t *testing.T) {
	if _, err := DecodePeaks([]byte("not a peak blob")); err == nil {
		t.Fatalf("expected error for garbage blob")
	}
}
