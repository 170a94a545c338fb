/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package audio decodes WAV files into waveform peak buckets for the music
// timeline background. Peaks are cached in the per-project index so a track
// is only decoded once per bucket resolution.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Peak is the min/max sample pair of one horizontal bucket, normalized to [-1, 1].
type Peak struct {
	Min float32
	Max float32
}

// PeakSet is the decoded waveform summary for one audio file.
type PeakSet struct {
	SampleRate  int
	DurationSec float64
	Peaks       []Peak
}

// peaksMagic guards cached blobs against format drift.
const peaksMagic = uint32(0x44544c50) // "DTLP"

// BucketsPerSec is the waveform summary resolution. Bucket count scales with
// track length so a long track does not smear into the same number of buckets
// as a jingle.
const BucketsPerSec = 10

// LoadWavPeaks decodes the WAV file at path into min/max buckets at
// BucketsPerSec resolution. Multi-channel audio is averaged into one lane.
func LoadWavPeaks(path string) (*PeakSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if dec.Err() != nil {
		return nil, fmt.Errorf("decode wav: %w", dec.Err())
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, errors.New("wav file has no samples")
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	rate := buf.Format.SampleRate
	if rate <= 0 {
		return nil, errors.New("wav file has no sample rate")
	}
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, errors.New("wav file has no frames")
	}

	// Sample magnitude scale from bit depth.
	bits := int(dec.BitDepth)
	if bits <= 0 {
		bits = 16
	}
	scale := float32(int64(1) << (bits - 1))

	dur := float64(frames) / float64(rate)
	buckets := int(math.Ceil(dur * BucketsPerSec))
	if buckets < 1 {
		buckets = 1
	}
	ps := &PeakSet{
		SampleRate:  rate,
		DurationSec: dur,
		Peaks:       make([]Peak, buckets),
	}
	framesPerBucket := frames / buckets
	if framesPerBucket < 1 {
		framesPerBucket = 1
	}
	for fi := 0; fi < frames; fi++ {
		bi := fi / framesPerBucket
		if bi >= buckets {
			bi = buckets - 1
		}
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[fi*channels+c]) / scale
		}
		v := sum / float32(channels)
		p := &ps.Peaks[bi]
		if v < p.Min {
			p.Min = v
		}
		if v > p.Max {
			p.Max = v
		}
	}
	return ps, nil
}

// Encode packs the peak set into a compact blob for the previews cache.
func (ps *PeakSet) Encode() ([]byte, error) {
	var b bytes.Buffer
	for _, v := range []any{peaksMagic, uint32(ps.SampleRate), ps.DurationSec, uint32(len(ps.Peaks))} {
		if err := binary.Write(&b, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("encode peaks: %w", err)
		}
	}
	for _, p := range ps.Peaks {
		if err := binary.Write(&b, binary.LittleEndian, p.Min); err != nil {
			return nil, fmt.Errorf("encode peaks: %w", err)
		}
		if err := binary.Write(&b, binary.LittleEndian, p.Max); err != nil {
			return nil, fmt.Errorf("encode peaks: %w", err)
		}
	}
	return b.Bytes(), nil
}

// DecodePeaks unpacks a cached blob produced by Encode.
func DecodePeaks(raw []byte) (*PeakSet, error) {
	r := bytes.NewReader(raw)
	var magic, rate, n uint32
	var dur float64
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("decode peaks: %w", err)
	}
	if magic != peaksMagic {
		return nil, errors.New("decode peaks: bad magic")
	}
	if err := binary.Read(r, binary.LittleEndian, &rate); err != nil {
		return nil, fmt.Errorf("decode peaks: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dur); err != nil {
		return nil, fmt.Errorf("decode peaks: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("decode peaks: %w", err)
	}
	if n > 1<<24 {
		return nil, errors.New("decode peaks: unreasonable bucket count")
	}
	ps := &PeakSet{SampleRate: int(rate), DurationSec: dur, Peaks: make([]Peak, n)}
	for i := range ps.Peaks {
		if err := binary.Read(r, binary.LittleEndian, &ps.Peaks[i].Min); err != nil {
			return nil, fmt.Errorf("decode peaks: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &ps.Peaks[i].Max); err != nil {
			return nil, fmt.Errorf("decode peaks: %w", err)
		}
	}
	return ps, nil
}
