/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // scene stills are commonly JPEG
	"image/png"
	"math"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"directorstimeline/internal/audio"
	"directorstimeline/internal/domain"
	"directorstimeline/internal/storage"
	"directorstimeline/internal/typeset"
)

// StripOptions controls the timeline strip render.
// - PxPerSec: horizontal scale; defaults to 20.
// - Height: strip height in pixels; defaults to 240.
// - Peaks: optional waveform drawn behind the blocks (music workspace).
// - ShowPlayhead: draw the stored playhead position.
//
//nolint:revive // clarity is preferred
type StripOptions struct {
	PxPerSec     float64
	Height       int
	Peaks        *audio.PeakSet
	ShowPlayhead bool
	AssetRoot    string // base dir for relative scene image paths; thumbnails are skipped when empty
}

const (
	stripRulerHeight = 24
	stripBlockHeight = 44
	stripLyricHeight = 20
)

// RenderTimelineStrip renders the whole project as one horizontal strip image.
// It is used by the PNG export and by the review bundle.
func RenderTimelineStrip(p domain.Project, opt StripOptions) *image.RGBA {
	pxPerSec := opt.PxPerSec
	if pxPerSec <= 0 {
		pxPerSec = 20
	}
	h := opt.Height
	if h <= 0 {
		h = 240
	}
	dur := p.DurationSec
	for _, sc := range p.Scenes {
		if end := sc.PositionSec + sc.LengthSec; end > dur {
			dur = end
		}
	}
	for _, mk := range p.Markers {
		if mk.Sec > dur {
			dur = mk.Sec
		}
	}
	if dur <= 0 {
		dur = 60
	}
	w := int(math.Ceil(dur*pxPerSec)) + 1
	if w < 64 {
		w = 64
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{250, 250, 248, 255}}, image.Point{}, draw.Src)

	// Ruler band with second ticks
	fillRect(img, 0, 0, w-1, stripRulerHeight-1, color.RGBA{235, 235, 232, 255})
	tick := color.RGBA{160, 160, 160, 255}
	step := 1.0
	for pxPerSec*step < 40 {
		step *= 2
	}
	labels := typeset.BasicProvider{}
	labelSpec := typeset.FontSpec{}
	for s := 0.0; s <= dur; s += step {
		x := int(math.Round(s * pxPerSec))
		for y := stripRulerHeight - 8; y < stripRulerHeight; y++ {
			img.SetRGBA(x, y, tick)
		}
		typeset.DrawLabel(img, x+2, stripRulerHeight-10, fmt.Sprintf("%d:%02d", int(s)/60, int(s)%60), tick, labels, labelSpec)
	}

	// Loop region shading
	if p.LoopA != nil && p.LoopB != nil && *p.LoopB > *p.LoopA {
		x0 := int(math.Round(*p.LoopA * pxPerSec))
		x1 := int(math.Round(*p.LoopB * pxPerSec))
		shade := color.RGBA{220, 230, 245, 255}
		fillRect(img, x0, stripRulerHeight, x1, h-1, shade)
	}

	// Waveform behind the blocks
	if opt.Peaks != nil && len(opt.Peaks.Peaks) > 0 {
		wave := color.RGBA{120, 150, 180, 255}
		mid := stripRulerHeight + (h-stripRulerHeight)/2
		amp := float64(h-stripRulerHeight) / 2.0
		span := opt.Peaks.DurationSec
		if span <= 0 {
			span = dur
		}
		for x := 0; x < w; x++ {
			sec := float64(x) / pxPerSec
			if sec > span {
				break
			}
			bi := int(sec / span * float64(len(opt.Peaks.Peaks)))
			if bi >= len(opt.Peaks.Peaks) {
				bi = len(opt.Peaks.Peaks) - 1
			}
			pk := opt.Peaks.Peaks[bi]
			y0 := mid - int(float64(pk.Max)*amp)
			y1 := mid - int(float64(pk.Min)*amp)
			for y := y0; y <= y1; y++ {
				if y >= stripRulerHeight && y < h {
					img.SetRGBA(x, y, wave)
				}
			}
		}
	}

	// Scene blocks in timeline order, labelled with their derived number
	outline := color.RGBA{60, 60, 60, 255}
	ink := color.RGBA{25, 25, 25, 255}
	for i, sc := range orderedScenes(p) {
		x0 := int(math.Round(sc.PositionSec * pxPerSec))
		x1 := int(math.Round((sc.PositionSec + sc.LengthSec) * pxPerSec))
		if x1 <= x0 {
			x1 = x0 + 1
		}
		y0 := stripRulerHeight + 8 + int(sc.YPx/4)
		if y0 < stripRulerHeight+8 {
			y0 = stripRulerHeight + 8
		}
		y1 := y0 + stripBlockHeight
		if y1 > h-1 {
			y1 = h - 1
			y0 = y1 - stripBlockHeight
		}
		fillRect(img, x0, y0, x1, y1, toRGBA(sc.Color))
		strokeRect(img, x0, y0, x1, y1, outline)
		typeset.DrawLabelFit(img, x0+4, y0+14, fmt.Sprintf("%d. %s", i+1, sc.Heading),
			float32(x1-x0-8), ink, labels, labelSpec)
		if sc.ImageURL != "" && opt.AssetRoot != "" {
			drawSceneThumb(img, opt.AssetRoot, sc.ImageURL, x0, y0, x1, y1, outline)
		}
	}

	// Lyrics band along the bottom
	for _, c := range p.Lyrics {
		x0 := int(math.Round(c.TimestampSec * pxPerSec))
		end := c.TimestampSec + 4
		if c.EndSec != nil {
			end = *c.EndSec
		}
		x1 := int(math.Round(end * pxPerSec))
		if x1 <= x0 {
			x1 = x0 + 1
		}
		y1 := h - 2
		y0 := y1 - stripLyricHeight
		fillRect(img, x0, y0, x1, y1, toRGBA(c.Color))
		strokeRect(img, x0, y0, x1, y1, outline)
	}

	// Markers as full-height lines
	for _, mk := range p.Markers {
		x := int(math.Round(mk.Sec * pxPerSec))
		mc := toRGBA(mk.Color)
		if mc.A == 0 {
			mc = color.RGBA{200, 60, 60, 255}
		}
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, mc)
		}
		if mk.Label != "" {
			typeset.DrawLabel(img, x+3, stripRulerHeight+12, mk.Label, mc, labels, labelSpec)
		}
	}

	// Playhead
	if opt.ShowPlayhead {
		x := int(math.Round(p.PlayheadSec * pxPerSec))
		pc := color.RGBA{30, 30, 30, 255}
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, pc)
		}
	}

	return img
}

// ExportTimelineStripPNG writes the timeline strip to a PNG file. A relative
// outPath lands under the project's exports folder.
func ExportTimelineStripPNG(ph *storage.ProjectHandle, outPath string, opt StripOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if opt.AssetRoot == "" {
		opt.AssetRoot = ph.Root
	}
	img := RenderTimelineStrip(ph.Project, opt)

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// drawSceneThumb scales the scene's still into the right end of its block.
// Unreadable or missing files are skipped silently; the strip must render
// even when assets moved.
func drawSceneThumb(img *image.RGBA, root, imageURL string, x0, y0, x1, y1 int, outline color.RGBA) {
	path := imageURL
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	src, _, err := image.Decode(f)
	if err != nil {
		return
	}
	tw := (y1 - y0) - 4 // square thumb sized to the block height
	if tw < 8 || x1-x0 < tw+8 {
		return
	}
	dst := image.Rect(x1-tw-2, y0+2, x1-2, y0+2+tw)
	xdraw.ApproxBiLinear.Scale(img, dst, src, src.Bounds(), xdraw.Over, nil)
	strokeRect(img, dst.Min.X, dst.Min.Y, dst.Max.X-1, dst.Max.Y-1, outline)
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
