/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"directorstimeline/internal/domain"
	"directorstimeline/internal/storage"
)

// SVGOptions controls SVG export behavior. Unlike the PNG strip, the SVG
// carries scene headings and marker labels as selectable text.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	PxPerSec     float64
	Height       int
	IncludeNotes bool
	ShowPlayhead bool
}

// ExportTimelineSVG writes the timeline as a single SVG document at outPath.
func ExportTimelineSVG(ph *storage.ProjectHandle, outPath string, opt SVGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	data, err := buildTimelineSVG(ph.Project, opt)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func buildTimelineSVG(p domain.Project, opt SVGOptions) ([]byte, error) {
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

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", w, h, w, h)
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"#fafaf8\"/>\n", w, h)

	// Loop region
	if p.LoopA != nil && p.LoopB != nil && *p.LoopB > *p.LoopA {
		wf("  <rect x=\"%g\" y=\"0\" width=\"%g\" height=\"%d\" fill=\"#dce6f5\"/>\n", *p.LoopA*pxPerSec, (*p.LoopB-*p.LoopA)*pxPerSec, h)
	}

	// Scene blocks with headings
	for i, sc := range orderedScenes(p) {
		x := sc.PositionSec * pxPerSec
		bw := sc.LengthSec * pxPerSec
		y := float64(stripRulerHeight + 8)
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%d\" fill=\"%s\" stroke=\"#3c3c3c\" stroke-width=\"1\"/>\n", x, y, bw, stripBlockHeight, svgColor(sc.Color))
		head := sc.Heading
		if head == "" {
			head = "Untitled"
		}
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"11\" fill=\"#000\">%d. %s</text>\n", x+4, y+14, i+1, escText(head))
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"9\" fill=\"#444\">%s</text>\n", x+4, y+28, formatTimecode(sc.PositionSec))
	}

	// Lyrics clips
	for _, c := range p.Lyrics {
		x := c.TimestampSec * pxPerSec
		end := c.TimestampSec + 4
		if c.EndSec != nil {
			end = *c.EndSec
		}
		bw := (end - c.TimestampSec) * pxPerSec
		y := float64(h - 2 - stripLyricHeight)
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%d\" fill=\"%s\" stroke=\"#3c3c3c\" stroke-width=\"1\"/>\n", x, y, bw, stripLyricHeight, svgColor(c.Color))
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"9\" fill=\"#000\">%s</text>\n", x+3, y+13, escText(c.Text))
	}

	// Notes as small callouts near their anchor
	if opt.IncludeNotes {
		for _, n := range p.Notes {
			var x float64
			if n.SceneID != "" {
				for _, sc := range p.Scenes {
					if sc.ID == n.SceneID {
						x = (sc.PositionSec + n.RelX*sc.LengthSec) * pxPerSec
						break
					}
				}
			} else {
				x = n.TimestampSec * pxPerSec
			}
			x += n.OffsetXPx
			wf("  <rect x=\"%g\" y=\"2\" width=\"14\" height=\"14\" fill=\"#f5e6a0\" stroke=\"#3c3c3c\" stroke-width=\"1\"/>\n", x)
			wf("  <title>%s</title>\n", escText(n.Text))
		}
	}

	// Markers with labels
	for _, mk := range p.Markers {
		x := mk.Sec * pxPerSec
		wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%d\" stroke=\"%s\" stroke-width=\"1\"/>\n", x, x, h, svgColor(mk.Color))
		if mk.Label != "" {
			wf("  <text x=\"%g\" y=\"12\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"9\" fill=\"#000\">%s</text>\n", x+3, escText(mk.Label))
		}
	}

	// Playhead
	if opt.ShowPlayhead {
		x := p.PlayheadSec * pxPerSec
		wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%d\" stroke=\"#1e1e1e\" stroke-width=\"2\"/>\n", x, x, h)
	}

	wf("</svg>\n")

	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

func svgColor(c domain.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
