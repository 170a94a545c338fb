/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import "math"

// Mapper converts between world time (seconds along the timeline) and screen
// pixels under the current pan/zoom, and owns the clamping rules for both.
// screenX = worldSec*Zoom + PanX. Vertical mapping is additive only (no
// scale): screenY = contentY + PanY.
type Mapper struct {
	Zoom float64 // horizontal scale, px per second
	PanX float64
	PanY float64

	MinZoom float64
	MaxZoom float64

	ViewportW float64
	ViewportH float64

	// Content extents used for pan clamping.
	DurationSec     float64
	ContentHeightPx float64
}

// Zoom bounds per editor.
const (
	MusicMinZoom = 1.0
	MusicMaxZoom = 300.0
	FilmMinZoom  = 1.0
	FilmMaxZoom  = 500.0
)

// gridTarget is the preferred pixel spacing between ruler gridlines.
const gridTarget = 120.0

// gridLadder are the allowed "nice" time intervals for ruler steps, seconds.
var gridLadder = []float64{0.25, 0.5, 1, 2, 3, 5, 10, 15, 30, 60, 120, 300, 600}

// NewMusicMapper returns a mapper with the waveform editor's zoom bounds.
func NewMusicMapper() *Mapper {
	return &Mapper{Zoom: 40, MinZoom: MusicMinZoom, MaxZoom: MusicMaxZoom}
}

// NewFilmMapper returns a mapper with the film timeline's zoom bounds.
func NewFilmMapper() *Mapper {
	return &Mapper{Zoom: 10, MinZoom: FilmMinZoom, MaxZoom: FilmMaxZoom}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// WorldToScreenX maps a world time to a screen X coordinate.
func (m *Mapper) WorldToScreenX(sec float64) float64 {
	if m.Zoom == 0 || !finite(m.Zoom) {
		// identity fallback instead of propagating NaN/Inf into layout
		return sec
	}
	return sec*m.Zoom + m.PanX
}

// ScreenToWorldTime maps a screen X coordinate back to a world time. It is
// the exact inverse of WorldToScreenX for any non-degenerate zoom.
func (m *Mapper) ScreenToWorldTime(x float64) float64 {
	if m.Zoom == 0 || !finite(m.Zoom) {
		return x
	}
	return (x - m.PanX) / m.Zoom
}

// ClampZoom bounds a candidate zoom to [MinZoom, MaxZoom].
func (m *Mapper) ClampZoom(z float64) float64 {
	if !finite(z) {
		return m.MinZoom
	}
	if z < m.MinZoom {
		return m.MinZoom
	}
	if z > m.MaxZoom {
		return m.MaxZoom
	}
	return z
}

// ClampPanX bounds a candidate pan so the visible window never shows time
// before 0 or past the end of the content. If the content is shorter than the
// viewport the pan is pinned so the content start sits at the left edge.
func (m *Mapper) ClampPanX(pan, zoom float64) float64 {
	if !finite(pan) {
		return 0
	}
	if zoom == 0 || !finite(zoom) || m.ViewportW <= 0 || !finite(m.DurationSec) {
		return pan
	}
	minPan := m.ViewportW - m.DurationSec*zoom
	if minPan > 0 {
		minPan = 0
	}
	if pan < minPan {
		return minPan
	}
	if pan > 0 {
		return 0
	}
	return pan
}

// ClampPanY bounds vertical pan so content never scrolls past its bounds.
func (m *Mapper) ClampPanY(pan float64) float64 {
	if !finite(pan) {
		return 0
	}
	minY := m.ViewportH - m.ContentHeightPx
	if minY > 0 {
		minY = 0
	}
	if pan < minY {
		return minY
	}
	if pan > 0 {
		return 0
	}
	return pan
}

// SetPanX applies a candidate pan with clamping.
func (m *Mapper) SetPanX(pan float64) { m.PanX = m.ClampPanX(pan, m.Zoom) }

// SetPanY applies a candidate vertical pan with clamping.
func (m *Mapper) SetPanY(pan float64) { m.PanY = m.ClampPanY(pan) }

// ZoomAbout changes the zoom while keeping the world time currently under
// cursorX at the same screen position, then clamps pan.
func (m *Mapper) ZoomAbout(cursorX, newZoom float64) {
	world := m.ScreenToWorldTime(cursorX)
	z := m.ClampZoom(newZoom)
	m.Zoom = z
	m.PanX = m.ClampPanX(cursorX-world*z, z)
}

// GridStepSec picks the ladder interval whose on-screen spacing is closest to
// but not under the target spacing at the given zoom. Monotonic in zoom:
// a higher zoom never yields a larger step.
func GridStepSec(zoom float64) float64 {
	if zoom <= 0 || !finite(zoom) {
		return gridLadder[len(gridLadder)-1]
	}
	for _, step := range gridLadder {
		if step*zoom >= gridTarget {
			return step
		}
	}
	return gridLadder[len(gridLadder)-1]
}
