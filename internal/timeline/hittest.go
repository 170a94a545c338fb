/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"math"

	"directorstimeline/internal/domain"
)

// EntityKind identifies what a hit resolved to.
type EntityKind string

const (
	HitLoopHandle EntityKind = "loopHandle"
	HitMarker     EntityKind = "marker"
	HitLyric      EntityKind = "lyric"
	HitNote       EntityKind = "note"
	HitImage      EntityKind = "image"
	HitScene      EntityKind = "scene"
)

// Region identifies the sub-part of the entity under the pointer.
type Region string

const (
	RegionBody    Region = "body"
	RegionResizeL Region = "resizeL"
	RegionResizeR Region = "resizeR"
	RegionChevron Region = "chevron"
	RegionHandleA Region = "handleA"
	RegionHandleB Region = "handleB"
)

// Hit is the result of a successful hit test.
type Hit struct {
	Kind   EntityKind
	ID     string
	Region Region
}

// Rect is an axis-aligned screen rectangle with inclusive bounds.
type Rect struct{ X, Y, W, H float64 }

// Contains reports whether the point lies inside the rectangle, inclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Overlaps is the standard AABB overlap test used by the marquee.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W && r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// tester is one prioritized stage of the hit test.
type tester struct {
	name string
	test func(x, y float64) *Hit
}

// Engine resolves a screen point to the entity and sub-region under it.
// Priority is an explicit ordered list of testers, consulted first to last,
// because entity rectangles overlap: loop handles beat markers beat
// clips/notes/images beat scene bodies. Within a collection the iteration is
// reverse insertion order so the most recently added (topmost drawn) entity
// wins.
type Engine struct {
	model   *Model
	mapper  *Mapper
	testers []tester
}

// NewEngine builds the hit tester chain for the model's workspace kind.
func NewEngine(m *Model, mp *Mapper) *Engine {
	e := &Engine{model: m, mapper: mp}
	if m.Kind == domain.KindMusic {
		e.testers = []tester{
			{"loopHandles", e.testLoopHandles},
			{"markers", e.testMarkers},
			{"notes", e.testNotes},
			{"lyrics", e.testLyrics},
		}
	} else {
		e.testers = []tester{
			{"notes", e.testNotes},
			{"images", e.testImages},
			{"scenes", e.testScenes},
		}
	}
	return e
}

// HitTest returns the highest-priority hit at the screen point, or nil for
// background.
func (e *Engine) HitTest(x, y float64) *Hit {
	for _, t := range e.testers {
		if h := t.test(x, y); h != nil {
			return h
		}
	}
	return nil
}

// SceneRect returns the scene block's screen rectangle. Collapsed scenes use
// the reduced fixed height for both hit testing and drawing.
func (e *Engine) SceneRect(s *domain.Scene) Rect {
	h := SceneHeightPx
	if s.Collapsed {
		h = CollapsedHPx
	}
	return Rect{
		X: e.mapper.WorldToScreenX(s.PositionSec),
		Y: s.YPx,
		W: s.LengthSec * e.mapper.Zoom,
		H: h,
	}
}

// NoteRect returns a note's screen rectangle: anchor plus offsets plus, for
// film notes, the owning scene's position and the stacking index among
// siblings.
func (e *Engine) NoteRect(n *domain.Note) Rect {
	w := n.WidthPx
	if w <= 0 {
		w = NoteWidthPx
	}
	h := n.HeightPx
	if h <= 0 {
		h = NoteHeightPx
	}
	if n.Collapsed {
		h = CollapsedHPx
	}
	if n.SceneID != "" {
		s := e.model.SceneByID(n.SceneID)
		if s == nil {
			return Rect{}
		}
		sr := e.SceneRect(s)
		stack := float64(e.model.NoteStackIndex(n.ID))
		return Rect{
			X: sr.X + n.RelX*sr.W + n.OffsetXPx,
			Y: sr.Y + n.RelY*sr.H + n.OffsetYPx + stack*NoteStackGapPx,
			W: w, H: h,
		}
	}
	return Rect{
		X: e.mapper.WorldToScreenX(n.TimestampSec) + n.OffsetXPx,
		Y: NoteBaseYPx + n.OffsetYPx + e.mapper.PanY,
		W: w, H: h,
	}
}

// LyricRect returns a lyric clip's screen rectangle in the lyric lane.
func (e *Engine) LyricRect(c *domain.LyricsClip) Rect {
	return Rect{
		X: e.mapper.WorldToScreenX(c.TimestampSec),
		Y: LyricLaneYPx,
		W: LyricDuration(*c) * e.mapper.Zoom,
		H: LyricHeightPx,
	}
}

// ImageRect returns a scene image card's screen rectangle, or a zero rect
// when the scene carries no image.
func (e *Engine) ImageRect(s *domain.Scene) Rect {
	if s.ImageMeta == nil || s.ImageURL == "" {
		return Rect{}
	}
	sr := e.SceneRect(s)
	return Rect{
		X: sr.X + s.ImageMeta.RelX*sr.W,
		Y: sr.Y + s.ImageMeta.RelY*sr.H,
		W: s.ImageMeta.Width,
		H: s.ImageMeta.Height,
	}
}

func (e *Engine) testLoopHandles(x, y float64) *Hit {
	if e.model.LoopA != nil && math.Abs(x-e.mapper.WorldToScreenX(*e.model.LoopA)) <= LoopHandleTolPx {
		return &Hit{Kind: HitLoopHandle, Region: RegionHandleA}
	}
	if e.model.LoopB != nil && math.Abs(x-e.mapper.WorldToScreenX(*e.model.LoopB)) <= LoopHandleTolPx {
		return &Hit{Kind: HitLoopHandle, Region: RegionHandleB}
	}
	return nil
}

func (e *Engine) testMarkers(x, y float64) *Hit {
	for i := len(e.model.Markers) - 1; i >= 0; i-- {
		mk := &e.model.Markers[i]
		if math.Abs(x-e.mapper.WorldToScreenX(mk.Sec)) <= MarkerTolPx {
			return &Hit{Kind: HitMarker, ID: mk.ID, Region: RegionBody}
		}
	}
	return nil
}

func (e *Engine) testNotes(x, y float64) *Hit {
	for i := len(e.model.Notes) - 1; i >= 0; i-- {
		n := &e.model.Notes[i]
		if e.NoteRect(n).Contains(x, y) {
			return &Hit{Kind: HitNote, ID: n.ID, Region: RegionBody}
		}
	}
	return nil
}

func (e *Engine) testLyrics(x, y float64) *Hit {
	for i := len(e.model.Lyrics) - 1; i >= 0; i-- {
		c := &e.model.Lyrics[i]
		if e.LyricRect(c).Contains(x, y) {
			return &Hit{Kind: HitLyric, ID: c.ID, Region: RegionBody}
		}
	}
	return nil
}

func (e *Engine) testImages(x, y float64) *Hit {
	for i := len(e.model.Scenes) - 1; i >= 0; i-- {
		s := &e.model.Scenes[i]
		r := e.ImageRect(s)
		if r.W > 0 && r.Contains(x, y) {
			return &Hit{Kind: HitImage, ID: s.ID, Region: RegionBody}
		}
	}
	return nil
}

func (e *Engine) testScenes(x, y float64) *Hit {
	for i := len(e.model.Scenes) - 1; i >= 0; i-- {
		s := &e.model.Scenes[i]
		r := e.SceneRect(s)
		if !r.Contains(x, y) {
			continue
		}
		chev := Rect{X: r.X + 2, Y: r.Y + 2, W: ChevronPx, H: ChevronPx}
		switch {
		case chev.Contains(x, y):
			return &Hit{Kind: HitScene, ID: s.ID, Region: RegionChevron}
		case x <= r.X+HandleWPx:
			return &Hit{Kind: HitScene, ID: s.ID, Region: RegionResizeL}
		case x >= r.X+r.W-HandleWPx:
			return &Hit{Kind: HitScene, ID: s.ID, Region: RegionResizeR}
		default:
			return &Hit{Kind: HitScene, ID: s.ID, Region: RegionBody}
		}
	}
	return nil
}
