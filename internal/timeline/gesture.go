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

// DragMode is the single active interaction kind for one pointer-down-to-up
// span. Only one mode can be active at a time; a new drag can only start
// after pointer-up cleared the current one.
type DragMode int

const (
	DragNone DragMode = iota
	DragPan
	DragNote
	DragScene
	DragResizeL
	DragResizeR
	DragImage
	DragLyric
	DragMarquee
	DragMarker
	DragLoopA
	DragLoopB
)

// Modifiers are the pointer modifier keys the controller cares about.
type Modifiers struct {
	// Pan forces a background drag to pan instead of starting a marquee.
	Pan bool
	// InvertDragTime inverts the drag-moves-timestamp toggle for the
	// duration of this one drag.
	InvertDragTime bool
}

// dragSession snapshots the pre-drag geometry of whatever pointer-down hit.
// All pointer-move deltas are computed against this snapshot, never
// incrementally, so repeated rounding cannot drift the entity.
type dragSession struct {
	hit            Hit
	startX, startY float64
	startPanX      float64
	startPanY      float64
	movesTime      bool

	scene  domain.Scene
	note   domain.Note
	lyric  domain.LyricsClip
	marker domain.Marker
	loop   float64

	// pre-drag positions of every marquee-selected scene for group drags
	groupStart map[string]float64
}

// pinchSession tracks an active two-finger zoom.
type pinchSession struct {
	startDist float64
	startZoom float64
	midX      float64
}

type touchPoint struct{ x, y float64 }

// Controller is the gesture state machine for one editor canvas. It consumes
// pointer/touch/wheel events, resolves them into at most one active drag
// mode, and funnels every mutation through the named Model/Mapper
// operations.
type Controller struct {
	Model  *Model
	Mapper *Mapper
	Hits   *Engine

	// DragMovesTime selects whether horizontal entity drags re-anchor the
	// entity in time (snapped) or only nudge its visual pixel offset. A held
	// modifier inverts it for a single drag.
	DragMovesTime bool

	// AllowMarquee enables background-drag multi-select (film editor).
	AllowMarquee bool

	// SelectedID is the last clicked entity, empty for none.
	SelectedID string

	// Selected is the marquee multi-selection; the scenes in it move
	// together for one subsequent scene drag.
	Selected map[string]bool

	// OnOpenEditor, when set, is invoked by DoubleTap with the hit entity.
	OnOpenEditor func(Hit)

	mode     DragMode
	session  *dragSession
	wasDrag  bool
	marquee  *Rect
	touches  map[int]touchPoint
	touchID  int // the touch driving a single-touch gesture
	pinch    *pinchSession
}

// NewController wires a controller over a model, its mapper and hit engine.
func NewController(m *Model, mp *Mapper, hits *Engine) *Controller {
	return &Controller{
		Model:         m,
		Mapper:        mp,
		Hits:          hits,
		DragMovesTime: true,
		AllowMarquee:  m.Kind == domain.KindFilm,
		Selected:      map[string]bool{},
		touches:       map[int]touchPoint{},
	}
}

// Mode exposes the active drag mode (for tests and rendering).
func (c *Controller) Mode() DragMode { return c.mode }

// Marquee returns the active selection rectangle, or nil.
func (c *Controller) Marquee() *Rect { return c.marquee }

// ActiveID returns the entity the current drag session grabbed, falling back
// to the click selection when no session is open. Renderers use it so a drag
// that starts on an unselected scene still gets its alignment hints.
func (c *Controller) ActiveID() string {
	if c.session != nil && c.session.hit.ID != "" {
		return c.session.hit.ID
	}
	return c.SelectedID
}

// PointerDown resolves the hit under the pointer and opens the drag session.
// No hit means pan, or marquee when the editor supports multi-select and no
// pan modifier is held.
func (c *Controller) PointerDown(x, y float64, mods Modifiers) {
	if c.mode != DragNone {
		// a drag is already active for this pointer span
		return
	}
	c.wasDrag = false
	s := &dragSession{
		startX:    x,
		startY:    y,
		startPanX: c.Mapper.PanX,
		startPanY: c.Mapper.PanY,
		movesTime: c.DragMovesTime != mods.InvertDragTime,
	}

	h := c.Hits.HitTest(x, y)
	if h == nil {
		if c.AllowMarquee && !mods.Pan {
			c.mode = DragMarquee
			c.marquee = &Rect{X: x, Y: y}
		} else {
			c.mode = DragPan
		}
		c.session = s
		return
	}

	s.hit = *h
	switch h.Kind {
	case HitLoopHandle:
		if h.Region == RegionHandleA {
			c.mode = DragLoopA
			s.loop = *c.Model.LoopA
		} else {
			c.mode = DragLoopB
			s.loop = *c.Model.LoopB
		}
	case HitMarker:
		c.mode = DragMarker
		s.marker = *c.Model.MarkerByID(h.ID)
	case HitLyric:
		c.mode = DragLyric
		s.lyric = *c.Model.LyricByID(h.ID)
	case HitNote:
		c.mode = DragNote
		s.note = *c.Model.NoteByID(h.ID)
	case HitImage:
		c.mode = DragImage
		s.scene = *c.Model.SceneByID(h.ID)
		if s.scene.ImageMeta != nil {
			// detach the snapshot from the live meta
			im := *s.scene.ImageMeta
			s.scene.ImageMeta = &im
		}
	case HitScene:
		s.scene = *c.Model.SceneByID(h.ID)
		switch h.Region {
		case RegionResizeL:
			c.mode = DragResizeL
		case RegionResizeR:
			c.mode = DragResizeR
		case RegionChevron:
			// chevron toggles on clean click; treat as a scene drag until
			// then so a slip still moves the scene
			c.mode = DragScene
		default:
			c.mode = DragScene
		}
		if c.Selected[h.ID] && len(c.Selected) > 1 && c.mode == DragScene {
			s.groupStart = make(map[string]float64, len(c.Selected))
			for id := range c.Selected {
				if sc := c.Model.SceneByID(id); sc != nil {
					s.groupStart[id] = sc.PositionSec
				}
			}
		}
	}
	c.session = s
}

// PointerMove applies the active mode's update. Moves without an open
// session are ignored.
func (c *Controller) PointerMove(x, y float64) {
	if c.mode == DragNone || c.session == nil {
		return
	}
	c.wasDrag = true
	s := c.session
	dx := x - s.startX
	dy := y - s.startY
	dSec := 0.0
	if c.Mapper.Zoom != 0 && finite(c.Mapper.Zoom) {
		dSec = dx / c.Mapper.Zoom
	}

	switch c.mode {
	case DragPan:
		c.Mapper.SetPanX(s.startPanX + dx)
		c.Mapper.SetPanY(s.startPanY + dy)

	case DragMarquee:
		r := Rect{X: math.Min(s.startX, x), Y: math.Min(s.startY, y), W: math.Abs(dx), H: math.Abs(dy)}
		c.marquee = &r
		sel := map[string]bool{}
		for i := range c.Model.Scenes {
			sc := &c.Model.Scenes[i]
			if c.Hits.SceneRect(sc).Overlaps(r) {
				sel[sc.ID] = true
			}
		}
		c.Selected = sel

	case DragNote:
		if s.note.SceneID == "" && s.movesTime {
			c.Model.SetNoteTimestamp(s.note.ID, s.note.TimestampSec+dSec)
			c.Model.SetNoteOffset(s.note.ID, s.note.OffsetXPx, s.note.OffsetYPx+dy)
		} else {
			c.Model.SetNoteOffset(s.note.ID, s.note.OffsetXPx+dx, s.note.OffsetYPx+dy)
		}

	case DragScene:
		if s.groupStart != nil {
			// group drag: identical delta for every selected scene,
			// vertical lane locked
			if s.movesTime {
				for id, p := range s.groupStart {
					c.Model.SetScenePosition(id, p+dSec)
				}
			}
		} else if s.movesTime {
			c.Model.SetScenePosition(s.scene.ID, s.scene.PositionSec+dSec)
			c.Model.SetSceneY(s.scene.ID, s.scene.YPx+dy)
		} else {
			// timestamp frozen: cosmetic vertical nudge only
			c.Model.SetSceneY(s.scene.ID, s.scene.YPx+dy)
		}

	case DragResizeR:
		c.Model.ResizeSceneRight(s.scene.ID, s.scene.LengthSec+dSec)

	case DragResizeL:
		c.Model.ResizeSceneLeft(s.scene.ID, s.scene.PositionSec+dSec)

	case DragImage:
		if s.scene.ImageMeta != nil {
			if sc := c.Model.SceneByID(s.scene.ID); sc != nil {
				sr := c.Hits.SceneRect(sc)
				if sr.W > 0 && sr.H > 0 {
					c.Model.SetSceneImageOffset(s.scene.ID,
						s.scene.ImageMeta.RelX+dx/sr.W,
						s.scene.ImageMeta.RelY+dy/sr.H)
				}
			}
		}

	case DragLyric:
		c.Model.SetLyricTimestamp(s.lyric.ID, s.lyric.TimestampSec+dSec)

	case DragMarker:
		c.Model.SetMarkerSec(s.marker.ID, s.marker.Sec+dSec)

	case DragLoopA:
		c.Model.SetLoopA(s.loop + dSec)

	case DragLoopB:
		c.Model.SetLoopB(s.loop + dSec)
	}
}

// PointerUp ends the pointer span. When no drag happened in between it runs
// the click logic: chevron toggles collapse, entities become the selection,
// background scrubs the playhead. The mode and session are cleared
// unconditionally.
func (c *Controller) PointerUp(x, y float64) {
	s := c.session
	clicked := s != nil && !c.wasDrag
	endedMarquee := c.mode == DragMarquee && c.wasDrag
	endedGroupDrag := c.mode == DragScene && c.wasDrag && s != nil && s.groupStart != nil

	c.mode = DragNone
	c.session = nil
	c.marquee = nil

	if endedMarquee {
		// selection survives for one subsequent group drag
		return
	}
	if endedGroupDrag {
		// the group is spent after its one move
		c.Selected = map[string]bool{}
		return
	}
	if !clicked {
		return
	}
	switch s.hit.Kind {
	case "":
		c.Selected = map[string]bool{}
		c.SelectedID = ""
		c.Model.SetPlayhead(c.Mapper.ScreenToWorldTime(x))
	case HitScene:
		if s.hit.Region == RegionChevron {
			c.Model.ToggleSceneCollapsed(s.hit.ID)
			return
		}
		c.SelectedID = s.hit.ID
		if !c.Selected[s.hit.ID] {
			c.Selected = map[string]bool{}
		}
	default:
		c.SelectedID = s.hit.ID
	}
}

// PointerLeave is the defensive reset: the mode and all refs are dropped
// even when no drag was in progress.
func (c *Controller) PointerLeave() {
	c.mode = DragNone
	c.session = nil
	c.marquee = nil
	c.wasDrag = false
}

// DoubleTap opens the full editor modal for the entity under the pointer,
// independent of drag state.
func (c *Controller) DoubleTap(x, y float64) {
	if c.OnOpenEditor == nil {
		return
	}
	if h := c.Hits.HitTest(x, y); h != nil {
		c.OnOpenEditor(*h)
	}
}

// Wheel pans or, with the platform zoom modifier held, zooms about the
// cursor. Without the modifier the dominant-magnitude axis pans, inverted
// for natural-scroll feel, each axis clamped independently.
func (c *Controller) Wheel(dx, dy, cursorX float64, zoomMod bool) {
	if zoomMod {
		factor := math.Pow(1.0015, -dy)
		c.Mapper.ZoomAbout(cursorX, c.Mapper.Zoom*factor)
		return
	}
	if math.Abs(dx) >= math.Abs(dy) {
		c.Mapper.SetPanX(c.Mapper.PanX - dx)
	} else {
		c.Mapper.SetPanY(c.Mapper.PanY - dy)
	}
}

// TouchDown registers a touch. The first touch starts either a note drag
// (when it lands on a note, honoring the drag-moves-timestamp toggle) or a
// background pan; a second touch cancels any in-progress drag and starts a
// pinch zoom.
func (c *Controller) TouchDown(id int, x, y float64) {
	c.touches[id] = touchPoint{x, y}
	switch len(c.touches) {
	case 1:
		c.touchID = id
		h := c.Hits.HitTest(x, y)
		if h != nil && h.Kind == HitNote {
			c.PointerDown(x, y, Modifiers{})
		} else {
			c.mode = DragPan
			c.session = &dragSession{startX: x, startY: y, startPanX: c.Mapper.PanX, startPanY: c.Mapper.PanY}
		}
	case 2:
		// cancel whatever the single touch was doing and pinch instead
		c.mode = DragNone
		c.session = nil
		var pts [2]touchPoint
		i := 0
		for _, p := range c.touches {
			pts[i] = p
			i++
		}
		dist := math.Hypot(pts[1].x-pts[0].x, pts[1].y-pts[0].y)
		if dist < 1 {
			dist = 1
		}
		c.pinch = &pinchSession{
			startDist: dist,
			startZoom: c.Mapper.Zoom,
			midX:      (pts[0].x + pts[1].x) / 2,
		}
	}
}

// TouchMove updates the active single-touch drag or the pinch zoom. The
// pinch is anchored at the initial midpoint, same zoom-about-point math as
// the wheel path.
func (c *Controller) TouchMove(id int, x, y float64) {
	c.touches[id] = touchPoint{x, y}
	if c.pinch != nil && len(c.touches) >= 2 {
		var pts [2]touchPoint
		i := 0
		for _, p := range c.touches {
			if i == 2 {
				break
			}
			pts[i] = p
			i++
		}
		dist := math.Hypot(pts[1].x-pts[0].x, pts[1].y-pts[0].y)
		c.Mapper.ZoomAbout(c.pinch.midX, c.pinch.startZoom*dist/c.pinch.startDist)
		return
	}
	if id == c.touchID {
		c.PointerMove(x, y)
	}
}

// TouchUp releases a touch. Dropping from two touches to one resumes a pan
// from the remaining touch's current position, without a jump.
func (c *Controller) TouchUp(id int) {
	delete(c.touches, id)
	switch len(c.touches) {
	case 1:
		c.pinch = nil
		for rid, p := range c.touches {
			c.touchID = rid
			c.mode = DragPan
			c.session = &dragSession{startX: p.x, startY: p.y, startPanX: c.Mapper.PanX, startPanY: c.Mapper.PanY}
		}
	case 0:
		c.pinch = nil
		c.mode = DragNone
		c.session = nil
		c.wasDrag = false
	}
}
