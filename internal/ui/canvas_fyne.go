//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"directorstimeline/internal/align"
	"directorstimeline/internal/audio"
	"directorstimeline/internal/domain"
	"directorstimeline/internal/timeline"
)

// TimelineCanvas hosts one editor workspace (music waveform or film scene
// timeline). It translates Fyne pointer/scroll events into the gesture
// controller and renders the model under the current pan/zoom every refresh.
type TimelineCanvas struct {
	widget.BaseWidget

	model  *timeline.Model
	mapper *timeline.Mapper
	hits   *timeline.Engine
	ctrl   *timeline.Controller
	peaks  *audio.PeakSet

	// guides are the alignment hints of the in-flight scene drag.
	guides []align.Guide

	dragging bool
	last     fyne.Position
	cursor   fyne.Position
	zoomMod  bool
	panMod   bool
	shiftMod bool

	// OnGestureStart fires once when a drag begins, before any mutation, so
	// the shell can capture an undo snapshot of the pre-drag state.
	OnGestureStart func()
	// OnChanged fires after a committed gesture (pointer up, wheel, tap).
	OnChanged func()
	// OnSelect fires when a click resolved to an entity.
	OnSelect func(timeline.Hit)
	// OnOpenEditor fires on double-tap over an entity.
	OnOpenEditor func(timeline.Hit)
}

// NewTimelineCanvas returns a canvas with no workspace loaded. Call
// SetWorkspace before the first event arrives.
func NewTimelineCanvas() *TimelineCanvas {
	c := &TimelineCanvas{}
	c.ExtendBaseWidget(c)
	return c
}

// SetWorkspace swaps in a model and mapper and rebuilds the hit engine and
// gesture controller around them.
func (c *TimelineCanvas) SetWorkspace(m *timeline.Model, mp *timeline.Mapper) {
	c.model = m
	c.mapper = mp
	c.peaks = nil
	c.guides = nil
	c.dragging = false
	if m == nil || mp == nil {
		c.hits = nil
		c.ctrl = nil
		c.Refresh()
		return
	}
	c.hits = timeline.NewEngine(m, mp)
	c.ctrl = timeline.NewController(m, mp, c.hits)
	c.ctrl.OnOpenEditor = func(h timeline.Hit) {
		if c.OnOpenEditor != nil {
			c.OnOpenEditor(h)
		}
	}
	c.Refresh()
}

// SetPeaks attaches the waveform preview rendered behind the music timeline.
func (c *TimelineCanvas) SetPeaks(ps *audio.PeakSet) {
	c.peaks = ps
	c.Refresh()
}

func (c *TimelineCanvas) Model() *timeline.Model           { return c.model }
func (c *TimelineCanvas) Mapper() *timeline.Mapper         { return c.mapper }
func (c *TimelineCanvas) Controller() *timeline.Controller { return c.ctrl }

// PreferredSize is the initial canvas area requested from the layout.
func (c *TimelineCanvas) PreferredSize() fyne.Size { return fyne.NewSize(1000, 560) }

func (c *TimelineCanvas) mods() timeline.Modifiers {
	return timeline.Modifiers{Pan: c.panMod, InvertDragTime: c.shiftMod}
}

func (c *TimelineCanvas) gestureStart() {
	if c.OnGestureStart != nil {
		c.OnGestureStart()
	}
}

func (c *TimelineCanvas) changed() {
	if c.OnChanged != nil {
		c.OnChanged()
	}
}

// Tapped handles a click (no drag happened). The controller treats a clean
// down/up pair as select-or-scrub.
func (c *TimelineCanvas) Tapped(e *fyne.PointEvent) {
	if c.ctrl == nil {
		return
	}
	x, y := float64(e.Position.X), float64(e.Position.Y)
	c.gestureStart()
	c.ctrl.PointerDown(x, y, c.mods())
	c.ctrl.PointerUp(x, y)
	if c.OnSelect != nil {
		if h := c.hits.HitTest(x, y); h != nil {
			c.OnSelect(*h)
		}
	}
	c.changed()
	c.Refresh()
}

// DoubleTapped opens the entity editor for whatever is under the pointer.
func (c *TimelineCanvas) DoubleTapped(e *fyne.PointEvent) {
	if c.ctrl == nil {
		return
	}
	c.ctrl.DoubleTap(float64(e.Position.X), float64(e.Position.Y))
}

// Dragged feeds pointer-move events. Fyne reports the delta of the first
// event, so the drag origin is recovered by subtracting it.
func (c *TimelineCanvas) Dragged(e *fyne.DragEvent) {
	if c.ctrl == nil {
		return
	}
	if !c.dragging {
		sx := float64(e.Position.X - e.Dragged.DX)
		sy := float64(e.Position.Y - e.Dragged.DY)
		c.gestureStart()
		c.ctrl.PointerDown(sx, sy, c.mods())
		c.dragging = true
	}
	c.ctrl.PointerMove(float64(e.Position.X), float64(e.Position.Y))
	c.last = e.Position
	c.updateGuides()
	c.Refresh()
}

// DragEnd commits the active drag.
func (c *TimelineCanvas) DragEnd() {
	if c.ctrl == nil || !c.dragging {
		return
	}
	c.ctrl.PointerUp(float64(c.last.X), float64(c.last.Y))
	c.dragging = false
	c.guides = nil
	c.changed()
	c.Refresh()
}

// Scrolled pans, or zooms about the cursor while the zoom modifier is held.
func (c *TimelineCanvas) Scrolled(e *fyne.ScrollEvent) {
	if c.ctrl == nil {
		return
	}
	c.ctrl.Wheel(float64(e.Scrolled.DX), float64(e.Scrolled.DY), float64(c.cursor.X), c.zoomMod)
	c.changed()
	c.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (c *TimelineCanvas) MouseIn(ev *desktop.MouseEvent) { c.trackPointer(ev) }

// MouseMoved tracks the cursor for zoom-about-cursor and the modifier state
// for the next gesture.
func (c *TimelineCanvas) MouseMoved(ev *desktop.MouseEvent) { c.trackPointer(ev) }

// MouseOut cancels any in-flight gesture, reverting its session snapshot.
func (c *TimelineCanvas) MouseOut() {
	if c.ctrl == nil {
		return
	}
	c.ctrl.PointerLeave()
	c.dragging = false
	c.guides = nil
	c.Refresh()
}

func (c *TimelineCanvas) trackPointer(ev *desktop.MouseEvent) {
	c.cursor = ev.Position
	c.zoomMod = ev.Modifier&fyne.KeyModifierControl != 0
	c.panMod = ev.Modifier&fyne.KeyModifierAlt != 0
	c.shiftMod = ev.Modifier&fyne.KeyModifierShift != 0
}

// updateGuides recomputes alignment hints against the other scene blocks and
// markers while a scene drag is active. The hints are visual only; snapping
// in time stays with the model's grid.
func (c *TimelineCanvas) updateGuides() {
	c.guides = nil
	if c.ctrl == nil || c.ctrl.Mode() != timeline.DragScene {
		return
	}
	id := c.ctrl.ActiveID()
	if id == "" {
		return
	}
	s := c.model.SceneByID(id)
	if s == nil {
		return
	}
	mr := c.hits.SceneRect(s)
	moving := align.R(mr.X, mr.Y, mr.W, mr.H)
	var anchors []align.Anchor
	for i := range c.model.Scenes {
		o := &c.model.Scenes[i]
		if o.ID == s.ID || c.ctrl.Selected[o.ID] {
			continue
		}
		r := c.hits.SceneRect(o)
		anchors = append(anchors, align.Anchor{Rect: align.R(r.X, r.Y, r.W, r.H), Weight: 1})
	}
	for _, mk := range c.model.Markers {
		x := c.mapper.WorldToScreenX(mk.Sec)
		anchors = append(anchors, align.Anchor{Rect: align.R(x, 0, 0, float64(c.Size().Height)), Weight: 2})
	}
	_, c.guides = align.Guides(moving, anchors, align.Options{Threshold: 6, Edges: true})
}

// CreateRenderer builds the immediate-mode renderer for the canvas.
func (c *TimelineCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &timelineCanvasRenderer{tc: c}
	r.rebuild(c.PreferredSize())
	return r
}

type timelineCanvasRenderer struct {
	tc      *TimelineCanvas
	objects []fyne.CanvasObject
}

func (r *timelineCanvasRenderer) Destroy() {}

func (r *timelineCanvasRenderer) MinSize() fyne.Size { return fyne.NewSize(480, 320) }

func (r *timelineCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *timelineCanvasRenderer) Layout(size fyne.Size) {
	if mp := r.tc.mapper; mp != nil {
		mp.ViewportW = float64(size.Width)
		mp.ViewportH = float64(size.Height)
	}
	r.rebuild(size)
}

func (r *timelineCanvasRenderer) Refresh() {
	r.rebuild(r.tc.Size())
}

// Editor surface colors.
var (
	colBackground = color.NRGBA{R: 24, G: 26, B: 30, A: 255}
	colRulerLine  = color.NRGBA{R: 70, G: 74, B: 82, A: 255}
	colRulerText  = color.NRGBA{R: 150, G: 155, B: 165, A: 255}
	colLoop       = color.NRGBA{R: 90, G: 120, B: 200, A: 60}
	colLoopHandle = color.NRGBA{R: 120, G: 160, B: 240, A: 255}
	colWave       = color.NRGBA{R: 70, G: 140, B: 200, A: 255}
	colNoteCard   = color.NRGBA{R: 240, G: 220, B: 120, A: 235}
	colNoteText   = color.NRGBA{R: 40, G: 36, B: 20, A: 255}
	colPlayhead   = color.NRGBA{R: 230, G: 80, B: 70, A: 255}
	colSelection  = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	colMarquee    = color.NRGBA{R: 120, G: 170, B: 250, A: 50}
	colGuide      = color.NRGBA{R: 90, G: 220, B: 210, A: 255}
	colSceneText  = color.NRGBA{R: 20, G: 22, B: 26, A: 255}
)

const rulerHeight = 26

func (r *timelineCanvasRenderer) rebuild(size fyne.Size) {
	objs := make([]fyne.CanvasObject, 0, 64)

	bg := canvas.NewRectangle(colBackground)
	bg.Resize(size)
	objs = append(objs, bg)

	m, mp := r.tc.model, r.tc.mapper
	if m == nil || mp == nil {
		hint := canvas.NewText("No project open", colRulerText)
		hint.TextSize = 16
		hint.Move(fyne.NewPos(size.Width/2-60, size.Height/2))
		r.objects = append(objs, hint)
		return
	}
	mp.ViewportW = float64(size.Width)
	mp.ViewportH = float64(size.Height)
	mp.DurationSec = contentDuration(m)
	mp.ContentHeightPx = contentHeight(m)

	if m.Kind == domain.KindMusic && r.tc.peaks != nil {
		if img := waveformImage(r.tc.peaks, mp, int(size.Width), int(size.Height)); img != nil {
			ci := canvas.NewImageFromImage(img)
			ci.FillMode = canvas.ImageFillStretch
			ci.Resize(size)
			objs = append(objs, ci)
		}
	}

	objs = r.appendRuler(objs, size, m, mp)
	objs = r.appendLoop(objs, size, m, mp)
	if m.Kind == domain.KindMusic {
		objs = r.appendLyrics(objs, m)
	}
	objs = r.appendScenes(objs, m)
	objs = r.appendNotes(objs, m)
	objs = r.appendMarkers(objs, size, m, mp)

	// Playhead
	px := float32(mp.WorldToScreenX(m.PlayheadSec))
	ph := canvas.NewLine(colPlayhead)
	ph.StrokeWidth = 1.5
	ph.Position1 = fyne.NewPos(px, 0)
	ph.Position2 = fyne.NewPos(px, size.Height)
	objs = append(objs, ph)

	if ctrl := r.tc.ctrl; ctrl != nil {
		if mq := ctrl.Marquee(); mq != nil {
			sel := canvas.NewRectangle(colMarquee)
			sel.StrokeColor = colGuide
			sel.StrokeWidth = 1
			sel.Move(fyne.NewPos(float32(mq.X), float32(mq.Y)))
			sel.Resize(fyne.NewSize(float32(mq.W), float32(mq.H)))
			objs = append(objs, sel)
		}
	}
	for _, g := range r.tc.guides {
		gl := canvas.NewLine(colGuide)
		gl.StrokeWidth = 1
		gl.Position1 = fyne.NewPos(float32(g.From.X), float32(g.From.Y))
		gl.Position2 = fyne.NewPos(float32(g.To.X), float32(g.To.Y))
		objs = append(objs, gl)
	}

	r.objects = objs
}

func (r *timelineCanvasRenderer) appendRuler(objs []fyne.CanvasObject, size fyne.Size, m *timeline.Model, mp *timeline.Mapper) []fyne.CanvasObject {
	step := timeline.GridStepSec(mp.Zoom)
	start := mp.ScreenToWorldTime(0)
	if start < 0 {
		start = 0
	}
	sec := math.Floor(start/step) * step
	for {
		x := mp.WorldToScreenX(sec)
		if x > float64(size.Width) {
			break
		}
		if x >= 0 {
			tick := canvas.NewLine(colRulerLine)
			tick.Position1 = fyne.NewPos(float32(x), 0)
			tick.Position2 = fyne.NewPos(float32(x), size.Height)
			objs = append(objs, tick)
			lbl := canvas.NewText(formatTick(sec, step), colRulerText)
			lbl.TextSize = 11
			lbl.Move(fyne.NewPos(float32(x)+3, 3))
			objs = append(objs, lbl)
		}
		sec += step
	}
	base := canvas.NewLine(colRulerLine)
	base.Position1 = fyne.NewPos(0, rulerHeight)
	base.Position2 = fyne.NewPos(size.Width, rulerHeight)
	return append(objs, base)
}

func (r *timelineCanvasRenderer) appendLoop(objs []fyne.CanvasObject, size fyne.Size, m *timeline.Model, mp *timeline.Mapper) []fyne.CanvasObject {
	if m.LoopA == nil || m.LoopB == nil {
		return objs
	}
	xa := mp.WorldToScreenX(*m.LoopA)
	xb := mp.WorldToScreenX(*m.LoopB)
	shade := canvas.NewRectangle(colLoop)
	shade.Move(fyne.NewPos(float32(xa), 0))
	shade.Resize(fyne.NewSize(float32(xb-xa), size.Height))
	objs = append(objs, shade)
	for _, x := range []float64{xa, xb} {
		h := canvas.NewRectangle(colLoopHandle)
		h.Move(fyne.NewPos(float32(x)-3, 0))
		h.Resize(fyne.NewSize(6, rulerHeight))
		objs = append(objs, h)
	}
	return objs
}

func (r *timelineCanvasRenderer) appendLyrics(objs []fyne.CanvasObject, m *timeline.Model) []fyne.CanvasObject {
	for i := range m.Lyrics {
		c := &m.Lyrics[i]
		lr := r.tc.hits.LyricRect(c)
		card := canvas.NewRectangle(entityColor(c.Color, color.NRGBA{R: 90, G: 170, B: 120, A: 230}))
		if r.selected(c.ID) {
			card.StrokeColor = colSelection
			card.StrokeWidth = 2
		}
		card.Move(fyne.NewPos(float32(lr.X), float32(lr.Y)))
		card.Resize(fyne.NewSize(float32(lr.W), float32(lr.H)))
		objs = append(objs, card)
		txt := canvas.NewText(truncateText(c.Text, lr.W), colSceneText)
		txt.TextSize = 12
		txt.Move(fyne.NewPos(float32(lr.X)+4, float32(lr.Y)+4))
		objs = append(objs, txt)
	}
	return objs
}

func (r *timelineCanvasRenderer) appendScenes(objs []fyne.CanvasObject, m *timeline.Model) []fyne.CanvasObject {
	numbers := m.NewSceneNumbers()
	for i := range m.Scenes {
		s := &m.Scenes[i]
		sr := r.tc.hits.SceneRect(s)
		block := canvas.NewRectangle(entityColor(s.Color, color.NRGBA{R: 110, G: 175, B: 225, A: 255}))
		if r.selected(s.ID) {
			block.StrokeColor = colSelection
			block.StrokeWidth = 2
		}
		block.Move(fyne.NewPos(float32(sr.X), float32(sr.Y)))
		block.Resize(fyne.NewSize(float32(sr.W), float32(sr.H)))
		objs = append(objs, block)

		chev := "▾" // down chevron, expanded
		if s.Collapsed {
			chev = "▸"
		}
		ct := canvas.NewText(chev, colSceneText)
		ct.TextSize = 12
		ct.Move(fyne.NewPos(float32(sr.X)+2, float32(sr.Y)+2))
		objs = append(objs, ct)

		head := fmt.Sprintf("%d. %s", numbers[s.ID], s.Heading)
		ht := canvas.NewText(truncateText(head, sr.W-timeline.ChevronPx), colSceneText)
		ht.TextSize = 12
		ht.TextStyle = fyne.TextStyle{Bold: true}
		ht.Move(fyne.NewPos(float32(sr.X)+timeline.ChevronPx+2, float32(sr.Y)+2))
		objs = append(objs, ht)

		if !s.Collapsed && s.Description != "" {
			dt := canvas.NewText(truncateText(s.Description, sr.W-8), colSceneText)
			dt.TextSize = 11
			dt.Move(fyne.NewPos(float32(sr.X)+4, float32(sr.Y)+22))
			objs = append(objs, dt)
		}
		if s.ImageURL != "" {
			ir := r.tc.hits.ImageRect(s)
			imgCard := canvas.NewRectangle(color.NRGBA{R: 200, G: 200, B: 210, A: 220})
			imgCard.Move(fyne.NewPos(float32(ir.X), float32(ir.Y)))
			imgCard.Resize(fyne.NewSize(float32(ir.W), float32(ir.H)))
			objs = append(objs, imgCard)
		}
	}
	return objs
}

func (r *timelineCanvasRenderer) appendNotes(objs []fyne.CanvasObject, m *timeline.Model) []fyne.CanvasObject {
	for i := range m.Notes {
		n := &m.Notes[i]
		nr := r.tc.hits.NoteRect(n)
		card := canvas.NewRectangle(colNoteCard)
		if r.selected(n.ID) {
			card.StrokeColor = colSelection
			card.StrokeWidth = 2
		}
		card.Move(fyne.NewPos(float32(nr.X), float32(nr.Y)))
		card.Resize(fyne.NewSize(float32(nr.W), float32(nr.H)))
		objs = append(objs, card)
		txt := canvas.NewText(truncateText(n.Text, nr.W-8), colNoteText)
		txt.TextSize = 11
		txt.Move(fyne.NewPos(float32(nr.X)+4, float32(nr.Y)+4))
		objs = append(objs, txt)
	}
	return objs
}

func (r *timelineCanvasRenderer) appendMarkers(objs []fyne.CanvasObject, size fyne.Size, m *timeline.Model, mp *timeline.Mapper) []fyne.CanvasObject {
	for i := range m.Markers {
		mk := &m.Markers[i]
		x := float32(mp.WorldToScreenX(mk.Sec))
		ln := canvas.NewLine(entityColor(mk.Color, colPlayhead))
		ln.StrokeWidth = 1
		if r.selected(mk.ID) {
			ln.StrokeWidth = 2.5
		}
		ln.Position1 = fyne.NewPos(x, rulerHeight)
		ln.Position2 = fyne.NewPos(x, size.Height)
		objs = append(objs, ln)
		if mk.Label != "" {
			lbl := canvas.NewText(mk.Label, colRulerText)
			lbl.TextSize = 11
			lbl.Move(fyne.NewPos(x+3, rulerHeight+2))
			objs = append(objs, lbl)
		}
	}
	return objs
}

func (r *timelineCanvasRenderer) selected(id string) bool {
	ctrl := r.tc.ctrl
	if ctrl == nil {
		return false
	}
	return ctrl.SelectedID == id || ctrl.Selected[id]
}

// waveformImage rasterizes the cached peak buckets into the visible window.
func waveformImage(ps *audio.PeakSet, mp *timeline.Mapper, w, h int) image.Image {
	if len(ps.Peaks) == 0 || ps.DurationSec <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	mid := h / 2
	amp := float64(h) * 0.45
	for x := 0; x < w; x++ {
		sec := mp.ScreenToWorldTime(float64(x))
		if sec < 0 || sec > ps.DurationSec {
			continue
		}
		idx := int(sec / ps.DurationSec * float64(len(ps.Peaks)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(ps.Peaks) {
			idx = len(ps.Peaks) - 1
		}
		p := ps.Peaks[idx]
		y0 := mid - int(float64(p.Max)*amp)
		y1 := mid - int(float64(p.Min)*amp)
		if y0 < 0 {
			y0 = 0
		}
		if y1 >= h {
			y1 = h - 1
		}
		for y := y0; y <= y1; y++ {
			img.SetNRGBA(x, y, colWave)
		}
	}
	return img
}

func contentDuration(m *timeline.Model) float64 {
	d := m.DurationSec
	for _, s := range m.Scenes {
		if end := s.PositionSec + s.LengthSec; end > d {
			d = end
		}
	}
	for _, mk := range m.Markers {
		if mk.Sec > d {
			d = mk.Sec
		}
	}
	if d <= 0 {
		d = 60
	}
	return d
}

func contentHeight(m *timeline.Model) float64 {
	h := timeline.NoteBaseYPx + timeline.NoteHeightPx + 120.0
	for _, s := range m.Scenes {
		if y := rulerHeight + s.YPx + timeline.SceneHeightPx + 40; y > h {
			h = y
		}
	}
	return h
}

func entityColor(c domain.Color, fallback color.NRGBA) color.NRGBA {
	if c.A == 0 {
		return fallback
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// formatTick renders a ruler label; sub-second grid steps keep decimals.
func formatTick(sec, step float64) string {
	if step < 1 {
		return fmt.Sprintf("%.2fs", sec)
	}
	s := int(math.Round(sec))
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// truncateText clips a label to roughly the given pixel width.
func truncateText(s string, widthPx float64) string {
	if widthPx <= 0 {
		return ""
	}
	maxRunes := int(widthPx / 7)
	if maxRunes < 1 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= maxRunes {
		return s
	}
	if maxRunes <= 1 {
		return string(rs[:1])
	}
	return string(rs[:maxRunes-1]) + "…"
}
