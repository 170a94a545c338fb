/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"directorstimeline/internal/domain"
)

// Geometry constants shared by layout, hit testing and drawing. Pixel values
// are CSS pixels at the widget's logical resolution.
const (
	SceneMinSec     = 1.0
	SceneHeightPx   = 90.0
	CollapsedHPx    = 28.0
	HandleWPx       = 8.0
	ChevronPx       = 16.0
	NoteWidthPx     = 160.0
	NoteHeightPx    = 110.0
	NoteStackGapPx  = 14.0
	NoteBaseYPx     = 140.0
	LyricLaneYPx    = 60.0
	LyricHeightPx   = 44.0
	MarkerTolPx     = 6.0
	LoopHandleTolPx = 6.0
	PlaceGapSec     = 0.5
	LoopMinGapSec   = 0.01

	// secPerWord estimates a lyric clip's duration when no end time is set.
	secPerWord = 0.4
)

// Model owns the mutable entity collections of one editor workspace. All
// invariants (unique scene numbers, cascade deletes, snap-to-grid, loop
// ordering) are enforced here, not by callers. The model is confined to the
// UI goroutine; async collaborators hand results over through the atomic
// Replace* operations.
type Model struct {
	Kind        string
	Name        string
	PlayheadSec float64
	DurationSec float64

	SnapEnabled bool
	SnapStepSec float64

	Scenes  []domain.Scene
	Notes   []domain.Note
	Lyrics  []domain.LyricsClip
	Markers []domain.Marker
	LoopA   *float64
	LoopB   *float64
}

// NewModel returns an empty model for the given workspace kind.
func NewModel(kind string) *Model {
	return &Model{Kind: kind, SnapStepSec: 1}
}

// NewID returns a fresh entity id.
func NewID() string { return uuid.NewString() }

// Snap rounds v to the nearest multiple of the configured step when snapping
// is enabled. Values are never snapped below zero.
func (m *Model) Snap(v float64) float64 {
	if !m.SnapEnabled || m.SnapStepSec <= 0 {
		if v < 0 {
			return 0
		}
		return v
	}
	s := math.Round(v/m.SnapStepSec) * m.SnapStepSec
	if s < 0 {
		return 0
	}
	return s
}

// snapLen snaps a length without letting it drop under min.
func (m *Model) snapLen(v, min float64) float64 {
	s := m.Snap(v)
	if s < min {
		return min
	}
	return s
}

// --- Scenes ---

// SceneIndex returns the slice index of the scene with the given id, or -1.
func (m *Model) SceneIndex(id string) int {
	for i := range m.Scenes {
		if m.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// SceneByID returns a pointer into the scene slice, or nil.
func (m *Model) SceneByID(id string) *domain.Scene {
	if i := m.SceneIndex(id); i >= 0 {
		return &m.Scenes[i]
	}
	return nil
}

// AddScene appends a scene after validating that its original number is not
// already taken. A duplicate number rejects the add; nothing is mutated.
func (m *Model) AddScene(s domain.Scene) error {
	for i := range m.Scenes {
		if m.Scenes[i].OriginalSceneNumber == s.OriginalSceneNumber {
			return fmt.Errorf("scene number %d already used by scene %q", s.OriginalSceneNumber, m.Scenes[i].ID)
		}
	}
	if strings.TrimSpace(s.ID) == "" {
		s.ID = NewID()
	}
	s.PositionSec = m.Snap(s.PositionSec)
	s.LengthSec = m.snapLen(s.LengthSec, SceneMinSec)
	m.Scenes = append(m.Scenes, s)
	return nil
}

// SetSceneNumber changes a scene's user-assigned number; a collision with any
// other scene rejects the update.
func (m *Model) SetSceneNumber(id string, num int) error {
	idx := m.SceneIndex(id)
	if idx < 0 {
		return fmt.Errorf("unknown scene %q", id)
	}
	for i := range m.Scenes {
		if i != idx && m.Scenes[i].OriginalSceneNumber == num {
			return fmt.Errorf("scene number %d already used by scene %q", num, m.Scenes[i].ID)
		}
	}
	m.Scenes[idx].OriginalSceneNumber = num
	return nil
}

// DeleteScene removes a scene and cascades to every note anchored to it.
func (m *Model) DeleteScene(id string) {
	idx := m.SceneIndex(id)
	if idx < 0 {
		return
	}
	m.Scenes = append(m.Scenes[:idx], m.Scenes[idx+1:]...)
	kept := m.Notes[:0]
	for _, n := range m.Notes {
		if n.SceneID != id {
			kept = append(kept, n)
		}
	}
	m.Notes = kept
}

// SetScenePosition moves a scene in time, snapped and floored at zero.
func (m *Model) SetScenePosition(id string, sec float64) {
	if s := m.SceneByID(id); s != nil {
		s.PositionSec = m.Snap(sec)
	}
}

// SetSceneY moves a scene vertically.
func (m *Model) SetSceneY(id string, y float64) {
	if s := m.SceneByID(id); s != nil {
		s.YPx = y
	}
}

// SetSceneImageOffset re-anchors the scene's image card, in fractions of the
// scene block. A scene without an image is a no-op.
func (m *Model) SetSceneImageOffset(id string, relX, relY float64) {
	if s := m.SceneByID(id); s != nil && s.ImageMeta != nil {
		s.ImageMeta.RelX = relX
		s.ImageMeta.RelY = relY
	}
}

// ResizeSceneRight changes only the scene's length (snapped, minimum
// enforced). Scenes starting at or after the scene's previous right edge are
// shifted by the same delta so auto-placed neighbours stay abutting; scenes
// before the resize point are never touched.
func (m *Model) ResizeSceneRight(id string, newLen float64) {
	s := m.SceneByID(id)
	if s == nil {
		return
	}
	oldRight := s.PositionSec + s.LengthSec
	s.LengthSec = m.snapLen(newLen, SceneMinSec)
	delta := s.PositionSec + s.LengthSec - oldRight
	if delta == 0 {
		return
	}
	const eps = 1e-9
	for i := range m.Scenes {
		if m.Scenes[i].ID == id {
			continue
		}
		if m.Scenes[i].PositionSec >= oldRight-eps {
			p := m.Scenes[i].PositionSec + delta
			if p < 0 {
				p = 0
			}
			m.Scenes[i].PositionSec = p
		}
	}
}

// ResizeSceneLeft moves the scene's left edge to newPos while keeping its
// right edge fixed; position and length change inversely, with the minimum
// length floor applied against the fixed right edge.
func (m *Model) ResizeSceneLeft(id string, newPos float64) {
	s := m.SceneByID(id)
	if s == nil {
		return
	}
	right := s.PositionSec + s.LengthSec
	p := m.Snap(newPos)
	if p > right-SceneMinSec {
		p = right - SceneMinSec
	}
	if p < 0 {
		p = 0
	}
	s.PositionSec = p
	s.LengthSec = right - p
}

// ToggleSceneCollapsed flips a scene's collapsed flag.
func (m *Model) ToggleSceneCollapsed(id string) {
	if s := m.SceneByID(id); s != nil {
		s.Collapsed = !s.Collapsed
	}
}

// NewSceneNumbers computes the derived display numbers: rank by positionSec
// ascending, 1-based. It is recomputed on demand and never stored.
func (m *Model) NewSceneNumbers() map[string]int {
	idx := make([]int, len(m.Scenes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return m.Scenes[idx[a]].PositionSec < m.Scenes[idx[b]].PositionSec
	})
	out := make(map[string]int, len(m.Scenes))
	for rank, i := range idx {
		out[m.Scenes[i].ID] = rank + 1
	}
	return out
}

// ReplaceScenes atomically swaps in an imported scene list. Notes anchored to
// scenes that no longer exist are dropped with their scenes.
func (m *Model) ReplaceScenes(scenes []domain.Scene) {
	m.Scenes = scenes
	alive := make(map[string]bool, len(scenes))
	for i := range scenes {
		alive[scenes[i].ID] = true
	}
	kept := m.Notes[:0]
	for _, n := range m.Notes {
		if n.SceneID == "" || alive[n.SceneID] {
			kept = append(kept, n)
		}
	}
	m.Notes = kept
}

// --- Notes ---

func (m *Model) NoteIndex(id string) int {
	for i := range m.Notes {
		if m.Notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) NoteByID(id string) *domain.Note {
	if i := m.NoteIndex(id); i >= 0 {
		return &m.Notes[i]
	}
	return nil
}

// AddNote appends a note, assigning an id when missing. Music notes get their
// timestamp snapped; film notes must reference an existing scene.
func (m *Model) AddNote(n domain.Note) error {
	if n.SceneID != "" && m.SceneIndex(n.SceneID) < 0 {
		return fmt.Errorf("note references unknown scene %q", n.SceneID)
	}
	if strings.TrimSpace(n.ID) == "" {
		n.ID = NewID()
	}
	if n.SceneID == "" {
		n.TimestampSec = m.Snap(n.TimestampSec)
	}
	m.Notes = append(m.Notes, n)
	return nil
}

// DeleteNote removes a note by id.
func (m *Model) DeleteNote(id string) {
	if i := m.NoteIndex(id); i >= 0 {
		m.Notes = append(m.Notes[:i], m.Notes[i+1:]...)
	}
}

// SetNoteTimestamp re-anchors a music note in time, snapped.
func (m *Model) SetNoteTimestamp(id string, sec float64) {
	if n := m.NoteByID(id); n != nil {
		n.TimestampSec = m.Snap(sec)
	}
}

// SetNoteOffset sets a note's cosmetic pixel offsets; the vertical offset is
// floored at zero.
func (m *Model) SetNoteOffset(id string, dx, dy float64) {
	if n := m.NoteByID(id); n != nil {
		n.OffsetXPx = dx
		if dy < 0 {
			dy = 0
		}
		n.OffsetYPx = dy
	}
}

// ReattachNote moves a film note onto another scene (used when its scene is
// about to be deleted but the annotation should survive).
func (m *Model) ReattachNote(id, sceneID string) error {
	if m.SceneIndex(sceneID) < 0 {
		return fmt.Errorf("unknown scene %q", sceneID)
	}
	if n := m.NoteByID(id); n != nil {
		n.SceneID = sceneID
		return nil
	}
	return fmt.Errorf("unknown note %q", id)
}

// NotesForScene returns the ids of a scene's notes in insertion order; the
// position in this list is the note's stacking index among siblings.
func (m *Model) NotesForScene(sceneID string) []string {
	var out []string
	for i := range m.Notes {
		if m.Notes[i].SceneID == sceneID {
			out = append(out, m.Notes[i].ID)
		}
	}
	return out
}

// NoteStackIndex returns the note's position among its scene siblings, or 0
// for music notes.
func (m *Model) NoteStackIndex(id string) int {
	n := m.NoteByID(id)
	if n == nil || n.SceneID == "" {
		return 0
	}
	stack := 0
	for i := range m.Notes {
		if m.Notes[i].ID == id {
			break
		}
		if m.Notes[i].SceneID == n.SceneID {
			stack++
		}
	}
	return stack
}

// --- Lyrics ---

func (m *Model) LyricByID(id string) *domain.LyricsClip {
	for i := range m.Lyrics {
		if m.Lyrics[i].ID == id {
			return &m.Lyrics[i]
		}
	}
	return nil
}

// AddLyric appends a lyric clip; a non-positive span drops the explicit end.
func (m *Model) AddLyric(c domain.LyricsClip) {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = NewID()
	}
	c.TimestampSec = m.Snap(c.TimestampSec)
	if c.EndSec != nil && *c.EndSec <= c.TimestampSec {
		c.EndSec = nil
	}
	m.Lyrics = append(m.Lyrics, c)
}

// DeleteLyric removes a lyric clip by id.
func (m *Model) DeleteLyric(id string) {
	for i := range m.Lyrics {
		if m.Lyrics[i].ID == id {
			m.Lyrics = append(m.Lyrics[:i], m.Lyrics[i+1:]...)
			return
		}
	}
}

// SetLyricTimestamp moves a clip in time, dragging its end along when set.
func (m *Model) SetLyricTimestamp(id string, sec float64) {
	c := m.LyricByID(id)
	if c == nil {
		return
	}
	span := 0.0
	if c.EndSec != nil {
		span = *c.EndSec - c.TimestampSec
	}
	c.TimestampSec = m.Snap(sec)
	if c.EndSec != nil {
		e := c.TimestampSec + span
		c.EndSec = &e
	}
}

// LyricDuration returns the clip's explicit span or a word-count estimate.
func LyricDuration(c domain.LyricsClip) float64 {
	if c.EndSec != nil && *c.EndSec > c.TimestampSec {
		return *c.EndSec - c.TimestampSec
	}
	words := len(strings.Fields(c.Text))
	if words < 1 {
		words = 1
	}
	d := float64(words) * secPerWord
	if d < 1 {
		d = 1
	}
	return d
}

// --- Markers ---

func (m *Model) MarkerByID(id string) *domain.Marker {
	for i := range m.Markers {
		if m.Markers[i].ID == id {
			return &m.Markers[i]
		}
	}
	return nil
}

// AddMarker appends a marker, assigning an id when missing.
func (m *Model) AddMarker(mk domain.Marker) {
	if strings.TrimSpace(mk.ID) == "" {
		mk.ID = NewID()
	}
	mk.Sec = m.Snap(mk.Sec)
	m.Markers = append(m.Markers, mk)
}

// DeleteMarker removes a marker by id.
func (m *Model) DeleteMarker(id string) {
	for i := range m.Markers {
		if m.Markers[i].ID == id {
			m.Markers = append(m.Markers[:i], m.Markers[i+1:]...)
			return
		}
	}
}

// SetMarkerSec moves a marker, snapped.
func (m *Model) SetMarkerSec(id string, sec float64) {
	if mk := m.MarkerByID(id); mk != nil {
		mk.Sec = m.Snap(sec)
	}
}

// --- Loop region ---

// SetLoopA moves the loop start. Dragging it past B clamps to keep the
// minimum separation rather than crossing; this is silent correction, not an
// error, because the input is a continuous drag.
func (m *Model) SetLoopA(sec float64) {
	if sec < 0 {
		sec = 0
	}
	if m.LoopB != nil && sec > *m.LoopB-LoopMinGapSec {
		sec = *m.LoopB - LoopMinGapSec
		if sec < 0 {
			sec = 0
			b := LoopMinGapSec
			m.LoopB = &b
		}
	}
	m.LoopA = &sec
}

// SetLoopB moves the loop end, clamped to stay past A.
func (m *Model) SetLoopB(sec float64) {
	if m.LoopA != nil && sec < *m.LoopA+LoopMinGapSec {
		sec = *m.LoopA + LoopMinGapSec
	}
	if sec < LoopMinGapSec {
		sec = LoopMinGapSec
	}
	m.LoopB = &sec
}

// ClearLoop removes both loop bounds.
func (m *Model) ClearLoop() {
	m.LoopA = nil
	m.LoopB = nil
}

// SetPlayhead scrubs the playhead, floored at zero.
func (m *Model) SetPlayhead(sec float64) {
	if sec < 0 || !finite(sec) {
		sec = 0
	}
	m.PlayheadSec = sec
}
