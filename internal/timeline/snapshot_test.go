/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"encoding/json"
	"strings"
	"testing"

	"directorstimeline/internal/domain"
)

func populatedMusicModel(t *testing.T) (*Model, *Mapper) {
	t.Helper()
	m := NewModel(domain.KindMusic)
	m.Name = "Demo Song"
	m.DurationSec = 240
	m.PlayheadSec = 12.5
	if err := m.AddNote(domain.Note{ID: "n1", TimestampSec: 10, Text: "verse starts"}); err != nil {
		t.Fatal(err)
	}
	end := 18.0
	m.AddLyric(domain.LyricsClip{ID: "l1", Text: "hello there", TimestampSec: 14, EndSec: &end})
	m.AddMarker(domain.Marker{ID: "mk1", Sec: 30, Label: "chorus"})
	m.SetLoopA(10)
	m.SetLoopB(20)

	mp := NewMusicMapper()
	mp.Zoom = 25
	mp.ViewportW = 1200
	mp.ViewportH = 700
	mp.DurationSec = 240
	mp.ContentHeightPx = 900
	mp.PanX = mp.ClampPanX(-300, mp.Zoom)
	mp.PanY = mp.ClampPanY(-50)
	return m, mp
}

func TestSnapshotRoundTripPreservesEverything(t *testing.T) {
	m, mp := populatedMusicModel(t)
	raw, err := json.Marshal(m.MakeSnapshot(mp))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	m2 := NewModel(domain.KindMusic)
	mp2 := NewMusicMapper()
	mp2.ViewportW = mp.ViewportW
	mp2.ViewportH = mp.ViewportH
	mp2.DurationSec = mp.DurationSec
	mp2.ContentHeightPx = mp.ContentHeightPx
	if err := m2.LoadSnapshot(raw, mp2); err != nil {
		t.Fatalf("load: %v", err)
	}

	if m2.Name != "Demo Song" || m2.PlayheadSec != 12.5 || m2.DurationSec != 240 {
		t.Fatalf("header lost: %+v", m2)
	}
	if len(m2.Notes) != 1 || m2.Notes[0].Text != "verse starts" {
		t.Fatalf("notes lost: %+v", m2.Notes)
	}
	if len(m2.Lyrics) != 1 || m2.Lyrics[0].EndSec == nil || *m2.Lyrics[0].EndSec != 18 {
		t.Fatalf("lyric end lost: %+v", m2.Lyrics)
	}
	if len(m2.Markers) != 1 || m2.Markers[0].Label != "chorus" {
		t.Fatalf("markers lost: %+v", m2.Markers)
	}
	if m2.LoopA == nil || m2.LoopB == nil || *m2.LoopA != 10 || *m2.LoopB != 20 {
		t.Fatalf("loop lost: %v %v", m2.LoopA, m2.LoopB)
	}
	if mp2.Zoom != 25 || mp2.PanX != mp.PanX || mp2.PanY != mp.PanY {
		t.Fatalf("view state lost: zoom=%v panX=%v panY=%v", mp2.Zoom, mp2.PanX, mp2.PanY)
	}
}

func TestSnapshotRoundTripFilmScenes(t *testing.T) {
	m := NewModel(domain.KindFilm)
	if err := m.AddScene(domain.Scene{
		ID: "s1", OriginalSceneNumber: 4, Heading: "INT. LAB - NIGHT",
		PositionSec: 10, LengthSec: 22, YPx: 40, Collapsed: true,
		Color: domain.Color{R: 200, G: 30, B: 30, A: 255},
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddNote(domain.Note{ID: "n1", SceneID: "s1", RelX: 0.4, RelY: 0.1, Text: "props"}); err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(m.MakeSnapshot(NewFilmMapper()))
	if err != nil {
		t.Fatal(err)
	}
	m2 := NewModel(domain.KindFilm)
	if err := m2.LoadSnapshot(raw, nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	s := m2.SceneByID("s1")
	if s == nil || s.OriginalSceneNumber != 4 || !s.Collapsed || s.Heading != "INT. LAB - NIGHT" {
		t.Fatalf("scene lost: %+v", s)
	}
	if len(m2.NotesForScene("s1")) != 1 {
		t.Fatalf("scene note lost")
	}
}

func TestLoadRejectsKindMismatch(t *testing.T) {
	m, mp := populatedMusicModel(t)
	raw, _ := json.Marshal(m.MakeSnapshot(mp))

	film := NewModel(domain.KindFilm)
	err := film.LoadSnapshot(raw, nil)
	if err == nil || !strings.Contains(err.Error(), "kind") {
		t.Fatalf("expected kind mismatch error, got %v", err)
	}
}

func TestLoadRejectsDuplicateSceneNumbers(t *testing.T) {
	raw := []byte(`{
		"version": 1, "kind": "film", "projectName": "x",
		"zoom": 10, "panX": 0, "playheadSec": 0,
		"scenes": [
			{"id": "a", "originalSceneNumber": 3, "positionSec": 0, "lengthSec": 5},
			{"id": "b", "originalSceneNumber": 3, "positionSec": 10, "lengthSec": 5}
		],
		"notes": []
	}`)
	_, err := ValidateSnapshot(raw, domain.KindFilm)
	if err == nil || !strings.Contains(err.Error(), "originalSceneNumber") {
		t.Fatalf("expected duplicate number error, got %v", err)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	raw := []byte(`{
		"version": 99, "kind": "film", "projectName": "x",
		"zoom": 10, "panX": 0, "playheadSec": 0, "scenes": [], "notes": []
	}`)
	_, err := ValidateSnapshot(raw, domain.KindFilm)
	if err == nil || !strings.Contains(err.Error(), "newer") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestSchemaErrorsNameTheField(t *testing.T) {
	raw := []byte(`{
		"version": 1, "kind": "film", "projectName": "x",
		"zoom": "fast", "panX": 0, "playheadSec": 0, "scenes": [], "notes": []
	}`)
	_, err := ValidateSnapshot(raw, "")
	if err == nil || !strings.Contains(err.Error(), "zoom") {
		t.Fatalf("schema error should name the offending field, got %v", err)
	}
}

func TestFailedLoadLeavesModelUntouched(t *testing.T) {
	m, mp := populatedMusicModel(t)
	before := len(m.Notes)
	if err := m.LoadSnapshot([]byte(`{"version": 1}`), mp); err == nil {
		t.Fatalf("expected validation failure")
	}
	if len(m.Notes) != before || m.Name != "Demo Song" || mp.Zoom != 25 {
		t.Fatalf("failed load mutated state")
	}
}

func TestApplyDefaultsSnapStep(t *testing.T) {
	m := NewModel(domain.KindFilm)
	m.Apply(domain.Project{Kind: domain.KindFilm, SnapStepSec: 0}, nil)
	if m.SnapStepSec != 1 {
		t.Fatalf("snap step should default to 1, got %v", m.SnapStepSec)
	}
}
