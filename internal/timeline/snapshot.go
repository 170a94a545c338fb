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
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"directorstimeline/internal/domain"
)

// snapshotSchema validates the project manifest shape before anything is
// applied to the model. Field-level failures produce descriptive errors; a
// file that fails validation leaves the model untouched.
const snapshotSchema = `{
  "type": "object",
  "required": ["version", "kind", "projectName", "zoom", "panX", "playheadSec", "scenes", "notes"],
  "properties": {
    "version":     {"type": "integer", "minimum": 1},
    "kind":        {"type": "string", "enum": ["music", "film"]},
    "projectName": {"type": "string"},
    "zoom":        {"type": "number", "exclusiveMinimum": 0},
    "panX":        {"type": "number"},
    "panY":        {"type": "number"},
    "playheadSec": {"type": "number", "minimum": 0},
    "scenes":      {"type": "array", "items": {"type": "object", "required": ["id", "originalSceneNumber", "positionSec", "lengthSec"]}},
    "notes":       {"type": "array", "items": {"type": "object", "required": ["id"]}},
    "lyrics":      {"type": "array"},
    "markers":     {"type": "array"}
  }
}`

// MakeSnapshot captures the model plus the mapper's view state as a
// serializable manifest. The operation is synchronous and total; it is the
// single merge point the debounced autosave collaborator reads from.
func (m *Model) MakeSnapshot(mp *Mapper) domain.Project {
	p := domain.Project{
		Version:     domain.SnapshotVersion,
		Kind:        m.Kind,
		Name:        m.Name,
		PlayheadSec: m.PlayheadSec,
		DurationSec: m.DurationSec,
		SnapEnabled: m.SnapEnabled,
		SnapStepSec: m.SnapStepSec,
		Scenes:      append([]domain.Scene(nil), m.Scenes...),
		Notes:       append([]domain.Note(nil), m.Notes...),
		Lyrics:      append([]domain.LyricsClip(nil), m.Lyrics...),
		Markers:     append([]domain.Marker(nil), m.Markers...),
	}
	if p.Scenes == nil {
		p.Scenes = []domain.Scene{}
	}
	if p.Notes == nil {
		p.Notes = []domain.Note{}
	}
	if m.LoopA != nil {
		a := *m.LoopA
		p.LoopA = &a
	}
	if m.LoopB != nil {
		b := *m.LoopB
		p.LoopB = &b
	}
	if mp != nil {
		p.Zoom = mp.Zoom
		p.PanX = mp.PanX
		p.PanY = mp.PanY
	}
	if p.Zoom <= 0 {
		p.Zoom = 1
	}
	return p
}

// ValidateSnapshot checks raw manifest bytes against the schema and the
// version/kind tags. wantKind may be empty to accept either workspace.
func ValidateSnapshot(raw []byte, wantKind string) (domain.Project, error) {
	var p domain.Project
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(snapshotSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return p, fmt.Errorf("validate snapshot: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return p, fmt.Errorf("invalid snapshot: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse snapshot: %w", err)
	}
	if p.Version > domain.SnapshotVersion {
		return p, fmt.Errorf("snapshot version %d is newer than supported %d", p.Version, domain.SnapshotVersion)
	}
	if wantKind != "" && p.Kind != wantKind {
		return p, fmt.Errorf("snapshot kind %q does not match workspace %q", p.Kind, wantKind)
	}
	seen := make(map[int]string, len(p.Scenes))
	for _, s := range p.Scenes {
		if other, dup := seen[s.OriginalSceneNumber]; dup {
			return p, fmt.Errorf("scenes %q and %q share originalSceneNumber %d", other, s.ID, s.OriginalSceneNumber)
		}
		seen[s.OriginalSceneNumber] = s.ID
	}
	return p, nil
}

// LoadSnapshot validates raw manifest bytes and, only on success, fully
// replaces the model's collections and the mapper's view state. A failed
// validation leaves both unchanged.
func (m *Model) LoadSnapshot(raw []byte, mp *Mapper) error {
	p, err := ValidateSnapshot(raw, m.Kind)
	if err != nil {
		return err
	}
	m.Apply(p, mp)
	return nil
}

// Apply replaces the model (and mapper view state) from a validated
// manifest in one synchronous step.
func (m *Model) Apply(p domain.Project, mp *Mapper) {
	m.Name = p.Name
	m.PlayheadSec = p.PlayheadSec
	m.DurationSec = p.DurationSec
	m.SnapEnabled = p.SnapEnabled
	m.SnapStepSec = p.SnapStepSec
	if m.SnapStepSec <= 0 {
		m.SnapStepSec = 1
	}
	m.Scenes = append([]domain.Scene(nil), p.Scenes...)
	m.Notes = append([]domain.Note(nil), p.Notes...)
	m.Lyrics = append([]domain.LyricsClip(nil), p.Lyrics...)
	m.Markers = append([]domain.Marker(nil), p.Markers...)
	m.LoopA, m.LoopB = nil, nil
	if p.LoopA != nil {
		a := *p.LoopA
		m.LoopA = &a
	}
	if p.LoopB != nil {
		b := *p.LoopB
		m.LoopB = &b
	}
	if mp != nil {
		mp.Zoom = mp.ClampZoom(p.Zoom)
		mp.PanX = mp.ClampPanX(p.PanX, mp.Zoom)
		mp.PanY = mp.ClampPanY(p.PanY)
	}
}
