/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model structures for the Director's Timeline
// project: the placeable entities of the two timeline editors (waveform and
// film scene timeline) plus the project manifest they serialize into.

// Kind tags distinguish the two editor workspaces in persisted files.
const (
	KindMusic = "music"
	KindFilm  = "film"
)

// SnapshotVersion is the current persisted manifest version. Loaders reject
// files with a greater version or a mismatched kind tag.
const SnapshotVersion = 2

// Project is the persisted snapshot of one editor workspace. It is intended
// to serialize to a human-readable JSON manifest.
type Project struct {
	Version     int     `json:"version"`
	Kind        string  `json:"kind"` // music or film
	Name        string  `json:"projectName"`
	Zoom        float64 `json:"zoom"`
	PanX        float64 `json:"panX"`
	PanY        float64 `json:"panY,omitempty"`
	PlayheadSec float64 `json:"playheadSec"`
	DurationSec float64 `json:"durationSec,omitempty"`
	SnapEnabled bool    `json:"snapEnabled"`
	SnapStepSec float64 `json:"snapStepSec,omitempty"`

	Scenes  []Scene      `json:"scenes"`
	Notes   []Note       `json:"notes"`
	Lyrics  []LyricsClip `json:"lyrics,omitempty"`
	Markers []Marker     `json:"markers,omitempty"`
	LoopA   *float64     `json:"loopA,omitempty"`
	LoopB   *float64     `json:"loopB,omitempty"`
}

// Scene is one block on the film timeline.
// OriginalSceneNumber is user-assigned and unique across the project; the
// displayed scene number is always derived from positionSec order and is
// never stored here.
type Scene struct {
	ID                  string      `json:"id"`
	OriginalSceneNumber int         `json:"originalSceneNumber"`
	Heading             string      `json:"heading"`
	Description         string      `json:"description,omitempty"`
	PositionSec         float64     `json:"positionSec"`
	LengthSec           float64     `json:"lengthSec"`
	YPx                 float64     `json:"yPx"`
	Color               Color       `json:"color"`
	Collapsed           bool        `json:"collapsed"`
	ImageURL            string      `json:"imageUrl,omitempty"`
	ImageMeta           *ImageMeta  `json:"imageMeta,omitempty"`
	ScriptLines         []SceneLine `json:"scriptLines,omitempty"`
}

// SceneLine is a line of imported screenplay text attached to a scene.
type SceneLine struct {
	Kind      string `json:"kind"` // action, dialogue, transition, note
	Character string `json:"character,omitempty"`
	Text      string `json:"text"`
}

// ImageMeta positions an image card relative to its scene block.
// RelX/RelY are fractions of the scene block; Width/Height are pixels.
type ImageMeta struct {
	RelX   float64  `json:"relX"`
	RelY   float64  `json:"relY"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Crop   CropRect `json:"crop,omitempty"`
}

// CropRect selects a sub-region of the source image, in source pixels.
type CropRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Note is a sticky annotation. In the music editor it anchors to a timestamp;
// in the film editor it anchors to a scene via SceneID plus a relative
// position inside the scene block. Either way its rendered position is the
// anchor plus the pixel offsets.
type Note struct {
	ID           string  `json:"id"`
	TimestampSec float64 `json:"timestampSec,omitempty"`
	SceneID      string  `json:"sceneId,omitempty"`
	RelX         float64 `json:"relX,omitempty"`
	RelY         float64 `json:"relY,omitempty"`
	OffsetXPx    float64 `json:"offsetXPx"`
	OffsetYPx    float64 `json:"offsetYPx"`
	Text         string  `json:"text"`
	WidthPx      float64 `json:"widthPx,omitempty"`
	HeightPx     float64 `json:"heightPx,omitempty"`
	Collapsed    bool    `json:"collapsed"`
}

// LyricsClip is a timed lyric block in the music editor. EndSec, when set,
// must be strictly greater than TimestampSec; when nil the clip duration is
// estimated from its word count.
type LyricsClip struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	TimestampSec float64  `json:"timestampSec"`
	EndSec       *float64 `json:"endSec,omitempty"`
	Color        Color    `json:"color"`
}

// Marker is a labeled vertical line on the music timeline.
type Marker struct {
	ID    string  `json:"id"`
	Sec   float64 `json:"sec"`
	Label string  `json:"label"`
	Color Color   `json:"color"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ScenePalette is the rotation of block colors assigned to imported scenes
// by palette-index-modulo.
var ScenePalette = []Color{
	{R: 235, G: 138, B: 98, A: 255},
	{R: 110, G: 175, B: 225, A: 255},
	{R: 150, G: 205, B: 130, A: 255},
	{R: 220, G: 170, B: 230, A: 255},
	{R: 240, G: 205, B: 110, A: 255},
	{R: 140, G: 210, B: 205, A: 255},
	{R: 225, G: 150, B: 160, A: 255},
	{R: 170, G: 170, B: 240, A: 255},
}
