/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
	"time"

	"directorstimeline/internal/domain"
)

// Validates FTS5 and cross-ref queries using an index built from a manifest.
func TestIndexBuildFromProjectFTSAndCrossRef(t *testing.T) {
	root := t.TempDir()
	proj := domain.Project{
		Version: domain.SnapshotVersion,
		Kind:    domain.KindFilm,
		Name:    "Index Case",
		Scenes: []domain.Scene{{
			ID:                  "sc1",
			OriginalSceneNumber: 1,
			Heading:             "INT. BEACH HOUSE - DAY",
			Description:         "Alice waves hello from the porch @greet",
			PositionSec:         30,
			LengthSec:           12,
			ScriptLines: []domain.SceneLine{
				{Kind: "action", Text: "Waves crash outside."},
				{Kind: "dialogue", Character: "ALICE", Text: "Hello from the beach @greet"},
			},
		}},
		Notes: []domain.Note{
			{ID: "n1", SceneID: "sc1", Text: "Reshoot the porch wave"},
			{ID: "n2", TimestampSec: 95, Text: "Crowd too loud here"},
		},
		Lyrics:  []domain.LyricsClip{{ID: "l1", TimestampSec: 10, Text: "down by the water"}},
		Markers: []domain.Marker{{ID: "m1", Sec: 60, Label: "chorus"}},
	}
	ph, err := InitProject(root, proj)
	if err != nil || ph == nil {
		t.Fatalf("InitProject: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, root, proj); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	// FTS: search phrase Hello
	res, err := Search(ctx, root, SearchQuery{Text: "Hello"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) == 0 {
		t.Fatalf("expected FTS results for 'Hello'")
	}
	// Tag filter
	res, err = Search(ctx, root, SearchQuery{Tags: []string{"greet"}})
	if err != nil || len(res) == 0 {
		t.Fatalf("Search tags: %v len=%d", err, len(res))
	}
	// Character filter should find the dialogue line
	res, err = Search(ctx, root, SearchQuery{Character: "alice"})
	if err != nil || len(res) == 0 {
		t.Fatalf("Search character: %v len=%d", err, len(res))
	}
	// Sec range should include the marker at 60 but not the lyric at 10
	res, err = Search(ctx, root, SearchQuery{SecFrom: 50, SecTo: 70})
	if err != nil {
		t.Fatalf("Search sec range: %v", err)
	}
	foundMarker, foundLyric := false, false
	for _, r := range res {
		if r.EntityID == "m1" {
			foundMarker = true
		}
		if r.EntityID == "l1" {
			foundLyric = true
		}
	}
	if !foundMarker || foundLyric {
		t.Fatalf("sec range filter wrong: marker=%v lyric=%v", foundMarker, foundLyric)
	}
	// Scene-anchored note should cross-reference the scene heading document
	refs, err := WhereUsedByPath(ctx, root, "scene:sc1", 10, 0)
	if err != nil {
		t.Fatalf("WhereUsedByPath: %v", err)
	}
	if len(refs) != 1 || refs[0].EntityID != "n1" {
		t.Fatalf("expected note n1 to reference scene sc1, got %+v", refs)
	}
}
