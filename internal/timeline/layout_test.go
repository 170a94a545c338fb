/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"testing"

	"directorstimeline/internal/domain"
)

func TestAutoPlaceAfterPredecessor(t *testing.T) {
	m := NewModel(domain.KindFilm)
	others := []domain.Scene{
		{ID: "p", OriginalSceneNumber: 3, PositionSec: 10, LengthSec: 20},
	}
	s := domain.Scene{ID: "s", OriginalSceneNumber: 7, LengthSec: 5}
	got := m.AutoPlaceByOriginalNumber(s, others)
	if got != 30.5 {
		t.Fatalf("expected predecessor end + gap = 30.5, got %v", got)
	}
}

func TestAutoPlaceBeforeSuccessorFloorsAtZero(t *testing.T) {
	m := NewModel(domain.KindFilm)
	others := []domain.Scene{
		{ID: "n", OriginalSceneNumber: 9, PositionSec: 40, LengthSec: 10},
	}
	s := domain.Scene{ID: "s", OriginalSceneNumber: 2, LengthSec: 8}
	if got := m.AutoPlaceByOriginalNumber(s, others); got != 31.5 {
		t.Fatalf("expected successor start - gap - length = 31.5, got %v", got)
	}
	// a successor near zero must not push the scene negative
	others[0].PositionSec = 2
	if got := m.AutoPlaceByOriginalNumber(s, others); got != 0 {
		t.Fatalf("expected floor at 0, got %v", got)
	}
}

func TestAutoPlaceBetweenNeighboursWhenItFits(t *testing.T) {
	m := NewModel(domain.KindFilm)
	others := []domain.Scene{
		{ID: "p", OriginalSceneNumber: 1, PositionSec: 0, LengthSec: 10},
		{ID: "n", OriginalSceneNumber: 5, PositionSec: 30, LengthSec: 10},
	}
	s := domain.Scene{ID: "s", OriginalSceneNumber: 3, LengthSec: 5}
	got := m.AutoPlaceByOriginalNumber(s, others)
	if got != 10.5 {
		t.Fatalf("scene fits after predecessor, expected 10.5, got %v", got)
	}
	if got+s.LengthSec > others[1].PositionSec {
		t.Fatalf("placement overlaps the successor: end %v > %v", got+s.LengthSec, others[1].PositionSec)
	}
}

func TestAutoPlaceTightGapUsesClampedMidpoint(t *testing.T) {
	m := NewModel(domain.KindFilm)
	// 3 seconds of space between neighbours for a 3 second scene: neither
	// gap-respecting placement fits, the clamped midpoint does
	others := []domain.Scene{
		{ID: "p", OriginalSceneNumber: 1, PositionSec: 0, LengthSec: 10},
		{ID: "n", OriginalSceneNumber: 5, PositionSec: 13, LengthSec: 10},
	}
	s := domain.Scene{ID: "s", OriginalSceneNumber: 3, LengthSec: 3}
	got := m.AutoPlaceByOriginalNumber(s, others)
	if got != 10 {
		t.Fatalf("midpoint clamped into [10, 10], got %v", got)
	}
}

func TestAutoPlaceNoNeighboursKeepsSnappedPosition(t *testing.T) {
	m := NewModel(domain.KindFilm)
	m.SnapEnabled = true
	m.SnapStepSec = 2
	s := domain.Scene{ID: "s", OriginalSceneNumber: 1, PositionSec: 7.3, LengthSec: 5}
	if got := m.AutoPlaceByOriginalNumber(s, nil); got != 8 {
		t.Fatalf("expected current position snapped to 8, got %v", got)
	}
}

func TestAutoPlaceIsIdempotent(t *testing.T) {
	m := NewModel(domain.KindFilm)
	if err := m.AddScene(domain.Scene{ID: "a", OriginalSceneNumber: 1, PositionSec: 0, LengthSec: 10}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddScene(domain.Scene{ID: "b", OriginalSceneNumber: 5, PositionSec: 50, LengthSec: 10}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddScene(domain.Scene{ID: "s", OriginalSceneNumber: 3, PositionSec: 99, LengthSec: 5}); err != nil {
		t.Fatal(err)
	}
	m.AutoPlaceScene("s")
	first := m.SceneByID("s").PositionSec
	m.AutoPlaceScene("s")
	if got := m.SceneByID("s").PositionSec; got != first {
		t.Fatalf("second invocation moved the scene: %v then %v", first, got)
	}
}

func TestSequenceScenesAbutsWithGap(t *testing.T) {
	scenes := []domain.Scene{
		{ID: "a", LengthSec: 10},
		{ID: "b", LengthSec: 0.2}, // under minimum, gets the floor
		{ID: "c", LengthSec: 4},
	}
	SequenceScenes(scenes)
	if scenes[0].PositionSec != 0 {
		t.Fatalf("first scene at %v", scenes[0].PositionSec)
	}
	if scenes[1].PositionSec != 10.5 || scenes[1].LengthSec != SceneMinSec {
		t.Fatalf("second scene pos=%v len=%v", scenes[1].PositionSec, scenes[1].LengthSec)
	}
	if scenes[2].PositionSec != 12 {
		t.Fatalf("third scene at %v", scenes[2].PositionSec)
	}
}
