/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import "directorstimeline/internal/domain"

// AutoPlaceByOriginalNumber derives a position for scene from its
// user-assigned number and the extents of its numeric neighbours in others.
// Preference order: directly after the predecessor's end (plus gap) when the
// scene fits before the successor; directly before the successor when it fits
// after the predecessor; otherwise the midpoint of the available span,
// clamped into [predecessor end, successor start - length] so the result is
// deterministic even when the gap is smaller than the scene (temporary
// overlap is accepted over refusing the placement). With no neighbours the
// scene's current snapped position is kept. The function is pure and
// idempotent: the same inputs always yield the same position.
func (m *Model) AutoPlaceByOriginalNumber(scene domain.Scene, others []domain.Scene) float64 {
	length := scene.LengthSec
	if length < SceneMinSec {
		length = SceneMinSec
	}

	var pred, succ *domain.Scene
	for i := range others {
		o := &others[i]
		if o.ID == scene.ID {
			continue
		}
		if o.OriginalSceneNumber < scene.OriginalSceneNumber {
			if pred == nil || o.OriginalSceneNumber > pred.OriginalSceneNumber {
				pred = o
			}
		} else if o.OriginalSceneNumber > scene.OriginalSceneNumber {
			if succ == nil || o.OriginalSceneNumber < succ.OriginalSceneNumber {
				succ = o
			}
		}
	}

	switch {
	case pred == nil && succ == nil:
		return m.Snap(scene.PositionSec)
	case succ == nil:
		return pred.PositionSec + pred.LengthSec + PlaceGapSec
	case pred == nil:
		p := succ.PositionSec - PlaceGapSec - length
		if p < 0 {
			p = 0
		}
		return p
	}

	predEnd := pred.PositionSec + pred.LengthSec
	succStart := succ.PositionSec
	afterPred := predEnd + PlaceGapSec
	beforeSucc := succStart - PlaceGapSec - length

	if afterPred+length <= succStart-PlaceGapSec {
		return afterPred
	}
	if beforeSucc >= predEnd {
		return beforeSucc
	}
	// No slack: midpoint of the span, clamped so the result stays inside
	// [predEnd, succStart-length] when that interval is non-empty.
	mid := (predEnd+succStart)/2 - length/2
	lo, hi := predEnd, succStart-length
	if hi >= lo {
		if mid < lo {
			mid = lo
		}
		if mid > hi {
			mid = hi
		}
	}
	if mid < 0 {
		mid = 0
	}
	return mid
}

// AutoPlaceScene applies AutoPlaceByOriginalNumber to a stored scene.
func (m *Model) AutoPlaceScene(id string) {
	s := m.SceneByID(id)
	if s == nil {
		return
	}
	others := make([]domain.Scene, 0, len(m.Scenes)-1)
	for i := range m.Scenes {
		if m.Scenes[i].ID != id {
			others = append(others, m.Scenes[i])
		}
	}
	s.PositionSec = m.AutoPlaceByOriginalNumber(*s, others)
}

// SequenceScenes lays imported scenes end to end in number order, each
// separated by the placement gap. Used by the import merge point.
func SequenceScenes(scenes []domain.Scene) {
	pos := 0.0
	for i := range scenes {
		if scenes[i].LengthSec < SceneMinSec {
			scenes[i].LengthSec = SceneMinSec
		}
		scenes[i].PositionSec = pos
		pos += scenes[i].LengthSec + PlaceGapSec
	}
}
