/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"

	"github.com/google/uuid"

	"directorstimeline/internal/domain"
)

// Rough pacing constants for the imported length estimate. Dialogue reads at
// about 2.5 words per second; action prose is counted per line.
const (
	baseSceneSec     = 4.0
	actionLineSec    = 3.0
	dialogueWordsSec = 2.5
	minSceneSec      = 5.0
)

// EstimateLengthSec guesses a playing time for one screenplay scene from its
// line mix. The estimate only seeds the block length; the user resizes from
// there.
func EstimateLengthSec(sc Scene) float64 {
	sec := baseSceneSec
	for _, ln := range sc.Lines {
		switch ln.Type {
		case LineAction:
			sec += actionLineSec
		case LineDialogue:
			words := len(strings.Fields(ln.Text))
			sec += float64(words) / dialogueWordsSec
		}
	}
	if sec < minSceneSec {
		sec = minSceneSec
	}
	return sec
}

// ToTimelineScenes converts a parsed screenplay into film timeline scene
// blocks. Colors rotate through the scene palette by index; the description is
// the scene's action prose; positions are left at zero for the caller to lay
// out. Notes and transitions are kept in ScriptLines but excluded from the
// description.
func ToTimelineScenes(s Script) []domain.Scene {
	out := make([]domain.Scene, 0, len(s.Scenes))
	for i, sc := range s.Scenes {
		ds := domain.Scene{
			ID:                  uuid.NewString(),
			OriginalSceneNumber: sc.Number,
			Heading:             sc.Heading,
			LengthSec:           EstimateLengthSec(sc),
			Color:               domain.ScenePalette[i%len(domain.ScenePalette)],
		}
		var desc []string
		for _, ln := range sc.Lines {
			if ln.Type == LineAction {
				desc = append(desc, ln.Text)
			}
			ds.ScriptLines = append(ds.ScriptLines, domain.SceneLine{
				Kind:      ln.Type.String(),
				Character: ln.Character,
				Text:      ln.Text,
			})
		}
		ds.Description = strings.Join(desc, "\n")
		out = append(out, ds)
	}
	return out
}
