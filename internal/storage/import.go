/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"

	"directorstimeline/internal/domain"
	"directorstimeline/internal/script"
)

// ImportedSceneNumberSet returns the set of user-assigned scene numbers that
// already have a block on the film timeline.
func ImportedSceneNumberSet(p domain.Project) map[int]struct{} {
	s := make(map[int]struct{})
	for _, sc := range p.Scenes {
		if sc.OriginalSceneNumber > 0 {
			s[sc.OriginalSceneNumber] = struct{}{}
		}
	}
	return s
}

// ComputeUnimportedScenes returns the numbers of screenplay scenes that are
// not yet represented on the timeline, in script order.
func ComputeUnimportedScenes(sc script.Script, p domain.Project) []int {
	imported := ImportedSceneNumberSet(p)
	var out []int
	for _, scn := range sc.Scenes {
		if scn.Number <= 0 {
			continue
		}
		if _, ok := imported[scn.Number]; !ok {
			out = append(out, scn.Number)
		}
	}
	return out
}

// MergeImportedScenes appends the given scene blocks to the project, skipping
// any whose number is already on the timeline. Existing blocks are never
// touched so a re-import cannot move what the user has arranged. Returns the
// count of scenes added.
func MergeImportedScenes(ph *ProjectHandle, scenes []domain.Scene) (int, error) {
	if ph == nil {
		return 0, fmt.Errorf("project handle is nil")
	}
	imported := ImportedSceneNumberSet(ph.Project)
	added := 0
	for _, sc := range scenes {
		if sc.ID == "" {
			return added, fmt.Errorf("scene %d has no id", sc.OriginalSceneNumber)
		}
		if _, ok := imported[sc.OriginalSceneNumber]; ok {
			continue
		}
		ph.Project.Scenes = append(ph.Project.Scenes, sc)
		if sc.OriginalSceneNumber > 0 {
			imported[sc.OriginalSceneNumber] = struct{}{}
		}
		added++
	}
	return added, nil
}

// AttachSceneImage sets the image reference on a scene block. Returns an
// error when the scene cannot be found.
func AttachSceneImage(ph *ProjectHandle, sceneID string, url string, meta *domain.ImageMeta) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if sceneID == "" {
		return fmt.Errorf("sceneID is empty")
	}
	for i := range ph.Project.Scenes {
		sc := &ph.Project.Scenes[i]
		if sc.ID != sceneID {
			continue
		}
		sc.ImageURL = url
		sc.ImageMeta = meta
		return nil
	}
	return fmt.Errorf("scene %s not found", sceneID)
}
