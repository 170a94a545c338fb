/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Script represents a parsed screenplay with scenes and lines.
// The syntax follows Fountain-like conventions: sluglines, dialogue
// blocks, transitions, and ";"-prefixed author notes.

type Script struct {
	Scenes []Scene
	Errors []Error
}

type Scene struct {
	// Number comes from an explicit "#12#" suffix on the slugline, or the
	// 1-based position of the scene in the file when no suffix is given.
	Number  int
	Heading string
	Lines   []Line
}

// LineType indicates the kind of a screenplay line.
// Action:     plain prose describing what happens on screen
// Dialogue:   CHARACTER: text
// Transition: CUT TO:, FADE OUT., etc.
// Note:       lines starting with ";" are author notes and ignored by outline

type LineType int

const (
	LineUnknown LineType = iota
	LineAction
	LineDialogue
	LineTransition
	LineNote
)

func (t LineType) String() string {
	switch t {
	case LineAction:
		return "action"
	case LineDialogue:
		return "dialogue"
	case LineTransition:
		return "transition"
	case LineNote:
		return "note"
	default:
		return "unknown"
	}
}

// Line captures a single logical line (possibly with continuations) in a scene.
// For Dialogue, Character holds the speaking character name and Text the spoken
// content. For other types Character is empty.

type Line struct {
	Type      LineType
	Character string
	Text      string
	Tags      []string
	LineNo    int // 1-based starting line number in the source
}

// Error represents a parse error with position context.

type Error struct {
	Line    int
	Column  int
	Message string
}
