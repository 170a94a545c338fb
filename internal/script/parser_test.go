/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "testing"

func TestParseSluglinesAndDialogue(t *testing.T) {
	input := `INT. KITCHEN - DAY
The kettle whistles on the stove.
ALICE: Hello, world!
  And a continuation line.

; a note that should be captured but not in outline
CUT TO:

EXT. GARDEN - NIGHT
BOB: Hi, Alice.`

	s, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(s.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(s.Scenes))
	}
	if s.Scenes[0].Heading != "INT. KITCHEN - DAY" {
		t.Fatalf("unexpected scene 1 heading: %q", s.Scenes[0].Heading)
	}
	if s.Scenes[0].Number != 1 || s.Scenes[1].Number != 2 {
		t.Fatalf("expected sequential numbers 1,2, got %d,%d", s.Scenes[0].Number, s.Scenes[1].Number)
	}
	lines := s.Scenes[0].Lines
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines in scene 1, got %d", len(lines))
	}
	if lines[0].Type != LineAction {
		t.Fatalf("expected action line first, got %+v", lines[0])
	}
	if lines[1].Type != LineDialogue || lines[1].Character != "ALICE" {
		t.Fatalf("expected ALICE dialogue, got %+v", lines[1])
	}
	if lines[1].Text != "Hello, world!\nAnd a continuation line." {
		t.Fatalf("unexpected dialogue text: %q", lines[1].Text)
	}
	if lines[2].Type != LineNote {
		t.Fatalf("expected note line, got %+v", lines[2])
	}
	if lines[3].Type != LineTransition || lines[3].Text != "CUT TO:" {
		t.Fatalf("expected CUT TO: transition, got %+v", lines[3])
	}

	if s.Scenes[1].Heading != "EXT. GARDEN - NIGHT" {
		t.Fatalf("unexpected scene 2 heading: %q", s.Scenes[1].Heading)
	}
	if len(s.Scenes[1].Lines) != 1 || s.Scenes[1].Lines[0].Character != "BOB" {
		t.Fatalf("expected single BOB dialogue in scene 2, got %+v", s.Scenes[1].Lines)
	}
}

func TestExplicitSceneNumbersAndDuplicates(t *testing.T) {
	input := `# Opening #12#
ALICE: Hi.

Scene: Middle
BOB: Hey.

EXT. ROOF - DAY #12#
CAROL: Hm.`

	s, errs := Parse(input)
	if len(errs) != 1 {
		t.Fatalf("expected 1 duplicate-number error, got %+v", errs)
	}
	if s.Scenes[0].Number != 12 {
		t.Fatalf("expected explicit number 12, got %d", s.Scenes[0].Number)
	}
	if s.Scenes[0].Heading != "Opening" {
		t.Fatalf("number suffix should be stripped from heading, got %q", s.Scenes[0].Heading)
	}
	if s.Scenes[1].Number != 2 {
		t.Fatalf("expected positional number 2, got %d", s.Scenes[1].Number)
	}
	// The duplicate keeps its positional number instead of colliding.
	if s.Scenes[2].Number != 3 {
		t.Fatalf("expected duplicate to fall back to 3, got %d", s.Scenes[2].Number)
	}
	if s.Scenes[2].Heading != "EXT. ROOF - DAY" {
		t.Fatalf("unexpected heading: %q", s.Scenes[2].Heading)
	}
}

func TestImplicitSceneAndActionLines(t *testing.T) {
	input := `This is a cold open without a slugline.
ALICE: A line.
Some freeform prose`

	s, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(s.Scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(s.Scenes))
	}
	if s.Scenes[0].Heading != "Untitled" {
		t.Fatalf("expected implicit Untitled scene, got %q", s.Scenes[0].Heading)
	}
	lines := s.Scenes[0].Lines
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines in scene, got %d", len(lines))
	}
	if lines[0].Type != LineAction || lines[2].Type != LineAction {
		t.Fatalf("expected prose to parse as action, got %+v", lines)
	}
}

func TestParseTagsExtraction(t *testing.T) {
	input := `# S
ALICE: Hello @prop
  cont @extra
The camera pans across the set @theme-1`

	s, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(s.Scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(s.Scenes))
	}
	lines := s.Scenes[0].Lines
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	// Dialogue with tags across continuation
	dlg := lines[0]
	if dlg.Type != LineDialogue {
		t.Fatalf("expected dialogue line, got %+v", dlg)
	}
	if !containsAll(dlg.Tags, []string{"prop", "extra"}) {
		t.Fatalf("expected tags [prop extra], got %+v", dlg.Tags)
	}
	act := lines[1]
	if act.Type != LineAction {
		t.Fatalf("expected action line, got %+v", act)
	}
	if !containsAll(act.Tags, []string{"theme-1"}) {
		t.Fatalf("expected tag [theme-1], got %+v", act.Tags)
	}
}

func containsAll(haystack []string, needles []string) bool {
	m := map[string]struct{}{}
	for _, h := range haystack {
		m[h] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := m[n]; !ok {
			return false
		}
	}
	return true
}
