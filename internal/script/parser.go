/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Parse parses a screenplay text into a structured Script.
// Supported syntax (Fountain-like):
// - Scene headings:
//   - Sluglines starting with INT./EXT./EST./INT/EXT./I/E. introduce a new scene.
//   - Lines starting with "#" or "Scene:" also introduce a new scene; the rest of the line is the heading.
//   - A trailing "#12#" on any heading fixes the scene number; otherwise scenes are numbered by position.
//
// - Dialogue: NAME: text  (NAME is captured as Character; converted to upper-case trim)
//   - Continuation lines indented by 2+ spaces are appended to the previous Dialogue.
//
// - Transitions: CUT TO:, FADE IN:, FADE OUT., DISSOLVE TO: and similar.
// - Notes: lines starting with ';' are LineNote.
// - Everything else inside a scene is LineAction.
// Blank lines are preserved as separators but not represented as lines.
func Parse(input string) (Script, []Error) {
	s := Script{Scenes: []Scene{}}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	currentScene := Scene{}
	var lastLine *Line

	// Patterns
	reSlug := regexp.MustCompile(`^(?i)(INT\.?/EXT\.?|I/E\.?|INT\.|EXT\.|EST\.)\s*(.*)$`)
	reScene := regexp.MustCompile(`^(#+)\s*(.*)$`)
	reSceneAlt := regexp.MustCompile(`^(?i)\s*Scene:\s*(.+)$`)
	reNumber := regexp.MustCompile(`#(\d+)#\s*$`)
	reTransition := regexp.MustCompile(`^(?i)((CUT|SMASH\s+CUT|MATCH\s+CUT|DISSOLVE|WIPE|PAN)\s+TO(\s+BLACK)?:?|FADE\s+(IN|OUT|TO\s+BLACK)\s*[.:]?)$`)
	reName := regexp.MustCompile(`^([A-Za-z0-9_\- ]{1,64})\s*:\s*(.*)$`)
	reTag := regexp.MustCompile(`(?i)@([a-z0-9_\-]+)`) // tags like @tag-name

	extractTags := func(s string) []string {
		found := reTag.FindAllStringSubmatch(s, -1)
		if len(found) == 0 {
			return nil
		}
		m := map[string]struct{}{}
		for _, f := range found {
			if len(f) > 1 {
				t := strings.ToLower(strings.TrimSpace(f[1]))
				if t != "" {
					m[t] = struct{}{}
				}
			}
		}
		if len(m) == 0 {
			return nil
		}
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}

	seenNumbers := map[int]int{} // number -> first line
	flushScene := func() {
		if strings.TrimSpace(currentScene.Heading) == "" && len(currentScene.Lines) == 0 {
			return
		}
		if currentScene.Number == 0 {
			currentScene.Number = len(s.Scenes) + 1
		}
		s.Scenes = append(s.Scenes, currentScene)
	}

	startScene := func(heading string) {
		flushScene()
		currentScene = Scene{Heading: strings.TrimSpace(heading)}
		if m := reNumber.FindStringSubmatch(currentScene.Heading); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				if first, dup := seenNumbers[n]; dup {
					errs = append(errs, Error{Line: lineNo, Column: 1, Message: "duplicate scene number " + m[1] + " (first used on line " + strconv.Itoa(first) + ")"})
				} else {
					seenNumbers[n] = lineNo
					currentScene.Number = n
				}
			}
			currentScene.Heading = strings.TrimSpace(strings.TrimSuffix(currentScene.Heading, m[0]))
		}
		lastLine = nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimRight(raw, "\r\n")

		// Continuation line (indented) -> append to last dialogue
		if strings.HasPrefix(line, "  ") && lastLine != nil && lastLine.Type == LineDialogue {
			cont := strings.TrimSpace(line)
			if cont != "" {
				lastLine.Text += "\n" + cont
				// Extract any tags from continuation and merge
				if tags := extractTags(cont); len(tags) > 0 {
					m := map[string]struct{}{}
					for _, t := range lastLine.Tags {
						m[t] = struct{}{}
					}
					for _, t := range tags {
						m[t] = struct{}{}
					}
					merged := make([]string, 0, len(m))
					for k := range m {
						merged = append(merged, k)
					}
					lastLine.Tags = merged
				}
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			lastLine = nil
			continue
		}

		// Scene heading
		if reSlug.MatchString(trim) {
			startScene(trim)
			continue
		}
		if m := reScene.FindStringSubmatch(trim); m != nil {
			startScene(m[2])
			continue
		}
		if m := reSceneAlt.FindStringSubmatch(trim); m != nil {
			startScene(m[1])
			continue
		}

		// Note line
		if strings.HasPrefix(trim, ";") {
			currentScene.Lines = append(currentScene.Lines, Line{Type: LineNote, Text: strings.TrimSpace(strings.TrimPrefix(trim, ";")), LineNo: lineNo})
			lastLine = nil
			continue
		}

		// Transition
		if reTransition.MatchString(trim) {
			currentScene.Lines = append(currentScene.Lines, Line{Type: LineTransition, Text: strings.ToUpper(trim), LineNo: lineNo})
			lastLine = nil
			continue
		}

		// NAME: text
		if m := reName.FindStringSubmatch(trim); m != nil {
			name := strings.TrimSpace(m[1])
			text := strings.TrimSpace(m[2])
			tags := extractTags(text)
			ln := Line{Type: LineDialogue, Character: strings.ToUpper(name), Text: text, Tags: tags, LineNo: lineNo}
			currentScene.Lines = append(currentScene.Lines, ln)
			lastLine = &currentScene.Lines[len(currentScene.Lines)-1]
			continue
		}

		// If we reach here and we have no scene yet, start an implicit scene
		if len(s.Scenes) == 0 && strings.TrimSpace(currentScene.Heading) == "" && len(currentScene.Lines) == 0 {
			currentScene.Heading = "Untitled"
		}
		// Plain prose is action
		currentScene.Lines = append(currentScene.Lines, Line{Type: LineAction, Text: trim, Tags: extractTags(trim), LineNo: lineNo})
		lastLine = nil
	}
	// Append last scene
	flushScene()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	s.Errors = errs
	return s, errs
}
