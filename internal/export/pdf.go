/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"directorstimeline/internal/domain"
	"directorstimeline/internal/storage"
	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls the scene breakdown export.
// Vector text is used throughout; we rely on built-in Helvetica for portability.
// In later phases, font embedding can be added using TTFs.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	Title         string // defaults to the project name
	IncludeScript bool   // include imported screenplay lines per scene
	IncludeNotes  bool   // include notes anchored to each scene
}

// ExportBreakdownPDF writes a scene breakdown of the project to a single PDF
// at outPath. Scenes appear in timeline order with their derived numbers,
// time ranges, descriptions, and optionally the attached script and notes.
func ExportBreakdownPDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	proj := ph.Project

	title := opt.Title
	if title == "" {
		title = proj.Name
	}
	if title == "" {
		title = "Untitled"
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s (scene breakdown)", title), false)
	pdf.SetAuthor("Directors Timeline", false)
	pdf.SetMargins(54, 54, 54)
	pdf.SetAutoPageBreak(true, 54)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 22, title, "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	sub := fmt.Sprintf("%s workspace", proj.Kind)
	if proj.DurationSec > 0 {
		sub += fmt.Sprintf(" / duration %s", formatTimecode(proj.DurationSec))
	}
	pdf.MultiCell(0, 14, sub, "", "L", false)
	pdf.Ln(8)

	scenes := orderedScenes(proj)
	for i, sc := range scenes {
		// Heading line: derived number, heading, original number, range
		pdf.SetFont("Helvetica", "B", 12)
		head := sc.Heading
		if head == "" {
			head = "Untitled"
		}
		line := fmt.Sprintf("%d. %s", i+1, head)
		if sc.OriginalSceneNumber > 0 {
			line += fmt.Sprintf("  [#%d]", sc.OriginalSceneNumber)
		}
		pdf.MultiCell(0, 16, line, "", "L", false)

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 12, fmt.Sprintf("%s - %s", formatTimecode(sc.PositionSec), formatTimecode(sc.PositionSec+sc.LengthSec)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)

		if strings.TrimSpace(sc.Description) != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 13, sc.Description, "", "L", false)
		}

		if opt.IncludeScript {
			for _, ln := range sc.ScriptLines {
				switch ln.Kind {
				case "dialogue":
					pdf.SetFont("Helvetica", "B", 10)
					pdf.SetX(90)
					pdf.MultiCell(0, 13, ln.Character, "", "L", false)
					pdf.SetFont("Helvetica", "", 10)
					pdf.SetX(72)
					pdf.MultiCell(0, 13, ln.Text, "", "L", false)
				case "transition":
					pdf.SetFont("Helvetica", "", 10)
					pdf.MultiCell(0, 13, ln.Text, "", "R", false)
				case "note":
					pdf.SetFont("Helvetica", "I", 9)
					pdf.MultiCell(0, 12, ln.Text, "", "L", false)
				default:
					pdf.SetFont("Helvetica", "", 10)
					pdf.MultiCell(0, 13, ln.Text, "", "L", false)
				}
			}
		}

		if opt.IncludeNotes {
			for _, n := range proj.Notes {
				if n.SceneID != sc.ID || strings.TrimSpace(n.Text) == "" {
					continue
				}
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(120, 90, 20)
				pdf.MultiCell(0, 12, "Note: "+n.Text, "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
		}
		pdf.Ln(10)
	}

	if len(proj.Markers) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 16, "Markers", "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, mk := range proj.Markers {
			pdf.MultiCell(0, 13, fmt.Sprintf("%s  %s", formatTimecode(mk.Sec), mk.Label), "", "L", false)
		}
	}

	// Ensure output path is under project exports folder if relative
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// orderedScenes returns the scenes sorted by timeline position. Display
// numbers are always derived from this order, never stored.
func orderedScenes(p domain.Project) []domain.Scene {
	out := make([]domain.Scene, len(p.Scenes))
	copy(out, p.Scenes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PositionSec != out[j].PositionSec {
			return out[i].PositionSec < out[j].PositionSec
		}
		return out[i].OriginalSceneNumber < out[j].OriginalSceneNumber
	})
	return out
}

// formatTimecode renders seconds as M:SS or H:MM:SS.
func formatTimecode(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
