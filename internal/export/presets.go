/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"directorstimeline/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetReview PresetName = "review"
	PresetPrint  PresetName = "print"
)

// BatchOptions controls batch export across multiple formats.
//
// Path semantics:
//   - If OutDir is empty or relative, it will be created under <project>/exports/<preset>/.
//   - Single-file outputs are named after the project workspace kind.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset   PresetName
	Formats  []string // allowed: pdf, png, svg, epub, bundle; empty means preset defaults
	PxPerSec float64  // when > 0 overrides the strip/svg horizontal scale
	OutDir   string   // base directory for outputs (created per preset if relative)
}

// BatchExport runs exports according to the given preset.
func BatchExport(ph *storage.ProjectHandle, opt BatchOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	// normalize format strings
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	// Resolve output base directory
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(ph.Root, "exports", baseOut)
	}

	kind := ph.Project.Kind
	if kind == "" {
		kind = "timeline"
	}

	for _, f := range formats {
		switch f {
		case "pdf":
			out := filepath.Join(baseOut, fmt.Sprintf("%s-breakdown.pdf", kind))
			po := PDFOptions{IncludeScript: true, IncludeNotes: true}
			if err := ExportBreakdownPDF(ph, out, po); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "png":
			out := filepath.Join(baseOut, fmt.Sprintf("%s-strip.png", kind))
			so := StripOptions{PxPerSec: opt.PxPerSec, ShowPlayhead: true}
			if err := ExportTimelineStripPNG(ph, out, so); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		case "svg":
			out := filepath.Join(baseOut, fmt.Sprintf("%s-timeline.svg", kind))
			vo := SVGOptions{PxPerSec: opt.PxPerSec, IncludeNotes: true}
			if err := ExportTimelineSVG(ph, out, vo); err != nil {
				return fmt.Errorf("svg: %w", err)
			}
		case "epub":
			out := filepath.Join(baseOut, fmt.Sprintf("%s-screenplay.epub", kind))
			if err := ExportScreenplayEPUB(ph, out, EPUBOptions{}); err != nil {
				return fmt.Errorf("epub: %w", err)
			}
		case "bundle":
			out := filepath.Join(baseOut, fmt.Sprintf("%s-bundle.zip", kind))
			bo := BundleOptions{
				Strip: StripOptions{PxPerSec: opt.PxPerSec, ShowPlayhead: true},
				SVG:   SVGOptions{PxPerSec: opt.PxPerSec, IncludeNotes: true},
			}
			if err := ExportReviewBundle(ph, out, bo); err != nil {
				return fmt.Errorf("bundle: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetReview:
		return []string{"png", "svg", "bundle"}
	case PresetPrint:
		return []string{"pdf", "epub"}
	default:
		return []string{"pdf"}
	}
}
