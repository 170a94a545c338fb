/*
 * Copyright (c) 2025
 */
package export

import (
	"os"
	"path/filepath"
	"testing"

	"directorstimeline/internal/storage"
)

func TestBatchExport_ReviewPreset(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleProject())
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	if err := BatchExport(ph, BatchOptions{Preset: PresetReview}); err != nil {
		t.Fatalf("batch export review: %v", err)
	}
	checks := []string{
		filepath.Join(root, "exports", "review", "film-strip.png"),
		filepath.Join(root, "exports", "review", "film-timeline.svg"),
		filepath.Join(root, "exports", "review", "film-bundle.zip"),
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_PrintPreset(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleProject())
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	if err := BatchExport(ph, BatchOptions{Preset: PresetPrint}); err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	checks := []string{
		filepath.Join(root, "exports", "print", "film-breakdown.pdf"),
		filepath.Join(root, "exports", "print", "film-screenplay.epub"),
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_UnknownFormat(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleProject())
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	if err := BatchExport(ph, BatchOptions{Formats: []string{"docx"}}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
