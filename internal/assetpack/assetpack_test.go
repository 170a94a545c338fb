/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package assetpack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestExportAndImportPack(t *testing.T) {
	// Create temp project with assets
	projDir := t.TempDir()
	assetsDir := filepath.Join(projDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "scene-12.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sub := filepath.Join(assetsDir, "audio")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir audio: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "scratch.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}

	// Export pack
	zipPath := filepath.Join(projDir, "out.zip")
	if err := ExportProjectAssets(projDir, zipPath); err != nil {
		t.Fatalf("export pack: %v", err)
	}
	st, err := os.Stat(zipPath)
	if err != nil || st.Size() == 0 {
		t.Fatalf("zip not created or empty: %v", err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	_ = r.Close()

	// Import into a new project
	proj2 := t.TempDir()
	installed, err := ImportAssetPack(proj2, zipPath)
	if err != nil {
		t.Fatalf("import pack: %v", err)
	}
	if installed == 0 {
		t.Fatalf("expected installed > 0")
	}
	if _, err := os.Stat(filepath.Join(proj2, "assets", "scene-12.png")); err != nil {
		t.Fatalf("expected scene-12.png imported: %v", err)
	}
	if _, err := os.Stat(filepath.Join(proj2, "assets", "audio", "scratch.wav")); err != nil {
		t.Fatalf("expected scratch.wav imported: %v", err)
	}
}

func TestImportSkipsExistingFiles(t *testing.T) {
	projDir := t.TempDir()
	assetsDir := filepath.Join(projDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "keep.txt"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(projDir, "pack.zip")
	if err := ExportProjectAssets(projDir, zipPath); err != nil {
		t.Fatal(err)
	}

	proj2 := t.TempDir()
	if err := os.MkdirAll(filepath.Join(proj2, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(proj2, "assets", "keep.txt"), []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}
	installed, err := ImportAssetPack(proj2, zipPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if installed != 0 {
		t.Errorf("existing file should be skipped, installed=%d", installed)
	}
	data, err := os.ReadFile(filepath.Join(proj2, "assets", "keep.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "local" {
		t.Errorf("import must not overwrite, got %q", data)
	}
}

func TestImportRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(zf)
	w, err := zw.Create("../../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("nope")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zf.Close(); err != nil {
		t.Fatal(err)
	}

	proj := t.TempDir()
	installed, err := ImportAssetPack(proj, zipPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if installed != 0 {
		t.Errorf("traversal entry should be rejected, installed=%d", installed)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(proj), "escape.txt")); err == nil {
		t.Error("traversal file must not be written outside the project")
	}
}

func TestExportValidatesArguments(t *testing.T) {
	if err := ExportProjectAssets("", "/tmp/x.zip"); err == nil {
		t.Error("empty projectRoot should fail")
	}
	if err := ExportProjectAssets(t.TempDir(), ""); err == nil {
		t.Error("empty destZipPath should fail")
	}
	if _, err := ImportAssetPack("", "/tmp/x.zip"); err == nil {
		t.Error("empty projectRoot should fail")
	}
	if _, err := ImportAssetPack(t.TempDir(), ""); err == nil {
		t.Error("empty packZipPath should fail")
	}
}
