/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package assetpack bundles a project's assets directory (scene stills,
// reference audio, artwork) into a portable .zip so a cut can travel
// between workstations without copying the whole project.
package assetpack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "directorstimeline/internal/log"
)

const manifestName = "assetpack.manifest.txt"

// ExportProjectAssets zips the project's assets directory (<project>/assets)
// into a single .zip file. The archive preserves the directory structure and
// carries a small manifest at the root for quick human inspection. An empty
// or missing assets directory still produces an archive with just the
// manifest.
func ExportProjectAssets(projectRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("assetpack"), "export").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return errors.New("projectRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	assetsDir := filepath.Join(projectRoot, "assets")
	if _, err := os.Stat(assetsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(assetsDir, 0o755); err != nil {
			return fmt.Errorf("ensure assets dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Directors Timeline Asset Pack\nCreated: %s\nProject: %s\n\nContents mirror the project's /assets directory.\n",
		time.Now().Format(time.RFC3339), projectRoot)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(assetsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return err
		}
		// forward slashes inside the archive
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("asset pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// ImportAssetPack extracts the given .zip pack into the project's assets
// directory. Existing files are never overwritten; they are skipped. Entries
// that would escape the assets directory are rejected. Returns the count of
// files installed.
func ImportAssetPack(projectRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("assetpack"), "import").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return 0, errors.New("projectRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	assetsDir := filepath.Join(projectRoot, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure assets dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == manifestName {
			continue
		}
		// Archives produced by ExportProjectAssets store paths under
		// assets/; anything else is placed below assets/ as well.
		targetRel := name
		if !strings.HasPrefix(targetRel, "assets/") {
			targetRel = filepath.ToSlash(filepath.Join("assets", targetRel))
		}
		targetPath := filepath.Join(projectRoot, filepath.FromSlash(targetRel))
		// reject traversal out of the project tree
		if rel, err := filepath.Rel(projectRoot, targetPath); err != nil || strings.HasPrefix(rel, "..") {
			l.Warn("skip entry escaping project root", slog.String("name", name))
			continue
		}
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("asset pack imported", slog.Int("files", installed))
	return installed, nil
}
