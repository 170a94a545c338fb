/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"directorstimeline/internal/backend"
	"directorstimeline/internal/crash"
	"directorstimeline/internal/domain"
	applog "directorstimeline/internal/log"
	"directorstimeline/internal/storage"
	"directorstimeline/internal/ui"
	"directorstimeline/internal/version"
)

func usage() {
	fmt.Println("Directors Timeline — music and film timeline editors")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  directorstimeline version|-v|--version      Show version")
	fmt.Println("  directorstimeline init <dir> <name> [kind]  Create a project at <dir>; kind is film (default) or music")
	fmt.Println("  directorstimeline open <dir>                Open project at <dir> and print a summary")
	fmt.Println("  directorstimeline save <dir>                Save project at <dir> (creates backup)")
	fmt.Println("  directorstimeline index <dir>               Rebuild the project search index")
	fmt.Println("  directorstimeline serve                     Run the thin sync backend (Postgres)")
	fmt.Println("  directorstimeline ui [<dir>]                Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Directors Timeline")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			kind := domain.KindFilm
			if len(args) >= 5 {
				switch args[4] {
				case domain.KindFilm:
				case domain.KindMusic:
					kind = domain.KindMusic
				default:
					fmt.Printf("unknown kind %q, want film or music\n", args[4])
					os.Exit(2)
				}
			}
			abs, _ := filepath.Abs(dir)
			l.Info("init project", slog.String("root", abs), slog.String("name", name), slog.String("kind", kind))
			p := domain.Project{
				Version:     domain.SnapshotVersion,
				Kind:        kind,
				Name:        name,
				SnapEnabled: true,
				SnapStepSec: 1,
				Scenes:      []domain.Scene{},
				Notes:       []domain.Note{},
			}
			h, err := storage.InitProject(abs, p)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			l.Info("open project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Printf("Opened project: %s (%s)\n", h.Project.Name, h.Project.Kind)
			fmt.Printf("Scenes: %d  Notes: %d  Lyrics: %d  Markers: %d\n",
				len(h.Project.Scenes), len(h.Project.Notes), len(h.Project.Lyrics), len(h.Project.Markers))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			l.Info("save project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved project and created a backup of previous manifest (if any).")
			return
		case "index":
			if len(args) < 3 {
				fmt.Println("index requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			if err := storage.RebuildIndex(context.Background(), h.Root, h.Project); err != nil {
				l.Error("index rebuild failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Search index rebuilt.")
			return
		case "serve":
			if err := backend.Start(); err != nil {
				l.Error("backend stopped", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}
