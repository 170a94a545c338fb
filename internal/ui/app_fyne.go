//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"directorstimeline/internal/assetpack"
	"directorstimeline/internal/audio"
	"directorstimeline/internal/backend"
	"directorstimeline/internal/config"
	"directorstimeline/internal/crash"
	"directorstimeline/internal/domain"
	"directorstimeline/internal/export"
	applog "directorstimeline/internal/log"
	"directorstimeline/internal/script"
	"directorstimeline/internal/storage"
	"directorstimeline/internal/timeline"
	"directorstimeline/internal/undo"
	"directorstimeline/internal/version"
)

// audioPeaksEntityID keys the master audio waveform in the previews cache.
// The cache dimension key carries the per-second resolution, so a rescan at a
// new resolution misses cleanly instead of serving stale buckets.
const audioPeaksEntityID = "audio:master"

// scriptHistoryKeep bounds the screenplay revision history in the index.
const scriptHistoryKeep = 20

// Run starts the Fyne-based desktop UI with both timeline editors.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, backendToken, cfgErr := config.Load()
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
		cfg = config.Defaults()
	}

	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	fyneApp := app.NewWithID("directorstimeline")
	w := fyneApp.NewWindow("Directors Timeline")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 900 {
		winW = 900
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	canvasWidget := NewTimelineCanvas()

	var model *timeline.Model
	var mapper *timeline.Mapper

	// Undo manager keeps per-workspace snapshots of the whole project.
	undoMgr := undo.NewManager(undo.Config{
		MaxBytes:        32 * 1024 * 1024,
		MaxPerWorkspace: 50,
		MinInterval:     300 * time.Millisecond,
	})
	captureUndo := func() {
		if model == nil {
			return
		}
		p := model.MakeSnapshot(mapper)
		blob, err := json.Marshal(p)
		if err != nil {
			l.Error("undo snapshot marshal", slog.Any("err", err))
			return
		}
		undoMgr.PushSnapshot(undo.Snapshot{Workspace: model.Kind, Blob: blob, TS: time.Now()})
	}

	// Scene rail (left)
	sceneDisplay := []string{}
	sceneIDs := []string{}
	scenesList := widget.NewList(
		func() int { return len(sceneDisplay) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(sceneDisplay) {
				o.(*widget.Label).SetText(sceneDisplay[i])
			} else {
				o.(*widget.Label).SetText("")
			}
		},
	)
	refreshScenes := func() {
		sceneDisplay = sceneDisplay[:0]
		sceneIDs = sceneIDs[:0]
		if model != nil {
			numbers := model.NewSceneNumbers()
			ordered := append([]domain.Scene(nil), model.Scenes...)
			sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].PositionSec < ordered[j].PositionSec })
			for _, s := range ordered {
				sceneDisplay = append(sceneDisplay, fmt.Sprintf("%d. %s  [%s]", numbers[s.ID], s.Heading, formatTick(s.PositionSec, 1)))
				sceneIDs = append(sceneIDs, s.ID)
			}
		}
		scenesList.Refresh()
	}
	scenesList.OnSelected = func(id widget.ListItemID) {
		if model == nil || id < 0 || int(id) >= len(sceneIDs) {
			return
		}
		sid := sceneIDs[id]
		if ctrl := canvasWidget.Controller(); ctrl != nil {
			ctrl.SelectedID = sid
		}
		if s := model.SceneByID(sid); s != nil {
			// center the scene under the viewport
			mapper.SetPanX(mapper.ViewportW/2 - (s.PositionSec+s.LengthSec/2)*mapper.Zoom)
		}
		canvasWidget.Refresh()
	}
	left := container.NewBorder(
		container.NewVBox(widget.NewLabel("Scenes"), widget.NewSeparator()), nil, nil, nil,
		scenesList,
	)

	// Inspector (right)
	inspectorLabel := widget.NewLabel("Nothing selected")
	inspectorLabel.Wrapping = fyne.TextWrapWord
	var selectedHit *timeline.Hit
	refreshInspector := func() {
		if model == nil || selectedHit == nil {
			inspectorLabel.SetText("Nothing selected")
			return
		}
		switch selectedHit.Kind {
		case timeline.HitScene:
			if s := model.SceneByID(selectedHit.ID); s != nil {
				inspectorLabel.SetText(fmt.Sprintf("Scene #%d\n%s\n%s - %s\n%s",
					s.OriginalSceneNumber, s.Heading,
					formatTick(s.PositionSec, 1), formatTick(s.PositionSec+s.LengthSec, 1),
					s.Description))
				return
			}
		case timeline.HitNote:
			if n := model.NoteByID(selectedHit.ID); n != nil {
				anchor := fmt.Sprintf("at %s", formatTick(n.TimestampSec, 1))
				if n.SceneID != "" {
					anchor = "on scene " + n.SceneID
				}
				inspectorLabel.SetText("Note " + anchor + "\n" + n.Text)
				return
			}
		case timeline.HitLyric:
			if c := model.LyricByID(selectedHit.ID); c != nil {
				inspectorLabel.SetText(fmt.Sprintf("Lyric at %s\n%s", formatTick(c.TimestampSec, 1), c.Text))
				return
			}
		case timeline.HitMarker:
			if mk := model.MarkerByID(selectedHit.ID); mk != nil {
				inspectorLabel.SetText(fmt.Sprintf("Marker %q at %s", mk.Label, formatTick(mk.Sec, 1)))
				return
			}
		}
		inspectorLabel.SetText("Nothing selected")
	}

	refreshAll := func() {
		refreshScenes()
		refreshInspector()
		canvasWidget.Refresh()
	}

	// saveProject writes the manifest, refreshes the search index and records
	// a workspace snapshot for cross-workspace history.
	saveProject := func() error {
		if ph == nil || model == nil {
			return fmt.Errorf("no project open")
		}
		p := model.MakeSnapshot(mapper)
		ph.Project = p
		if err := storage.Save(ph); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := storage.UpdateIndex(ctx, ph.Root, p); err != nil {
			l.Error("index update failed", slog.Any("err", err))
		}
		blob, err := json.Marshal(p)
		if err == nil {
			if serr := storage.SaveSnapshot(ctx, ph, p.Kind, blob, time.Now()); serr != nil {
				l.Error("workspace snapshot failed", slog.Any("err", serr))
			}
		}
		return nil
	}

	// loadPeaks restores the cached waveform for the music editor.
	loadPeaks := func() {
		if ph == nil || model == nil || model.Kind != domain.KindMusic {
			return
		}
		root := ph.Root
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			blob, err := storage.GetPreview(ctx, root, audioPeaksEntityID, storage.PreviewKindPeaks, audio.BucketsPerSec, 1)
			if err != nil || len(blob) == 0 {
				return
			}
			ps, derr := audio.DecodePeaks(blob)
			if derr != nil {
				l.Error("decode cached peaks", slog.Any("err", derr))
				return
			}
			fyne.Do(func() {
				canvasWidget.SetPeaks(ps)
				status.SetText("Waveform restored from cache.")
			})
		}()
	}

	var showEntityEditor func(h timeline.Hit)

	snapCheck := widget.NewCheck("Snap", func(v bool) {
		if model != nil {
			model.SnapEnabled = v
		}
		cfg.Editor.SnapEnabled = v
	})
	snapCheck.SetChecked(cfg.Editor.SnapEnabled)
	dragTimeCheck := widget.NewCheck("Drag moves time", func(v bool) {
		if ctrl := canvasWidget.Controller(); ctrl != nil {
			ctrl.DragMovesTime = v
		}
		cfg.Editor.DragMovesTime = v
	})
	dragTimeCheck.SetChecked(cfg.Editor.DragMovesTime)

	// applyProject rebuilds the workspace around a freshly opened manifest.
	applyProject := func() {
		kind := ph.Project.Kind
		if kind != domain.KindMusic {
			kind = domain.KindFilm
		}
		if kind == domain.KindMusic {
			mapper = timeline.NewMusicMapper()
		} else {
			mapper = timeline.NewFilmMapper()
		}
		model = timeline.NewModel(kind)
		model.Apply(ph.Project, mapper)
		canvasWidget.SetWorkspace(model, mapper)
		if ctrl := canvasWidget.Controller(); ctrl != nil {
			ctrl.DragMovesTime = dragTimeCheck.Checked
		}
		snapCheck.SetChecked(model.SnapEnabled)
		selectedHit = nil
		w.SetTitle(fmt.Sprintf("Directors Timeline — %s", ph.Project.Name))
		refreshAll()
		loadPeaks()
	}

	canvasWidget.OnGestureStart = func() { captureUndo() }
	canvasWidget.OnChanged = func() {
		refreshScenes()
		refreshInspector()
		status.SetText(fmt.Sprintf("zoom %.1f px/s", mapperZoom(mapper)))
	}
	canvasWidget.OnSelect = func(h timeline.Hit) {
		hh := h
		selectedHit = &hh
		refreshInspector()
	}
	canvasWidget.OnOpenEditor = func(h timeline.Hit) { showEntityEditor(h) }

	// Search (omnibox + results)
	searchItems := []string{}
	var searchResults []storage.SearchResult
	searchList := widget.NewList(
		func() int { return len(searchItems) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(searchItems[i]) },
	)
	omniBox := widget.NewEntry()
	omniBox.SetPlaceHolder("Search project (Ctrl+K)… e.g. rooftop char:BOB tag:@fx")
	runSearch := func(q string) {
		qq := strings.TrimSpace(q)
		if qq == "" || ph == nil {
			searchItems = searchItems[:0]
			searchResults = searchResults[:0]
			searchList.Refresh()
			return
		}
		status.SetText("Searching…")
		query := parseSearchQuery(qq)
		query.Limit = 200
		go func(root string, sq storage.SearchQuery) {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			res, err := storage.Search(ctx, root, sq)
			fyne.Do(func() {
				if err != nil {
					l.Error("search failed", slog.Any("err", err))
					status.SetText("Search failed.")
					return
				}
				searchResults = res
				searchItems = searchItems[:0]
				for _, r := range res {
					at := "-"
					if r.Sec >= 0 {
						at = formatTick(r.Sec, 1)
					}
					sn := strings.TrimSpace(r.Snippet)
					if sn == "" {
						sn = r.Path
					}
					if len(sn) > 120 {
						sn = sn[:120] + "…"
					}
					searchItems = append(searchItems, fmt.Sprintf("%s — %s — %s", at, r.Type, sn))
				}
				searchList.Refresh()
				status.SetText(fmt.Sprintf("%d results", len(res)))
			})
		}(ph.Root, query)
	}
	omniBox.OnSubmitted = func(s string) { runSearch(s) }
	searchList.OnSelected = func(id widget.ListItemID) {
		if model == nil || id < 0 || int(id) >= len(searchResults) {
			return
		}
		r := searchResults[id]
		if r.Sec >= 0 {
			model.SetPlayhead(r.Sec)
			mapper.SetPanX(mapper.ViewportW/2 - r.Sec*mapper.Zoom)
		}
		if r.EntityID != "" {
			if ctrl := canvasWidget.Controller(); ctrl != nil {
				ctrl.SelectedID = r.EntityID
			}
		}
		canvasWidget.Refresh()
	}

	// Playback loop drives the playhead at frame rate; the loop region wraps.
	renderLoop := timeline.NewRenderLoop()
	var playBtn *widget.Button
	var lastTick time.Time
	stopPlayback := func() {
		renderLoop.Stop()
		playBtn.SetText("Play")
	}
	playBtn = widget.NewButton("Play", func() {
		if model == nil {
			return
		}
		if renderLoop.Running() {
			stopPlayback()
			return
		}
		lastTick = time.Now()
		renderLoop.Start(func(now time.Time) {
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			fyne.Do(func() {
				if model == nil {
					return
				}
				next := model.PlayheadSec + dt
				if model.LoopA != nil && model.LoopB != nil && next > *model.LoopB {
					next = *model.LoopA
				}
				if next > contentDuration(model) {
					next = 0
				}
				model.SetPlayhead(next)
				canvasWidget.Refresh()
			})
		})
		playBtn.SetText("Pause")
	})

	right := container.NewBorder(nil, nil, nil, nil, container.NewVBox(
		widget.NewLabel("Search Results"),
		container.NewGridWrap(fyne.NewSize(300, 220), searchList),
		widget.NewSeparator(),
		widget.NewLabel("Inspector"), inspectorLabel, widget.NewSeparator(),
		snapCheck, dragTimeCheck,
	))
	topBar := container.NewBorder(nil, nil, playBtn, nil, omniBox)

	// Entity editors (double-tap or Edit button)
	showEntityEditor = func(h timeline.Hit) {
		if model == nil {
			return
		}
		switch h.Kind {
		case timeline.HitScene:
			s := model.SceneByID(h.ID)
			if s == nil {
				return
			}
			headingEntry := widget.NewEntry()
			headingEntry.SetText(s.Heading)
			descEntry := widget.NewMultiLineEntry()
			descEntry.SetText(s.Description)
			numEntry := widget.NewEntry()
			numEntry.SetText(strconv.Itoa(s.OriginalSceneNumber))
			colorNames := make([]string, len(domain.ScenePalette))
			for i := range domain.ScenePalette {
				colorNames[i] = fmt.Sprintf("Palette %d", i+1)
			}
			colorSelect := widget.NewSelect(colorNames, nil)
			for i, pc := range domain.ScenePalette {
				if pc == s.Color {
					colorSelect.SetSelected(colorNames[i])
				}
			}
			form := dialog.NewForm("Scene", "Save", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Heading", headingEntry),
				widget.NewFormItem("Scene Number", numEntry),
				widget.NewFormItem("Description", descEntry),
				widget.NewFormItem("Color", colorSelect),
			}, func(ok bool) {
				if !ok {
					return
				}
				captureUndo()
				s.Heading = strings.TrimSpace(headingEntry.Text)
				s.Description = descEntry.Text
				if num, err := strconv.Atoi(strings.TrimSpace(numEntry.Text)); err == nil && num != s.OriginalSceneNumber {
					if serr := model.SetSceneNumber(s.ID, num); serr != nil {
						dialog.ShowError(serr, w)
					}
				}
				for i, name := range colorNames {
					if colorSelect.Selected == name {
						s.Color = domain.ScenePalette[i]
					}
				}
				refreshAll()
			}, w)
			form.Show()
		case timeline.HitNote:
			n := model.NoteByID(h.ID)
			if n == nil {
				return
			}
			textEntry := widget.NewMultiLineEntry()
			textEntry.SetText(n.Text)
			form := dialog.NewForm("Note", "Save", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Text", textEntry),
			}, func(ok bool) {
				if !ok {
					return
				}
				captureUndo()
				n.Text = textEntry.Text
				refreshAll()
			}, w)
			form.Show()
		case timeline.HitLyric:
			c := model.LyricByID(h.ID)
			if c == nil {
				return
			}
			textEntry := widget.NewMultiLineEntry()
			textEntry.SetText(c.Text)
			form := dialog.NewForm("Lyric", "Save", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Text", textEntry),
			}, func(ok bool) {
				if !ok {
					return
				}
				captureUndo()
				c.Text = textEntry.Text
				refreshAll()
			}, w)
			form.Show()
		case timeline.HitMarker:
			mk := model.MarkerByID(h.ID)
			if mk == nil {
				return
			}
			labelEntry := widget.NewEntry()
			labelEntry.SetText(mk.Label)
			form := dialog.NewForm("Marker", "Save", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Label", labelEntry),
			}, func(ok bool) {
				if !ok {
					return
				}
				captureUndo()
				mk.Label = strings.TrimSpace(labelEntry.Text)
				refreshAll()
			}, w)
			form.Show()
		}
	}

	// File menu
	var closeProjItem *fyne.MenuItem
	newItem := fyne.NewMenuItem("New…", func() {
		l.Info("menu: new project")
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				l.Error("new dialog error", slog.Any("err", err))
				return
			}
			if uri == nil {
				return
			}
			abs := uri.Path()
			nameEntry := widget.NewEntry()
			nameEntry.SetPlaceHolder("Project Name")
			kindSelect := widget.NewSelect([]string{"Film timeline", "Music waveform"}, nil)
			kindSelect.SetSelected("Film timeline")
			form := dialog.NewForm("New Project", "Create", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Name", nameEntry),
				widget.NewFormItem("Workspace", kindSelect),
			}, func(ok bool) {
				if !ok {
					return
				}
				name := strings.TrimSpace(nameEntry.Text)
				if name == "" {
					dialog.ShowInformation("New Project", "Please enter a project name.", w)
					return
				}
				kind := domain.KindFilm
				if kindSelect.Selected == "Music waveform" {
					kind = domain.KindMusic
				}
				proj := domain.Project{
					Version:     domain.SnapshotVersion,
					Kind:        kind,
					Name:        name,
					SnapEnabled: true,
					SnapStepSec: 1,
					Scenes:      []domain.Scene{},
					Notes:       []domain.Note{},
				}
				h, ierr := storage.InitProject(abs, proj)
				if ierr != nil {
					l.Error("init project failed", slog.Any("err", ierr))
					dialog.ShowError(ierr, w)
					return
				}
				ph = h
				applyProject()
				status.SetText(fmt.Sprintf("Created project: %s", abs))
				closeProjItem.Disabled = false
				addRecentProject(prefs, abs)
			}, w)
			form.Show()
		}, w)
		fd.Show()
	})
	openItem := fyne.NewMenuItem("Open…", func() {
		l.Info("menu: open project")
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				l.Error("open dialog error", slog.Any("err", err))
				return
			}
			if uri == nil {
				return
			}
			abs := uri.Path()
			if err := openProject(abs, &ph, w, l, status); err != nil {
				dialog.ShowError(err, w)
				return
			}
			applyProject()
			closeProjItem.Disabled = false
			addRecentProject(prefs, abs)
		}, w)
		fd.Show()
	})
	saveItem := fyne.NewMenuItem("Save", func() {
		l.Info("menu: save")
		if ph == nil {
			dialog.ShowInformation("Save", "No project open.", w)
			return
		}
		if err := saveProject(); err != nil {
			l.Error("save failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved project.")
	})
	saveAsItem := fyne.NewMenuItem("Save As…", func() {
		if ph == nil || model == nil {
			dialog.ShowInformation("Save As", "No project open.", w)
			return
		}
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uri == nil {
				return
			}
			ph.Project = model.MakeSnapshot(mapper)
			if err := storage.SaveAs(ph, uri.Path()); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Saved copy to " + ph.Root)
			addRecentProject(prefs, ph.Root)
		}, w)
		fd.Show()
	})
	closeProjItem = fyne.NewMenuItem("Close Project", func() {
		if ph == nil {
			return
		}
		stopPlayback()
		ph = nil
		model = nil
		mapper = nil
		selectedHit = nil
		canvasWidget.SetWorkspace(nil, nil)
		w.SetTitle("Directors Timeline")
		status.SetText("Project closed.")
		refreshScenes()
		refreshInspector()
		closeProjItem.Disabled = true
	})
	closeProjItem.Disabled = true
	rebuildIndexItem := fyne.NewMenuItem("Rebuild Index", func() {
		if ph == nil || model == nil {
			dialog.ShowInformation("Rebuild Index", "No project open.", w)
			return
		}
		p := model.MakeSnapshot(mapper)
		go func(root string) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := storage.RebuildIndex(ctx, root, p)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Search index rebuilt.")
			})
		}(ph.Root)
	})
	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	closeProjItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}

	recentSub := fyne.NewMenuItem("Open Recent", nil)
	rebuildRecentMenu := func() {
		recent := loadRecentProjects(prefs)
		items := make([]*fyne.MenuItem, 0, len(recent))
		for _, path := range recent {
			p := path
			items = append(items, fyne.NewMenuItem(p, func() {
				if err := openProject(p, &ph, w, l, status); err != nil {
					dialog.ShowError(err, w)
					return
				}
				applyProject()
				closeProjItem.Disabled = false
				addRecentProject(prefs, p)
			}))
		}
		if len(items) == 0 {
			none := fyne.NewMenuItem("(empty)", nil)
			none.Disabled = true
			items = append(items, none)
		}
		recentSub.ChildMenu = fyne.NewMenu("Open Recent", items...)
	}
	rebuildRecentMenu()

	remoteItem := fyne.NewMenuItem("Remote Projects…", func() {
		base := strings.TrimSpace(cfg.Backend.BaseURL)
		if base == "" {
			dialog.ShowInformation("Remote Projects", "No backend configured. Set backend.base_url in the config file.", w)
			return
		}
		cl := backend.NewClient(base, backendToken)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			list, err := cl.ListProjects(ctx)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				items := make([]string, 0, len(list))
				for _, p := range list {
					items = append(items, fmt.Sprintf("%s (%s)  v%d  %s", p.Name, p.Kind, p.Version, p.UpdatedAt.Format("2006-01-02 15:04")))
				}
				lw := widget.NewList(
					func() int { return len(items) },
					func() fyne.CanvasObject { return widget.NewLabel("") },
					func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(items[i]) },
				)
				d := dialog.NewCustom("Remote Projects", "Close", container.NewMax(lw), w)
				d.Resize(fyne.NewSize(480, 360))
				d.Show()
			})
		}()
	})

	fileMenu := fyne.NewMenu("File",
		newItem, openItem, recentSub, fyne.NewMenuItemSeparator(),
		saveItem, saveAsItem, fyne.NewMenuItemSeparator(),
		rebuildIndexItem, remoteItem, fyne.NewMenuItemSeparator(), closeProjItem)

	// Edit menu
	undoItem := fyne.NewMenuItem("Undo", func() {
		if model == nil {
			return
		}
		s, ok := undoMgr.Undo(model.Kind)
		if !ok {
			status.SetText("Nothing to undo.")
			return
		}
		var p domain.Project
		if err := json.Unmarshal(s.Blob, &p); err != nil {
			l.Error("undo decode", slog.Any("err", err))
			return
		}
		model.Apply(p, mapper)
		refreshAll()
		status.SetText("Undid last change.")
	})
	redoItem := fyne.NewMenuItem("Redo", func() {
		if model == nil {
			return
		}
		s, ok := undoMgr.Redo(model.Kind)
		if !ok {
			status.SetText("Nothing to redo.")
			return
		}
		var p domain.Project
		if err := json.Unmarshal(s.Blob, &p); err != nil {
			l.Error("redo decode", slog.Any("err", err))
			return
		}
		model.Apply(p, mapper)
		refreshAll()
		status.SetText("Redid change.")
	})
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}

	addSceneItem := fyne.NewMenuItem("Add Scene", func() {
		if model == nil {
			return
		}
		captureUndo()
		next := 1
		for _, s := range model.Scenes {
			if s.OriginalSceneNumber >= next {
				next = s.OriginalSceneNumber + 1
			}
		}
		s := domain.Scene{
			ID:                  timeline.NewID(),
			OriginalSceneNumber: next,
			Heading:             fmt.Sprintf("SCENE %d", next),
			LengthSec:           10,
			PositionSec:         mapper.ScreenToWorldTime(mapper.ViewportW / 2),
			Color:               domain.ScenePalette[(next-1)%len(domain.ScenePalette)],
		}
		if err := model.AddScene(s); err != nil {
			dialog.ShowError(err, w)
			return
		}
		model.AutoPlaceScene(s.ID)
		refreshAll()
	})
	addNoteItem := fyne.NewMenuItem("Add Note at Playhead", func() {
		if model == nil {
			return
		}
		captureUndo()
		n := domain.Note{ID: timeline.NewID(), TimestampSec: model.PlayheadSec, Text: "New note"}
		if err := model.AddNote(n); err != nil {
			dialog.ShowError(err, w)
			return
		}
		refreshAll()
	})
	addLyricItem := fyne.NewMenuItem("Add Lyric at Playhead", func() {
		if model == nil || model.Kind != domain.KindMusic {
			dialog.ShowInformation("Add Lyric", "Lyrics live in the music workspace.", w)
			return
		}
		captureUndo()
		model.AddLyric(domain.LyricsClip{ID: timeline.NewID(), TimestampSec: model.PlayheadSec, Text: "la la la"})
		refreshAll()
	})
	addMarkerItem := fyne.NewMenuItem("Add Marker at Playhead", func() {
		if model == nil {
			return
		}
		captureUndo()
		model.AddMarker(domain.Marker{ID: timeline.NewID(), Sec: model.PlayheadSec, Label: "Marker"})
		refreshAll()
	})
	deleteSelectedItem := fyne.NewMenuItem("Delete Selected", func() {
		if model == nil || selectedHit == nil {
			return
		}
		captureUndo()
		switch selectedHit.Kind {
		case timeline.HitScene:
			model.DeleteScene(selectedHit.ID)
		case timeline.HitNote:
			model.DeleteNote(selectedHit.ID)
		case timeline.HitLyric:
			model.DeleteLyric(selectedHit.ID)
		case timeline.HitMarker:
			model.DeleteMarker(selectedHit.ID)
		}
		if ctrl := canvasWidget.Controller(); ctrl != nil && ctrl.SelectedID == selectedHit.ID {
			ctrl.SelectedID = ""
		}
		selectedHit = nil
		refreshAll()
	})
	editSelectedItem := fyne.NewMenuItem("Edit Selected…", func() {
		if selectedHit != nil {
			showEntityEditor(*selectedHit)
		}
	})
	clearLoopItem := fyne.NewMenuItem("Clear Loop", func() {
		if model == nil {
			return
		}
		captureUndo()
		model.ClearLoop()
		refreshAll()
	})
	editMenu := fyne.NewMenu("Edit",
		undoItem, redoItem, fyne.NewMenuItemSeparator(),
		addSceneItem, addNoteItem, addLyricItem, addMarkerItem, fyne.NewMenuItemSeparator(),
		editSelectedItem, deleteSelectedItem, clearLoopItem)

	// View menu
	zoomInItem := fyne.NewMenuItem("Zoom In", func() {
		if mapper == nil {
			return
		}
		mapper.ZoomAbout(mapper.ViewportW/2, mapper.Zoom*1.25)
		canvasWidget.Refresh()
	})
	zoomOutItem := fyne.NewMenuItem("Zoom Out", func() {
		if mapper == nil {
			return
		}
		mapper.ZoomAbout(mapper.ViewportW/2, mapper.Zoom/1.25)
		canvasWidget.Refresh()
	})
	fitItem := fyne.NewMenuItem("Fit Timeline", func() {
		if model == nil || mapper == nil {
			return
		}
		dur := contentDuration(model)
		if dur > 0 && mapper.ViewportW > 0 {
			mapper.Zoom = mapper.ClampZoom(mapper.ViewportW / dur)
			mapper.SetPanX(0)
		}
		canvasWidget.Refresh()
	})
	viewMenu := fyne.NewMenu("View", zoomInItem, zoomOutItem, fitItem)

	// Import menu
	importScriptItem := fyne.NewMenuItem("Screenplay…", func() {
		if ph == nil || model == nil {
			dialog.ShowInformation("Import Screenplay", "No project open.", w)
			return
		}
		if model.Kind != domain.KindFilm {
			dialog.ShowInformation("Import Screenplay", "Screenplay import targets the film workspace.", w)
			return
		}
		open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				dialog.ShowError(rerr, w)
				return
			}
			text := string(data)
			captureUndo()
			ph.Project = model.MakeSnapshot(mapper)
			if werr := storage.WriteScript(ph, text); werr != nil {
				l.Error("write script", slog.Any("err", werr))
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				if serr := storage.SaveScriptSnapshot(ctx, ph, text, time.Now()); serr != nil {
					l.Error("save script snapshot", slog.Any("err", serr))
					return
				}
				if _, perr := storage.PruneOldScriptSnapshots(ctx, ph, scriptHistoryKeep); perr != nil {
					l.Error("prune script snapshots", slog.Any("err", perr))
				}
			}()
			sc, parseErrs := script.Parse(text)
			scenes := script.ToTimelineScenes(sc)
			timeline.SequenceScenes(scenes)
			added, merr := storage.MergeImportedScenes(ph, scenes)
			if merr != nil {
				dialog.ShowError(merr, w)
				return
			}
			model.Apply(ph.Project, mapper)
			refreshAll()
			msg := fmt.Sprintf("Imported %d scenes.", added)
			if len(parseErrs) > 0 {
				msg += fmt.Sprintf(" %d parse issues (first at line %d).", len(parseErrs), parseErrs[0].Line)
			}
			status.SetText(msg)
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".txt", ".fountain"}))
		open.Show()
	})
	importAudioItem := fyne.NewMenuItem("Audio (WAV)…", func() {
		if ph == nil || model == nil {
			dialog.ShowInformation("Import Audio", "No project open.", w)
			return
		}
		open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			status.SetText("Scanning waveform…")
			root := ph.Root
			go func() {
				ps, lerr := audio.LoadWavPeaks(path)
				if lerr != nil {
					fyne.Do(func() { dialog.ShowError(lerr, w) })
					return
				}
				blob, eerr := ps.Encode()
				if eerr == nil {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					if perr := storage.PutPreview(ctx, root, audioPeaksEntityID, storage.PreviewKindPeaks, audio.BucketsPerSec, 1, blob); perr != nil {
						l.Error("cache peaks", slog.Any("err", perr))
					}
				}
				fyne.Do(func() {
					if model == nil {
						return
					}
					if ps.DurationSec > model.DurationSec {
						model.DurationSec = ps.DurationSec
					}
					canvasWidget.SetPeaks(ps)
					status.SetText(fmt.Sprintf("Loaded waveform: %s (%.1fs)", filepath.Base(path), ps.DurationSec))
				})
			}()
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".wav"}))
		open.Show()
	})
	importAssetsItem := fyne.NewMenuItem("Asset Pack…", func() {
		if ph == nil {
			dialog.ShowInformation("Import Assets", "No project open.", w)
			return
		}
		open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			n, ierr := assetpack.ImportAssetPack(ph.Root, path)
			if ierr != nil {
				dialog.ShowError(ierr, w)
				return
			}
			status.SetText(fmt.Sprintf("Imported %d asset files.", n))
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		open.Show()
	})
	importMenu := fyne.NewMenu("Import", importScriptItem, importAudioItem, importAssetsItem)

	// Export menu; every exporter reads the current snapshot.
	syncSnapshot := func() bool {
		if ph == nil || model == nil {
			dialog.ShowInformation("Export", "No project open.", w)
			return false
		}
		ph.Project = model.MakeSnapshot(mapper)
		return true
	}
	exportPDFItem := fyne.NewMenuItem("Scene Breakdown PDF…", func() {
		if !syncSnapshot() {
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportBreakdownPDF(ph, outPath, export.PDFOptions{IncludeScript: true, IncludeNotes: true}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PDF", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("breakdown.pdf")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
		save.Show()
	})
	exportPNGItem := fyne.NewMenuItem("Timeline Strip PNG…", func() {
		if !syncSnapshot() {
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportTimelineStripPNG(ph, outPath, export.StripOptions{ShowPlayhead: true}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PNG", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("strip.png")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png"}))
		save.Show()
	})
	exportSVGItem := fyne.NewMenuItem("Timeline SVG…", func() {
		if !syncSnapshot() {
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportTimelineSVG(ph, outPath, export.SVGOptions{IncludeNotes: true}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export SVG", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("timeline.svg")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".svg"}))
		save.Show()
	})
	exportEPUBItem := fyne.NewMenuItem("Screenplay EPUB…", func() {
		if !syncSnapshot() {
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportScreenplayEPUB(ph, outPath, export.EPUBOptions{Title: ph.Project.Name}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export EPUB", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("screenplay.epub")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".epub"}))
		save.Show()
	})
	exportBundleItem := fyne.NewMenuItem("Review Bundle (ZIP)…", func() {
		if !syncSnapshot() {
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportReviewBundle(ph, outPath, export.BundleOptions{}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export Bundle", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("review.zip")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		save.Show()
	})
	batchItem := func(label string, preset export.PresetName) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() {
			if !syncSnapshot() {
				return
			}
			go func() {
				err := export.BatchExport(ph, export.BatchOptions{Preset: preset})
				fyne.Do(func() {
					if err != nil {
						dialog.ShowError(err, w)
						return
					}
					status.SetText("Batch export finished under exports/" + preset + "/")
				})
			}()
		})
	}
	batchSub := fyne.NewMenuItem("Batch Presets", nil)
	batchSub.ChildMenu = fyne.NewMenu("Batch Presets",
		batchItem("Review (PNG, SVG, bundle)", export.PresetReview),
		batchItem("Print (PDF, EPUB)", export.PresetPrint))
	exportAssetsItem := fyne.NewMenuItem("Asset Pack (ZIP)…", func() {
		if ph == nil {
			dialog.ShowInformation("Export Assets", "No project open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := assetpack.ExportProjectAssets(ph.Root, outPath); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export Assets", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("assets.zip")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		save.Show()
	})
	exportMenu := fyne.NewMenu("Export",
		exportPDFItem, exportPNGItem, exportSVGItem, exportEPUBItem, exportBundleItem, exportAssetsItem,
		fyne.NewMenuItemSeparator(), batchSub)

	aboutItem := fyne.NewMenuItem("About Directors Timeline", func() {
		dialog.ShowInformation("About", "Directors Timeline\nVersion "+version.String(), w)
	})
	helpMenu := fyne.NewMenu("Help", aboutItem)

	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, importMenu, exportMenu, helpMenu))

	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyK, Modifier: fyne.KeyModifierControl}, func(sc fyne.Shortcut) {
		w.Canvas().Focus(omniBox)
	})

	content := container.NewBorder(
		container.NewVBox(topBar, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), status),
		left, right,
		container.NewMax(canvasWidget),
	)
	w.SetContent(content)

	w.SetOnClosed(func() {
		stopPlayback()
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if err := config.Save(cfg, ""); err != nil {
			l.Warn("config save failed", slog.Any("err", err))
		}
	})

	if strings.TrimSpace(projectDir) != "" {
		if err := openProject(projectDir, &ph, w, l, status); err != nil {
			l.Error("open project from CLI failed", slog.Any("err", err))
			status.SetText("Open failed: " + err.Error())
		} else {
			applyProject()
			closeProjItem.Disabled = false
			addRecentProject(prefs, projectDir)
			rebuildRecentMenu()
		}
	}

	w.ShowAndRun()
	return nil
}

func mapperZoom(mp *timeline.Mapper) float64 {
	if mp == nil {
		return 0
	}
	return mp.Zoom
}

func openProject(dir string, ph **storage.ProjectHandle, w fyne.Window, l *slog.Logger, status *widget.Label) error {
	abs, _ := filepath.Abs(dir)
	l.Info("open project", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	*ph = h
	w.SetTitle(fmt.Sprintf("Directors Timeline — %s", h.Project.Name))
	status.SetText(fmt.Sprintf("Opened project: %s", abs))
	return nil
}

// parseSearchQuery splits an omnibox query into the structured filters the
// index understands. Unprefixed words form the full-text term; recognized
// prefixes are char:, tag:, type:, entity:, from: and to: (seconds).
func parseSearchQuery(q string) storage.SearchQuery {
	var sq storage.SearchQuery
	var words []string
	for _, tok := range strings.Fields(q) {
		lower := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(lower, "char:"):
			sq.Character = tok[len("char:"):]
		case strings.HasPrefix(lower, "tag:"):
			sq.Tags = append(sq.Tags, tok[len("tag:"):])
		case strings.HasPrefix(lower, "type:"):
			sq.Types = append(sq.Types, tok[len("type:"):])
		case strings.HasPrefix(lower, "entity:"):
			sq.Entity = tok[len("entity:"):]
		case strings.HasPrefix(lower, "from:"):
			if v, err := strconv.ParseFloat(tok[len("from:"):], 64); err == nil {
				sq.SecFrom = &v
			}
		case strings.HasPrefix(lower, "to:"):
			if v, err := strconv.ParseFloat(tok[len("to:"):], 64); err == nil {
				sq.SecTo = &v
			}
		default:
			words = append(words, tok)
		}
	}
	sq.Text = strings.Join(words, " ")
	return sq
}

// Recent project persistence helpers
const recentPrefsKey = "recent.projects"
const recentMax = 10

func loadRecentProjects(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	if items == nil {
		items = []string{}
	}
	// drop paths that no longer exist
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentProjects(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentProject(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentProjects(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentProjects(p, out)
}
