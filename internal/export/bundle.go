/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"directorstimeline/internal/storage"
)

// BundleOptions controls the review bundle export.
// The bundle is a plain ZIP holding the rendered strip, the SVG timeline,
// a copy of the manifest, and an Info.xml for tools that index archives.
//
//nolint:revive // clarity
type BundleOptions struct {
	Strip StripOptions
	SVG   SVGOptions
}

// ExportReviewBundle packages the project for handoff: strip.png,
// timeline.svg, timeline.json, and Info.xml inside one .zip archive.
func ExportReviewBundle(ph *storage.ProjectHandle, outPath string, opt BundleOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	proj := ph.Project

	// Ensure output path is under project exports folder if relative
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath = outPath + ".zip"
	}

	zw, f, err := createZip(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	// Rendered strip
	img := RenderTimelineStrip(proj, opt.Strip)
	imgBuf := &bytes.Buffer{}
	if err := png.Encode(imgBuf, img); err != nil {
		return fmt.Errorf("encode strip: %w", err)
	}
	if err := addZipFile(zw, "strip.png", imgBuf.Bytes()); err != nil {
		return fmt.Errorf("zip add strip: %w", err)
	}

	// SVG timeline
	svgData, err := buildTimelineSVG(proj, opt.SVG)
	if err != nil {
		return err
	}
	if err := addZipFile(zw, "timeline.svg", svgData); err != nil {
		return fmt.Errorf("zip add svg: %w", err)
	}

	// Manifest copy
	manifest, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := addZipFile(zw, storage.ManifestFileName, manifest); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}

	// Info.xml metadata
	info := buildBundleInfoXML(ph)
	if err := addZipFile(zw, "Info.xml", []byte(info)); err != nil {
		return fmt.Errorf("zip add info: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	// Ensure directory exists
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func buildBundleInfoXML(ph *storage.ProjectHandle) string {
	proj := ph.Project
	name := proj.Name
	if name == "" {
		name = "Untitled"
	}
	dur := proj.DurationSec
	for _, sc := range proj.Scenes {
		if end := sc.PositionSec + sc.LengthSec; end > dur {
			dur = end
		}
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(buf, "<TimelineInfo>\n")
	fmt.Fprintf(buf, "  <Project>%s</Project>\n", xmlEsc(name))
	fmt.Fprintf(buf, "  <Workspace>%s</Workspace>\n", xmlEsc(proj.Kind))
	fmt.Fprintf(buf, "  <SceneCount>%d</SceneCount>\n", len(proj.Scenes))
	fmt.Fprintf(buf, "  <NoteCount>%d</NoteCount>\n", len(proj.Notes))
	fmt.Fprintf(buf, "  <Duration>%s</Duration>\n", formatTimecode(dur))
	fmt.Fprintf(buf, "</TimelineInfo>\n")
	return buf.String()
}

func xmlEsc(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\'':
			out = append(out, '&', 'a', 'p', 'o', 's', ';')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
