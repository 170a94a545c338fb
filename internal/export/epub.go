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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"directorstimeline/internal/storage"
)

// EPUBOptions controls the screenplay EPUB export.
//
//nolint:revive // clarity
type EPUBOptions struct {
	Title       string
	Author      string
	Language    string // e.g., "en"
	Publisher   string
	Description string
}

// ExportScreenplayEPUB exports the project's scenes as a reflowable EPUB 3
// read-through: one chapter per scene in timeline order, with the imported
// script lines typeset for reading on e-ink devices.
func ExportScreenplayEPUB(ph *storage.ProjectHandle, outPath string, opt EPUBOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	proj := ph.Project
	scenes := orderedScenes(proj)
	if len(scenes) == 0 {
		return fmt.Errorf("no scenes to export")
	}

	// Defaults
	if opt.Language == "" {
		opt.Language = "en"
	}
	if opt.Title == "" {
		if proj.Name != "" {
			opt.Title = proj.Name
		} else {
			opt.Title = "Untitled"
		}
	}

	// Resolve output path
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".epub") {
		outPath += ".epub"
	}

	// Prepare ZIP writer
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create epub: %w", err)
	}
	defer func() { _ = f.Close() }()
	zw := zip.NewWriter(f)

	// 1) Write mimetype first, uncompressed
	if err := addStoredZipFile(zw, "mimetype", []byte("application/epub+zip")); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write mimetype: %w", err)
	}

	// 2) META-INF/container.xml
	containerXML := "" +
		"<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<container version=\"1.0\" xmlns=\"urn:oasis:names:tc:opendocument:xmlns:container\">\n" +
		"  <rootfiles>\n" +
		"    <rootfile full-path=\"OEBPS/content.opf\" media-type=\"application/oebps-package+xml\"/>\n" +
		"  </rootfiles>\n" +
		"</container>\n"
	if err := addZipFile(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write container.xml: %w", err)
	}

	// 3) Styles for screenplay typesetting
	css := "body { font-family: serif; margin: 1em; }\n" +
		"h2 { font-size: 1.1em; text-transform: uppercase; }\n" +
		".timecode { color: #555; font-size: 0.8em; }\n" +
		".character { text-align: center; font-weight: bold; margin-bottom: 0; }\n" +
		".dialogue { margin: 0 15%; margin-top: 0; }\n" +
		".transition { text-align: right; text-transform: uppercase; }\n" +
		".scenenote { font-style: italic; color: #555; }\n"
	if err := addZipFile(zw, "OEBPS/styles/epub.css", []byte(css)); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write css: %w", err)
	}

	pad := 1
	if n := len(scenes); n >= 1000 {
		pad = 4
	} else if n >= 100 {
		pad = 3
	} else if n >= 10 {
		pad = 2
	}

	sceneIDs := make([]string, 0, len(scenes))
	navBuf := &bytes.Buffer{}
	navBuf.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	navBuf.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\">\n<head><title>Table of Contents</title></head>\n<body>\n")
	navBuf.WriteString("<nav epub:type=\"toc\" id=\"toc\"><ol>\n")

	for i, sc := range scenes {
		head := sc.Heading
		if head == "" {
			head = "Untitled"
		}
		body := &bytes.Buffer{}
		fmt.Fprintf(body, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
		fmt.Fprintf(body, "<html xmlns=\"http://www.w3.org/1999/xhtml\">\n<head>\n<meta charset=\"utf-8\"/>\n")
		fmt.Fprintf(body, "<title>%s</title>\n", xmlEsc(head))
		fmt.Fprintf(body, "<link rel=\"stylesheet\" type=\"text/css\" href=\"styles/epub.css\"/>\n")
		fmt.Fprintf(body, "</head>\n<body>\n")
		fmt.Fprintf(body, "<h2>%d. %s</h2>\n", i+1, xmlEsc(head))
		fmt.Fprintf(body, "<p class=\"timecode\">%s - %s</p>\n", formatTimecode(sc.PositionSec), formatTimecode(sc.PositionSec+sc.LengthSec))
		if strings.TrimSpace(sc.Description) != "" && len(sc.ScriptLines) == 0 {
			fmt.Fprintf(body, "<p>%s</p>\n", xmlEsc(sc.Description))
		}
		for _, ln := range sc.ScriptLines {
			switch ln.Kind {
			case "dialogue":
				fmt.Fprintf(body, "<p class=\"character\">%s</p>\n", xmlEsc(ln.Character))
				fmt.Fprintf(body, "<p class=\"dialogue\">%s</p>\n", xmlEsc(ln.Text))
			case "transition":
				fmt.Fprintf(body, "<p class=\"transition\">%s</p>\n", xmlEsc(ln.Text))
			case "note":
				fmt.Fprintf(body, "<p class=\"scenenote\">%s</p>\n", xmlEsc(ln.Text))
			default:
				fmt.Fprintf(body, "<p>%s</p>\n", xmlEsc(ln.Text))
			}
		}
		fmt.Fprintf(body, "</body>\n</html>\n")

		name := fmt.Sprintf("OEBPS/scene-%0*d.xhtml", pad, i+1)
		if err := addZipFile(zw, name, body.Bytes()); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write scene xhtml: %w", err)
		}
		sceneIDs = append(sceneIDs, fmt.Sprintf("scene-%0*d", pad, i+1))
		navBuf.WriteString(fmt.Sprintf("<li><a href=\"scene-%0*d.xhtml\">%d. %s</a></li>\n", pad, i+1, i+1, xmlEsc(head)))
	}
	navBuf.WriteString("</ol></nav>\n</body>\n</html>\n")
	if err := addZipFile(zw, "OEBPS/nav.xhtml", navBuf.Bytes()); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write nav.xhtml: %w", err)
	}

	// 4) content.opf
	mod := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	uid := fmt.Sprintf("urn:uuid:%d", time.Now().UnixNano())

	manifest := &bytes.Buffer{}
	manifest.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	manifest.WriteString("<package version=\"3.0\" unique-identifier=\"pub-id\" xmlns=\"http://www.idpf.org/2007/opf\">\n")
	manifest.WriteString("  <metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\" xmlns:opf=\"http://www.idpf.org/2007/opf\">\n")
	manifest.WriteString(fmt.Sprintf("    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", uid))
	manifest.WriteString(fmt.Sprintf("    <dc:title>%s</dc:title>\n", xmlEsc(opt.Title)))
	manifest.WriteString(fmt.Sprintf("    <dc:language>%s</dc:language>\n", xmlEsc(opt.Language)))
	if strings.TrimSpace(opt.Author) != "" {
		manifest.WriteString(fmt.Sprintf("    <dc:creator>%s</dc:creator>\n", xmlEsc(opt.Author)))
	}
	if strings.TrimSpace(opt.Publisher) != "" {
		manifest.WriteString(fmt.Sprintf("    <dc:publisher>%s</dc:publisher>\n", xmlEsc(opt.Publisher)))
	}
	if strings.TrimSpace(opt.Description) != "" {
		manifest.WriteString(fmt.Sprintf("    <dc:description>%s</dc:description>\n", xmlEsc(opt.Description)))
	}
	manifest.WriteString(fmt.Sprintf("    <meta property=\"dcterms:modified\">%s</meta>\n", mod))
	manifest.WriteString("  </metadata>\n")
	manifest.WriteString("  <manifest>\n")
	manifest.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	manifest.WriteString("    <item id=\"css\" href=\"styles/epub.css\" media-type=\"text/css\"/>\n")
	for i, id := range sceneIDs {
		manifest.WriteString(fmt.Sprintf("    <item id=\"%s\" href=\"scene-%0*d.xhtml\" media-type=\"application/xhtml+xml\"/>\n", id, pad, i+1))
	}
	manifest.WriteString("  </manifest>\n")
	manifest.WriteString("  <spine>\n")
	for _, id := range sceneIDs {
		manifest.WriteString(fmt.Sprintf("    <itemref idref=\"%s\"/>\n", id))
	}
	manifest.WriteString("  </spine>\n")
	manifest.WriteString("</package>\n")
	if err := addZipFile(zw, "OEBPS/content.opf", manifest.Bytes()); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write content.opf: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// addStoredZipFile writes an entry with STORE method (no compression), required for EPUB mimetype.
func addStoredZipFile(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Store}
	hdr.Modified = time.Now()
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
