/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package typeset

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestWordWrap_BreaksLongHeadings(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box, err := l.Layout([]Span{{Text: "EXT ROOFTOP CHASE NIGHT", Font: FontSpec{}}}, 60)
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if len(box.Lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(box.Lines))
	}
	if box.Width <= 0 || box.Height <= 0 {
		t.Fatalf("expected positive box size: %+v", box)
	}
}

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, []Span{{Text: "ABC"}})
	w2, h2 := Measure(BasicProvider{}, []Span{{Text: "A"}, {Text: "BC"}})
	if w1 != w2 || h1 != h2 {
		t.Fatalf("expected same measure, got w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize(BasicProvider{}, "short", 1000, FontSpec{}); got != "short" {
		t.Errorf("text inside the limit should pass through, got %q", got)
	}
	long := "INT WAREHOUSE CONTINUOUS"
	got := Ellipsize(BasicProvider{}, long, 70, FontSpec{})
	if got == long {
		t.Fatalf("expected truncation at 70px")
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated text should end with ellipsis, got %q", got)
	}
	w, _ := Measure(BasicProvider{}, []Span{{Text: got}})
	if w > 70 {
		t.Errorf("ellipsized width %v exceeds limit", w)
	}
	if got := Ellipsize(BasicProvider{}, long, 3, FontSpec{}); got != "…" {
		t.Errorf("tiny limit should leave just the ellipsis, got %q", got)
	}
}

func TestDrawLabelWritesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 20))
	DrawLabel(img, 2, 14, "42.", color.RGBA{0, 0, 0, 255}, BasicProvider{}, FontSpec{})
	var dark int
	for y := 0; y < 20; y++ {
		for x := 0; x < 80; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a > 0 && r == 0 && g == 0 && b == 0 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("expected label to ink pixels")
	}
}

func TestOTProviderFallsBack(t *testing.T) {
	p := OTProvider{Lib: NewFontLibrary()}
	face, m := p.Resolve(FontSpec{Family: "NotLoaded", SizePt: 12})
	if face == nil {
		t.Fatal("fallback face should not be nil")
	}
	if m.Ascent <= 0 {
		t.Errorf("fallback metrics should be positive, got %+v", m)
	}
}

func TestFontLibraryLoadTTFMissingFile(t *testing.T) {
	fl := NewFontLibrary()
	if err := fl.LoadTTF("Ghost", 400, false, "/nonexistent/ghost.ttf"); err == nil {
		t.Fatal("loading a missing font file should fail")
	}
}
