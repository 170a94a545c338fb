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
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawLabel renders a single line of text onto dst with the baseline at
// (x, y). The caller clips by choosing coordinates; no wrapping happens
// here.
func DrawLabel(dst draw.Image, x, y int, text string, col color.Color, provider Provider, spec FontSpec) {
	if text == "" {
		return
	}
	if provider == nil {
		provider = BasicProvider{}
	}
	face, _ := provider.Resolve(spec)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawLabelFit ellipsizes text to maxWidth pixels before drawing it.
func DrawLabelFit(dst draw.Image, x, y int, text string, maxWidth float32, col color.Color, provider Provider, spec FontSpec) {
	DrawLabel(dst, x, y, Ellipsize(provider, text, maxWidth, spec), col, provider, spec)
}
