/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package align

// Alignment guides for dragged timeline entities (scene blocks, note cards,
// image cards). The solver is UI-agnostic and deterministic so it can be unit
// tested and shared by both editor canvases.

import "math"

// Pt is a 2D point in screen pixels.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

// R is shorthand for constructing a Rect.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Options controls which guide candidates are considered and the threshold.
type Options struct {
	// Threshold is the maximum pixel distance at which a guide appears.
	// Typical UI values are 6-8 pixels.
	Threshold float64
	// Edges enables left/right/top/bottom candidates, including abutment
	// (dragged left edge against an anchor's right edge and vice versa).
	Edges bool
	// Centers enables center-to-center candidates.
	Centers bool
}

// Anchor is a static reference rect, such as another scene block's bounds or
// a marker line. Weight biases selection when distances tie (higher wins);
// when uncertain, set Weight to 1.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// Guide describes one visual guide line produced during a drag.
// Orientation is "vertical" or "horizontal"; Kind is "edge" or "center".
// From and To are the extents to render. Position is the x (vertical) or
// y (horizontal) coordinate, rounded to 3 decimals for determinism.
type Guide struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// Guides computes the alignment guides for a moving rectangle against a set
// of anchors, plus the snapped rectangle a caller may apply. X and Y axes
// resolve independently; at most one guide per axis is returned.
func Guides(moving Rect, anchors []Anchor, opts Options) (Rect, []Guide) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var out []Guide

	bestDX, bestDXScore, bestDXGuide := 0.0, math.MaxFloat64, Guide{}
	bestDY, bestDYScore, bestDYGuide := 0.0, math.MaxFloat64, Guide{}

	mL, mR := moving.X, moving.X+moving.W
	mT, mB := moving.Y, moving.Y+moving.H
	mCX, mCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		aL, aR := a.Rect.X, a.Rect.X+a.Rect.W
		aT, aB := a.Rect.Y, a.Rect.Y+a.Rect.H
		aCX, aCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.Edges {
			consider(&bestDX, &bestDXScore, &bestDXGuide, mL-aL, opts.Threshold, a.Weight, vGuide(aL, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXScore, &bestDXGuide, mR-aR, opts.Threshold, a.Weight, vGuide(aR, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXScore, &bestDXGuide, mL-aR, opts.Threshold, a.Weight, vGuide(aR, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXScore, &bestDXGuide, mR-aL, opts.Threshold, a.Weight, vGuide(aL, moving, a.Rect, "edge"))

			consider(&bestDY, &bestDYScore, &bestDYGuide, mT-aT, opts.Threshold, a.Weight, hGuide(aT, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYScore, &bestDYGuide, mB-aB, opts.Threshold, a.Weight, hGuide(aB, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYScore, &bestDYGuide, mT-aB, opts.Threshold, a.Weight, hGuide(aB, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYScore, &bestDYGuide, mB-aT, opts.Threshold, a.Weight, hGuide(aT, moving, a.Rect, "edge"))
		}
		if opts.Centers {
			consider(&bestDX, &bestDXScore, &bestDXGuide, mCX-aCX, opts.Threshold, a.Weight, vGuide(aCX, moving, a.Rect, "center"))
			consider(&bestDY, &bestDYScore, &bestDYGuide, mCY-aCY, opts.Threshold, a.Weight, hGuide(aCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	if bestDXScore <= opts.Threshold {
		snapped.X = round3(moving.X - bestDX)
		out = append(out, bestDXGuide)
	}
	if bestDYScore <= opts.Threshold {
		snapped.Y = round3(moving.Y - bestDY)
		out = append(out, bestDYGuide)
	}
	return snapped, out
}

func consider(best *float64, bestScore *float64, bestG *Guide, delta, threshold, weight float64, g Guide) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	// heavier anchors win over nearer light ones
	score := dist / math.Max(1, weight)
	if score < *bestScore {
		*bestScore = score
		*best = delta
		*bestG = g
	}
}

func vGuide(x float64, a, b Rect, kind string) Guide {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	x = round3(x)
	return Guide{Orientation: "vertical", Kind: kind, Position: x, From: Pt{x, minY}, To: Pt{x, maxY}}
}

func hGuide(y float64, a, b Rect, kind string) Guide {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	y = round3(y)
	return Guide{Orientation: "horizontal", Kind: kind, Position: y, From: Pt{minX, y}, To: Pt{maxX, y}}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
