// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package render

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Overlay styling.
const (
	traceAlpha = 0.6
	traceScale = 170.0

	waypointRadius      = 5.0
	waypointStrokeWidth = 5.0
	waypointFontSize    = 26.0
	waypointLabelDX     = 10.0
	waypointLabelDY     = 5.0

	photoRadius = 7.0

	legendHeight   = 18
	legendFontSize = 12.0
)

var (
	waypointStroke = color.NRGBA{R: 0, G: 255, B: 0, A: alpha(0.6)}
	waypointFill   = color.NRGBA{R: 200, G: 0, B: 0, A: alpha(0.6)}
	waypointText   = color.NRGBA{R: 15, G: 10, B: 15, A: alpha(0.6)}

	photoStroke = color.NRGBA{R: 255, G: 255, B: 255, A: alpha(0.8)}
	photoFill   = color.NRGBA{R: 0, G: 90, B: 255, A: alpha(0.7)}

	legendText = color.NRGBA{A: 255}
)

func alpha(f float64) uint8 {
	return uint8(math.Round(f * 255))
}

// TraceColor returns the colour of trace i of n: hue i/n at full saturation
// and value, scaled to 170/255, alpha 0.6.
func TraceColor(i, n int) color.NRGBA {
	if n < 1 {
		n = 1
	}
	c := colorful.Hsv(360*float64(i)/float64(n), 1, 1)
	return color.NRGBA{
		R: uint8(traceScale * c.R),
		G: uint8(traceScale * c.G),
		B: uint8(traceScale * c.B),
		A: alpha(traceAlpha),
	}
}

// thinPoints keeps the first point and then every point farther than
// strokeWidth+1 pixels from the last kept one.
func thinPoints(pts []image.Point, strokeWidth int) []image.Point {
	if len(pts) == 0 {
		return nil
	}
	minDist := float64(strokeWidth + 1)
	out := []image.Point{pts[0]}
	prev := pts[0]
	for _, p := range pts[1:] {
		dx := float64(p.X - prev.X)
		dy := float64(p.Y - prev.Y)
		if math.Hypot(dx, dy) > minDist {
			out = append(out, p)
			prev = p
		}
	}
	return out
}
