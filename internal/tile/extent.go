// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package tile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/waytrace/internal/geo"
)

// MaxTiles bounds the number of tiles in a single rendered extent.
const MaxTiles = 2500

// ErrTooManyTiles is returned when an extent exceeds MaxTiles.
var ErrTooManyTiles = errors.New("too many tiles")

// ErrEmptyExtent is returned when an extent is built from an empty bounding box.
var ErrEmptyExtent = errors.New("empty extent")

// Extent is an inclusive rectangle of tiles at one zoom level.
type Extent struct {
	Zoom int `json:"zoom"`
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// ExtentFor returns the tiles covering box at zoom, grown by buffer tiles on
// every side and clipped to the tile grid.
func ExtentFor(box geo.BBox, zoom, buffer int) (Extent, error) {
	if box.IsEmpty() {
		return Extent{}, ErrEmptyExtent
	}
	nw := FromCoord(box.NorthWest(), zoom)
	se := FromCoord(box.SouthEast(), zoom)
	n := int(math.Exp2(float64(zoom)))

	e := Extent{
		Zoom: zoom,
		MinX: clamp(nw.X-buffer, n),
		MinY: clamp(nw.Y-buffer, n),
		MaxX: clamp(se.X+buffer, n),
		MaxY: clamp(se.Y+buffer, n),
	}
	return e, nil
}

// Width is the number of tile columns.
func (e Extent) Width() int { return e.MaxX - e.MinX + 1 }

// Height is the number of tile rows.
func (e Extent) Height() int { return e.MaxY - e.MinY + 1 }

// Count is the number of tiles.
func (e Extent) Count() int { return e.Width() * e.Height() }

// PixelWidth is the montage width in pixels.
func (e Extent) PixelWidth() int { return e.Width() * Size }

// PixelHeight is the montage height in pixels.
func (e Extent) PixelHeight() int { return e.Height() * Size }

// Name returns the base-map stem "{z}-{x0}-{x1}-{y0}-{y1}".
func (e Extent) Name() string {
	return fmt.Sprintf("%d-%d-%d-%d-%d", e.Zoom, e.MinX, e.MaxX, e.MinY, e.MaxY)
}

// CheckLimit validates the extent size against limit tiles.
func (e Extent) CheckLimit(limit int) error {
	if e.Width() <= 0 || e.Height() <= 0 {
		return ErrEmptyExtent
	}
	if e.Count() > limit {
		return fmt.Errorf("%w: %d required at z=%d (limit %d)", ErrTooManyTiles, e.Count(), e.Zoom, limit)
	}
	return nil
}

// Tiles lists the tiles in row-major order, north to south then west to east.
func (e Extent) Tiles() []Tile {
	tiles := make([]Tile, 0, max(e.Count(), 0))
	for y := e.MinY; y <= e.MaxY; y++ {
		for x := e.MinX; x <= e.MaxX; x++ {
			tiles = append(tiles, Tile{Z: e.Zoom, X: x, Y: y})
		}
	}
	return tiles
}

// Contains reports whether t belongs to the extent.
func (e Extent) Contains(t Tile) bool {
	return t.Z == e.Zoom && t.X >= e.MinX && t.X <= e.MaxX && t.Y >= e.MinY && t.Y <= e.MaxY
}

// Pixel places c in the montage image whose origin is the NW tile's corner.
func (e Extent) Pixel(c geo.Coord) (int, int) {
	t := FromCoord(c, e.Zoom)
	return e.PixelOnTile(c, t)
}

// PixelOnTile is Pixel for a coordinate already known to lie on t.
func (e Extent) PixelOnTile(c geo.Coord, t Tile) (int, int) {
	x, y := PixelInTile(c, t)
	return Size*(t.X-e.MinX) + x, Size*(t.Y-e.MinY) + y
}

// Frame is one sub-map of a framed extent.
type Frame struct {
	FX     int    `json:"fx"`
	FY     int    `json:"fy"`
	Extent Extent `json:"extent"`
}

// Suffix returns the output file suffix "-{fx}x{fy}".
func (f Frame) Suffix() string {
	return fmt.Sprintf("-%dx%d", f.FX, f.FY)
}

// Frames grows e to a whole number of perX by perY frames, splitting the
// padding evenly on both sides (the odd tile goes east/south), and returns the
// grown extent and its frames in row-major order. Padding that would leave
// the tile grid moves to the opposite side.
func Frames(e Extent, perX, perY int) (Extent, []Frame, error) {
	if perX <= 0 || perY <= 0 {
		return e, nil, fmt.Errorf("invalid frame size %dx%d", perX, perY)
	}
	n := int(math.Exp2(float64(e.Zoom)))

	grow := func(lo, hi, per int) (int, int, int, error) {
		span := hi - lo + 1
		if r := span % per; r > 0 {
			pad := per - r
			lo -= pad / 2
			hi += pad/2 + pad%2
		}
		if hi-lo+1 > n {
			return lo, hi, 0, fmt.Errorf("%d tiles per frame do not fit the %d-tile grid at z=%d", per, n, e.Zoom)
		}
		if lo < 0 {
			hi -= lo
			lo = 0
		}
		if hi > n-1 {
			lo -= hi - (n - 1)
			hi = n - 1
		}
		return lo, hi, (hi - lo + 1) / per, nil
	}

	grown := e
	var nx, ny int
	var err error
	if grown.MinX, grown.MaxX, nx, err = grow(e.MinX, e.MaxX, perX); err != nil {
		return e, nil, err
	}
	if grown.MinY, grown.MaxY, ny, err = grow(e.MinY, e.MaxY, perY); err != nil {
		return e, nil, err
	}

	frames := make([]Frame, 0, nx*ny)
	for fy := 0; fy < ny; fy++ {
		for fx := 0; fx < nx; fx++ {
			frames = append(frames, Frame{
				FX: fx,
				FY: fy,
				Extent: Extent{
					Zoom: e.Zoom,
					MinX: grown.MinX + fx*perX,
					MinY: grown.MinY + fy*perY,
					MaxX: grown.MinX + (fx+1)*perX - 1,
					MaxY: grown.MinY + (fy+1)*perY - 1,
				},
			})
		}
	}
	return grown, frames, nil
}

// ParseFrameSize parses "WxH", e.g. "4x3".
func ParseFrameSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("frame size %q: want WxH", s)
	}
	perX, err := strconv.Atoi(w)
	if err != nil || perX <= 0 {
		return 0, 0, fmt.Errorf("frame size %q: bad width", s)
	}
	perY, err := strconv.Atoi(h)
	if err != nil || perY <= 0 {
		return 0, 0, fmt.Errorf("frame size %q: bad height", s)
	}
	return perX, perY, nil
}
