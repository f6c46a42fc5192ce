// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package tile

import (
	"fmt"
	"math"

	"github.com/tomtom215/waytrace/internal/geo"
)

// Size is the edge length of a tile image in pixels.
const Size = 256

// MaxZoom is the deepest zoom level accepted anywhere in Waytrace.
const MaxZoom = 20

// Tile addresses one map tile.
type Tile struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Name returns the cache file stem "{z}-{x}-{y}".
func (t Tile) Name() string {
	return fmt.Sprintf("%d-%d-%d", t.Z, t.X, t.Y)
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Bounds returns the geographic bounds of the tile.
func (t Tile) Bounds() geo.BBox {
	return Bounds(t.Z, t.X, t.Y)
}

// FromCoord returns the tile containing c at the given zoom.
// Coordinates outside the Mercator range are clamped onto the grid edge.
func FromCoord(c geo.Coord, zoom int) Tile {
	n := math.Exp2(float64(zoom))
	latRad := c.Lat * math.Pi / 180

	x := int(math.Floor((c.Lon + 180.0) / 360.0 * n))
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2.0 * n))

	return Tile{Z: zoom, X: clamp(x, int(n)), Y: clamp(y, int(n))}
}

// NorthWest returns the coordinate of the tile's north-west corner.
func NorthWest(t Tile) geo.Coord {
	n := math.Exp2(float64(t.Z))
	lon := float64(t.X)/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(t.Y)/n)))
	return geo.Coord{Lat: latRad * 180.0 / math.Pi, Lon: lon}
}

// Bounds calculates the geographic bounds for a given tile coordinate.
// Uses Web Mercator projection (EPSG:3857).
func Bounds(z, x, y int) geo.BBox {
	nw := NorthWest(Tile{Z: z, X: x, Y: y})
	se := NorthWest(Tile{Z: z, X: x + 1, Y: y + 1})
	return geo.BBox{North: nw.Lat, West: nw.Lon, South: se.Lat, East: se.Lon}
}

// PixelInTile returns the pixel offset of c inside t, interpolating linearly
// between the tile corners. The result is only within 0..Size-1 when c lies
// inside the tile.
func PixelInTile(c geo.Coord, t Tile) (int, int) {
	b := t.Bounds()
	x := int(Size * (c.Lon - b.West) / (b.East - b.West))
	y := int(Size * (c.Lat - b.North) / (b.South - b.North))
	return x, y
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
