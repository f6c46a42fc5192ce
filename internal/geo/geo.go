// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Coord is a WGS84 latitude/longitude pair in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the coordinate with six decimals (~0.1 m).
func (c Coord) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coord) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon) * 1000.0
}

// DistanceKm calculates the distance between two lat/lon points in km.
// Uses the Haversine formula for accurate spherical distance.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// BBox is a geographic bounding box. North >= South and East >= West for any
// non-empty box; boxes crossing the antimeridian are not supported.
type BBox struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// EmptyBBox returns a box that contains nothing and becomes the point itself
// on the first Extend.
func EmptyBBox() BBox {
	return BBox{
		North: math.Inf(-1),
		West:  math.Inf(1),
		South: math.Inf(1),
		East:  math.Inf(-1),
	}
}

// IsEmpty reports whether the box has never been extended.
func (b BBox) IsEmpty() bool {
	return b.North < b.South || b.East < b.West
}

// Extend returns the smallest box containing b and c.
func (b BBox) Extend(c Coord) BBox {
	b.North = math.Max(b.North, c.Lat)
	b.South = math.Min(b.South, c.Lat)
	b.West = math.Min(b.West, c.Lon)
	b.East = math.Max(b.East, c.Lon)
	return b
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return BBox{
		North: math.Max(b.North, o.North),
		West:  math.Min(b.West, o.West),
		South: math.Min(b.South, o.South),
		East:  math.Max(b.East, o.East),
	}
}

// Contains reports whether c lies inside the box, edges included.
func (b BBox) Contains(c Coord) bool {
	if b.IsEmpty() {
		return false
	}
	return c.Lat <= b.North && c.Lat >= b.South && c.Lon >= b.West && c.Lon <= b.East
}

// NorthWest returns the north-west corner.
func (b BBox) NorthWest() Coord {
	return Coord{Lat: b.North, Lon: b.West}
}

// SouthEast returns the south-east corner.
func (b BBox) SouthEast() Coord {
	return Coord{Lat: b.South, Lon: b.East}
}

// ParseBBox parses "north,west,south,east".
func ParseBBox(s string) (BBox, error) {
	var b BBox
	n, err := fmt.Sscanf(s, "%g,%g,%g,%g", &b.North, &b.West, &b.South, &b.East)
	if err != nil || n != 4 {
		return BBox{}, fmt.Errorf("parse bbox %q: want north,west,south,east", s)
	}
	if b.IsEmpty() {
		return BBox{}, fmt.Errorf("parse bbox %q: north must be >= south and east >= west", s)
	}
	return b, nil
}
