// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package cache

import (
	"math"
	"sort"

	"github.com/tomtom215/waytrace/internal/geo"
)

// metersPerDegree is the approximate length of one degree of latitude.
const metersPerDegree = 111_000.0

// SpatialHashGrid divides geographic space into cells for fast proximity queries.
//
// Time Complexity:
//   - Insert: O(1)
//   - Query nearby: O(k) where k = entries in nearby cells (vs O(n) for linear scan)
//
// A grid is built and queried by one goroutine; it has no locking.
type SpatialHashGrid[T any] struct {
	cells    map[CellKey][]*SpatialEntry[T]
	cellSize float64 // degrees
	entries  map[string]*SpatialEntry[T]
}

// CellKey represents a grid cell coordinate.
type CellKey struct {
	X, Y int
}

// SpatialEntry is one indexed point.
type SpatialEntry[T any] struct {
	ID      string
	Coord   geo.Coord
	Data    T
	cellKey CellKey
}

// Neighbor is a QueryNearby result.
type Neighbor[T any] struct {
	Entry     SpatialEntry[T]
	DistanceM float64
}

// NewSpatialHashGrid creates a grid with cells of roughly cellSizeM meters.
// Cells should be on the order of the query radius; a non-positive size
// defaults to 100 m.
func NewSpatialHashGrid[T any](cellSizeM float64) *SpatialHashGrid[T] {
	if cellSizeM <= 0 {
		cellSizeM = 100
	}
	return &SpatialHashGrid[T]{
		cells:    make(map[CellKey][]*SpatialEntry[T]),
		cellSize: cellSizeM / metersPerDegree,
		entries:  make(map[string]*SpatialEntry[T]),
	}
}

// getCellKey returns the cell key for a coordinate.
func (g *SpatialHashGrid[T]) getCellKey(c geo.Coord) CellKey {
	lon := c.Lon
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return CellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(c.Lat / g.cellSize)),
	}
}

// Insert adds an entry to the grid, replacing any entry with the same ID.
func (g *SpatialHashGrid[T]) Insert(id string, c geo.Coord, data T) {
	if existing, ok := g.entries[id]; ok {
		g.unlink(existing)
	}

	entry := &SpatialEntry[T]{ID: id, Coord: c, Data: data, cellKey: g.getCellKey(c)}
	g.cells[entry.cellKey] = append(g.cells[entry.cellKey], entry)
	g.entries[id] = entry
}

// unlink drops entry from its cell.
func (g *SpatialHashGrid[T]) unlink(entry *SpatialEntry[T]) {
	cell := g.cells[entry.cellKey]
	for i, e := range cell {
		if e.ID == entry.ID {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, entry.cellKey)
		return
	}
	g.cells[entry.cellKey] = cell
}

// QueryNearby returns the entries within radiusM meters of c (inclusive),
// nearest first with ties ordered by ID.
func (g *SpatialHashGrid[T]) QueryNearby(c geo.Coord, radiusM float64) []Neighbor[T] {
	radiusDeg := radiusM / metersPerDegree
	reachY := int(math.Ceil(radiusDeg/g.cellSize)) + 1
	// Longitude degrees shrink with latitude; widen the search accordingly.
	cosLat := math.Max(math.Cos(c.Lat*math.Pi/180), 0.01)
	reachX := int(math.Ceil(radiusDeg/cosLat/g.cellSize)) + 1
	center := g.getCellKey(c)

	var results []Neighbor[T]
	for dx := -reachX; dx <= reachX; dx++ {
		for dy := -reachY; dy <= reachY; dy++ {
			for _, entry := range g.cells[CellKey{X: center.X + dx, Y: center.Y + dy}] {
				if d := geo.Distance(c, entry.Coord); d <= radiusM {
					results = append(results, Neighbor[T]{Entry: *entry, DistanceM: d})
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceM != results[j].DistanceM {
			return results[i].DistanceM < results[j].DistanceM
		}
		return results[i].Entry.ID < results[j].Entry.ID
	})
	return results
}
