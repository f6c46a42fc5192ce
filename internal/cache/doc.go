// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package cache provides in-memory spatial indexes used on the hot path of
waypoint matching.

# SpatialHashGrid

SpatialHashGrid buckets points into square cells of a fixed size so that a
proximity query only inspects the cells around the query point instead of
every stored point. Matching a trace of n trackpoints against m waypoints then
costs about O(n·k), where k is the number of waypoints near the trace, rather
than O(n·m).

	grid := cache.NewSpatialHashGrid[string](50) // 50 m cells
	grid.Insert("w12", geo.Coord{Lat: 44.5646, Lon: -123.2620}, "Bridge")

	for _, n := range grid.QueryNearby(c, 20) {
	    fmt.Println(n.Entry.ID, n.DistanceM)
	}

Results of QueryNearby are ordered by distance, ties by ID, so callers that
pick the first result get a deterministic nearest neighbour.

A grid has no locking. Build it and query it from the same goroutine.
*/
package cache
