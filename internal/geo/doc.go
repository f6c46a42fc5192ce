// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package geo provides the geographic primitives shared by every Waytrace package:
// coordinates, great-circle distance, and north/west/south/east bounding boxes.
//
// Distances are computed with the haversine formula on a sphere of radius 6371 km
// and are always expressed in meters.
//
//	a := geo.Coord{Lat: 44.5646, Lon: -123.2620}
//	b := geo.Coord{Lat: 44.5700, Lon: -123.2750}
//	d := geo.Distance(a, b) // meters
//
// Bounding boxes follow the (north, west, south, east) ordering used by the
// waypoint store and the trace reader:
//
//	box := geo.EmptyBBox()
//	for _, c := range coords {
//	    box = box.Extend(c)
//	}
package geo
