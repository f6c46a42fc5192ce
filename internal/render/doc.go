// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package render composites map tiles, traces, waypoints, and photo markers
// into PNG or JPEG images.
//
// The base map for an extent is assembled once from cached tiles and kept in
// the tile cache as "{z}-{x0}-{x1}-{y0}-{y1}.png"; it is rebuilt when missing,
// when the cache is ignored, or when it is older than its newest tile.
// Overlays are drawn with fogleman/gg on top of the base map in this order:
// traces, waypoints, photos, and finally an optional legend strip per trace.
package render
