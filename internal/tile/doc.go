// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package tile implements slippy-map tile arithmetic on the Web Mercator
(EPSG:3857) pyramid used by OpenStreetMap-style tile servers.

# Addressing

A tile is addressed by (zoom, x, y). At zoom z the world is a 2^z by 2^z grid of
256 px square tiles; x grows eastward from the antimeridian and y grows
southward from about 85.0511° N.

	t := tile.FromCoord(geo.Coord{Lat: 44.5646, Lon: -123.2620}, 16)
	nw := tile.NorthWest(t)          // corner coordinate
	px, py := tile.PixelInTile(c, t) // 0..255

# Extents and frames

An Extent is the inclusive rectangle of tiles that a rendered map covers. Its
Pixel method places a coordinate in the montage image built from those tiles.
Frames splits an extent into equally sized sub-maps for printing.

Extents larger than MaxTiles are rejected with ErrTooManyTiles; a request that
large is almost always a wrong zoom level.
*/
package tile
