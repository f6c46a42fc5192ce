// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package tilecache downloads slippy-map tiles and keeps them in a local
directory.

Tiles are stored as "<dir>/{z}-{x}-{y}.png" and requested from
"{base}/{z}/{x}/{y}.png?apikey={key}". A cached file is returned as-is unless
the cache is told to ignore it.

# Resilience

Requests to the tile server go through:
  - a token-bucket limiter (golang.org/x/time/rate)
  - retries with exponential backoff on 429 and 5xx, honoring Retry-After
  - a circuit breaker (sony/gobreaker) that opens after consecutive failures

Concurrent requests for the same tile are collapsed with singleflight.

# Metadata

When a metadata directory is configured, the ETag, size, and fetch time of each
tile are kept in BadgerDB. A re-download of a cached tile sends the stored
ETag as If-None-Match; a 304 only refreshes the file's modification time,
which the renderer uses to decide whether a base map is stale.

# Usage

	c, err := tilecache.New(tilecache.Options{
		BaseURL: "https://tile.thunderforest.com/cycle",
		APIKey:  key,
		Dir:     "tile-cache",
		MetaDir: "tile-cache/.meta",
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Prefetch(ctx, extent.Tiles()); err != nil {
		return err
	}
	path, err := c.Get(ctx, t)
*/
package tilecache
