// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package config provides layered configuration for the waytrace commands.

# Configuration Sources

Sources are merged with Koanf v2, lowest priority first:

 1. Built-in defaults (defaultConfig)
 2. The legacy rc file, ~/.trace.rc by default: flat "key = value" lines,
    '#' comments. Known keys are waypoints_file, path_csv_file,
    map_api_key, tiles_url and tile_cache.
 3. An optional YAML file: --config, WAYTRACE_CONFIG, or waytrace.yaml in
    the working directory.
 4. WAYTRACE_* environment variables (WAYTRACE_TILES_API_KEY, ...).
 5. Command-line flags the user explicitly set (LoadOptions.Overrides).

# YAML Example

	waypoints:
	  file: ~/gps/waypoints.xml
	paths:
	  csv_file: ~/gps/paths.csv
	  radius_m: 20
	tiles:
	  url: https://tile.thunderforest.com/cycle
	  api_key: "..."
	  cache_dir: ~/gps/tile-cache
	  concurrency: 4
	  rate_per_second: 8
	render:
	  stroke_width: 5
	logging:
	  level: debug

# Validation

Load validates the merged result with go-playground/validator via the
internal/validation package and then applies cross-field checks. A leading
"~/" in any path setting is expanded to the user's home directory.
*/
package config
