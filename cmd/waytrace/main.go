// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package main is the entry point for the waytrace command line tool.
//
// Waytrace matches recorded GPS traces (TCX, zipped TCX, GPX and FIT) against
// a set of named waypoints, cuts each trace into waypoint-to-waypoint path
// segments, aggregates the segments across many traces, and renders traces
// and waypoints over slippy-map tiles.
//
// # Commands
//
//	extract          match traces and append path segments to the path CSV
//	chain            print the waypoint chain of each trace
//	analyze          per-path averages for a set of traces, optional Graphviz output
//	summary          per-path medians from the path CSV, or totals along a course
//	matrix           mean distance and time for every waypoint pair
//	cover            pick the traces that together cover every segment
//	nearest          waypoint closest to where each trace starts
//	plot             draw traces, waypoints and photos on map tiles
//	tiles fetch      download the tiles of a bounding box into the cache
//	waypoints list   print the waypoint file
//	waypoints add    add a waypoint by coordinate or from a trace sample
//
// # Configuration
//
// Settings are layered, highest priority last:
//   - Built-in defaults
//   - ~/.trace.rc (key = value; waypoints_file, path_csv_file, map_api_key)
//   - YAML file (--config, WAYTRACE_CONFIG, or ./waytrace.yaml)
//   - WAYTRACE_* environment variables
//   - Command line flags that were set explicitly
//
// # Example Usage
//
//	waytrace extract -f runs/*.tcx -w waypoints.xml -p paths.csv
//	waytrace summary -c course.txt
//	waytrace plot -f runs/2024-05-01.tcx -l -b -o may.png
//	waytrace plot -w w3 w17 -x 4x3 -o hills.jpg
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/waytrace/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("waytrace failed")
		return 1
	}
	return 0
}
