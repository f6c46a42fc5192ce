// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package stats aggregates stored path records.

  - Summarize: per-path count, mean and low median of distance and time
  - Course: cumulative totals along an ordered list of waypoints
  - NewMatrix: mean distance/time for every ordered waypoint pair
  - Cover: a small set of traces that together cover every segment
  - NearestStart: the waypoint closest to where a trace begins
  - WriteDot: a Graphviz digraph of mean path lengths

The low median is the smaller of the two middle values for an even count, so
the reported value is always one that was actually recorded.
*/
package stats
