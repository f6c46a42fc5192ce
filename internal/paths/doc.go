// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package paths turns a trace into the sequence of waypoints it passed and the
travel segments between them.

# Matching

Every positioned trackpoint is compared with the waypoints near it (a spatial
hash grid keeps this proportional to the local waypoint density). A trackpoint
produces at most one Visit: the nearest waypoint strictly closer than the
radius, ties going to the naturally smaller ID. Visits keep trackpoint order.

# Segments

Consecutive visits to the same waypoint form a run. When the trace reaches a
different waypoint B after a run at A, a Segment A→B is emitted with

	DistanceM = d(first sample at B) - d(first sample of the A run)
	Duration  = t(first sample at B) - t(first sample of the A run)

and B's run becomes the new origin. Segments are identified by "A:B".

	res, err := paths.Extract(activity, store, paths.Options{RadiusM: 20})
	for _, s := range res.Segments {
	    fmt.Println(s.PathID(), s.DistanceM, s.Duration)
	}
*/
package paths
