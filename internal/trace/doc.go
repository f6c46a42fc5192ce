// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package trace reads recorded GPS activities into a common in-memory form.

Supported inputs, selected by file extension:

  - .tcx      Garmin Training Center XML (TrainingCenterDatabase/v2)
  - .zip      a zip archive holding "<basename>.tcx"
  - .gpx      GPX 1.0/1.1 tracks
  - .fit      Garmin FIT activity files (also .fit.gz)

Every reader produces an Activity whose trackpoints carry a cumulative
distance. When the source records none (GPX) or skips it for a sample, the
distance is derived by summing haversine legs between positioned samples.

Summary queries (BBox, ElevationGain, StartCoord, ...) are methods on
Activity. LoadAll parses many files concurrently for the renderer.
*/
package trace
