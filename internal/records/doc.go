// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package records stores extracted path segments in a headerless CSV file,
// one row per segment:
//
//	gps_file,activity_datestamp,path_id,dist_m,time_s
//
// The file is the interchange format between extract and the aggregation
// commands. A trace is "stored" once any of its rows is present; Merge skips
// stored traces unless told to replace them. Save writes atomically.
package records
