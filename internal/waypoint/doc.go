// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package waypoint manages the named reference points that traces are matched
against.

# File Format

Waypoints live in a small XML file. <wpt> elements may appear at any depth;
elev_ft is optional:

	<waypoints>
	  <wpt id="w12">
	    <name>Bridge</name>
	    <lat>44.5646</lat>
	    <lon>-123.2620</lon>
	    <elev_ft>233</elev_ft>
	  </wpt>
	</waypoints>

The store keeps the parsed document so that Add followed by Save preserves
the rest of the file (comments, grouping) untouched.

# Queries

Within uses an R-tree over the waypoint positions; TileIndex groups IDs by map
tile for the renderer; Nearest is a linear scan since it is only used once per
trace.

IDs compare in natural order (w2 < w10), see SortIDs.
*/
package waypoint
