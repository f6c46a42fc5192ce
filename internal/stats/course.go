// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package stats

import (
	"bufio"
	"io"
	"strings"

	"github.com/tomtom215/waytrace/internal/paths"
)

// Leg is one waypoint of a course with the running totals up to it.
type Leg struct {
	WaypointID   string  `json:"waypoint_id"`
	CumDistanceM float64 `json:"cum_dist_m"`
	CumTimeS     float64 `json:"cum_time_s"`
	// Reversed marks a leg measured in the opposite direction.
	Reversed bool `json:"reversed,omitempty"`
	// Missing marks a leg with no data in either direction; the totals
	// carry over unchanged.
	Missing bool `json:"missing,omitempty"`
}

// Course accumulates median distance and time along ids. The first leg is the
// start with zero totals.
func Course(s *Summary, ids []string) []Leg {
	legs := make([]Leg, 0, len(ids))
	var dist, secs float64

	for i, id := range ids {
		leg := Leg{WaypointID: id}
		if i > 0 {
			prev := ids[i-1]
			if p, ok := s.Get(paths.PathID(prev, id)); ok {
				dist += p.MedianDistanceM
				secs += p.MedianTimeS
			} else if p, ok := s.Get(paths.PathID(id, prev)); ok {
				dist += p.MedianDistanceM
				secs += p.MedianTimeS
				leg.Reversed = true
			} else {
				leg.Missing = true
			}
		}
		leg.CumDistanceM, leg.CumTimeS = dist, secs
		legs = append(legs, leg)
	}
	return legs
}

// ReadCourse reads one waypoint ID per line. Blank lines and lines starting
// with '#' are ignored.
func ReadCourse(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, sc.Err()
}
