// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package stats

import (
	"github.com/tomtom215/waytrace/internal/paths"
	"github.com/tomtom215/waytrace/internal/records"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// CoverStep records one trace chosen by Cover.
type CoverStep struct {
	Segment string   `json:"segment"`
	Trace   string   `json:"trace"`
	Covered []string `json:"covered"`
}

// UndirectedID returns the path ID with its endpoints in natural order, so
// "w2:w1" and "w1:w2" are the same segment.
func UndirectedID(pathID string) (string, error) {
	from, to, err := paths.SplitPathID(pathID)
	if err != nil {
		return "", err
	}
	if waypoint.NaturalLess(to, from) {
		from, to = to, from
	}
	return paths.PathID(from, to), nil
}

// Cover greedily picks traces until every undirected segment is covered.
// Segments are visited in first-seen order; an uncovered segment is assigned
// the trace containing it that has the most distinct segments overall (the
// earliest such trace on ties), and all of that trace's segments become
// covered.
func Cover(rows []records.Row) []CoverStep {
	var segments []string
	segSeen := make(map[string]bool)
	segTraces := make(map[string][]string)
	traceSegs := make(map[string][]string)
	pair := make(map[[2]string]bool)

	for _, r := range rows {
		seg, err := UndirectedID(r.PathID)
		if err != nil {
			continue
		}
		if !segSeen[seg] {
			segSeen[seg] = true
			segments = append(segments, seg)
		}
		if k := [2]string{seg, r.Trace}; !pair[k] {
			pair[k] = true
			segTraces[seg] = append(segTraces[seg], r.Trace)
			traceSegs[r.Trace] = append(traceSegs[r.Trace], seg)
		}
	}

	covered := make(map[string]bool)
	var steps []CoverStep
	for _, seg := range segments {
		if covered[seg] {
			continue
		}
		best := ""
		for _, tr := range segTraces[seg] {
			if best == "" || len(traceSegs[tr]) > len(traceSegs[best]) {
				best = tr
			}
		}

		step := CoverStep{Segment: seg, Trace: best}
		for _, s := range traceSegs[best] {
			if !covered[s] {
				covered[s] = true
				step.Covered = append(step.Covered, s)
			}
		}
		steps = append(steps, step)
	}
	return steps
}
