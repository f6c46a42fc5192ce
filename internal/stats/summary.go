// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package stats

import (
	"sort"

	"github.com/tomtom215/waytrace/internal/paths"
	"github.com/tomtom215/waytrace/internal/records"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// PathStats aggregates every recorded traversal of one directed path.
type PathStats struct {
	PathID          string  `json:"path_id"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Count           int     `json:"count"`
	MeanDistanceM   float64 `json:"mean_dist_m"`
	MedianDistanceM float64 `json:"median_dist_m"`
	MeanTimeS       float64 `json:"mean_time_s"`
	MedianTimeS     float64 `json:"median_time_s"`
}

// Summary is the per-path aggregate of a record set.
type Summary struct {
	order []string
	byID  map[string]PathStats
}

// Summarize aggregates rows by path ID. Rows with malformed path IDs are
// ignored.
func Summarize(rows []records.Row) *Summary {
	dists := make(map[string][]float64)
	times := make(map[string][]float64)
	s := &Summary{byID: make(map[string]PathStats)}

	for _, r := range rows {
		if _, _, err := r.Endpoints(); err != nil {
			continue
		}
		if _, ok := dists[r.PathID]; !ok {
			s.order = append(s.order, r.PathID)
		}
		dists[r.PathID] = append(dists[r.PathID], r.DistanceM)
		times[r.PathID] = append(times[r.PathID], r.TimeS)
	}

	for _, id := range s.order {
		from, to, _ := paths.SplitPathID(id)
		s.byID[id] = PathStats{
			PathID:          id,
			From:            from,
			To:              to,
			Count:           len(dists[id]),
			MeanDistanceM:   Mean(dists[id]),
			MedianDistanceM: MedianLow(dists[id]),
			MeanTimeS:       Mean(times[id]),
			MedianTimeS:     MedianLow(times[id]),
		}
	}
	return s
}

// Len returns the number of distinct paths.
func (s *Summary) Len() int {
	return len(s.order)
}

// Get returns the stats of one path.
func (s *Summary) Get(pathID string) (PathStats, bool) {
	p, ok := s.byID[pathID]
	return p, ok
}

// Paths returns all path stats in first-seen order.
func (s *Summary) Paths() []PathStats {
	out := make([]PathStats, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Sorted returns all path stats ordered naturally by origin, then destination.
func (s *Summary) Sorted() []PathStats {
	out := s.Paths()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return waypoint.NaturalLess(out[i].From, out[j].From)
		}
		return waypoint.NaturalLess(out[i].To, out[j].To)
	})
	return out
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// MedianLow returns the low median: the middle value for an odd count and the
// smaller middle value for an even count. 0 for no values.
func MedianLow(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}
