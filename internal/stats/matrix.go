// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package stats

import (
	"github.com/tomtom215/waytrace/internal/paths"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// Matrix holds path stats for ordered waypoint pairs.
type Matrix struct {
	// IDs lists every waypoint that starts or ends a path, in natural order.
	IDs     []string
	summary *Summary
}

// NewMatrix builds a matrix over the endpoints of s.
func NewMatrix(s *Summary) *Matrix {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range s.Paths() {
		for _, id := range []string{p.From, p.To} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	waypoint.SortIDs(ids)
	return &Matrix{IDs: ids, summary: s}
}

// Cell returns the stats of from→to.
func (m *Matrix) Cell(from, to string) (PathStats, bool) {
	return m.summary.Get(paths.PathID(from, to))
}

// Row returns the populated cells of from, in column order.
func (m *Matrix) Row(from string) []PathStats {
	var out []PathStats
	for _, to := range m.IDs {
		if p, ok := m.Cell(from, to); ok {
			out = append(out, p)
		}
	}
	return out
}
