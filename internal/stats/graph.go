// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package stats

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/waytrace/internal/geo"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/units"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// WriteDot writes a Graphviz digraph with one edge per path, labelled with
// the mean distance in miles. The edge len attribute is the mean distance in
// meters plus one, truncated.
func WriteDot(w io.Writer, s *Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	for _, p := range s.Paths() {
		fmt.Fprintf(bw, "%s -> %s [label=\"%3.2f\", len=\"%d\"];\n",
			dotID(p.From), dotID(p.To), units.MetersToMiles(p.MeanDistanceM), int(1+p.MeanDistanceM))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// dotID quotes a node ID so any waypoint ID is a valid Graphviz identifier.
func dotID(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}

// Start is the waypoint nearest to where a trace begins.
type Start struct {
	Trace     string    `json:"trace"`
	Coord     geo.Coord `json:"coord"`
	Waypoint  string    `json:"waypoint"`
	DistanceM float64   `json:"distance_m"`
}

// NearestStart finds the waypoint closest to the first position of a.
func NearestStart(a *trace.Activity, store *waypoint.Store) (Start, error) {
	c, err := a.StartCoord()
	if err != nil {
		return Start{}, err
	}
	w, d, ok := store.Nearest(c)
	if !ok {
		return Start{}, fmt.Errorf("%w: store is empty", waypoint.ErrNotFound)
	}
	return Start{Trace: a.Path, Coord: c, Waypoint: w.ID, DistanceM: d}, nil
}
