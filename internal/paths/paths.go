// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package paths

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/waytrace/internal/cache"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// DefaultRadiusM is the proximity radius for a trackpoint to count as a visit.
const DefaultRadiusM = 20.0

// Reasons a trace yields no segments. Batch callers log and skip these.
var (
	ErrNoWaypoints   = errors.New("no waypoints within trace bounds")
	ErrNotOfInterest = errors.New("trace does not cover any waypoint of interest")
)

// Options tunes Extract.
type Options struct {
	// RadiusM is the visit radius in meters; zero means DefaultRadiusM.
	RadiusM float64
	// Interest restricts extraction to traces whose bounds hold at least
	// one of these waypoint IDs.
	Interest []string
}

func (o Options) radius() float64 {
	if o.RadiusM <= 0 {
		return DefaultRadiusM
	}
	return o.RadiusM
}

// Visit is a trackpoint matched to a waypoint.
type Visit struct {
	WaypointID  string    `json:"waypoint_id"`
	Index       int       `json:"index"`
	DistanceM   float64   `json:"distance_m"`
	Time        time.Time `json:"time"`
	SeparationM float64   `json:"separation_m"`
}

// Segment is the travel between two consecutive distinct waypoints.
type Segment struct {
	From      string        `json:"from"`
	To        string        `json:"to"`
	DistanceM float64       `json:"distance_m"`
	Duration  time.Duration `json:"duration"`
	Start     time.Time     `json:"start"`
}

// PathID returns "From:To".
func (s Segment) PathID() string {
	return PathID(s.From, s.To)
}

// PathID joins two waypoint IDs into a path identifier.
func PathID(from, to string) string {
	return from + ":" + to
}

// SplitPathID splits "A:B" into its endpoints.
func SplitPathID(id string) (from, to string, err error) {
	from, to, ok := strings.Cut(id, ":")
	if !ok || from == "" || to == "" || strings.Contains(to, ":") {
		return "", "", fmt.Errorf("invalid path id %q", id)
	}
	return from, to, nil
}

// Match finds the waypoint visited by each trackpoint.
func Match(tps []trace.Trackpoint, wps []waypoint.Waypoint, radiusM float64) []Visit {
	if len(wps) == 0 {
		return nil
	}
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}

	grid := cache.NewSpatialHashGrid[struct{}](2 * radiusM)
	for _, w := range wps {
		grid.Insert(w.ID, w.Coord, struct{}{})
	}

	var visits []Visit
	for i, tp := range tps {
		if !tp.HasPosition {
			continue
		}
		best, ok := nearestWithin(grid.QueryNearby(tp.Position, radiusM), radiusM)
		if !ok {
			continue
		}
		visits = append(visits, Visit{
			WaypointID:  best.Entry.ID,
			Index:       i,
			DistanceM:   tp.DistanceMeters,
			Time:        tp.Time,
			SeparationM: best.DistanceM,
		})
	}
	return visits
}

// nearestWithin picks the closest neighbor strictly inside radiusM. The grid
// already orders by distance; equal distances are re-ordered naturally.
func nearestWithin(ns []cache.Neighbor[struct{}], radiusM float64) (cache.Neighbor[struct{}], bool) {
	if len(ns) == 0 || ns[0].DistanceM >= radiusM {
		return cache.Neighbor[struct{}]{}, false
	}
	best := ns[0]
	for _, n := range ns[1:] {
		if n.DistanceM != best.DistanceM {
			break
		}
		if waypoint.NaturalLess(n.Entry.ID, best.Entry.ID) {
			best = n
		}
	}
	return best, true
}

// Chain collapses consecutive visits to the same waypoint.
func Chain(visits []Visit) []string {
	var chain []string
	for _, v := range visits {
		if len(chain) == 0 || chain[len(chain)-1] != v.WaypointID {
			chain = append(chain, v.WaypointID)
		}
	}
	return chain
}

// Segments derives the travel between consecutive distinct waypoints.
func Segments(visits []Visit) []Segment {
	if len(visits) == 0 {
		return nil
	}
	var segs []Segment
	origin := visits[0]
	for _, v := range visits[1:] {
		if v.WaypointID == origin.WaypointID {
			continue
		}
		segs = append(segs, Segment{
			From:      origin.WaypointID,
			To:        v.WaypointID,
			DistanceM: v.DistanceM - origin.DistanceM,
			Duration:  v.Time.Sub(origin.Time),
			Start:     origin.Time,
		})
		origin = v
	}
	return segs
}

// Result is the outcome of Extract for one trace.
type Result struct {
	Path       string    `json:"path"`
	StartID    string    `json:"start_id"`
	Candidates int       `json:"candidates"`
	Visits     []Visit   `json:"visits"`
	Chain      []string  `json:"chain"`
	Segments   []Segment `json:"segments"`
}

// Extract matches a trace against the waypoints inside its bounding box.
// It returns ErrNoWaypoints or ErrNotOfInterest when the trace should be
// skipped.
func Extract(a *trace.Activity, store *waypoint.Store, opts Options) (*Result, error) {
	box := a.BBox()
	if box.IsEmpty() {
		return nil, trace.ErrNoPosition
	}

	wps := store.Within(box)
	if len(wps) == 0 {
		return nil, ErrNoWaypoints
	}

	if len(opts.Interest) > 0 {
		seen := slices.ContainsFunc(wps, func(w waypoint.Waypoint) bool {
			return slices.Contains(opts.Interest, w.ID)
		})
		if !seen {
			return nil, ErrNotOfInterest
		}
	}

	visits := Match(a.Trackpoints, wps, opts.radius())
	return &Result{
		Path:       a.Path,
		StartID:    a.StartID,
		Candidates: len(wps),
		Visits:     visits,
		Chain:      Chain(visits),
		Segments:   Segments(visits),
	}, nil
}
