// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package trace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/waytrace/internal/geo"
)

// Sentinel errors.
var (
	ErrNoPosition        = errors.New("trace has no positioned trackpoint")
	ErrUnsupportedFormat = errors.New("unsupported trace format")
	ErrMissingMember     = errors.New("archive does not contain the expected trace")
)

// Format identifies the on-disk encoding of a trace.
type Format string

// Supported formats.
const (
	FormatTCX Format = "tcx"
	FormatZip Format = "zip"
	FormatGPX Format = "gpx"
	FormatFIT Format = "fit"
)

// Trackpoint is one recorded sample.
type Trackpoint struct {
	Time           time.Time `json:"time"`
	Position       geo.Coord `json:"position"`
	HasPosition    bool      `json:"has_position"`
	DistanceMeters float64   `json:"distance_m"`
	// HasDistance is true when the distance was recorded by the device
	// rather than derived.
	HasDistance    bool    `json:"has_distance"`
	AltitudeMeters float64 `json:"altitude_m"`
	HasAltitude    bool    `json:"has_altitude"`
}

// Activity is a parsed trace.
type Activity struct {
	Path        string       `json:"path"`
	Format      Format       `json:"format"`
	StartID     string       `json:"start_id"`
	Trackpoints []Trackpoint `json:"trackpoints"`
}

// DetectFormat maps a file name to its trace format.
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".tcx"):
		return FormatTCX, nil
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".gpx"):
		return FormatGPX, nil
	case strings.HasSuffix(name, ".fit"), strings.HasSuffix(name, ".fit.gz"):
		return FormatFIT, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Open reads the trace at path.
func Open(path string) (*Activity, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var a *Activity
	switch format {
	case FormatTCX:
		a, err = readTCXFile(path)
	case FormatZip:
		a, err = readZip(path)
	case FormatGPX:
		a, err = readGPX(path)
	case FormatFIT:
		a, err = readFIT(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	a.Path = path
	a.Format = format
	a.fillDistances()
	if a.StartID == "" {
		if t := a.StartTime(); !t.IsZero() {
			a.StartID = t.UTC().Format(time.RFC3339)
		}
	}
	return a, nil
}

// Result is the outcome of loading one file with LoadAll.
type Result struct {
	Path     string
	Activity *Activity
	Err      error
}

// LoadAll opens paths with up to workers concurrent readers. Results keep the
// order of paths; a failing file is reported in its Result and does not stop
// the others.
func LoadAll(ctx context.Context, paths []string, workers int) []Result {
	results := make([]Result, len(paths))
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			results[i].Path = p
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Activity, results[i].Err = Open(p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fillDistances derives the cumulative distance of samples that lack one.
// A recorded distance resets the running total.
func (a *Activity) fillDistances() {
	var cum float64
	var prev geo.Coord
	havePrev := false

	for i := range a.Trackpoints {
		tp := &a.Trackpoints[i]
		if tp.HasPosition {
			if havePrev {
				cum += geo.Distance(prev, tp.Position)
			}
			prev = tp.Position
			havePrev = true
		}
		if tp.HasDistance {
			cum = tp.DistanceMeters
			continue
		}
		tp.DistanceMeters = cum
	}
}

// Count returns the number of trackpoints.
func (a *Activity) Count() int {
	return len(a.Trackpoints)
}

// Positions returns the coordinates of positioned trackpoints in order.
func (a *Activity) Positions() []geo.Coord {
	out := make([]geo.Coord, 0, len(a.Trackpoints))
	for _, tp := range a.Trackpoints {
		if tp.HasPosition {
			out = append(out, tp.Position)
		}
	}
	return out
}

// BBox returns the bounding box of all positions; empty when there are none.
func (a *Activity) BBox() geo.BBox {
	b := geo.EmptyBBox()
	for _, tp := range a.Trackpoints {
		if tp.HasPosition {
			b = b.Extend(tp.Position)
		}
	}
	return b
}

// ElevationGain sums the positive altitude deltas in meters.
func (a *Activity) ElevationGain() float64 {
	var gain, prev float64
	havePrev := false
	for _, tp := range a.Trackpoints {
		if !tp.HasAltitude {
			continue
		}
		if havePrev && tp.AltitudeMeters > prev {
			gain += tp.AltitudeMeters - prev
		}
		prev = tp.AltitudeMeters
		havePrev = true
	}
	return gain
}

// StartCoord returns the first recorded position.
func (a *Activity) StartCoord() (geo.Coord, error) {
	for _, tp := range a.Trackpoints {
		if tp.HasPosition {
			return tp.Position, nil
		}
	}
	return geo.Coord{}, ErrNoPosition
}

// StartTime returns the first non-zero sample time.
func (a *Activity) StartTime() time.Time {
	for _, tp := range a.Trackpoints {
		if !tp.Time.IsZero() {
			return tp.Time
		}
	}
	return time.Time{}
}

// Duration is the time between the first and last timed samples.
func (a *Activity) Duration() time.Duration {
	start := a.StartTime()
	if start.IsZero() {
		return 0
	}
	for i := len(a.Trackpoints) - 1; i >= 0; i-- {
		if t := a.Trackpoints[i].Time; !t.IsZero() {
			return t.Sub(start)
		}
	}
	return 0
}

// DistanceMeters is the cumulative distance of the last sample.
func (a *Activity) DistanceMeters() float64 {
	if len(a.Trackpoints) == 0 {
		return 0
	}
	return a.Trackpoints[len(a.Trackpoints)-1].DistanceMeters
}
