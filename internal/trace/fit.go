// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package trace

import (
	"compress/gzip"
	"io"
	"math"
	"os"
	"strings"

	"github.com/tormoder/fit"
)

func readFIT(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	file, err := fit.Decode(r)
	if err != nil {
		return nil, err
	}
	activity, err := file.Activity()
	if err != nil {
		return nil, err
	}
	return fromRecords(activity.Records), nil
}

func fromRecords(records []*fit.RecordMsg) *Activity {
	a := &Activity{Trackpoints: make([]Trackpoint, 0, len(records))}
	for _, r := range records {
		tp := Trackpoint{Time: r.Timestamp}

		if !r.PositionLat.Invalid() && !r.PositionLong.Invalid() {
			tp.Position.Lat = r.PositionLat.Degrees()
			tp.Position.Lon = r.PositionLong.Degrees()
			tp.HasPosition = true
		}
		if d := r.GetDistanceScaled(); !math.IsNaN(d) {
			tp.DistanceMeters = d
			tp.HasDistance = true
		}
		if alt := r.GetAltitudeScaled(); !math.IsNaN(alt) {
			tp.AltitudeMeters = alt
			tp.HasAltitude = true
		}

		a.Trackpoints = append(a.Trackpoints, tp)
	}
	return a
}
