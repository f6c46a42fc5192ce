// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package trace

import (
	"os"

	"github.com/tkrajina/gpxgo/gpx"
)

func readGPX(path string) (*Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseGPX(data)
}

func parseGPX(data []byte) (*Activity, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	a := &Activity{}
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				tp := Trackpoint{
					Time:        p.Timestamp,
					HasPosition: true,
				}
				tp.Position.Lat, tp.Position.Lon = p.Latitude, p.Longitude
				if p.Elevation.NotNull() {
					tp.AltitudeMeters = p.Elevation.Value()
					tp.HasAltitude = true
				}
				a.Trackpoints = append(a.Trackpoints, tp)
			}
		}
	}
	return a, nil
}
