// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package trace

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// TCXNamespace is the Garmin Training Center schema namespace.
const TCXNamespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"

func readTCXFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readTCX(f)
}

// readTCX parses a TCX document from r, plain or from inside a zip.
func readTCX(r io.Reader) (*Activity, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, err
	}
	return parseTCX(doc)
}

// zipMemberName returns the TCX member expected inside a zipped trace.
func zipMemberName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".tcx"
}

func readZip(path string) (*Activity, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	want := zipMemberName(path)
	for _, f := range zr.File {
		if filepath.Base(f.Name) != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return readTCX(rc)
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingMember, want)
}

func parseTCX(doc *etree.Document) (*Activity, error) {
	a := &Activity{}
	if id := doc.FindElement("//Id"); id != nil {
		a.StartID = strings.TrimSpace(id.Text())
	}

	for _, el := range doc.FindElements("//Trackpoint") {
		var tp Trackpoint

		if t := el.SelectElement("Time"); t != nil {
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(t.Text()))
			if err != nil {
				return nil, fmt.Errorf("trackpoint time: %w", err)
			}
			tp.Time = ts
		}

		if pos := el.SelectElement("Position"); pos != nil {
			lat, latOK := elementFloat(pos, "LatitudeDegrees")
			lon, lonOK := elementFloat(pos, "LongitudeDegrees")
			if latOK && lonOK {
				tp.Position.Lat, tp.Position.Lon = lat, lon
				tp.HasPosition = true
			}
		}

		tp.AltitudeMeters, tp.HasAltitude = elementFloat(el, "AltitudeMeters")
		tp.DistanceMeters, tp.HasDistance = elementFloat(el, "DistanceMeters")

		a.Trackpoints = append(a.Trackpoints, tp)
	}
	return a, nil
}

// elementFloat reads the float text of a direct child.
func elementFloat(parent *etree.Element, tag string) (float64, bool) {
	child := parent.SelectElement(tag)
	if child == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(child.Text()), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
