// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package trace

import (
	"archive/zip"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tormoder/fit"

	"github.com/tomtom215/waytrace/internal/geo"
)

const sampleTCX = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Biking">
      <Id>2024-05-01T10:00:00Z</Id>
      <Lap StartTime="2024-05-01T10:00:00Z">
        <Track>
          <Trackpoint>
            <Time>2024-05-01T10:00:00Z</Time>
            <Position><LatitudeDegrees>44.0</LatitudeDegrees><LongitudeDegrees>-123.0</LongitudeDegrees></Position>
            <AltitudeMeters>100.0</AltitudeMeters>
            <DistanceMeters>0.0</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T10:00:10Z</Time>
            <AltitudeMeters>105.0</AltitudeMeters>
            <DistanceMeters>50.0</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T10:00:20Z</Time>
            <Position><LatitudeDegrees>44.001</LatitudeDegrees><LongitudeDegrees>-123.0</LongitudeDegrees></Position>
            <AltitudeMeters>103.0</AltitudeMeters>
            <DistanceMeters>112.0</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T10:00:30Z</Time>
            <Position><LatitudeDegrees>44.002</LatitudeDegrees><LongitudeDegrees>-123.0</LongitudeDegrees></Position>
            <AltitudeMeters>110.0</AltitudeMeters>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>
`

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><name>ride</name><trkseg>
    <trkpt lat="44.0" lon="-123.0"><ele>100</ele><time>2024-05-01T10:00:00Z</time></trkpt>
    <trkpt lat="44.001" lon="-123.0"><ele>90</ele><time>2024-05-01T10:00:20Z</time></trkpt>
    <trkpt lat="44.002" lon="-123.0"><ele>95</ele><time>2024-05-01T10:00:40Z</time></trkpt>
  </trkseg></trk>
</gpx>
`

// oneMilliDegreeLat is the haversine length of 0.001 degrees of latitude.
var oneMilliDegreeLat = geo.Distance(geo.Coord{Lat: 44.0, Lon: -123.0}, geo.Coord{Lat: 44.001, Lon: -123.0})

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func writeZip(t *testing.T, dir, name, member, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(member)
	if err != nil {
		t.Fatalf("zip member: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return p
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestOpen_TCX(t *testing.T) {
	t.Parallel()

	p := writeFile(t, t.TempDir(), "ride.tcx", sampleTCX)
	a, err := Open(p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if a.Format != FormatTCX || a.Path != p {
		t.Errorf("Format/Path = %q/%q", a.Format, a.Path)
	}
	if a.StartID != "2024-05-01T10:00:00Z" {
		t.Errorf("StartID = %q", a.StartID)
	}
	if a.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", a.Count())
	}
	if got := len(a.Positions()); got != 3 {
		t.Errorf("len(Positions()) = %d, want 3", got)
	}
	if a.Trackpoints[1].HasPosition {
		t.Error("trackpoint without <Position> reported as positioned")
	}

	wantDist := []float64{0, 50, 112, 112 + oneMilliDegreeLat}
	for i, want := range wantDist {
		if got := a.Trackpoints[i].DistanceMeters; !near(got, want) {
			t.Errorf("trackpoint %d distance = %f, want %f", i, got, want)
		}
	}
	if a.Trackpoints[3].HasDistance {
		t.Error("derived distance flagged as recorded")
	}

	if got := a.ElevationGain(); !near(got, 12) {
		t.Errorf("ElevationGain() = %f, want 12", got)
	}

	box := a.BBox()
	if box.North != 44.002 || box.South != 44.0 || box.West != -123.0 || box.East != -123.0 {
		t.Errorf("BBox() = %+v", box)
	}

	start, err := a.StartCoord()
	if err != nil || start != (geo.Coord{Lat: 44.0, Lon: -123.0}) {
		t.Errorf("StartCoord() = %v, %v", start, err)
	}
	if a.Duration() != 30*time.Second {
		t.Errorf("Duration() = %v", a.Duration())
	}
	if !near(a.DistanceMeters(), 112+oneMilliDegreeLat) {
		t.Errorf("DistanceMeters() = %f", a.DistanceMeters())
	}
}

func TestOpen_Zip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeZip(t, dir, "activity_123.zip", "activity_123.tcx", sampleTCX)

	a, err := Open(p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if a.Format != FormatZip || a.Count() != 4 {
		t.Errorf("Format = %q, Count = %d", a.Format, a.Count())
	}

	bad := writeZip(t, dir, "activity_456.zip", "other.tcx", sampleTCX)
	if _, err := Open(bad); !errors.Is(err, ErrMissingMember) {
		t.Errorf("Open(wrong member) error = %v, want ErrMissingMember", err)
	}
}

func TestOpen_GPX(t *testing.T) {
	t.Parallel()

	p := writeFile(t, t.TempDir(), "ride.gpx", sampleGPX)
	a, err := Open(p)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if a.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", a.Count())
	}
	if a.StartID != "2024-05-01T10:00:00Z" {
		t.Errorf("StartID = %q", a.StartID)
	}
	if !near(a.DistanceMeters(), 2*oneMilliDegreeLat) {
		t.Errorf("DistanceMeters() = %f, want %f", a.DistanceMeters(), 2*oneMilliDegreeLat)
	}
	if got := a.ElevationGain(); !near(got, 5) {
		t.Errorf("ElevationGain() = %f, want 5", got)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := Open("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(.txt) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"a.tcx":    FormatTCX,
		"A.TCX":    FormatTCX,
		"a.zip":    FormatZip,
		"a.gpx":    FormatGPX,
		"a.fit":    FormatFIT,
		"a.fit.gz": FormatFIT,
	}
	for name, want := range tests {
		got, err := DetectFormat(name)
		if err != nil || got != want {
			t.Errorf("DetectFormat(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
}

func TestReadTCX(t *testing.T) {
	t.Parallel()

	a, err := readTCX(strings.NewReader(sampleTCX))
	if err != nil {
		t.Fatalf("readTCX() error = %v", err)
	}
	if a.Count() != 4 {
		t.Errorf("Count() = %d, want 4", a.Count())
	}

	if _, err := readTCX(strings.NewReader("<TrainingCenterDatabase><Trackpoint><Time>yesterday</Time></Trackpoint></TrainingCenterDatabase>")); err == nil {
		t.Error("readTCX() with bad time should fail")
	}
}

func TestStartCoord_NoPosition(t *testing.T) {
	t.Parallel()

	a := &Activity{Trackpoints: []Trackpoint{{Time: time.Now()}}}
	if _, err := a.StartCoord(); !errors.Is(err, ErrNoPosition) {
		t.Errorf("StartCoord() error = %v, want ErrNoPosition", err)
	}
	if !a.BBox().IsEmpty() {
		t.Error("BBox() of unpositioned trace should be empty")
	}
}

func TestFromRecords(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	r1 := fit.NewRecordMsg()
	r1.Timestamp = ts
	r1.PositionLat = fit.NewLatitudeDegrees(44.0)
	r1.PositionLong = fit.NewLongitudeDegrees(-123.0)
	r1.Distance = 1500 // 15.00 m
	r1.Altitude = (100 + 500) * 5

	r2 := fit.NewRecordMsg()
	r2.Timestamp = ts.Add(time.Second)

	a := fromRecords([]*fit.RecordMsg{r1, r2})
	if a.Count() != 2 {
		t.Fatalf("Count() = %d", a.Count())
	}

	tp := a.Trackpoints[0]
	if !tp.HasPosition || math.Abs(tp.Position.Lat-44.0) > 1e-6 || math.Abs(tp.Position.Lon+123.0) > 1e-6 {
		t.Errorf("position = %v (%v)", tp.Position, tp.HasPosition)
	}
	if !tp.HasDistance || !near(tp.DistanceMeters, 15) {
		t.Errorf("distance = %f (%v)", tp.DistanceMeters, tp.HasDistance)
	}
	if !tp.HasAltitude || !near(tp.AltitudeMeters, 100) {
		t.Errorf("altitude = %f (%v)", tp.AltitudeMeters, tp.HasAltitude)
	}

	empty := a.Trackpoints[1]
	if empty.HasPosition || empty.HasDistance || empty.HasAltitude {
		t.Errorf("invalid record fields decoded as valid: %+v", empty)
	}
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.tcx", sampleTCX),
		filepath.Join(dir, "missing.tcx"),
		writeFile(t, dir, "b.gpx", sampleGPX),
	}

	results := LoadAll(context.Background(), paths, 2)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d", len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d path = %q, want %q", i, r.Path, paths[i])
		}
	}
	if results[0].Err != nil || results[0].Activity == nil {
		t.Errorf("a.tcx: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("missing.tcx: expected error")
	}
	if results[2].Err != nil || results[2].Activity.Count() != 3 {
		t.Errorf("b.gpx: %v", results[2].Err)
	}
}
