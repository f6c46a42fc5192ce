// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomtom215/waytrace/internal/config"
	"github.com/tomtom215/waytrace/internal/records"
	"github.com/tomtom215/waytrace/internal/stats"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

const testWaypoints = `<?xml version="1.0" encoding="UTF-8"?>
<waypoints>
  <wpt id="w1"><name>Trailhead</name><lat>45.0000</lat><lon>-122.0000</lon><elev_ft>300</elev_ft></wpt>
  <wpt id="w2"><name>Summit</name><lat>45.0100</lat><lon>-122.0000</lon><elev_ft></elev_ft></wpt>
  <wpt id="w10"><name>Far away</name><lat>46.0000</lat><lon>-121.0000</lon><elev_ft></elev_ft></wpt>
</waypoints>
`

const testTCX = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2">
  <Activities>
    <Activity Sport="Running">
      <Id>2024-05-01T07:00:00Z</Id>
      <Lap StartTime="2024-05-01T07:00:00Z">
        <Track>
          <Trackpoint>
            <Time>2024-05-01T07:00:00Z</Time>
            <Position><LatitudeDegrees>45.0000</LatitudeDegrees><LongitudeDegrees>-122.0000</LongitudeDegrees></Position>
            <AltitudeMeters>90</AltitudeMeters>
            <DistanceMeters>0</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T07:05:00Z</Time>
            <Position><LatitudeDegrees>45.0050</LatitudeDegrees><LongitudeDegrees>-122.0000</LongitudeDegrees></Position>
            <AltitudeMeters>120</AltitudeMeters>
            <DistanceMeters>556</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-05-01T07:10:00Z</Time>
            <Position><LatitudeDegrees>45.0100</LatitudeDegrees><LongitudeDegrees>-122.0000</LongitudeDegrees></Position>
            <AltitudeMeters>150</AltitudeMeters>
            <DistanceMeters>1112</DistanceMeters>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>
`

type fixture struct {
	dir       string
	waypoints string
	trace     string
	csv       string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		waypoints: filepath.Join(dir, "waypoints.xml"),
		trace:     filepath.Join(dir, "run.tcx"),
		csv:       filepath.Join(dir, "paths.csv"),
	}
	writeFile(t, f.waypoints, testWaypoints)
	writeFile(t, f.trace, testTCX)
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// execute runs the CLI with args, skipping the user's rc file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmdWith(&app{out: &out, errOut: io.Discard})
	root.SetArgs(append([]string{"--rc-file", "-", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandLoggerInContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var out, errOut bytes.Buffer
	root := newRootCmdWith(&app{out: &out, errOut: &errOut})
	root.SetArgs([]string{"--rc-file", "-", "--log-level", "debug", "--log-format", "json",
		"chain", "-f", f.trace, "-w", f.waypoints})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("chain: %v", err)
	}
	logs := errOut.String()
	if !strings.Contains(logs, `"command":"chain"`) || !strings.Contains(logs, `"run_id":`) {
		t.Errorf("command logs missing command or run_id: %s", logs)
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := execute(t, "extract", "-f", f.trace, "-w", f.waypoints, "-p", f.csv)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := f.trace + ",2024-05-01T07:00:00Z,w1:w2,1112,600\n"
	if out != want {
		t.Errorf("extract output = %q, want %q", out, want)
	}

	set, err := records.Load(f.csv)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if set.Len() != 1 || !set.Has(f.trace) {
		t.Fatalf("stored rows = %+v, want one row of %s", set.Rows(), f.trace)
	}

	// A stored trace is skipped on the next run.
	out, err = execute(t, "extract", "-f", f.trace, "-w", f.waypoints, "-p", f.csv)
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if out != "" {
		t.Errorf("second extract output = %q, want nothing", out)
	}

	// Unless stored data is ignored; the rows are replaced, not duplicated.
	if _, err := execute(t, "extract", "-j", "-f", f.trace, "-w", f.waypoints, "-p", f.csv); err != nil {
		t.Fatalf("extract -j: %v", err)
	}
	if set, _ = records.Load(f.csv); set.Len() != 1 {
		t.Errorf("rows after -j = %d, want 1", set.Len())
	}

	// A re-extracted trace that no longer yields segments drops its old rows.
	out, err = execute(t, "extract", "-j", "-i", "w10", "-f", f.trace, "-w", f.waypoints, "-p", f.csv)
	if err != nil {
		t.Fatalf("extract -j -i w10: %v", err)
	}
	if out != "" {
		t.Errorf("extract -j -i w10 output = %q, want nothing", out)
	}
	if set, _ = records.Load(f.csv); set.Has(f.trace) || set.Len() != 0 {
		t.Errorf("rows after empty re-extract = %+v, want none", set.Rows())
	}
}

func TestExtractJSONAndInterest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := execute(t, "extract", "-f", f.trace, "-w", f.waypoints, "--format", "json")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var rows []records.Row
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 1 || rows[0].PathID != "w1:w2" || rows[0].TimeS != 600 {
		t.Errorf("rows = %+v", rows)
	}

	out, err = execute(t, "extract", "-f", f.trace, "-w", f.waypoints, "-i", "w10", "--format", "json")
	if err != nil {
		t.Fatalf("extract -i: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("extract -i w10 = %q, want []", out)
	}
}

func TestExtractUnreadableTraces(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	bad := filepath.Join(f.dir, "notes.txt")
	writeFile(t, bad, "hello")

	// One bad file among good ones is skipped.
	if _, err := execute(t, "extract", "-f", bad+","+f.trace, "-w", f.waypoints); err != nil {
		t.Errorf("extract with one bad file: %v", err)
	}
	// Only bad files is an error.
	if _, err := execute(t, "extract", "-f", bad, "-w", f.waypoints); !errors.Is(err, errNoTraces) {
		t.Errorf("extract with only bad files error = %v, want errNoTraces", err)
	}
}

func TestChain(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := execute(t, "chain", "-f", f.trace, "-w", f.waypoints)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if want := f.trace + ": w1 w2\n"; out != want {
		t.Errorf("chain = %q, want %q", out, want)
	}
}

func TestMissingWaypointsSetting(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := execute(t, "chain", "-f", f.trace)
	if !errors.Is(err, config.ErrMissingSetting) {
		t.Errorf("chain without waypoints error = %v, want ErrMissingSetting", err)
	}
}

func TestAnalyzeWritesDot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	dot := filepath.Join(f.dir, "paths.dot")

	out, err := execute(t, "analyze", "-f", f.trace, "-w", f.waypoints, "-d", dot)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "w1:w2") || !strings.Contains(out, "0.69") {
		t.Errorf("analyze output missing path row:\n%s", out)
	}

	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(data), `"w1" -> "w2" [label="0.69", len="1113"];`) {
		t.Errorf("dot file = %q", data)
	}
}

const testCSV = `a.tcx,2024-01-01T00:00:00Z,w1:w2,1609,600
b.tcx,2024-01-02T00:00:00Z,w1:w2,3218,1200
b.tcx,2024-01-02T00:00:00Z,w3:w2,1609,300
`

func TestSummary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	writeFile(t, f.csv, testCSV)

	out, err := execute(t, "summary", "-p", f.csv)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := "w1:w2 1.00 mi 0:10:00 min (2)\nw3:w2 1.00 mi 0:05:00 min (1)\n"
	if out != want {
		t.Errorf("summary = %q, want %q", out, want)
	}
}

func TestSummaryCourse(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	writeFile(t, f.csv, testCSV)
	course := filepath.Join(f.dir, "course.txt")
	writeFile(t, course, "w1\nw2\nw3\nw10\n")

	out, err := execute(t, "summary", "-p", f.csv, "-w", f.waypoints, "-c", course)
	if err != nil {
		t.Fatalf("summary -c: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("course lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "[w1  ] Trailhead") || !strings.HasSuffix(lines[0], " 0.00 0:00:00") {
		t.Errorf("start line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " 1.00 0:10:00") {
		t.Errorf("w2 line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], " 2.00 0:15:00 *") {
		t.Errorf("reversed w3 line = %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "missing data") {
		t.Errorf("missing w10 line = %q", lines[3])
	}

	out, err = execute(t, "summary", "-p", f.csv, "-c", course, "--format", "json")
	if err != nil {
		t.Fatalf("summary json: %v", err)
	}
	var legs []stats.Leg
	if err := json.Unmarshal([]byte(out), &legs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(legs) != 4 || !legs[2].Reversed || !legs[3].Missing {
		t.Errorf("legs = %+v", legs)
	}
}

func TestMatrixAndCover(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	writeFile(t, f.csv, testCSV)

	out, err := execute(t, "matrix", "-p", f.csv)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if !strings.Contains(out, "1.50 15:00 (2)") {
		t.Errorf("matrix missing w1:w2 cell:\n%s", out)
	}

	out, err = execute(t, "cover", "-p", f.csv, "--format", "json")
	if err != nil {
		t.Fatalf("cover: %v", err)
	}
	var steps []stats.CoverStep
	if err := json.Unmarshal([]byte(out), &steps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(steps) != 1 || steps[0].Trace != "b.tcx" {
		t.Errorf("cover = %+v, want b.tcx covering everything", steps)
	}
}

func TestNearest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	out, err := execute(t, "nearest", "-f", f.trace, "-w", f.waypoints, "--format", "json")
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	var starts []stats.Start
	if err := json.Unmarshal([]byte(out), &starts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(starts) != 1 || starts[0].Waypoint != "w1" || starts[0].DistanceM > 1 {
		t.Errorf("nearest = %+v", starts)
	}

	out, err = execute(t, "nearest", "-f", f.trace, "-w", f.waypoints, "--waypoint", "w2", "--format", "json")
	if err != nil {
		t.Fatalf("nearest --waypoint: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("nearest --waypoint w2 = %q, want []", out)
	}
}

func TestWaypointsAddAndList(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	wf := filepath.Join(dir, "new.xml")
	trc := filepath.Join(dir, "run.tcx")
	writeFile(t, trc, testTCX)

	if _, err := execute(t, "waypoints", "add", "-w", wf, "--id", "w5", "--name", "Bridge", "--lat", "45.5", "--lon", "-122.5", "--elev-ft", "42"); err != nil {
		t.Fatalf("add by coordinate: %v", err)
	}
	if _, err := execute(t, "waypoints", "add", "-w", wf, "--id", "w12", "--from-trace", trc, "--index", "2"); err != nil {
		t.Fatalf("add from trace: %v", err)
	}
	if _, err := execute(t, "waypoints", "add", "-w", wf, "--id", "w5", "--lat", "1", "--lon", "1"); !errors.Is(err, waypoint.ErrDuplicateID) {
		t.Errorf("duplicate add error = %v, want ErrDuplicateID", err)
	}
	if _, err := execute(t, "waypoints", "add", "-w", wf, "--id", "w7", "--from-trace", trc, "--index", "9"); err == nil {
		t.Error("expected error for out-of-range index")
	}

	out, err := execute(t, "waypoints", "list", "-w", wf, "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var wps []waypoint.Waypoint
	if err := json.Unmarshal([]byte(out), &wps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wps) != 2 || wps[0].ID != "w5" || wps[1].ID != "w12" {
		t.Fatalf("list = %+v, want w5 then w12", wps)
	}
	if !wps[0].HasElev || wps[0].ElevFt != 42 {
		t.Errorf("w5 elevation = %+v", wps[0])
	}
	// 150 m is 492 ft.
	if !wps[1].HasElev || wps[1].ElevFt != 492 || wps[1].Coord.Lat != 45.01 {
		t.Errorf("w12 = %+v", wps[1])
	}

	out, err = execute(t, "waypoints", "list", "-w", wf, "--bbox", "45.6,-122.6,45.4,-122.4")
	if err != nil {
		t.Fatalf("list --bbox: %v", err)
	}
	if !strings.Contains(out, "Bridge") || strings.Contains(out, "w12") {
		t.Errorf("bbox list:\n%s", out)
	}
}

func TestPlotNeedsInput(t *testing.T) {
	t.Parallel()
	if _, err := execute(t, "plot"); !errors.Is(err, errNothingToPlot) {
		t.Errorf("plot error = %v, want errNothingToPlot", err)
	}
}

func TestBadFormat(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	writeFile(t, f.csv, testCSV)
	if _, err := execute(t, "cover", "-p", f.csv, "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestInvalidConfigFromFlag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if _, err := execute(t, "plot", "-f", f.trace, "-z", "25"); err == nil {
		t.Error("expected validation error for zoom 25")
	}
}

func TestFlagOverrides(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	addTileFlags(cmd)
	addRadiusFlag(cmd)
	cmd.Flags().String("unbound", "", "")

	if err := cmd.ParseFlags([]string{"-z", "12", "-j", "-b", "--radius", "7.5", "--unbound", "x"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := flagOverrides(cmd.Flags())
	want := map[string]interface{}{
		"tiles.zoom":         12,
		"tiles.ignore_cache": true,
		"tiles.buffer":       1,
		"paths.radius_m":     7.5,
	}
	if len(got) != len(want) {
		t.Fatalf("overrides = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("overrides[%s] = %v (%T), want %v", k, got[k], got[k], v)
		}
	}
}

func TestFlagValue(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("t", pflag.ContinueOnError)
	fs.String("s", "abc", "")
	fs.Int("i", 3, "")
	fs.Bool("b", true, "")
	fs.Float64("f", 0.25, "")

	tests := []struct {
		name string
		want interface{}
	}{
		{"s", "abc"},
		{"i", 3},
		{"b", true},
		{"f", 0.25},
	}
	for _, tt := range tests {
		if got := flagValue(fs.Lookup(tt.name)); got != tt.want {
			t.Errorf("flagValue(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTileOptions(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.LoadOptions{RCFile: "-", Overrides: map[string]interface{}{
		"tiles.cache_dir": "/tmp/tiles",
		"tiles.api_key":   "k",
	}})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	a := &app{cfg: cfg, errOut: io.Discard}
	o := tileOptions(a)
	if o.Dir != "/tmp/tiles" || o.APIKey != "k" || o.MetaDir != filepath.Join("/tmp/tiles", ".meta") {
		t.Errorf("options = %+v", o)
	}
	if o.Concurrency != cfg.Tiles.Concurrency || o.BreakerFailures != cfg.Tiles.BreakerFailures {
		t.Errorf("options not copied from config: %+v", o)
	}
}
