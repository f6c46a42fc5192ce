// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/waytrace/internal/validation"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Paths.RadiusM != 20 {
		t.Errorf("Paths.RadiusM = %v, want 20", cfg.Paths.RadiusM)
	}
	if cfg.Tiles.Zoom != 16 {
		t.Errorf("Tiles.Zoom = %d, want 16", cfg.Tiles.Zoom)
	}
	if cfg.Tiles.MaxTiles != 2500 {
		t.Errorf("Tiles.MaxTiles = %d, want 2500", cfg.Tiles.MaxTiles)
	}
	if cfg.Tiles.CacheDir != "tile-cache" {
		t.Errorf("Tiles.CacheDir = %q, want tile-cache", cfg.Tiles.CacheDir)
	}
	if cfg.Render.StrokeWidth != 5 {
		t.Errorf("Render.StrokeWidth = %d, want 5", cfg.Render.StrokeWidth)
	}
	if cfg.Render.Output != "output.png" {
		t.Errorf("Render.Output = %q, want output.png", cfg.Render.Output)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestRCParser(t *testing.T) {
	t.Parallel()

	rc := []byte(`# waytrace settings
waypoints_file = /home/me/wpts.xml
path_csv_file=/home/me/paths.csv

map_api_key = abc=123
something_else = ignored
`)
	m, err := RCParser().Unmarshal(rc)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"waypoints.file", "/home/me/wpts.xml"},
		{"paths.csv_file", "/home/me/paths.csv"},
		{"tiles.api_key", "abc=123"},
	}
	for _, tt := range tests {
		got, ok := getNested(m, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%v), want %q", tt.path, got, ok, tt.want)
		}
	}
	if _, ok := m["something_else"]; ok {
		t.Error("unknown rc keys should be dropped")
	}

	out, err := RCParser().Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := "map_api_key = abc=123\npath_csv_file = /home/me/paths.csv\nwaypoints_file = /home/me/wpts.xml\n"
	if string(out) != want {
		t.Errorf("Marshal() = %q, want %q", out, want)
	}
}

func TestRCParserQuotedValues(t *testing.T) {
	t.Parallel()

	rc := []byte("waypoints_file = \"/home/me/my wpts.xml\"\npath_csv_file = '/home/me/paths.csv'\nmap_api_key = \"abc'\n")
	m, err := RCParser().Unmarshal(rc)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"waypoints.file", "/home/me/my wpts.xml"},
		{"paths.csv_file", "/home/me/paths.csv"},
		{"tiles.api_key", "\"abc'"},
	}
	for _, tt := range tests {
		if got, _ := getNested(m, tt.path); got != tt.want {
			t.Errorf("%s = %v, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRCParserMalformed(t *testing.T) {
	t.Parallel()

	if _, err := RCParser().Unmarshal([]byte("waypoints_file\n")); err == nil {
		t.Error("expected error for line without '='")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"WAYTRACE_WAYPOINTS_FILE", "waypoints.file"},
		{"WAYTRACE_TILES_API_KEY", "tiles.api_key"},
		{"WAYTRACE_TILES_TIMEOUT", "tiles.timeout"},
		{"WAYTRACE_LOG_LEVEL", "logging.level"},
		{"WAYTRACE_RADIUS_M", "paths.radius_m"},
		{"WAYTRACE_CONFIG", ""},
		{"WAYTRACE_NOPE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Load tests touch the process environment and cannot run in parallel.

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	rc := writeFile(t, dir, "trace.rc", "waypoints_file = /rc/wpts.xml\npath_csv_file = /rc/paths.csv\nmap_api_key = rckey\n")
	yml := writeFile(t, dir, "waytrace.yaml", `
paths:
  csv_file: /yaml/paths.csv
tiles:
  concurrency: 8
  timeout: 5s
`)
	t.Setenv("WAYTRACE_TILES_ZOOM", "14")
	t.Setenv("WAYTRACE_TILES_CONCURRENCY", "2")

	cfg, err := Load(LoadOptions{
		ConfigFile: yml,
		RCFile:     rc,
		Overrides:  map[string]interface{}{"tiles.zoom": 12},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Waypoints.File != "/rc/wpts.xml" {
		t.Errorf("Waypoints.File = %q, want rc value", cfg.Waypoints.File)
	}
	if cfg.Paths.CSVFile != "/yaml/paths.csv" {
		t.Errorf("Paths.CSVFile = %q, want yaml value", cfg.Paths.CSVFile)
	}
	if cfg.Tiles.APIKey != "rckey" {
		t.Errorf("Tiles.APIKey = %q, want rckey", cfg.Tiles.APIKey)
	}
	if cfg.Tiles.Timeout != 5*time.Second {
		t.Errorf("Tiles.Timeout = %v, want 5s", cfg.Tiles.Timeout)
	}
	if cfg.Tiles.Concurrency != 2 {
		t.Errorf("Tiles.Concurrency = %d, want env value 2", cfg.Tiles.Concurrency)
	}
	if cfg.Tiles.Zoom != 12 {
		t.Errorf("Tiles.Zoom = %d, want flag value 12", cfg.Tiles.Zoom)
	}
	if cfg.Paths.RadiusM != 20 {
		t.Errorf("Paths.RadiusM = %v, want default 20", cfg.Paths.RadiusM)
	}
}

func TestLoadSkipsRC(t *testing.T) {
	cfg, err := Load(LoadOptions{RCFile: "-"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Waypoints.File != "" {
		t.Errorf("Waypoints.File = %q, want empty", cfg.Waypoints.File)
	}
}

func TestLoadValidationError(t *testing.T) {
	_, err := Load(LoadOptions{
		RCFile:    "-",
		Overrides: map[string]interface{}{"tiles.zoom": 25},
	})
	if err == nil {
		t.Fatal("expected validation error for zoom 25")
	}
	var ves validation.Errors
	if !errors.As(err, &ves) {
		t.Fatalf("expected validation.Errors, got %T: %v", err, err)
	}
	if ves[0].Field != "Config.Tiles.Zoom" {
		t.Errorf("field = %q", ves[0].Field)
	}
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	_, err := Load(LoadOptions{RCFile: "-", ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestRequireSettings(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if _, err := cfg.RequireWaypoints(); !errors.Is(err, ErrMissingSetting) {
		t.Errorf("RequireWaypoints() error = %v, want ErrMissingSetting", err)
	}
	if _, err := cfg.RequirePathsCSV(); !errors.Is(err, ErrMissingSetting) {
		t.Errorf("RequirePathsCSV() error = %v, want ErrMissingSetting", err)
	}

	cfg.Waypoints.File = "w.xml"
	if got, err := cfg.RequireWaypoints(); err != nil || got != "w.xml" {
		t.Errorf("RequireWaypoints() = %q, %v", got, err)
	}
}

func TestTileMetaDir(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if got := cfg.TileMetaDir(); got != filepath.Join("tile-cache", ".meta") {
		t.Errorf("TileMetaDir() = %q", got)
	}
	cfg.Tiles.MetaDir = "/var/meta"
	if got := cfg.TileMetaDir(); got != "/var/meta" {
		t.Errorf("TileMetaDir() = %q", got)
	}
	cfg.Tiles.MetaDir = "-"
	if got := cfg.TileMetaDir(); got != "" {
		t.Errorf("TileMetaDir() with \"-\" = %q, want empty", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/gps/w.xml"); got != filepath.Join(home, "gps", "w.xml") {
		t.Errorf("expandHome() = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expandHome() = %q", got)
	}
}
