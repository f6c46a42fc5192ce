// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package exif

import (
	"context"
	"errors"
	"math"
	"testing"
)

const identifyOutput = `Image:
  Filename: IMG_0042.jpg
  Format: JPEG (Joint Photographic Experts Group JFIF format)
  Properties:
    date:create: 2024-05-01T10:00:00+00:00
    exif:GPSAltitude: 7160/100
    exif:GPSLatitude: 44/1, 33/1, 5280/100
    exif:GPSLatitudeRef: N
    exif:GPSLongitude: 123/1, 15/1, 4320/100
    exif:GPSLongitudeRef: W
    exif:Make: Apple
`

func TestParse(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(identifyOutput))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantLat := 44 + 33.0/60 + 52.8/3600
	wantLon := -(123 + 15.0/60 + 43.2/3600)
	if math.Abs(c.Lat-wantLat) > 1e-9 || math.Abs(c.Lon-wantLon) > 1e-9 {
		t.Errorf("Parse() = %v, want (%f, %f)", c, wantLat, wantLon)
	}
}

func TestParse_SouthernHemisphere(t *testing.T) {
	t.Parallel()

	out := "    exif:GPSLatitudeRef: S\n    exif:GPSLatitude: 33/1, 52/1, 0/1\n    exif:GPSLongitude: 151/1, 12/1, 36/1\n"
	c, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Lat >= 0 || c.Lon <= 0 {
		t.Errorf("Parse() = %v, want southern/eastern", c)
	}
}

func TestParse_NoGPS(t *testing.T) {
	t.Parallel()

	for name, out := range map[string]string{
		"no exif":        "Image:\n  Filename: x.jpg\n",
		"latitude only":  "    exif:GPSLatitude: 44/1, 0/1, 0/1\n",
		"longitude only": "    exif:GPSLongitude: 44/1, 0/1, 0/1\n",
	} {
		if _, err := Parse([]byte(out)); !errors.Is(err, ErrNoGPS) {
			t.Errorf("%s: Parse() error = %v, want ErrNoGPS", name, err)
		}
	}
}

func TestParseDMS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"44/1, 30/1, 0/1", 44.5, false},
		{"10, 15, 36", 10.26, false},
		{"1/2, 0/1, 0/1", 0.5, false},
		{"44/1, 30/1", 0, true},
		{"44/0, 30/1, 0/1", 0, true},
		{"a/1, 30/1, 0/1", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDMS(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDMS(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseDMS(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReaderCoords(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	r := NewReader("")
	r.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte(identifyOutput), nil
	}

	c, err := r.Coords(context.Background(), "IMG_0042.jpg")
	if err != nil {
		t.Fatalf("Coords() error = %v", err)
	}
	if gotName != DefaultCommand || len(gotArgs) != 2 || gotArgs[0] != "-verbose" || gotArgs[1] != "IMG_0042.jpg" {
		t.Errorf("ran %s %v", gotName, gotArgs)
	}
	if c.Lat < 44 || c.Lon > -123 {
		t.Errorf("Coords() = %v", c)
	}

	failing := NewReader("magick")
	failing.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("not installed")
	}
	if _, err := failing.Coords(context.Background(), "x.jpg"); err == nil {
		t.Error("Coords() should surface runner errors")
	}
}
