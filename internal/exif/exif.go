// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

// Package exif reads GPS coordinates from geotagged photos by running
// ImageMagick's "identify -verbose" and parsing its exif:GPS* properties.
package exif

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tomtom215/waytrace/internal/geo"
)

// ErrNoGPS is returned when a photo carries no usable GPS position.
var ErrNoGPS = errors.New("no GPS data in image")

// DefaultCommand is the ImageMagick tool used to dump image properties.
const DefaultCommand = "identify"

// runFunc executes a command and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Reader extracts photo coordinates through an external command.
type Reader struct {
	command string
	run     runFunc
}

// NewReader returns a Reader that runs command (DefaultCommand when empty).
func NewReader(command string) *Reader {
	if command == "" {
		command = DefaultCommand
	}
	return &Reader{command: command, run: execRun}
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Coords returns the GPS position of the image at path.
func (r *Reader) Coords(ctx context.Context, path string) (geo.Coord, error) {
	out, err := r.run(ctx, r.command, "-verbose", path)
	if err != nil {
		return geo.Coord{}, fmt.Errorf("exif %s: %w", path, err)
	}
	c, err := Parse(out)
	if err != nil {
		return geo.Coord{}, fmt.Errorf("exif %s: %w", path, err)
	}
	return c, nil
}

// Parse extracts the position from "identify -verbose" output. Latitude and
// longitude must both be present; missing hemisphere references mean N and E.
func Parse(out []byte) (geo.Coord, error) {
	props := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		rest, ok := strings.CutPrefix(line, "exif:GPS")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		props[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return geo.Coord{}, err
	}

	latDMS, okLat := props["Latitude"]
	lonDMS, okLon := props["Longitude"]
	if !okLat || !okLon {
		return geo.Coord{}, ErrNoGPS
	}

	lat, err := ParseDMS(latDMS)
	if err != nil {
		return geo.Coord{}, fmt.Errorf("GPSLatitude: %w", err)
	}
	lon, err := ParseDMS(lonDMS)
	if err != nil {
		return geo.Coord{}, fmt.Errorf("GPSLongitude: %w", err)
	}

	if strings.EqualFold(props["LatitudeRef"], "S") {
		lat = -lat
	}
	if strings.EqualFold(props["LongitudeRef"], "W") {
		lon = -lon
	}
	return geo.Coord{Lat: lat, Lon: lon}, nil
}

// ParseDMS converts EXIF rational degrees/minutes/seconds ("44/1, 33/1,
// 5280/100") to decimal degrees.
func ParseDMS(s string) (float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, fmt.Errorf("want 3 rationals, got %q", s)
	}

	var vals [3]float64
	for i, p := range parts {
		v, err := parseRational(strings.TrimSpace(p))
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return vals[0] + vals[1]/60 + vals[2]/3600, nil
}

func parseRational(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("rational %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("rational %q: %w", s, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("rational %q: zero denominator", s)
	}
	return n / d, nil
}
