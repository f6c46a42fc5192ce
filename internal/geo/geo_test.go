// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    Coord
		want    float64
		epsilon float64
	}{
		{"same point", Coord{44.5646, -123.2620}, Coord{44.5646, -123.2620}, 0, 1e-9},
		{"one degree of latitude", Coord{0, 0}, Coord{1, 0}, 111194.93, 1},
		{"one degree of longitude at equator", Coord{0, 0}, Coord{0, 1}, 111194.93, 1},
		{"New York to London", Coord{40.7128, -74.0060}, Coord{51.5074, -0.1278}, 5570222, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.epsilon {
				t.Errorf("Distance() = %f, want %f (±%f)", got, tt.want, tt.epsilon)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	t.Parallel()

	a := Coord{44.5646, -123.2620}
	b := Coord{44.5700, -123.2750}
	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestBBox_ExtendAndContains(t *testing.T) {
	t.Parallel()

	box := EmptyBBox()
	if !box.IsEmpty() {
		t.Fatal("EmptyBBox() should be empty")
	}
	if box.Contains(Coord{0, 0}) {
		t.Error("empty box should contain nothing")
	}

	box = box.Extend(Coord{44.5, -123.3})
	if box.IsEmpty() {
		t.Fatal("box should not be empty after Extend")
	}
	if !box.Contains(Coord{44.5, -123.3}) {
		t.Error("degenerate box should contain its only point")
	}

	box = box.Extend(Coord{44.6, -123.2})
	want := BBox{North: 44.6, West: -123.3, South: 44.5, East: -123.2}
	if box != want {
		t.Errorf("box = %+v, want %+v", box, want)
	}

	tests := []struct {
		c    Coord
		want bool
	}{
		{Coord{44.55, -123.25}, true},
		{Coord{44.6, -123.2}, true}, // corner is inclusive
		{Coord{44.61, -123.25}, false},
		{Coord{44.55, -123.31}, false},
		{Coord{44.49, -123.25}, false},
		{Coord{44.55, -123.19}, false},
	}
	for _, tt := range tests {
		if got := box.Contains(tt.c); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestBBox_Union(t *testing.T) {
	t.Parallel()

	a := BBox{North: 2, West: 0, South: 1, East: 1}
	b := BBox{North: 3, West: -1, South: 0, East: 0.5}

	got := a.Union(b)
	want := BBox{North: 3, West: -1, South: 0, East: 1}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if got := EmptyBBox().Union(a); got != a {
		t.Errorf("empty.Union(a) = %+v, want %+v", got, a)
	}
	if got := a.Union(EmptyBBox()); got != a {
		t.Errorf("a.Union(empty) = %+v, want %+v", got, a)
	}
}

func TestParseBBox(t *testing.T) {
	t.Parallel()

	b, err := ParseBBox("44.6,-123.3,44.5,-123.2")
	if err != nil {
		t.Fatalf("ParseBBox() error = %v", err)
	}
	if b.North != 44.6 || b.West != -123.3 || b.South != 44.5 || b.East != -123.2 {
		t.Errorf("ParseBBox() = %+v", b)
	}

	for _, in := range []string{"", "1,2,3", "44.5,-123.3,44.6,-123.2", "a,b,c,d"} {
		if _, err := ParseBBox(in); err == nil {
			t.Errorf("ParseBBox(%q) expected error", in)
		}
	}
}
