// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package waypoint

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/tidwall/rtree"

	"github.com/tomtom215/waytrace/internal/geo"
	"github.com/tomtom215/waytrace/internal/tile"
	"github.com/tomtom215/waytrace/internal/validation"
)

// Sentinel errors.
var (
	ErrDuplicateID = errors.New("duplicate waypoint id")
	ErrNotFound    = errors.New("waypoint not found")
)

// Waypoint is a named reference point.
type Waypoint struct {
	ID      string    `json:"id" validate:"required,waypointid"`
	Name    string    `json:"name" validate:"max=200"`
	Coord   geo.Coord `json:"coord"`
	ElevFt  int       `json:"elev_ft,omitempty"`
	HasElev bool      `json:"has_elev"`
}

// validate checks the fields a hand-entered waypoint can get wrong.
func (w Waypoint) validate() error {
	if err := validation.ValidateStruct(&w); err != nil {
		return err
	}
	if err := validation.ValidateVar("lat", w.Coord.Lat, "latitude"); err != nil {
		return err
	}
	return validation.ValidateVar("lon", w.Coord.Lon, "longitude")
}

// Store holds a waypoint file in memory.
type Store struct {
	doc   *etree.Document
	byID  map[string]*Waypoint
	order []string
	tree  rtree.RTreeG[string]
}

// New returns an empty store with a <waypoints> root element.
func New() *Store {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateElement("waypoints")
	return &Store{doc: doc, byID: make(map[string]*Waypoint)}
}

// Load reads the waypoint file at path.
func Load(path string) (*Store, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("read waypoints %s: %w", path, err)
	}
	s, err := fromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("waypoints %s: %w", path, err)
	}
	return s, nil
}

// Parse reads a waypoint document from r.
func Parse(r io.Reader) (*Store, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read waypoints: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc *etree.Document) (*Store, error) {
	s := &Store{doc: doc, byID: make(map[string]*Waypoint)}
	for _, el := range doc.FindElements("//wpt") {
		w, err := parseElement(el)
		if err != nil {
			return nil, err
		}
		if err := s.index(w); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseElement(el *etree.Element) (Waypoint, error) {
	w := Waypoint{ID: el.SelectAttrValue("id", "")}
	if w.ID == "" {
		return w, fmt.Errorf("wpt %q: missing id", childText(el, "name"))
	}
	w.Name = childText(el, "name")

	var err error
	if w.Coord.Lat, err = strconv.ParseFloat(childText(el, "lat"), 64); err != nil {
		return w, fmt.Errorf("wpt %s: lat: %w", w.ID, err)
	}
	if w.Coord.Lon, err = strconv.ParseFloat(childText(el, "lon"), 64); err != nil {
		return w, fmt.Errorf("wpt %s: lon: %w", w.ID, err)
	}
	if elev := childText(el, "elev_ft"); elev != "" {
		f, err := strconv.ParseFloat(elev, 64)
		if err != nil {
			return w, fmt.Errorf("wpt %s: elev_ft: %w", w.ID, err)
		}
		w.ElevFt = int(math.Round(f))
		w.HasElev = true
	}
	return w, nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func (s *Store) index(w Waypoint) error {
	if _, dup := s.byID[w.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, w.ID)
	}
	wp := w
	s.byID[w.ID] = &wp
	s.order = append(s.order, w.ID)
	pt := [2]float64{w.Coord.Lon, w.Coord.Lat}
	s.tree.Insert(pt, pt, w.ID)
	return nil
}

// Len returns the number of waypoints.
func (s *Store) Len() int {
	return len(s.order)
}

// All returns every waypoint in file order.
func (s *Store) All() []Waypoint {
	out := make([]Waypoint, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// IDs returns every waypoint ID in natural order.
func (s *Store) IDs() []string {
	ids := append([]string(nil), s.order...)
	SortIDs(ids)
	return ids
}

// Get returns the waypoint with the given ID.
func (s *Store) Get(id string) (Waypoint, bool) {
	w, ok := s.byID[id]
	if !ok {
		return Waypoint{}, false
	}
	return *w, true
}

// Lookup is Get returning ErrNotFound.
func (s *Store) Lookup(id string) (Waypoint, error) {
	w, ok := s.Get(id)
	if !ok {
		return Waypoint{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return w, nil
}

// Within returns the waypoints inside b (edges included) in natural ID order.
func (s *Store) Within(b geo.BBox) []Waypoint {
	if b.IsEmpty() {
		return nil
	}
	var ids []string
	s.tree.Search([2]float64{b.West, b.South}, [2]float64{b.East, b.North},
		func(_, _ [2]float64, id string) bool {
			ids = append(ids, id)
			return true
		})
	SortIDs(ids)

	out := make([]Waypoint, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.byID[id])
	}
	return out
}

// BBox returns the bounding box of the given waypoint IDs.
func (s *Store) BBox(ids []string) (geo.BBox, error) {
	b := geo.EmptyBBox()
	for _, id := range ids {
		w, err := s.Lookup(id)
		if err != nil {
			return b, err
		}
		b = b.Extend(w.Coord)
	}
	return b, nil
}

// TileIndex maps each tile at zoom to the IDs of the waypoints on it, in
// natural order.
func (s *Store) TileIndex(zoom int) map[tile.Tile][]string {
	idx := make(map[tile.Tile][]string)
	for _, id := range s.IDs() {
		t := tile.FromCoord(s.byID[id].Coord, zoom)
		idx[t] = append(idx[t], id)
	}
	return idx
}

// Nearest returns the waypoint closest to c and its distance in meters.
// Equal distances resolve to the naturally smaller ID. ok is false for an
// empty store.
func (s *Store) Nearest(c geo.Coord) (w Waypoint, distM float64, ok bool) {
	for _, id := range s.order {
		cand := s.byID[id]
		d := geo.Distance(c, cand.Coord)
		if !ok || d < distM || (d == distM && NaturalLess(cand.ID, w.ID)) {
			w, distM, ok = *cand, d, true
		}
	}
	return w, distM, ok
}

// Add validates w and appends it to the store and its document.
func (s *Store) Add(w Waypoint) error {
	if err := w.validate(); err != nil {
		return fmt.Errorf("waypoint %q: %w", w.ID, err)
	}
	if err := s.index(w); err != nil {
		return err
	}

	root := s.doc.Root()
	if root == nil {
		root = s.doc.CreateElement("waypoints")
	}
	el := root.CreateElement("wpt")
	el.CreateAttr("id", w.ID)
	el.CreateElement("name").SetText(w.Name)
	el.CreateElement("lat").SetText(strconv.FormatFloat(w.Coord.Lat, 'f', -1, 64))
	el.CreateElement("lon").SetText(strconv.FormatFloat(w.Coord.Lon, 'f', -1, 64))
	elev := el.CreateElement("elev_ft")
	if w.HasElev {
		elev.SetText(strconv.Itoa(w.ElevFt))
	}
	return nil
}

// Save writes the document to path atomically.
func (s *Store) Save(path string) error {
	s.doc.Indent(2)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save waypoints: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := s.doc.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save waypoints: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save waypoints: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save waypoints: %w", err)
	}
	return nil
}
