// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tomtom215/waytrace/internal/paths"
)

// Row is one stored segment.
type Row struct {
	Trace     string  `json:"gps_file"`
	StartID   string  `json:"activity_datestamp"`
	PathID    string  `json:"path_id"`
	DistanceM float64 `json:"dist_m"`
	TimeS     float64 `json:"time_s"`
}

// Endpoints returns the waypoint IDs of the row's path.
func (r Row) Endpoints() (from, to string, err error) {
	return paths.SplitPathID(r.PathID)
}

// FromSegments converts extracted segments of one trace into rows.
func FromSegments(trace, startID string, segs []paths.Segment) []Row {
	rows := make([]Row, 0, len(segs))
	for _, s := range segs {
		rows = append(rows, Row{
			Trace:     trace,
			StartID:   startID,
			PathID:    s.PathID(),
			DistanceM: s.DistanceM,
			TimeS:     s.Duration.Seconds(),
		})
	}
	return rows
}

// Set is an in-memory collection of rows.
type Set struct {
	rows []Row
}

// NewSet returns a set holding rows.
func NewSet(rows []Row) *Set {
	return &Set{rows: append([]Row(nil), rows...)}
}

// Load reads the CSV at path. A missing file yields an empty set.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("records %s: %w", path, err)
	}
	return s, nil
}

// Read parses rows from r.
func Read(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	s := &Set{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		row := Row{Trace: rec[0], StartID: rec[1], PathID: rec[2]}
		if _, _, err := row.Endpoints(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if row.DistanceM, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: dist_m: %w", line, err)
		}
		if row.TimeS, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("line %d: time_s: %w", line, err)
		}
		s.rows = append(s.rows, row)
	}
}

// Len returns the number of rows.
func (s *Set) Len() int {
	return len(s.rows)
}

// Rows returns a copy of all rows in stored order.
func (s *Set) Rows() []Row {
	return append([]Row(nil), s.rows...)
}

// Has reports whether any row belongs to trace.
func (s *Set) Has(trace string) bool {
	for _, r := range s.rows {
		if r.Trace == trace {
			return true
		}
	}
	return false
}

// Traces lists the distinct traces in first-seen order.
func (s *Set) Traces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.rows {
		if !seen[r.Trace] {
			seen[r.Trace] = true
			out = append(out, r.Trace)
		}
	}
	return out
}

// ByPath groups rows by path ID.
func (s *Set) ByPath() map[string][]Row {
	out := make(map[string][]Row)
	for _, r := range s.rows {
		out[r.PathID] = append(out[r.PathID], r)
	}
	return out
}

// Merge adds rows grouped by trace. A trace already in the set is skipped,
// or has its old rows replaced when replace is true. It returns the traces
// that were merged.
func (s *Set) Merge(rows []Row, replace bool) []string {
	var order []string
	byTrace := make(map[string][]Row)
	for _, r := range rows {
		if _, ok := byTrace[r.Trace]; !ok {
			order = append(order, r.Trace)
		}
		byTrace[r.Trace] = append(byTrace[r.Trace], r)
	}

	var merged []string
	for _, trace := range order {
		if s.Has(trace) {
			if !replace {
				continue
			}
			s.Remove(trace)
		}
		s.rows = append(s.rows, byTrace[trace]...)
		merged = append(merged, trace)
	}
	return merged
}

// Remove drops every row of trace and returns how many were removed.
func (s *Set) Remove(trace string) int {
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r.Trace != trace {
			kept = append(kept, r)
		}
	}
	n := len(s.rows) - len(kept)
	s.rows = kept
	return n
}

// ordered returns rows grouped by path start, then path end, each group in
// first-seen order.
func (s *Set) ordered() []Row {
	var starts []string
	ends := make(map[string][]string)
	seen := make(map[string]bool)

	for _, r := range s.rows {
		from, to, _ := r.Endpoints()
		if _, ok := ends[from]; !ok {
			starts = append(starts, from)
		}
		if !seen[r.PathID] {
			seen[r.PathID] = true
			ends[from] = append(ends[from], to)
		}
	}

	groups := s.ByPath()

	out := make([]Row, 0, len(s.rows))
	for _, from := range starts {
		for _, to := range ends[from] {
			out = append(out, groups[paths.PathID(from, to)]...)
		}
	}
	return out
}

// Write encodes the set as CSV.
func (s *Set) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, r := range s.ordered() {
		rec := []string{
			r.Trace,
			r.StartID,
			r.PathID,
			strconv.FormatFloat(r.DistanceM, 'f', -1, 64),
			strconv.FormatFloat(r.TimeS, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the set to path atomically.
func (s *Set) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := s.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}
