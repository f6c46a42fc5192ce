// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/metrics"
	"github.com/tomtom215/waytrace/internal/records"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// errNoTraces is returned when none of the given trace files could be read.
var errNoTraces = errors.New("no readable traces")

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func (a *app) loadWaypoints() (*waypoint.Store, error) {
	path, err := a.cfg.RequireWaypoints()
	if err != nil {
		return nil, err
	}
	store, err := waypoint.Load(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) loadRecords() (*records.Set, error) {
	path, err := a.cfg.RequirePathsCSV()
	if err != nil {
		return nil, err
	}
	return records.Load(path)
}

// loadTraces reads files concurrently. Unreadable files are logged and
// skipped; errNoTraces is returned only when every file failed.
func loadTraces(ctx context.Context, files []string) ([]*trace.Activity, error) {
	results := trace.LoadAll(ctx, files, runtime.NumCPU())
	acts := make([]*trace.Activity, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			logging.Ctx(ctx).Warn().Err(r.Err).Str("file", r.Path).Msg("Skipping unreadable trace")
			metrics.RecordTrace("error")
			continue
		}
		acts = append(acts, r.Activity)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(acts) == 0 && len(files) > 0 {
		return nil, fmt.Errorf("%w: %d file(s) failed", errNoTraces, len(files))
	}
	return acts, nil
}
