// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/metrics"
	"github.com/tomtom215/waytrace/internal/paths"
	"github.com/tomtom215/waytrace/internal/records"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

type extractFlags struct {
	files        []string
	interest     []string
	ignoreStored bool
	format       *formatFlag
}

func (a *app) newExtractCmd() *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract -f TRACE...",
		Short: "Extract waypoint-to-waypoint path segments from traces",
		Long: `Matches every trace against the waypoints inside its bounding box and
prints one row per path segment: file, activity start, path ID, distance in
meters and time in seconds. When a path CSV is configured the rows are merged
into it; traces already stored are skipped unless --ignore-stored is set.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.runE("extract", func(cmd *cobra.Command, _ []string) error {
		return a.runExtract(cmd, f)
	})

	cmd.Flags().StringSliceVarP(&f.files, "gps-files", "f", nil, "trace files (.tcx, .zip, .gpx, .fit)")
	cmd.Flags().StringSliceVarP(&f.interest, "waypoints-of-intr", "i", nil, "only traces passing near one of these waypoint IDs")
	cmd.Flags().BoolVarP(&f.ignoreStored, "ignore-stored", "j", false, "re-extract traces already in the path CSV")
	_ = cmd.MarkFlagRequired("gps-files")
	addWaypointsFlag(cmd, "w")
	addPathsCSVFlag(cmd, "p")
	addRadiusFlag(cmd)
	f.format = addFormatFlag(cmd, "csv", "csv", "json")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, f *extractFlags) error {
	ctx := cmd.Context()
	format, err := f.format.get()
	if err != nil {
		return err
	}
	store, err := a.loadWaypoints()
	if err != nil {
		return err
	}

	var stored *records.Set
	csvPath := a.cfg.Paths.CSVFile
	if csvPath != "" {
		if stored, err = records.Load(csvPath); err != nil {
			return err
		}
	}

	acts, err := loadTraces(ctx, f.files)
	if err != nil {
		return err
	}

	// Re-extracted traces lose their stored rows even when they yield none now.
	removed := 0
	if stored != nil && f.ignoreStored {
		for _, p := range f.files {
			removed += stored.Remove(p)
		}
	}

	opts := paths.Options{RadiusM: a.cfg.Paths.RadiusM, Interest: f.interest}
	var rows []records.Row
	for _, act := range acts {
		if stored != nil && !f.ignoreStored && stored.Has(act.Path) {
			logging.Ctx(ctx).Info().Str("file", act.Path).Msg("Trace already stored")
			metrics.RecordTrace("skipped")
			continue
		}
		res, ok, err := extractOne(ctx, act, store, opts)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		rows = append(rows, records.FromSegments(act.Path, res.StartID, res.Segments)...)
	}

	switch format {
	case "json":
		if rows == nil {
			rows = []records.Row{}
		}
		err = writeJSON(a.out, rows)
	default:
		err = records.NewSet(rows).Write(a.out)
	}
	if err != nil {
		return err
	}

	if stored == nil {
		return nil
	}
	merged := stored.Merge(rows, f.ignoreStored)
	if len(merged) == 0 && removed == 0 {
		logging.Ctx(ctx).Info().Msg("No new traces to store")
		return nil
	}
	if err := stored.Save(csvPath); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Int("traces", len(merged)).
		Int("removed_rows", removed).
		Int("rows", stored.Len()).
		Str("file", csvPath).
		Msg("Path records saved")
	return nil
}

// extractOne runs paths.Extract and sorts its outcome into a result, a
// skipped trace (ok false), or a hard error.
func extractOne(ctx context.Context, act *trace.Activity, store *waypoint.Store, opts paths.Options) (*paths.Result, bool, error) {
	log := logging.Ctx(ctx).With().Str("file", act.Path).Logger()

	res, err := paths.Extract(act, store, opts)
	switch {
	case errors.Is(err, paths.ErrNoWaypoints),
		errors.Is(err, paths.ErrNotOfInterest),
		errors.Is(err, trace.ErrNoPosition):
		log.Info().Err(err).Msg("Skipping trace")
		metrics.RecordTrace("skipped")
		return nil, false, nil
	case err != nil:
		metrics.RecordTrace("error")
		return nil, false, fmt.Errorf("%s: %w", act.Path, err)
	}

	metrics.RecordTrace("ok")
	metrics.RecordSegments(len(res.Segments))
	log.Debug().
		Int("waypoints", res.Candidates).
		Int("trackpoints", act.Count()).
		Str("start", res.StartID).
		Int("segments", len(res.Segments)).
		Msg("Trace matched")
	return res, true, nil
}
