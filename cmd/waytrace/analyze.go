// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/paths"
	"github.com/tomtom215/waytrace/internal/records"
	"github.com/tomtom215/waytrace/internal/stats"
	"github.com/tomtom215/waytrace/internal/units"
)

func (a *app) newAnalyzeCmd() *cobra.Command {
	var (
		files    []string
		interest []string
		dotFile  string
	)
	cmd := &cobra.Command{
		Use:   "analyze -f TRACE...",
		Short: "Average distance per path over a set of traces",
		Long: `Extracts path segments from the given traces without storing them and
prints the number of traversals and the mean distance of every path.
With --dot-file the paths are also written as a Graphviz digraph.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringSliceVarP(&files, "gps-files", "f", nil, "trace files")
	cmd.Flags().StringSliceVarP(&interest, "waypoints-of-intr", "i", nil, "only traces passing near one of these waypoint IDs")
	cmd.Flags().StringVarP(&dotFile, "dot-file", "d", "", "write a Graphviz .dot file")
	_ = cmd.MarkFlagRequired("gps-files")
	addWaypointsFlag(cmd, "w")
	addRadiusFlag(cmd)

	cmd.RunE = a.runE("analyze", func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		store, err := a.loadWaypoints()
		if err != nil {
			return err
		}
		acts, err := loadTraces(ctx, files)
		if err != nil {
			return err
		}

		opts := paths.Options{RadiusM: a.cfg.Paths.RadiusM, Interest: interest}
		var rows []records.Row
		for _, act := range acts {
			res, ok, err := extractOne(ctx, act, store, opts)
			if err != nil {
				return err
			}
			if ok {
				rows = append(rows, records.FromSegments(act.Path, res.StartID, res.Segments)...)
			}
		}

		summary := stats.Summarize(rows)
		t := newTable(a.out, "Path", "Count", "Avg dist (m)", "Avg dist (mi)")
		for _, p := range summary.Paths() {
			t.Append([]string{
				p.PathID,
				strconv.Itoa(p.Count),
				fmt.Sprintf("%.1f", p.MeanDistanceM),
				fmt.Sprintf("%3.2f", units.MetersToMiles(p.MeanDistanceM)),
			})
		}
		t.Render()

		if dotFile == "" {
			return nil
		}
		return writeDotFile(dotFile, summary)
	})
	return cmd
}

func writeDotFile(path string, s *stats.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dot file: %w", err)
	}
	if err := stats.WriteDot(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("write dot file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Info().Str("file", path).Int("paths", s.Len()).Msg("Graph written")
	return nil
}
