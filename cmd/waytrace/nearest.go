// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/stats"
)

func (a *app) newNearestCmd() *cobra.Command {
	var (
		files  []string
		wantID string
	)
	cmd := &cobra.Command{
		Use:   "nearest -f TRACE...",
		Short: "Find the waypoint closest to the start of each trace",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringSliceVarP(&files, "gps-files", "f", nil, "trace files")
	cmd.Flags().StringVar(&wantID, "waypoint", "", "only list traces starting nearest this waypoint ID")
	_ = cmd.MarkFlagRequired("gps-files")
	addWaypointsFlag(cmd, "w")
	format := addFormatFlag(cmd, "table", "table", "json")

	cmd.RunE = a.runE("nearest", func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		fm, err := format.get()
		if err != nil {
			return err
		}
		store, err := a.loadWaypoints()
		if err != nil {
			return err
		}
		acts, err := loadTraces(ctx, files)
		if err != nil {
			return err
		}

		starts := make([]stats.Start, 0, len(acts))
		for _, act := range acts {
			s, err := stats.NearestStart(act, store)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("file", act.Path).Msg("Skipping trace")
				continue
			}
			if wantID != "" && s.Waypoint != wantID {
				continue
			}
			starts = append(starts, s)
		}

		if fm == "json" {
			return writeJSON(a.out, starts)
		}
		t := newTable(a.out, "Trace", "Waypoint", "Distance (m)")
		for _, s := range starts {
			t.Append([]string{s.Trace, s.Waypoint, fmt.Sprintf("%.1f", s.DistanceM)})
		}
		t.Render()
		return nil
	})
	return cmd
}
