// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/paths"
)

type chainEntry struct {
	Trace string   `json:"trace"`
	Chain []string `json:"chain"`
}

func (a *app) newChainCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "chain -f TRACE...",
		Short: "Print the sequence of waypoints each trace passes",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringSliceVarP(&files, "gps-files", "f", nil, "trace files")
	_ = cmd.MarkFlagRequired("gps-files")
	addWaypointsFlag(cmd, "w")
	addRadiusFlag(cmd)
	format := addFormatFlag(cmd, "text", "text", "json")

	cmd.RunE = a.runE("chain", func(cmd *cobra.Command, _ []string) error {
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

		entries := make([]chainEntry, 0, len(acts))
		for _, act := range acts {
			res, ok, err := extractOne(ctx, act, store, paths.Options{RadiusM: a.cfg.Paths.RadiusM})
			if err != nil {
				return err
			}
			if !ok || len(res.Chain) == 0 {
				continue
			}
			entries = append(entries, chainEntry{Trace: act.Path, Chain: res.Chain})
		}

		if fm == "json" {
			return writeJSON(a.out, entries)
		}
		for _, e := range entries {
			fmt.Fprintf(a.out, "%s: %s\n", e.Trace, strings.Join(e.Chain, " "))
		}
		return nil
	})
	return cmd
}
