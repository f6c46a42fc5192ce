// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/stats"
)

func (a *app) newCoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Choose traces that together cover every recorded segment",
		Long: `Treats paths as undirected segments and greedily picks, for each segment
not yet covered, the trace that has the most segments. Prints which trace
each segment was taken from and the segments that trace covers.`,
		Args: cobra.NoArgs,
	}
	addPathsCSVFlag(cmd, "p")
	format := addFormatFlag(cmd, "text", "text", "table", "json")

	cmd.RunE = a.runE("cover", func(cmd *cobra.Command, _ []string) error {
		fm, err := format.get()
		if err != nil {
			return err
		}
		set, err := a.loadRecords()
		if err != nil {
			return err
		}
		steps := stats.Cover(set.Rows())

		switch fm {
		case "json":
			if steps == nil {
				steps = []stats.CoverStep{}
			}
			return writeJSON(a.out, steps)
		case "table":
			t := newTable(a.out, "Segment", "Trace", "Covers")
			for _, s := range steps {
				t.Append([]string{s.Segment, s.Trace, strings.Join(s.Covered, " ")})
			}
			t.Render()
			return nil
		}
		for _, s := range steps {
			fmt.Fprintf(a.out, "segment %s taken from %s\n  covers %s\n", s.Segment, s.Trace, strings.Join(s.Covered, " "))
		}
		return nil
	})
	return cmd
}
