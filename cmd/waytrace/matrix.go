// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/stats"
	"github.com/tomtom215/waytrace/internal/units"
)

type matrixJSON struct {
	IDs   []string          `json:"ids"`
	Paths []stats.PathStats `json:"paths"`
}

func (a *app) newMatrixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Mean distance and time between every pair of waypoints",
		Long: `Prints a matrix with one row and one column per waypoint that starts or
ends a recorded path. Each cell holds the mean distance in miles, the mean
time and the number of traversals of row to column.`,
		Args: cobra.NoArgs,
	}
	addPathsCSVFlag(cmd, "p")
	format := addFormatFlag(cmd, "table", "table", "json")

	cmd.RunE = a.runE("matrix", func(cmd *cobra.Command, _ []string) error {
		fm, err := format.get()
		if err != nil {
			return err
		}
		set, err := a.loadRecords()
		if err != nil {
			return err
		}
		m := stats.NewMatrix(stats.Summarize(set.Rows()))
		if fm == "json" {
			out := matrixJSON{IDs: m.IDs, Paths: []stats.PathStats{}}
			for _, from := range m.IDs {
				out.Paths = append(out.Paths, m.Row(from)...)
			}
			return writeJSON(a.out, out)
		}
		printMatrix(a.out, m)
		return nil
	})
	return cmd
}

func printMatrix(w io.Writer, m *stats.Matrix) {
	t := newTable(w, append([]string{""}, m.IDs...)...)
	for _, from := range m.IDs {
		row := make([]string, 0, len(m.IDs)+1)
		row = append(row, from)
		for _, to := range m.IDs {
			row = append(row, matrixCell(m, from, to))
		}
		t.Append(row)
	}
	t.Render()
}

func matrixCell(m *stats.Matrix, from, to string) string {
	p, ok := m.Cell(from, to)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%3.2f %s (%d)", units.MetersToMiles(p.MeanDistanceM), units.MinSec(units.Seconds(p.MeanTimeS)), p.Count)
}
