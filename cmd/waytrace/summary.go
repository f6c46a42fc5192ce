// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/stats"
	"github.com/tomtom215/waytrace/internal/units"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

func (a *app) newSummaryCmd() *cobra.Command {
	var courseFile string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Median distance and time per path, or along a course",
		Long: `Reads the path CSV and prints the median distance and time of every path.
With --course-file, which lists one waypoint ID per line, it prints the
running distance and time along the course instead. Legs only recorded in
the opposite direction are marked with '*'.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&courseFile, "course-file", "c", "", "file listing the waypoints of a course")
	addWaypointsFlag(cmd, "w")
	addPathsCSVFlag(cmd, "p")
	format := addFormatFlag(cmd, "text", "text", "table", "json")

	cmd.RunE = a.runE("summary", func(cmd *cobra.Command, _ []string) error {
		fm, err := format.get()
		if err != nil {
			return err
		}
		set, err := a.loadRecords()
		if err != nil {
			return err
		}
		summary := stats.Summarize(set.Rows())

		if courseFile == "" {
			return printSummary(a.out, summary, fm)
		}

		ids, err := readCourseFile(courseFile)
		if err != nil {
			return err
		}
		var store *waypoint.Store
		if a.cfg.Waypoints.File != "" {
			if store, err = waypoint.Load(a.cfg.Waypoints.File); err != nil {
				return err
			}
		}
		return printCourse(a.out, stats.Course(summary, ids), store, fm)
	})
	return cmd
}

func readCourseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open course: %w", err)
	}
	defer func() { _ = f.Close() }()
	return stats.ReadCourse(f)
}

func printSummary(w io.Writer, s *stats.Summary, format string) error {
	sorted := s.Sorted()
	switch format {
	case "json":
		return writeJSON(w, sorted)
	case "table":
		t := newTable(w, "Path", "Count", "Median (mi)", "Median time", "Mean (mi)", "Mean time")
		for _, p := range sorted {
			t.Append([]string{
				p.PathID,
				strconv.Itoa(p.Count),
				fmt.Sprintf("%3.2f", units.MetersToMiles(p.MedianDistanceM)),
				units.HMS(units.Seconds(p.MedianTimeS)),
				fmt.Sprintf("%3.2f", units.MetersToMiles(p.MeanDistanceM)),
				units.HMS(units.Seconds(p.MeanTimeS)),
			})
		}
		t.Render()
		return nil
	}
	for _, p := range sorted {
		fmt.Fprintf(w, "%s %3.2f mi %s min (%d)\n",
			p.PathID, units.MetersToMiles(p.MedianDistanceM), units.HMS(units.Seconds(p.MedianTimeS)), p.Count)
	}
	return nil
}

func waypointName(store *waypoint.Store, id string) string {
	if store == nil {
		return ""
	}
	w, ok := store.Get(id)
	if !ok {
		return ""
	}
	return w.Name
}

func printCourse(w io.Writer, legs []stats.Leg, store *waypoint.Store, format string) error {
	switch format {
	case "json":
		return writeJSON(w, legs)
	case "table":
		t := newTable(w, "Waypoint", "Name", "Distance (mi)", "Time", "Note")
		for _, l := range legs {
			t.Append([]string{
				l.WaypointID,
				waypointName(store, l.WaypointID),
				fmt.Sprintf("%5.2f", units.MetersToMiles(l.CumDistanceM)),
				units.HMS(units.Seconds(l.CumTimeS)),
				legNote(l),
			})
		}
		t.Render()
		return nil
	}
	for _, l := range legs {
		if l.Missing {
			fmt.Fprintf(w, "[%-4s] %-40s missing data\n", l.WaypointID, waypointName(store, l.WaypointID))
			continue
		}
		mark := ""
		if l.Reversed {
			mark = " *"
		}
		fmt.Fprintf(w, "[%-4s] %-40s %5.2f %s%s\n",
			l.WaypointID, waypointName(store, l.WaypointID),
			units.MetersToMiles(l.CumDistanceM), units.HMS(units.Seconds(l.CumTimeS)), mark)
	}
	return nil
}

func legNote(l stats.Leg) string {
	switch {
	case l.Missing:
		return "missing"
	case l.Reversed:
		return "reversed"
	}
	return ""
}
