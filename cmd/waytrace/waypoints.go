// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/geo"
	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/units"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

func (a *app) newWaypointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waypoints",
		Short: "List and edit the waypoint file",
	}
	cmd.AddCommand(a.newWaypointsListCmd(), a.newWaypointsAddCmd())
	return cmd
}

func (a *app) newWaypointsListCmd() *cobra.Command {
	var bbox string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print waypoints in natural ID order",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "only waypoints inside north,west,south,east")
	addWaypointsFlag(cmd, "w")
	format := addFormatFlag(cmd, "table", "table", "json")

	cmd.RunE = a.runE("waypoints-list", func(cmd *cobra.Command, _ []string) error {
		fm, err := format.get()
		if err != nil {
			return err
		}
		store, err := a.loadWaypoints()
		if err != nil {
			return err
		}

		wps := store.All()
		if bbox != "" {
			box, err := geo.ParseBBox(bbox)
			if err != nil {
				return err
			}
			wps = store.Within(box)
		}

		sort.SliceStable(wps, func(i, j int) bool {
			return waypoint.NaturalLess(wps[i].ID, wps[j].ID)
		})

		if fm == "json" {
			return writeJSON(a.out, wps)
		}
		printWaypoints(a.out, wps)
		return nil
	})
	return cmd
}

func printWaypoints(w io.Writer, wps []waypoint.Waypoint) {
	t := newTable(w, "ID", "Name", "Lat", "Lon", "Elev (ft)")
	for _, wp := range wps {
		elev := ""
		if wp.HasElev {
			elev = fmt.Sprint(wp.ElevFt)
		}
		t.Append([]string{
			wp.ID,
			wp.Name,
			fmt.Sprintf("%.6f", wp.Coord.Lat),
			fmt.Sprintf("%.6f", wp.Coord.Lon),
			elev,
		})
	}
	t.Render()
}

type addFlags struct {
	id, name  string
	lat, lon  float64
	elevFt    int
	fromTrace string
	index     int
}

func (a *app) newWaypointsAddCmd() *cobra.Command {
	f := &addFlags{}
	cmd := &cobra.Command{
		Use:   "add --id ID (--lat LAT --lon LON | --from-trace FILE --index N)",
		Short: "Add a waypoint and save the waypoint file",
		Long: `Adds a waypoint given by coordinates, or taken from trackpoint N of a trace.
A waypoint taken from a trace gets the recorded altitude as its elevation.
The waypoint file is created when it does not exist.`,
		Args: cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringVar(&f.id, "id", "", "waypoint ID, e.g. w42")
	fs.StringVar(&f.name, "name", "", "waypoint name")
	fs.Float64Var(&f.lat, "lat", 0, "latitude in degrees")
	fs.Float64Var(&f.lon, "lon", 0, "longitude in degrees")
	fs.IntVar(&f.elevFt, "elev-ft", 0, "elevation in feet")
	fs.StringVar(&f.fromTrace, "from-trace", "", "take the position from this trace")
	fs.IntVar(&f.index, "index", 0, "trackpoint index within --from-trace")
	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	cmd.MarkFlagsMutuallyExclusive("lat", "from-trace")
	cmd.MarkFlagsMutuallyExclusive("lon", "from-trace")
	addWaypointsFlag(cmd, "w")

	cmd.RunE = a.runE("waypoints-add", func(cmd *cobra.Command, _ []string) error {
		path, err := a.cfg.RequireWaypoints()
		if err != nil {
			return err
		}

		w := waypoint.Waypoint{ID: f.id, Name: f.name}
		switch {
		case f.fromTrace != "":
			if w, err = waypointFromTrace(w, f.fromTrace, f.index); err != nil {
				return err
			}
		case cmd.Flags().Changed("lat"):
			w.Coord = geo.Coord{Lat: f.lat, Lon: f.lon}
		default:
			return errors.New("a position is required: --lat/--lon or --from-trace")
		}
		if cmd.Flags().Changed("elev-ft") {
			w.ElevFt, w.HasElev = f.elevFt, true
		}

		store, err := loadOrCreateWaypoints(path)
		if err != nil {
			return err
		}
		if err := store.Add(w); err != nil {
			return err
		}
		if err := store.Save(path); err != nil {
			return err
		}
		logging.Ctx(cmd.Context()).Info().
			Str("id", w.ID).
			Str("position", w.Coord.String()).
			Str("file", path).
			Msg("Waypoint saved")
		return nil
	})
	return cmd
}

// waypointFromTrace fills w with the position and altitude of trackpoint
// index of the trace at path.
func waypointFromTrace(w waypoint.Waypoint, path string, index int) (waypoint.Waypoint, error) {
	act, err := trace.Open(path)
	if err != nil {
		return w, err
	}
	if index < 0 || index >= act.Count() {
		return w, fmt.Errorf("index %d out of range: %s has %d trackpoints", index, path, act.Count())
	}
	tp := act.Trackpoints[index]
	if !tp.HasPosition {
		return w, fmt.Errorf("trackpoint %d of %s: %w", index, path, trace.ErrNoPosition)
	}
	w.Coord = tp.Position
	if tp.HasAltitude {
		w.ElevFt = int(math.Round(units.MetersToFeet(tp.AltitudeMeters)))
		w.HasElev = true
	}
	return w, nil
}

func loadOrCreateWaypoints(path string) (*waypoint.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return waypoint.New(), nil
	}
	return waypoint.Load(path)
}
