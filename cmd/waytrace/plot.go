// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/exif"
	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/render"
	"github.com/tomtom215/waytrace/internal/tile"
	"github.com/tomtom215/waytrace/internal/trace"
	"github.com/tomtom215/waytrace/internal/waypoint"
)

// errNothingToPlot is returned when plot has neither traces nor waypoint
// extents.
var errNothingToPlot = errors.New("nothing to plot: give trace files (-f) or waypoint IDs (-w)")

type plotFlags struct {
	files     []string
	images    []string
	extentIDs []string
}

func (a *app) newPlotCmd() *cobra.Command {
	f := &plotFlags{}
	cmd := &cobra.Command{
		Use:   "plot [-f TRACE...] [-w WAYPOINT...]",
		Short: "Draw traces, waypoints and photos on map tiles",
		Long: `Downloads the tiles covering the traces (or the listed waypoints), builds a
base map and draws one coloured line per trace, the waypoints of the
waypoint file and the positions of geotagged photos. With --tiles-per-frame
the map is split into frames of WxH tiles, written as NAME-{x}x{y}.EXT.`,
		Args: cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.files, "gps-file", "f", nil, "trace files")
	fs.StringSliceVarP(&f.images, "images", "i", nil, "geotagged JPEG images")
	fs.StringSliceVarP(&f.extentIDs, "waypoint-extents", "w", nil, "use these waypoint IDs for the map extent")
	fs.IntP("stroke-width", "s", 0, "trace line width in pixels (default 5)")
	fs.BoolP("legend", "l", false, "add a legend strip per trace")
	fs.StringP("output-file", "o", "", "output image, .png or .jpg (default output.png)")
	fs.StringP("tiles-per-frame", "x", "", "split the map into frames of WxH tiles")
	bindFlag(fs, "stroke-width", "render.stroke_width")
	bindFlag(fs, "legend", "render.legend")
	bindFlag(fs, "output-file", "render.output")
	bindFlag(fs, "tiles-per-frame", "render.frame_size")
	addWaypointsFlag(cmd, "p")
	addTileFlags(cmd)

	cmd.RunE = a.runE("plot", func(cmd *cobra.Command, _ []string) error {
		return a.runPlot(cmd.Context(), f)
	})
	return cmd
}

func (a *app) runPlot(ctx context.Context, f *plotFlags) error {
	if len(f.files) == 0 && len(f.extentIDs) == 0 {
		return errNothingToPlot
	}

	var store *waypoint.Store
	if a.cfg.Waypoints.File != "" || len(f.extentIDs) > 0 {
		var err error
		if store, err = a.loadWaypoints(); err != nil {
			return err
		}
	}

	var acts []*trace.Activity
	if len(f.files) > 0 {
		var err error
		if acts, err = loadTraces(ctx, f.files); err != nil {
			return err
		}
	}

	zoom, buffer := a.cfg.Tiles.Zoom, a.cfg.Tiles.Buffer
	var (
		e   tile.Extent
		err error
	)
	if len(f.extentIDs) > 0 {
		e, err = render.PlanFromWaypoints(store, f.extentIDs, zoom, buffer)
	} else {
		e, err = render.PlanFromTraces(acts, zoom, buffer)
	}
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Str("extent", e.Name()).
		Int("tiles", e.Count()).
		Int("traces", len(acts)).
		Msg("Map extent planned")

	for _, g := range render.StartTiles(acts, zoom) {
		if len(g.Files) > 1 {
			logging.Ctx(ctx).Info().
				Str("tile", g.Tile.Name()).
				Str("files", strings.Join(g.Files, ",")).
				Msg("Traces start on the same tile")
		}
	}

	photos := a.photoPositions(ctx, f.images)

	frameX, frameY := 0, 0
	if fsz := a.cfg.Render.FrameSize; fsz != "" {
		if frameX, frameY, err = tile.ParseFrameSize(fsz); err != nil {
			return err
		}
	}

	cache, err := a.openTileCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	r, err := render.New(cache, store, render.Options{
		StrokeWidth: a.cfg.Render.StrokeWidth,
		Legend:      a.cfg.Render.Legend,
		Output:      a.cfg.Render.Output,
		FrameX:      frameX,
		FrameY:      frameY,
		MaxTiles:    a.cfg.Tiles.MaxTiles,
	})
	if err != nil {
		return err
	}

	outputs, err := r.Render(ctx, e, acts, photos)
	for _, out := range outputs {
		fmt.Fprintln(a.out, out)
	}
	return err
}

// photoPositions reads the GPS position of each image. Images without one
// are logged and left out.
func (a *app) photoPositions(ctx context.Context, images []string) []render.Photo {
	if len(images) == 0 {
		return nil
	}
	reader := exif.NewReader(a.cfg.Render.PhotoCommand)
	photos := make([]render.Photo, 0, len(images))
	for _, img := range images {
		c, err := reader.Coords(ctx, img)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("file", img).Msg("Skipping photo")
			continue
		}
		photos = append(photos, render.Photo{Path: img, Coord: c})
	}
	return photos
}
