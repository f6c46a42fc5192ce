// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/waytrace/internal/geo"
	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/tile"
	"github.com/tomtom215/waytrace/internal/tilecache"
)

func (a *app) newTilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "Manage the local tile cache",
	}
	cmd.AddCommand(a.newTilesFetchCmd())
	return cmd
}

func (a *app) newTilesFetchCmd() *cobra.Command {
	var bbox string
	cmd := &cobra.Command{
		Use:   "fetch --bbox N,W,S,E",
		Short: "Download the tiles covering a bounding box",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as north,west,south,east in degrees")
	_ = cmd.MarkFlagRequired("bbox")
	addTileFlags(cmd)

	cmd.RunE = a.runE("tiles-fetch", func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		box, err := geo.ParseBBox(bbox)
		if err != nil {
			return err
		}
		e, err := tile.ExtentFor(box, a.cfg.Tiles.Zoom, a.cfg.Tiles.Buffer)
		if err != nil {
			return err
		}
		if err := e.CheckLimit(a.cfg.Tiles.MaxTiles); err != nil {
			return err
		}

		cache, err := a.openTileCache()
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()

		logging.Ctx(ctx).Info().Str("extent", e.Name()).Int("tiles", e.Count()).Msg("Fetching tiles")
		if err := cache.Prefetch(ctx, e.Tiles()); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d tiles in %s\n", e.Count(), cache.Dir())
		return nil
	})
	return cmd
}

// openTileCache opens the tile cache described by the configuration.
func (a *app) openTileCache() (*tilecache.Cache, error) {
	return tilecache.New(tileOptions(a))
}

func tileOptions(a *app) tilecache.Options {
	t := a.cfg.Tiles
	return tilecache.Options{
		BaseURL:         t.URL,
		APIKey:          t.APIKey,
		Dir:             t.CacheDir,
		MetaDir:         a.cfg.TileMetaDir(),
		IgnoreCache:     t.IgnoreCache,
		Concurrency:     t.Concurrency,
		RatePerSecond:   t.RatePerSecond,
		Burst:           t.Burst,
		Timeout:         t.Timeout,
		UserAgent:       t.UserAgent,
		RetryAttempts:   t.RetryAttempts,
		RetryDelay:      t.RetryDelay,
		BreakerFailures: t.BreakerFailures,
		BreakerTimeout:  t.BreakerTimeout,
		Progress:        a.errOut,
	}
}
