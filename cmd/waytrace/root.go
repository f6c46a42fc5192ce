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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomtom215/waytrace/internal/config"
	"github.com/tomtom215/waytrace/internal/logging"
	"github.com/tomtom215/waytrace/internal/metrics"
	"github.com/tomtom215/waytrace/internal/validation"
)

// configKeyAnnotation marks a flag with the koanf path it overrides.
const configKeyAnnotation = "waytrace/config-key"

// app carries state shared by every subcommand.
type app struct {
	cfg *config.Config

	configFile string
	rcFile     string

	out    io.Writer
	errOut io.Writer
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{out: os.Stdout, errOut: os.Stderr})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "waytrace",
		Short: "GPS trace waypoint and path analysis",
		Long: `waytrace matches GPS traces against named waypoints, measures the paths
between them, aggregates the results and plots traces on map tiles.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file (default $WAYTRACE_CONFIG or ./waytrace.yaml)")
	pf.StringVar(&a.rcFile, "rc-file", "", `legacy rc file (default ~/.trace.rc, "-" to skip)`)
	pf.String("log-level", "", "log level: trace, debug, info, warn, error, disabled")
	pf.String("log-format", "", "log format: console or json")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	bindFlag(pf, "log-level", "logging.level")
	bindFlag(pf, "log-format", "logging.format")
	bindFlag(pf, "metrics-file", "metrics.file")
	_ = pf.MarkHidden("rc-file")

	root.AddCommand(
		a.newExtractCmd(),
		a.newChainCmd(),
		a.newAnalyzeCmd(),
		a.newSummaryCmd(),
		a.newMatrixCmd(),
		a.newCoverCmd(),
		a.newNearestCmd(),
		a.newPlotCmd(),
		a.newTilesCmd(),
		a.newWaypointsCmd(),
	)
	return root
}

// setup loads the configuration, initializes logging and attaches a run ID
// to the command context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		RCFile:     a.rcFile,
		Overrides:  flagOverrides(cmd.Flags()),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: a.errOut,
	}
	logging.Init(logCfg)

	ctx := logging.ContextWithLogger(cmd.Context(),
		logging.New(logCfg).With().Str("command", cmd.Name()).Logger())
	ctx = logging.ContextWithNewRunID(ctx)
	cmd.SetContext(ctx)
	logging.Ctx(ctx).Debug().
		Str("waypoints", cfg.Waypoints.File).
		Str("paths_csv", cfg.Paths.CSVFile).
		Msg("Configuration loaded")
	return nil
}

// runE wraps a command body with timing, metrics and the metrics textfile.
func (a *app) runE(name string, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		err := fn(cmd, args)
		metrics.RecordCommand(name, time.Since(start), err)

		if a.cfg != nil && a.cfg.Metrics.File != "" {
			if werr := metrics.WriteTextfile(a.cfg.Metrics.File); werr != nil {
				logging.Ctx(cmd.Context()).Warn().Err(werr).Str("file", a.cfg.Metrics.File).Msg("Failed to write metrics")
			}
		}
		return err
	}
}

// bindFlag ties a flag to the koanf path it overrides when set.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

// flagOverrides collects the config overrides of explicitly-set flags.
func flagOverrides(fs *pflag.FlagSet) map[string]interface{} {
	out := make(map[string]interface{})
	fs.Visit(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKeyAnnotation]
		if !ok || len(keys) == 0 {
			return
		}
		out[keys[0]] = flagValue(f)
	})
	return out
}

func flagValue(f *pflag.Flag) interface{} {
	s := f.Value.String()
	switch f.Value.Type() {
	case "bool":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	case "int":
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	case "float64":
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return s
}

// Shared flag definitions.

func addWaypointsFlag(cmd *cobra.Command, short string) {
	cmd.Flags().StringP("waypoints-file", short, "", "waypoints XML file")
	bindFlag(cmd.Flags(), "waypoints-file", "waypoints.file")
}

func addPathsCSVFlag(cmd *cobra.Command, short string) {
	cmd.Flags().StringP("path-csv-file", short, "", "path record CSV file")
	bindFlag(cmd.Flags(), "path-csv-file", "paths.csv_file")
}

func addRadiusFlag(cmd *cobra.Command) {
	cmd.Flags().Float64("radius", 0, "waypoint visit radius in meters (default 20)")
	bindFlag(cmd.Flags(), "radius", "paths.radius_m")
}

func addTileFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntP("zoom-factor", "z", 0, "tile zoom level (default 16)")
	fs.StringP("tiles-url", "t", "", "tile server base URL")
	fs.StringP("tile-cache", "c", "", "directory for downloaded tiles")
	fs.BoolP("ignore-cache", "j", false, "download tiles even when cached")
	fs.IntP("buffer", "b", 0, "extra tiles around the map extent")
	fs.Lookup("buffer").NoOptDefVal = "1"
	bindFlag(fs, "zoom-factor", "tiles.zoom")
	bindFlag(fs, "tiles-url", "tiles.url")
	bindFlag(fs, "tile-cache", "tiles.cache_dir")
	bindFlag(fs, "ignore-cache", "tiles.ignore_cache")
	bindFlag(fs, "buffer", "tiles.buffer")
}

// formatFlag is an output format flag restricted to a fixed set of values.
type formatFlag struct {
	value   string
	allowed []string
}

func addFormatFlag(cmd *cobra.Command, def string, allowed ...string) *formatFlag {
	f := &formatFlag{allowed: allowed}
	cmd.Flags().StringVar(&f.value, "format", def, "output format: "+strings.Join(allowed, ", "))
	return f
}

func (f *formatFlag) get() (string, error) {
	if err := validation.ValidateVar("format", f.value, "oneof="+strings.Join(f.allowed, " ")); err != nil {
		return "", err
	}
	return f.value, nil
}
