// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all waytrace configuration.
type Config struct {
	Waypoints WaypointsConfig `koanf:"waypoints"`
	Paths     PathsConfig     `koanf:"paths"`
	Tiles     TilesConfig     `koanf:"tiles"`
	Render    RenderConfig    `koanf:"render"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// WaypointsConfig locates the waypoint XML file.
type WaypointsConfig struct {
	File string `koanf:"file"`
}

// PathsConfig configures waypoint matching and the path-record CSV file.
type PathsConfig struct {
	CSVFile string `koanf:"csv_file"`

	// RadiusM is the waypoint proximity radius in meters.
	RadiusM float64 `koanf:"radius_m" validate:"gt=0,lte=1000"`
}

// TilesConfig configures the tile server and the local tile cache.
type TilesConfig struct {
	URL      string `koanf:"url" validate:"required,url"`
	APIKey   string `koanf:"api_key"`
	CacheDir string `koanf:"cache_dir" validate:"required"`

	// MetaDir holds the badger database with tile fetch metadata.
	// Empty means "<cache_dir>/.meta"; "-" keeps it in memory.
	MetaDir string `koanf:"meta_dir"`

	Zoom        int  `koanf:"zoom" validate:"gte=0,lte=20"`
	Buffer      int  `koanf:"buffer" validate:"gte=0,lte=10"`
	MaxTiles    int  `koanf:"max_tiles" validate:"gt=0"`
	IgnoreCache bool `koanf:"ignore_cache"`

	Concurrency   int           `koanf:"concurrency" validate:"gte=1,lte=64"`
	RatePerSecond float64       `koanf:"rate_per_second" validate:"gte=0"`
	Burst         int           `koanf:"burst" validate:"gte=1"`
	Timeout       time.Duration `koanf:"timeout"`
	UserAgent     string        `koanf:"user_agent"`

	RetryAttempts int           `koanf:"retry_attempts" validate:"gte=0,lte=10"`
	RetryDelay    time.Duration `koanf:"retry_delay"`

	// BreakerFailures is the number of consecutive failures that opens the
	// circuit breaker around the tile server.
	BreakerFailures int           `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// RenderConfig configures map rendering.
type RenderConfig struct {
	StrokeWidth  int    `koanf:"stroke_width" validate:"gte=1,lte=50"`
	Legend       bool   `koanf:"legend"`
	Output       string `koanf:"output" validate:"required"`
	FrameSize    string `koanf:"frame_size" validate:"omitempty,framesize"`
	PhotoCommand string `koanf:"photo_command"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=console json"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	// File receives the metrics in text exposition format on exit.
	// Empty disables the export.
	File string `koanf:"file"`
}

// TileMetaDir returns the badger directory for tile metadata.
// "-" keeps the metadata in memory and returns "".
func (c *Config) TileMetaDir() string {
	switch c.Tiles.MetaDir {
	case "-":
		return ""
	case "":
	default:
		return c.Tiles.MetaDir
	}
	return filepath.Join(c.Tiles.CacheDir, ".meta")
}

// defaultConfig returns a Config with every optional setting populated.
func defaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			RadiusM: 20,
		},
		Tiles: TilesConfig{
			URL:             "https://tile.thunderforest.com/cycle",
			CacheDir:        "tile-cache",
			Zoom:            16,
			Buffer:          0,
			MaxTiles:        2500,
			Concurrency:     4,
			RatePerSecond:   8,
			Burst:           4,
			Timeout:         30 * time.Second,
			UserAgent:       "waytrace/1.0",
			RetryAttempts:   3,
			RetryDelay:      500 * time.Millisecond,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Render: RenderConfig{
			StrokeWidth:  5,
			Output:       "output.png",
			PhotoCommand: "identify",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// expandPaths expands home-relative path settings in place.
func (c *Config) expandPaths() {
	c.Waypoints.File = expandHome(c.Waypoints.File)
	c.Paths.CSVFile = expandHome(c.Paths.CSVFile)
	c.Tiles.CacheDir = expandHome(c.Tiles.CacheDir)
	c.Tiles.MetaDir = expandHome(c.Tiles.MetaDir)
	c.Metrics.File = expandHome(c.Metrics.File)
}
