// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists YAML files searched when no path is given.
var DefaultConfigPaths = []string{
	"waytrace.yaml",
	"waytrace.yml",
}

// ConfigPathEnvVar overrides the YAML config file path.
const ConfigPathEnvVar = "WAYTRACE_CONFIG"

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "WAYTRACE_"

// LoadOptions controls which layers Load reads.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file (--config). It must exist.
	ConfigFile string

	// RCFile is the legacy rc file. Empty means ~/.trace.rc; "-" skips it.
	RCFile string

	// Overrides are koanf paths set from explicitly-changed CLI flags.
	Overrides map[string]interface{}
}

// Load builds the configuration from every layer and validates it.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: legacy rc file (optional)
	if rc := rcPath(opts.RCFile); rc != "" {
		if _, err := os.Stat(rc); err == nil {
			if err := k.Load(file.Provider(rc), RCParser()); err != nil {
				return nil, fmt.Errorf("failed to load rc file %s: %w", rc, err)
			}
		}
	}

	// Layer 3: YAML file (optional unless given explicitly)
	configPath, err := findConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 4: WAYTRACE_* environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 5: explicit flags
	keys := make([]string, 0, len(opts.Overrides))
	for key := range opts.Overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := k.Set(key, opts.Overrides[key]); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// rcPath resolves the rc file location.
func rcPath(p string) string {
	switch p {
	case "-":
		return ""
	case "":
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, ".trace.rc")
	default:
		return expandHome(p)
	}
}

// findConfigFile returns the YAML file to load, or "" when none exists.
// An explicitly named file that does not exist is an error.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		explicit = expandHome(explicit)
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// envTransformFunc maps WAYTRACE_* variable names to koanf paths.
//
// Examples:
//   - WAYTRACE_WAYPOINTS_FILE -> waypoints.file
//   - WAYTRACE_TILES_API_KEY -> tiles.api_key
//   - WAYTRACE_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	envMappings := map[string]string{
		"waypoints_file": "waypoints.file",

		"paths_csv_file": "paths.csv_file",
		"paths_radius_m": "paths.radius_m",
		"radius_m":       "paths.radius_m",

		"tiles_url":              "tiles.url",
		"tiles_api_key":          "tiles.api_key",
		"tiles_cache_dir":        "tiles.cache_dir",
		"tiles_meta_dir":         "tiles.meta_dir",
		"tiles_zoom":             "tiles.zoom",
		"tiles_buffer":           "tiles.buffer",
		"tiles_max_tiles":        "tiles.max_tiles",
		"tiles_ignore_cache":     "tiles.ignore_cache",
		"tiles_concurrency":      "tiles.concurrency",
		"tiles_rate_per_second":  "tiles.rate_per_second",
		"tiles_burst":            "tiles.burst",
		"tiles_timeout":          "tiles.timeout",
		"tiles_user_agent":       "tiles.user_agent",
		"tiles_retry_attempts":   "tiles.retry_attempts",
		"tiles_retry_delay":      "tiles.retry_delay",
		"tiles_breaker_failures": "tiles.breaker_failures",
		"tiles_breaker_timeout":  "tiles.breaker_timeout",

		"render_stroke_width":  "render.stroke_width",
		"render_legend":        "render.legend",
		"render_output":        "render.output",
		"render_frame_size":    "render.frame_size",
		"render_photo_command": "render.photo_command",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		"metrics_file": "metrics.file",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	// Unknown WAYTRACE_* variables (including WAYTRACE_CONFIG) are skipped.
	return ""
}
