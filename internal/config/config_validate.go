// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/waytrace/internal/validation"
)

// ErrMissingSetting is returned by the Require helpers when a command needs
// a setting that no configuration layer provided.
var ErrMissingSetting = errors.New("missing setting")

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateTiles(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTiles() error {
	if strings.HasSuffix(c.Tiles.URL, "/") {
		c.Tiles.URL = strings.TrimRight(c.Tiles.URL, "/")
	}
	if c.Tiles.Timeout <= 0 {
		return fmt.Errorf("tiles.timeout must be positive, got %s", c.Tiles.Timeout)
	}
	if c.Tiles.RetryAttempts > 0 && c.Tiles.RetryDelay <= 0 {
		return fmt.Errorf("tiles.retry_delay must be positive when retries are enabled")
	}
	if c.Tiles.BreakerTimeout <= 0 {
		return fmt.Errorf("tiles.breaker_timeout must be positive, got %s", c.Tiles.BreakerTimeout)
	}
	return nil
}

// RequireWaypoints returns the waypoint file or ErrMissingSetting.
func (c *Config) RequireWaypoints() (string, error) {
	if c.Waypoints.File == "" {
		return "", fmt.Errorf("%w: waypoints file (-w, waypoints.file or waypoints_file in ~/.trace.rc)", ErrMissingSetting)
	}
	return c.Waypoints.File, nil
}

// RequirePathsCSV returns the path-record CSV file or ErrMissingSetting.
func (c *Config) RequirePathsCSV() (string, error) {
	if c.Paths.CSVFile == "" {
		return "", fmt.Errorf("%w: path CSV file (-p, paths.csv_file or path_csv_file in ~/.trace.rc)", ErrMissingSetting)
	}
	return c.Paths.CSVFile, nil
}
