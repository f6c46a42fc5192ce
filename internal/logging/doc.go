// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package logging provides the zerolog-based global logger used by every
Waytrace command.

Diagnostics go to stderr through this package; command results (CSV rows,
tables, JSON) go to stdout so they can be piped.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "console"})

	logging.Info().Str("file", path).Msg("Working on trace")
	logging.Warn().Err(err).Str("file", path).Msg("Skipping trace")

# Run IDs

Each command invocation gets a short run ID so that log lines from one batch
can be grepped out of a shared log file:

	ctx = logging.ContextWithNewRunID(ctx)
	logging.Ctx(ctx).Info().Msg("Prefetching tiles")
	// {"level":"info","run_id":"1f0c9a2e","message":"Prefetching tiles"}

# Configuration

Level and format come from the layered configuration (config file,
WAYTRACE_LOG_LEVEL / WAYTRACE_LOG_FORMAT, or --log-level / --log-format).
Console output is the default for interactive use; json suits log shipping.
*/
package logging
