// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

/*
Package metrics provides Prometheus instrumentation for waytrace commands.

Waytrace runs as short-lived batch commands, so nothing is served over HTTP.
Collectors live on a private Registry and are written once on exit, in text
exposition format, to the file named by --metrics-file (or metrics.file in the
configuration). Point the node_exporter textfile collector at that file to
scrape it.

	waytrace plot -f *.tcx --metrics-file /var/lib/node_exporter/waytrace.prom

# Available Metrics

Tile Cache:
  - waytrace_tile_cache_hits_total, waytrace_tile_cache_misses_total
  - waytrace_tile_downloads_total{status}: ok, not_modified, error
  - waytrace_tile_download_bytes_total
  - waytrace_tile_download_duration_seconds (histogram)
  - waytrace_tile_retries_total

Circuit Breaker:
  - waytrace_circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - waytrace_circuit_breaker_requests_total{name,result}
  - waytrace_circuit_breaker_state_transitions_total{name,from_state,to_state}

Analysis:
  - waytrace_traces_processed_total{result}: ok, skipped, failed
  - waytrace_segments_extracted_total
  - waytrace_frames_rendered_total
  - waytrace_command_duration_seconds{command}
  - waytrace_command_errors_total{command}

# Thread Safety

All collectors are safe for concurrent use; the tile prefetcher records from
many goroutines at once.
*/
package metrics
