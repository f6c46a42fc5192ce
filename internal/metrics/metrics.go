// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every waytrace collector. It is private so that a
// textfile export contains only waytrace series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Tile Cache Metrics
	TileCacheHits = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "waytrace_tile_cache_hits_total",
			Help: "Tiles served from the local cache",
		},
	)

	TileCacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "waytrace_tile_cache_misses_total",
			Help: "Tiles that had to be requested from the tile server",
		},
	)

	TileDownloads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waytrace_tile_downloads_total",
			Help: "Tile server responses by outcome",
		},
		[]string{"status"}, // "ok", "not_modified", "error"
	)

	TileDownloadBytes = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "waytrace_tile_download_bytes_total",
			Help: "Bytes of tile images written to the cache",
		},
	)

	TileDownloadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waytrace_tile_download_duration_seconds",
			Help:    "Duration of a single tile request including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	TileRetries = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "waytrace_tile_retries_total",
			Help: "Tile requests retried after a 429 or 5xx response",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waytrace_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waytrace_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waytrace_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Trace Analysis Metrics
	TracesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waytrace_traces_processed_total",
			Help: "Traces handled by analysis commands",
		},
		[]string{"result"}, // "ok", "skipped", "failed"
	)

	SegmentsExtracted = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "waytrace_segments_extracted_total",
			Help: "Path segments derived from traces",
		},
	)

	FramesRendered = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "waytrace_frames_rendered_total",
			Help: "Map images written by the renderer",
		},
	)

	CommandDuration = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waytrace_command_duration_seconds",
			Help: "Wall time of the last run of each command",
		},
		[]string{"command"},
	)

	CommandErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waytrace_command_errors_total",
			Help: "Commands that exited with an error",
		},
		[]string{"command"},
	)
)

// RecordTileCacheHit counts a tile served from disk.
func RecordTileCacheHit() {
	TileCacheHits.Inc()
}

// RecordTileCacheMiss counts a tile that needed a request.
func RecordTileCacheMiss() {
	TileCacheMisses.Inc()
}

// RecordTileDownload records the outcome of one tile request.
func RecordTileDownload(status string, bytes int64, duration time.Duration) {
	TileDownloads.WithLabelValues(status).Inc()
	if bytes > 0 {
		TileDownloadBytes.Add(float64(bytes))
	}
	TileDownloadDuration.Observe(duration.Seconds())
}

// RecordTileRetry counts a retried tile request.
func RecordTileRetry() {
	TileRetries.Inc()
}

// RecordTrace counts a processed trace by result.
func RecordTrace(result string) {
	TracesProcessed.WithLabelValues(result).Inc()
}

// RecordSegments adds n extracted segments.
func RecordSegments(n int) {
	if n > 0 {
		SegmentsExtracted.Add(float64(n))
	}
}

// RecordFrame counts a rendered image.
func RecordFrame() {
	FramesRendered.Inc()
}

// RecordCommand records a command's wall time and error status.
func RecordCommand(command string, duration time.Duration, err error) {
	CommandDuration.WithLabelValues(command).Set(duration.Seconds())
	if err != nil {
		CommandErrors.WithLabelValues(command).Inc()
	}
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
