// Trackatlas - GPS Activity Maps and Tile Exploration
// Copyright 2026 H. Becker (hbecker)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hbecker/trackatlas

// Package metrics provides Prometheus metrics for the Trackatlas server.
//
// Metrics are exposed at the /metrics endpoint in Prometheus text format.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Map rendering metrics
	RenderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "map_renders_total",
			Help: "Total number of map compositing passes",
		},
		[]string{"result"}, // "success", "empty_track", "tile_fetch_failed"
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "map_render_duration_seconds",
			Help:    "Duration of full map compositing passes in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Tile provider metrics
	TileFetchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tile_fetches_total",
			Help: "Total number of base-map tile fetches",
		},
	)

	TileFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tile_fetch_errors_total",
			Help: "Total number of failed base-map tile fetches",
		},
	)

	TileFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tile_fetch_duration_seconds",
			Help:    "Duration of single tile fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// Render cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "render"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Explorer metrics
	ExplorerQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_query_duration_seconds",
			Help:    "Duration of explorer tile aggregation queries in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"query"}, // "visited", "clusters", "tiles", "squares", "unexplored"
	)

	ExplorerTracksFolded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_tracks_folded_total",
			Help: "Total number of tracks folded into visited-tile sets",
		},
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRender records a compositing pass and its outcome.
func RecordRender(result string, duration time.Duration) {
	RenderTotal.WithLabelValues(result).Inc()
	if result == "success" {
		RenderDuration.Observe(duration.Seconds())
	}
}

// RecordTileFetch records a single tile fetch attempt.
func RecordTileFetch(duration time.Duration, err error) {
	TileFetchTotal.Inc()
	if err != nil {
		TileFetchErrors.Inc()
		return
	}
	TileFetchDuration.Observe(duration.Seconds())
}
