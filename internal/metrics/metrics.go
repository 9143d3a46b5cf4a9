// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package metrics provides Prometheus instrumentation for Thalir:
// weather cache efficiency, provider circuit breaker state,
// recommendation throughput, and HTTP endpoint latency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Weather Gateway Metrics
	WeatherCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_cache_hits_total",
			Help: "Total number of fresh weather cache hits (no network call)",
		},
	)

	WeatherCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_cache_misses_total",
			Help: "Total number of weather cache misses triggering a refresh",
		},
	)

	WeatherStaleFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_stale_fallbacks_total",
			Help: "Total number of refresh failures served from a stale cache entry",
		},
	)

	WeatherRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_refreshes_total",
			Help: "Total number of weather refresh attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	WeatherRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_refresh_duration_seconds",
			Help:    "Duration of full weather refreshes (geocode + current + forecast)",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by outcome",
		},
		[]string{"name", "outcome"}, // "success", "failure", "rejected"
	)

	// Recommendation Engine Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "success", "model_unavailable", "unknown_category", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end duration of recommendation requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Model Store Metrics
	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether model artifacts are currently loaded (1) or not (0)",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

// RecordAPIRequest records an API request with its duration and status code.
func RecordAPIRequest(endpoint, method string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}
