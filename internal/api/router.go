// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thalir-ai/thalir/internal/config"
)

// NewRouter assembles the HTTP route tree.
func NewRouter(handler *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(&cfg.Security))

	// Health probes bypass the request rate limit so monitors are never
	// throttled out.
	r.Route("/health", func(r chi.Router) {
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter(&cfg.Security))
		r.Use(prometheusMetrics)

		r.Post("/recommend", handler.Recommend)
		r.Get("/model-info", handler.ModelInfo)
	})

	return r
}
