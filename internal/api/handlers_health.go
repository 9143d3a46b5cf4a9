// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package api

import (
	"net/http"

	"github.com/thalir-ai/thalir/internal/models"
)

// Health handles GET /health. The service reports "ok" whenever the
// process is serving; model readiness is a separate field so monitors
// can distinguish a degraded start from a dead process.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.HealthResponse{
		Status:      "ok",
		ModelLoaded: h.store.Loaded(),
	})
}

// HealthLive handles GET /health/live (liveness probe). Returns 200
// whenever the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /health/ready (readiness probe). Ready means
// the model artifacts are loaded and recommendations can be served;
// until then the probe returns 503 so traffic is held back.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.store.Loaded() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "model artifacts not loaded",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
