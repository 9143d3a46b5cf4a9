// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package api provides the HTTP layer: Chi routing, middleware and the
// recommendation, model metadata and health handlers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/thalir-ai/thalir/internal/engine"
	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/metrics"
	"github.com/thalir-ai/thalir/internal/models"
	"github.com/thalir-ai/thalir/internal/modelstore"
	"github.com/thalir-ai/thalir/internal/validation"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	engine *engine.Engine
	store  *modelstore.Store
}

// NewHandler creates the API handler set.
func NewHandler(eng *engine.Engine, store *modelstore.Store) *Handler {
	return &Handler{
		engine: eng,
		store:  store,
	}
}

// Recommend handles POST /recommend: validates the request, runs the
// recommendation engine and returns the ranked crop list.
//
// Responses: 200 with the recommendation body; 400 on a malformed or
// invalid request; 503 while no model is loaded; 500 on any other
// failure, with the underlying detail logged but not exposed.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON", err)
		return
	}

	if validationErr := validation.ValidateStruct(&req); validationErr != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), nil)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), &req)
	if err != nil {
		h.respondRecommendError(w, req.Location, err)
		return
	}

	metrics.RecommendRequests.WithLabelValues("success").Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	respondJSON(w, http.StatusOK, resp)
}

// respondRecommendError maps engine failures to HTTP responses. Model
// unavailability is retryable (503); an unknown category or any other
// inference failure is a generic 500 with the detail kept in the logs.
func (h *Handler) respondRecommendError(w http.ResponseWriter, location string, err error) {
	switch {
	case errors.Is(err, modelstore.ErrModelUnavailable):
		metrics.RecommendRequests.WithLabelValues("model_unavailable").Inc()
		respondError(w, http.StatusServiceUnavailable, "MODEL_NOT_READY",
			"Model not loaded. Ensure training is complete.", nil)
	case errors.Is(err, modelstore.ErrUnknownCategory):
		metrics.RecommendRequests.WithLabelValues("unknown_category").Inc()
		logging.Error().Err(err).Str("location", sanitizeLogValue(location)).Msg("Prediction failed")
		respondError(w, http.StatusInternalServerError, "PREDICTION_FAILED",
			"Failed to generate recommendation", nil)
	default:
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		logging.Error().Err(err).Str("location", sanitizeLogValue(location)).Msg("Prediction failed")
		respondError(w, http.StatusInternalServerError, "PREDICTION_FAILED",
			"Failed to generate recommendation", nil)
	}
}

// ModelInfo handles GET /model-info, reporting training metadata or
// placeholder values while no model is loaded.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	info := h.store.Info()
	respondJSON(w, http.StatusOK, &models.ModelInfoResponse{
		ModelAccuracy: info.Accuracy,
		TrainingDate:  info.Date,
		Version:       info.Version,
	})
}
