// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package engine produces ranked crop recommendations: it combines the
// weather gateway's snapshot with trained model artifacts to encode
// features, run classifier inference, select the top candidates and
// score each one economically.
package engine

import (
	"context"
	"fmt"

	"github.com/thalir-ai/thalir/internal/config"
	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/models"
	"github.com/thalir-ai/thalir/internal/modelstore"
	"github.com/thalir-ai/thalir/internal/weather"
)

// Default weather substituted when the gateway reports no data at all.
// Weather unavailability is never fatal to a recommendation.
var defaultWeather = weather.Snapshot{
	AvgTemp:          28.0,
	Humidity:         70.0,
	RainfallForecast: 100.0,
}

// Engine computes crop recommendations. Safe for concurrent use; all
// mutable state lives in the weather gateway's cache and the model
// store's atomic snapshot.
type Engine struct {
	store        *modelstore.Store
	gateway      *weather.Gateway
	topK         int
	defaultState string
}

// New creates a recommendation engine.
func New(store *modelstore.Store, gateway *weather.Gateway, cfg *config.Config) *Engine {
	return &Engine{
		store:        store,
		gateway:      gateway,
		topK:         cfg.Engine.TopK,
		defaultState: cfg.Weather.DefaultState,
	}
}

// Recommend produces the ranked recommendation response for a request.
//
// The model must be loaded before anything else runs; an unloaded model
// returns modelstore.ErrModelUnavailable without touching the weather
// gateway. Weather failures degrade to defaults. Encoding and inference
// failures are surfaced: a recommendation cannot be produced without
// them.
func (e *Engine) Recommend(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationResponse, error) {
	arts, err := e.store.Artifacts()
	if err != nil {
		return nil, err
	}

	result := e.gateway.Fetch(ctx, req.Location)
	snapshot := result.Snapshot
	if !result.Available() {
		logging.Warn().Str("location", req.Location).Msg("Weather unavailable, using default conditions")
		snapshot = defaultWeather
	}

	loc := models.ParseLocation(req.Location, e.defaultState)

	features, err := EncodeFeatures(arts, req.SoilType, loc.State,
		snapshot.AvgTemp, snapshot.Humidity, snapshot.RainfallForecast)
	if err != nil {
		return nil, err
	}

	probs, err := arts.Classifier.PredictProbabilities(features)
	if err != nil {
		return nil, fmt.Errorf("classifier inference: %w", err)
	}

	top := SelectTop(e.topK, probs)

	recommendations := make([]models.Recommendation, 0, len(top))
	for _, candidate := range top {
		crop := arts.Encoders.CropName(candidate.ClassIndex)
		econ := Evaluate(crop, req.LandArea)
		recommendations = append(recommendations, models.Recommendation{
			Crop:              crop,
			SuccessRate:       round2(candidate.Probability),
			ExpectedYieldTons: econ.TotalYield,
			EstimatedCost:     econ.TotalCost,
			PredictedProfit:   econ.Profit,
			Risk:              econ.Risk,
		})
	}

	return &models.RecommendationResponse{
		Location: req.Location,
		WeatherSummary: models.WeatherSummary{
			AvgTemp:          snapshot.AvgTemp,
			Humidity:         snapshot.Humidity,
			RainfallForecast: snapshot.RainfallForecast,
		},
		Recommendations: recommendations,
	}, nil
}
