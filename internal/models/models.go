// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package models defines the wire types shared by the HTTP API and the
// recommendation engine, plus the canonical location parse.
package models

import "strings"

// RecommendationRequest is the body of POST /recommend.
type RecommendationRequest struct {
	// SoilType is a trained soil category (e.g. Loamy, Sandy, Clayey).
	SoilType string `json:"soil_type" validate:"required"`

	// LandArea is the cultivated area in acres.
	LandArea float64 `json:"land_area" validate:"required,gt=0"`

	// Location is a free-text "City" or "City, State" string.
	Location string `json:"location" validate:"required"`
}

// WeatherSummary is the weather subset echoed back in recommendations.
type WeatherSummary struct {
	AvgTemp          float64 `json:"avg_temp"`
	Humidity         float64 `json:"humidity"`
	RainfallForecast float64 `json:"rainfall_forecast"`
}

// Risk is the three-tier risk classification of a recommendation.
type Risk string

// Risk tiers, driven by profit margin (margin > 0.4 low, > 0.2 medium).
const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Recommendation is one scored crop candidate.
type Recommendation struct {
	Crop              string  `json:"crop"`
	SuccessRate       float64 `json:"success_rate"`
	ExpectedYieldTons float64 `json:"expected_yield_tons"`
	EstimatedCost     float64 `json:"estimated_cost"`
	PredictedProfit   float64 `json:"predicted_profit"`
	Risk              Risk    `json:"risk"`
}

// RecommendationResponse is the body of a successful POST /recommend.
// Location is the caller-supplied string, unmodified. Recommendations are
// ordered by success rate descending, at most the engine's top-K.
type RecommendationResponse struct {
	Location        string           `json:"location"`
	WeatherSummary  WeatherSummary   `json:"weather_summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ModelInfoResponse is the body of GET /model-info.
type ModelInfoResponse struct {
	ModelAccuracy float64 `json:"model_accuracy"`
	TrainingDate  string  `json:"training_date"`
	Version       string  `json:"version"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// ErrorResponse is the body of any non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LocationQuery is the parsed form of a free-text location string.
type LocationQuery struct {
	City  string
	State string
}

// ParseLocation splits a location string on the first comma into city and
// state, trimming whitespace. When no state part is present, defaultState
// is used. This is the single location parse shared by the weather gateway
// and the feature encoder.
//
//	ParseLocation("Madurai, Tamil Nadu", "Tamil Nadu") -> {Madurai, Tamil Nadu}
//	ParseLocation("Coimbatore", "Tamil Nadu")          -> {Coimbatore, Tamil Nadu}
func ParseLocation(location, defaultState string) LocationQuery {
	parts := strings.Split(location, ",")
	q := LocationQuery{City: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		// Segments past the second (e.g. a trailing country) are ignored.
		q.State = strings.TrimSpace(parts[1])
	}
	if q.State == "" {
		q.State = defaultState
	}
	return q
}
