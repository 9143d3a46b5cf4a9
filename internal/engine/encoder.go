// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package engine

import (
	"github.com/thalir-ai/thalir/internal/modelstore"
)

// Rainfall bucket boundaries in mm, matching the training pipeline's
// binning: (0, 80] Low, (80, 150] Medium, (150, inf) High.
const (
	rainLowMax    = 80.0
	rainMediumMax = 150.0
)

// RainBucket classifies a rainfall forecast into its trained category.
func RainBucket(rainfall float64) string {
	switch {
	case rainfall <= rainLowMax:
		return "Low"
	case rainfall <= rainMediumMax:
		return "Medium"
	default:
		return "High"
	}
}

// EncodeFeatures builds the scaled feature vector the classifier
// consumes: [soil, temperature, humidity, rainfall, state, rain bucket].
// Returns ErrUnknownCategory (wrapped) when the soil type, state or
// derived rainfall bucket has no trained encoding.
func EncodeFeatures(arts *modelstore.Artifacts, soilType, state string, avgTemp, humidity, rainfall float64) ([]float64, error) {
	soilEnc, err := arts.Encoders.EncodeSoil(soilType)
	if err != nil {
		return nil, err
	}
	stateEnc, err := arts.Encoders.EncodeState(state)
	if err != nil {
		return nil, err
	}
	rainEnc, err := arts.Encoders.EncodeRain(RainBucket(rainfall))
	if err != nil {
		return nil, err
	}

	raw := []float64{
		float64(soilEnc),
		avgTemp,
		humidity,
		rainfall,
		float64(stateEnc),
		float64(rainEnc),
	}
	return arts.Scaler.Transform(raw), nil
}
