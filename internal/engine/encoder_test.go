// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package engine

import (
	"errors"
	"testing"

	"github.com/thalir-ai/thalir/internal/modelstore"
)

func TestRainBucketBoundaries(t *testing.T) {
	tests := []struct {
		rainfall float64
		want     string
	}{
		{0, "Low"},
		{79.99, "Low"},
		{80.0, "Low"},
		{80.01, "Medium"},
		{150.0, "Medium"},
		{150.01, "High"},
		{400, "High"},
	}
	for _, tt := range tests {
		if got := RainBucket(tt.rainfall); got != tt.want {
			t.Errorf("RainBucket(%v) = %q, want %q", tt.rainfall, got, tt.want)
		}
	}
}

// testArtifacts builds a 3-class, 6-feature artifact set with an
// identity scaler, so encoded vectors are directly inspectable.
func testArtifacts() *modelstore.Artifacts {
	return &modelstore.Artifacts{
		Classifier: &modelstore.Classifier{
			ClassLogPrior: []float64{-1.0986, -1.0986, -1.0986},
			Theta: [][]float64{
				{0, 28, 70, 100, 0, 2},
				{1, 20, 50, 60, 1, 1},
				{2, 35, 90, 200, 2, 0},
			},
			Var: [][]float64{
				{1, 1, 1, 1, 1, 1},
				{1, 1, 1, 1, 1, 1},
				{1, 1, 1, 1, 1, 1},
			},
		},
		Scaler: &modelstore.Scaler{
			Mean:  []float64{0, 0, 0, 0, 0, 0},
			Scale: []float64{1, 1, 1, 1, 1, 1},
		},
		Encoders: &modelstore.Encoders{
			Soil:  map[string]int{"Clayey": 0, "Loamy": 1, "Sandy": 2},
			State: map[string]int{"Punjab": 0, "Tamil Nadu": 1},
			Rain:  map[string]int{"High": 0, "Low": 1, "Medium": 2},
			Crop:  []string{"Paddy", "Wheat", "Maize"},
		},
	}
}

func TestEncodeFeatures(t *testing.T) {
	arts := testArtifacts()

	features, err := EncodeFeatures(arts, "Loamy", "Tamil Nadu", 28.5, 70, 120)
	if err != nil {
		t.Fatalf("EncodeFeatures: %v", err)
	}

	// [soil, temperature, humidity, rainfall, state, rain bucket]
	want := []float64{1, 28.5, 70, 120, 1, 2}
	if len(features) != len(want) {
		t.Fatalf("got %d features, want %d", len(features), len(want))
	}
	for i := range want {
		if features[i] != want[i] {
			t.Errorf("feature %d: got %v, want %v", i, features[i], want[i])
		}
	}
}

func TestEncodeFeaturesAppliesScaler(t *testing.T) {
	arts := testArtifacts()
	arts.Scaler = &modelstore.Scaler{
		Mean:  []float64{1, 25, 60, 100, 0, 1},
		Scale: []float64{1, 5, 10, 50, 1, 1},
	}

	features, err := EncodeFeatures(arts, "Loamy", "Punjab", 30, 80, 50)
	if err != nil {
		t.Fatalf("EncodeFeatures: %v", err)
	}

	// Raw [1, 30, 80, 50, 0, 1] standardized per feature.
	want := []float64{0, 1, 2, -1, 0, 0}
	for i := range want {
		if features[i] != want[i] {
			t.Errorf("feature %d: got %v, want %v", i, features[i], want[i])
		}
	}
}

func TestEncodeFeaturesUnknownCategory(t *testing.T) {
	arts := testArtifacts()

	cases := []struct {
		name     string
		soil     string
		state    string
		rainfall float64
	}{
		{"unknown soil", "Volcanic", "Tamil Nadu", 100},
		{"unknown state", "Loamy", "Far Far Away", 100},
	}
	for _, tc := range cases {
		_, err := EncodeFeatures(arts, tc.soil, tc.state, 28, 70, tc.rainfall)
		if !errors.Is(err, modelstore.ErrUnknownCategory) {
			t.Errorf("%s: got %v, want ErrUnknownCategory", tc.name, err)
		}
	}
}
