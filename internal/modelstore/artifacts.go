// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package modelstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrUnknownCategory is returned when a categorical value was never seen
// at training time and therefore has no encoding.
var ErrUnknownCategory = errors.New("category not in trained vocabulary")

// Scaler is a fitted standard scaler: per-feature mean and standard
// deviation learned at training time.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes a raw feature vector, returning a new slice
// of (x - mean) / scale per feature.
func (s *Scaler) Transform(raw []float64) []float64 {
	scaled := make([]float64, len(raw))
	for i, x := range raw {
		scaled[i] = (x - s.Mean[i]) / s.Scale[i]
	}
	return scaled
}

func (s *Scaler) validate(features int) error {
	if len(s.Mean) != features || len(s.Scale) != features {
		return fmt.Errorf("scaler covers %d/%d features, classifier expects %d",
			len(s.Mean), len(s.Scale), features)
	}
	for i, v := range s.Scale {
		if v == 0 {
			return fmt.Errorf("scaler feature %d has zero scale", i)
		}
	}
	return nil
}

// Encoders are the fitted category vocabularies. Soil, State and Rain
// map trained string values to feature indices; Crop maps class indices
// back to crop names in trained class order.
type Encoders struct {
	Soil  map[string]int `json:"soil"`
	State map[string]int `json:"state"`
	Rain  map[string]int `json:"rain"`
	Crop  []string       `json:"crop"`
}

// EncodeSoil returns the trained index for a soil type.
func (e *Encoders) EncodeSoil(soil string) (int, error) {
	return lookup(e.Soil, soil, "soil type")
}

// EncodeState returns the trained index for a state name.
func (e *Encoders) EncodeState(state string) (int, error) {
	return lookup(e.State, state, "state")
}

// EncodeRain returns the trained index for a rainfall bucket.
func (e *Encoders) EncodeRain(bucket string) (int, error) {
	return lookup(e.Rain, bucket, "rainfall bucket")
}

// CropName returns the crop name for a trained class index.
func (e *Encoders) CropName(index int) string {
	return e.Crop[index]
}

func lookup(vocab map[string]int, value, kind string) (int, error) {
	idx, ok := vocab[value]
	if !ok {
		return 0, fmt.Errorf("%s %q: %w", kind, value, ErrUnknownCategory)
	}
	return idx, nil
}

func (e *Encoders) validate(classes int) error {
	if len(e.Soil) == 0 || len(e.State) == 0 || len(e.Rain) == 0 {
		return fmt.Errorf("encoders missing a category vocabulary")
	}
	if len(e.Crop) != classes {
		return fmt.Errorf("crop encoder has %d labels, classifier has %d classes",
			len(e.Crop), classes)
	}
	return nil
}

// ModelInfo is the training metadata published alongside the artifacts.
type ModelInfo struct {
	Accuracy float64
	Date     string
	Version  string
}

// readModelInfo parses the metadata file of "Key: value" lines. Keys are
// case-insensitive; unknown keys are ignored. A missing file yields zero
// metadata without error.
func readModelInfo(path string) (ModelInfo, error) {
	info := ModelInfo{Date: "Unknown", Version: "Unknown"}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "accuracy":
			if acc, err := strconv.ParseFloat(value, 64); err == nil {
				info.Accuracy = acc
			}
		case "date":
			info.Date = value
		case "version":
			info.Version = value
		}
	}
	return info, scanner.Err()
}
