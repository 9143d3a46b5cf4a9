// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package modelstore loads and serves the trained inference artifacts:
// the crop classifier, the feature scaler, the category encoders and the
// training metadata. Artifacts live in a directory as JSON files plus a
// plain-text metadata file. The store starts empty when the directory is
// missing or incomplete and can pick the artifacts up on a later reload;
// a missing model is a degraded state, never a startup failure.
package modelstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/metrics"
)

// ErrModelUnavailable is returned when no trained artifacts are loaded.
// Callers surface it as a retryable not-ready condition.
var ErrModelUnavailable = errors.New("model artifacts not loaded")

// Artifact file names inside the model directory.
const (
	classifierFile = "crop_model.json"
	scalerFile     = "scaler.json"
	encodersFile   = "encoders.json"
	infoFile       = "model_info.txt"
)

// Artifacts is one consistent set of trained model components. Once
// published it is immutable and shared without locking.
type Artifacts struct {
	Classifier *Classifier
	Scaler     *Scaler
	Encoders   *Encoders
	Info       ModelInfo
}

// Store holds the current artifact set. Load happens once at startup and
// may be retried by Reload; readers get an atomic snapshot.
type Store struct {
	dir string

	mu      sync.Mutex
	current atomic.Pointer[Artifacts]
}

// NewStore creates a store over the given artifact directory. No I/O
// happens until Load.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads the artifacts from disk and publishes them. A missing
// classifier file leaves the store empty without error; any other read
// or decode failure is returned and the store stays in its prior state.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	classifierPath := filepath.Join(s.dir, classifierFile)
	if _, err := os.Stat(classifierPath); os.IsNotExist(err) {
		logging.Warn().Str("dir", s.dir).Msg("Model artifacts not found, starting unready")
		metrics.ModelLoaded.Set(0)
		return nil
	}

	arts := &Artifacts{}

	var classifier Classifier
	if err := readJSON(classifierPath, &classifier); err != nil {
		return fmt.Errorf("load classifier: %w", err)
	}
	if err := classifier.validate(); err != nil {
		return fmt.Errorf("load classifier: %w", err)
	}
	arts.Classifier = &classifier

	var scaler Scaler
	if err := readJSON(filepath.Join(s.dir, scalerFile), &scaler); err != nil {
		return fmt.Errorf("load scaler: %w", err)
	}
	if err := scaler.validate(classifier.NumFeatures()); err != nil {
		return fmt.Errorf("load scaler: %w", err)
	}
	arts.Scaler = &scaler

	var encoders Encoders
	if err := readJSON(filepath.Join(s.dir, encodersFile), &encoders); err != nil {
		return fmt.Errorf("load encoders: %w", err)
	}
	if err := encoders.validate(classifier.NumClasses()); err != nil {
		return fmt.Errorf("load encoders: %w", err)
	}
	arts.Encoders = &encoders

	// Metadata is best-effort; the model works without it.
	info, err := readModelInfo(filepath.Join(s.dir, infoFile))
	if err != nil {
		logging.Warn().Err(err).Msg("Model metadata unreadable, using defaults")
	}
	arts.Info = info

	s.current.Store(arts)
	metrics.ModelLoaded.Set(1)
	logging.Info().
		Str("dir", s.dir).
		Int("classes", classifier.NumClasses()).
		Str("version", info.Version).
		Msg("Model artifacts loaded")

	return nil
}

// Reload re-reads the artifacts if none are loaded yet. Used by the
// background reload service to recover after starting unready. Once
// loaded, artifacts are treated as immutable for the process lifetime.
func (s *Store) Reload() error {
	if s.Loaded() {
		return nil
	}
	return s.Load()
}

// Loaded reports whether a complete artifact set is available.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Artifacts returns the current artifact set, or ErrModelUnavailable
// when none is loaded.
func (s *Store) Artifacts() (*Artifacts, error) {
	arts := s.current.Load()
	if arts == nil {
		return nil, ErrModelUnavailable
	}
	return arts, nil
}

// Info returns the training metadata, or placeholder values when the
// model is not loaded.
func (s *Store) Info() ModelInfo {
	arts := s.current.Load()
	if arts == nil {
		return ModelInfo{Accuracy: 0.0, Date: "N/A", Version: "Not Loaded"}
	}
	return arts.Info
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
