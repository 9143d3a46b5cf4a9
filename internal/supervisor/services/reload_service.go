// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package services

import (
	"context"
	"time"

	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/modelstore"
)

// ModelReloadService polls the model store so a process that started
// without artifacts becomes ready once they appear on disk. Reload is a
// no-op after the first successful load.
type ModelReloadService struct {
	store    *modelstore.Store
	interval time.Duration
	name     string
}

// NewModelReloadService creates the reload worker.
func NewModelReloadService(store *modelstore.Store, interval time.Duration) *ModelReloadService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ModelReloadService{
		store:    store,
		interval: interval,
		name:     "model-reload",
	}
}

// Serve implements suture.Service. Reload errors are logged and retried
// on the next tick; only context cancellation stops the worker.
func (m *ModelReloadService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.store.Reload(); err != nil {
				logging.Warn().Err(err).Msg("Model reload attempt failed")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (m *ModelReloadService) String() string {
	return m.name
}
