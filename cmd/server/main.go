// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Command server runs the Thalir recommendation API under a supervision
// tree: configuration is loaded, the model store and weather gateway are
// wired into the engine, and the HTTP server plus the model reload
// worker run supervised until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thalir-ai/thalir/internal/api"
	"github.com/thalir-ai/thalir/internal/config"
	"github.com/thalir-ai/thalir/internal/engine"
	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/modelstore"
	"github.com/thalir-ai/thalir/internal/supervisor"
	"github.com/thalir-ai/thalir/internal/supervisor/services"
	"github.com/thalir-ai/thalir/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, default logger applies
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("model_dir", cfg.Model.Dir).
		Bool("weather_key_set", cfg.Weather.APIKey != "").
		Int("top_k", cfg.Engine.TopK).
		Msg("Configuration loaded")

	// Model artifacts: a failed or absent load is a degraded start, not a
	// fatal one. The reload service retries until artifacts appear.
	store := modelstore.NewStore(cfg.Model.Dir)
	if err := store.Load(); err != nil {
		logging.Error().Err(err).Msg("Model load failed, starting unready")
	}

	provider := weather.NewBreakerProvider(weather.NewClient(&cfg.Weather))
	gateway := weather.NewGateway(provider, &cfg.Weather)

	eng := engine.New(store, gateway, cfg)
	handler := api.NewHandler(eng, store)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)

	if cfg.Model.ReloadInterval > 0 {
		tree.AddModelService(services.NewModelReloadService(store, cfg.Model.ReloadInterval))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}
