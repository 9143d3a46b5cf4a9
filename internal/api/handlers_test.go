// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/thalir-ai/thalir/internal/config"
	"github.com/thalir-ai/thalir/internal/engine"
	"github.com/thalir-ai/thalir/internal/models"
	"github.com/thalir-ai/thalir/internal/modelstore"
	"github.com/thalir-ai/thalir/internal/weather"
)

// downProvider fails every weather call so tests exercise the default
// weather fallback deterministically.
type downProvider struct{}

func (d *downProvider) Geocode(ctx context.Context, city, state string) (weather.Coordinates, error) {
	return weather.Coordinates{}, errors.New("provider down")
}

func (d *downProvider) Current(ctx context.Context, coord weather.Coordinates) (*weather.CurrentConditions, error) {
	return nil, errors.New("provider down")
}

func (d *downProvider) FiveDayForecast(ctx context.Context, coord weather.Coordinates) (*weather.Forecast, error) {
	return nil, errors.New("provider down")
}

func writeTestArtifacts(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"crop_model.json": `{
			"class_log_prior": [-1.0986, -1.0986, -1.0986],
			"theta": [
				[0, 28, 70, 100, 0, 2],
				[1, 20, 50, 60, 1, 1],
				[2, 35, 90, 200, 1, 0]
			],
			"var": [
				[1, 1, 1, 1, 1, 1],
				[1, 1, 1, 1, 1, 1],
				[1, 1, 1, 1, 1, 1]
			]
		}`,
		"scaler.json": `{"mean": [0, 0, 0, 0, 0, 0], "scale": [1, 1, 1, 1, 1, 1]}`,
		"encoders.json": `{
			"soil": {"Clayey": 0, "Loamy": 1, "Sandy": 2},
			"state": {"Punjab": 0, "Tamil Nadu": 1},
			"rain": {"High": 0, "Low": 1, "Medium": 2},
			"crop": ["Paddy", "Wheat", "Maize"]
		}`,
		"model_info.txt": "Accuracy: 0.92\nDate: 2026-01-15\nVersion: 1.0.0\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func newTestServer(t *testing.T, loadArtifacts bool) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	if loadArtifacts {
		writeTestArtifacts(t, dir)
	}
	store := modelstore.NewStore(dir)
	if err := store.Load(); err != nil {
		t.Fatalf("store load: %v", err)
	}

	cfg := &config.Config{
		Weather: config.WeatherConfig{
			CacheTTL:       time.Hour,
			RefreshTimeout: time.Second,
			DefaultState:   "Punjab",
		},
		Engine: config.EngineConfig{TopK: 3},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}

	gateway := weather.NewGateway(&downProvider{}, &cfg.Weather)
	eng := engine.New(store, gateway, cfg)
	handler := NewHandler(eng, store)

	server := httptest.NewServer(NewRouter(handler, cfg))
	t.Cleanup(server.Close)
	return server
}

func postRecommend(t *testing.T, server *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(server.URL+"/recommend", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /recommend: %v", err)
	}
	return resp
}

func TestRecommendEndpoint(t *testing.T) {
	server := newTestServer(t, true)

	resp := postRecommend(t, server, `{"soil_type":"Clayey","land_area":2,"location":"Ludhiana, Punjab"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("got Content-Type %q, want application/json", got)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var body models.RecommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Location != "Ludhiana, Punjab" {
		t.Errorf("got location %q, want caller string", body.Location)
	}
	if len(body.Recommendations) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(body.Recommendations))
	}
	if body.Recommendations[0].Crop != "Paddy" {
		t.Errorf("got top crop %q, want Paddy", body.Recommendations[0].Crop)
	}
	// Weather provider is down, so default conditions apply.
	if body.WeatherSummary.AvgTemp != 28.0 {
		t.Errorf("got avg_temp %v, want default 28.0", body.WeatherSummary.AvgTemp)
	}
}

func TestRecommendModelNotReady(t *testing.T) {
	server := newTestServer(t, false)

	resp := postRecommend(t, server, `{"soil_type":"Clayey","land_area":2,"location":"Ludhiana"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", resp.StatusCode)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "MODEL_NOT_READY" {
		t.Errorf("got code %q, want MODEL_NOT_READY", body.Code)
	}
}

func TestRecommendValidation(t *testing.T) {
	server := newTestServer(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"soil_type":`},
		{"missing soil type", `{"land_area":2,"location":"Ludhiana"}`},
		{"missing location", `{"soil_type":"Clayey","land_area":2}`},
		{"zero land area", `{"soil_type":"Clayey","land_area":0,"location":"Ludhiana"}`},
		{"negative land area", `{"soil_type":"Clayey","land_area":-1,"location":"Ludhiana"}`},
		{"unknown field", `{"soil_type":"Clayey","land_area":2,"location":"Ludhiana","bogus":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRecommend(t, server, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("got status %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRecommendUnknownCategoryIs500(t *testing.T) {
	server := newTestServer(t, true)

	resp := postRecommend(t, server, `{"soil_type":"Volcanic","land_area":2,"location":"Ludhiana"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", resp.StatusCode)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "PREDICTION_FAILED" {
		t.Errorf("got code %q, want PREDICTION_FAILED", body.Code)
	}
	if strings.Contains(body.Message, "Volcanic") {
		t.Error("error message leaks request detail")
	}
}

func TestModelInfoEndpoint(t *testing.T) {
	server := newTestServer(t, true)

	resp, err := http.Get(server.URL + "/model-info")
	if err != nil {
		t.Fatalf("GET /model-info: %v", err)
	}
	defer resp.Body.Close()

	var body models.ModelInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ModelAccuracy != 0.92 {
		t.Errorf("got accuracy %v, want 0.92", body.ModelAccuracy)
	}
	if body.TrainingDate != "2026-01-15" {
		t.Errorf("got date %q, want 2026-01-15", body.TrainingDate)
	}
	if body.Version != "1.0.0" {
		t.Errorf("got version %q, want 1.0.0", body.Version)
	}
}

func TestModelInfoUnloaded(t *testing.T) {
	server := newTestServer(t, false)

	resp, err := http.Get(server.URL + "/model-info")
	if err != nil {
		t.Fatalf("GET /model-info: %v", err)
	}
	defer resp.Body.Close()

	var body models.ModelInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ModelAccuracy != 0.0 || body.TrainingDate != "N/A" || body.Version != "Not Loaded" {
		t.Errorf("got %+v, want {0.0, N/A, Not Loaded}", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(t, true)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health: got status %d, want 200", resp.StatusCode)
	}

	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if health.Status != "ok" || !health.ModelLoaded {
		t.Errorf(`got %+v, want status "ok" with model loaded`, health)
	}

	live, err := http.Get(server.URL + "/health/live")
	if err != nil {
		t.Fatalf("GET /health/live: %v", err)
	}
	live.Body.Close()
	if live.StatusCode != http.StatusOK {
		t.Errorf("live: got status %d, want 200", live.StatusCode)
	}

	ready, err := http.Get(server.URL + "/health/ready")
	if err != nil {
		t.Fatalf("GET /health/ready: %v", err)
	}
	ready.Body.Close()
	if ready.StatusCode != http.StatusOK {
		t.Errorf("ready: got status %d, want 200", ready.StatusCode)
	}
}

func TestReadinessReflectsModelState(t *testing.T) {
	server := newTestServer(t, false)

	// /health stays "ok" even while degraded; only model_loaded flips.
	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	resp.Body.Close()
	if health.Status != "ok" || health.ModelLoaded {
		t.Errorf(`got %+v, want status "ok" with model unloaded`, health)
	}

	ready, err := http.Get(server.URL + "/health/ready")
	if err != nil {
		t.Fatalf("GET /health/ready: %v", err)
	}
	ready.Body.Close()
	if ready.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want 503 while model unloaded", ready.StatusCode)
	}

	// Liveness stays green regardless.
	live, err := http.Get(server.URL + "/health/live")
	if err != nil {
		t.Fatalf("GET /health/live: %v", err)
	}
	live.Body.Close()
	if live.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", live.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, true)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}
}
