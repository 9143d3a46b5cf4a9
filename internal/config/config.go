// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package config provides layered configuration for the Thalir server.
//
// Configuration is loaded via Koanf v2 from three sources (highest wins):
//
//  1. Environment variables (WEATHER_API_KEY, HTTP_PORT, ...)
//  2. Optional YAML config file (config.yaml)
//  3. Built-in defaults
//
// The weather provider API key is deliberately configuration-only; it is
// never embedded in source.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Thalir server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Weather  WeatherConfig  `koanf:"weather"`
	Model    ModelConfig    `koanf:"model"`
	Engine   EngineConfig   `koanf:"engine"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout is the per-request read/write timeout of the HTTP server.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown drain time.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// WeatherConfig holds weather provider (OpenWeatherMap) settings.
type WeatherConfig struct {
	// APIKey authenticates against the weather provider.
	// Required for live weather; with an empty key every refresh fails and
	// the gateway serves stale or default data.
	APIKey string `koanf:"api_key"`

	// GeoBaseURL is the geocoding API base URL.
	GeoBaseURL string `koanf:"geo_base_url"`

	// APIBaseURL is the current-weather/forecast API base URL.
	APIBaseURL string `koanf:"api_base_url"`

	// Country restricts geocoding lookups (ISO 3166 country code).
	Country string `koanf:"country"`

	// DefaultState is assumed when a location string carries no state part.
	DefaultState string `koanf:"default_state"`

	// CacheTTL is how long a fetched snapshot counts as fresh.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// RefreshTimeout bounds a full refresh (geocode + current + forecast).
	RefreshTimeout time.Duration `koanf:"refresh_timeout"`

	// ClientTimeout is the per-request HTTP client timeout.
	ClientTimeout time.Duration `koanf:"client_timeout"`

	// RequestsPerMinute caps outbound provider calls (0 disables the cap).
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

// ModelConfig holds model store settings.
type ModelConfig struct {
	// Dir is the directory holding crop_model.json, scaler.json,
	// encoders.json and model_info.txt.
	Dir string `koanf:"dir"`

	// ReloadInterval is how often the reload service retries loading
	// artifacts while the store is unready. Zero disables auto-reload.
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// EngineConfig holds recommendation engine settings.
type EngineConfig struct {
	// TopK is the number of crops returned per recommendation.
	TopK int `koanf:"top_k"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional config file and
// environment variables, then validates the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Validate checks the configuration for values that would prevent the
// server from operating. Missing model artifacts or a missing weather API
// key are NOT validation errors: the server starts degraded and recovers.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Weather.CacheTTL <= 0 {
		return fmt.Errorf("weather.cache_ttl must be positive, got %s", c.Weather.CacheTTL)
	}
	if c.Weather.RefreshTimeout <= 0 {
		return fmt.Errorf("weather.refresh_timeout must be positive, got %s", c.Weather.RefreshTimeout)
	}
	if c.Weather.GeoBaseURL == "" || c.Weather.APIBaseURL == "" {
		return fmt.Errorf("weather.geo_base_url and weather.api_base_url must be set")
	}
	if c.Engine.TopK < 1 {
		return fmt.Errorf("engine.top_k must be at least 1, got %d", c.Engine.TopK)
	}
	if c.Security.RateLimitReqs < 0 {
		return fmt.Errorf("security.rate_limit_reqs must not be negative, got %d", c.Security.RateLimitReqs)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
