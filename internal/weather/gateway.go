// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

// Package weather provides the fault-tolerant, caching weather gateway.
//
// The gateway resolves a free-text location to a weather snapshot using
// the OpenWeatherMap API (geocoding, current weather, 5-day forecast)
// with a 1-hour freshness cache and stale-on-failure fallback. It never
// returns an error to its caller: every failure degrades to a stale
// cache entry or an explicit Unavailable result.
package weather

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/thalir-ai/thalir/internal/config"
	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/metrics"
	"github.com/thalir-ai/thalir/internal/models"
)

// Snapshot is an immutable weather observation for a location.
type Snapshot struct {
	// AvgTemp is the mean temperature over the forecast window (C),
	// rounded to one decimal place.
	AvgTemp float64 `json:"avg_temp"`

	// Humidity is the current relative humidity (%).
	Humidity float64 `json:"humidity"`

	// RainfallForecast is the summed forecast precipitation (mm),
	// rounded to one decimal place.
	RainfallForecast float64 `json:"rainfall_forecast"`

	// WindSpeed is the current wind speed (m/s).
	WindSpeed float64 `json:"wind_speed"`

	// CurrentTemp is the current temperature (C).
	CurrentTemp float64 `json:"current_temp"`
}

// Status classifies how a snapshot was obtained.
type Status int

const (
	// StatusOK means the snapshot is fresh: served from a fresh cache
	// entry or from a successful refresh.
	StatusOK Status = iota

	// StatusStale means the refresh failed and the snapshot comes from a
	// cache entry past its TTL.
	StatusStale

	// StatusUnavailable means the refresh failed and no prior entry
	// exists; the Snapshot field is zero.
	StatusUnavailable
)

// Result is the outcome of a gateway fetch. The fallback path is a
// designed branch, not an error: callers switch on Status instead of
// handling an error value.
type Result struct {
	Status   Status
	Snapshot Snapshot
}

// Available reports whether the result carries usable weather data.
func (r Result) Available() bool {
	return r.Status != StatusUnavailable
}

// Gateway resolves locations to weather snapshots with caching, bounded
// latency and stale-on-failure fallback.
//
// Concurrency: safe for use by many concurrent requests. Concurrent cache
// misses for the same key are coalesced into one provider refresh via
// singleflight; refreshes for different keys proceed independently.
type Gateway struct {
	provider Provider
	cache    *Cache

	refreshTimeout time.Duration
	defaultState   string

	group singleflight.Group
}

// NewGateway creates a weather gateway over the given provider.
func NewGateway(provider Provider, cfg *config.WeatherConfig) *Gateway {
	return &Gateway{
		provider:       provider,
		cache:          NewCache(cfg.CacheTTL),
		refreshTimeout: cfg.RefreshTimeout,
		defaultState:   cfg.DefaultState,
	}
}

// Cache exposes the gateway's snapshot cache (read-mostly, for probes).
func (g *Gateway) Cache() *Cache {
	return g.cache
}

// Fetch resolves a location to a weather snapshot.
//
// Resolution order:
//  1. A fresh cache entry (age < TTL) is returned without a network call.
//  2. Otherwise the provider is refreshed under the refresh timeout;
//     success overwrites the cache entry.
//  3. On any refresh failure (timeout, network error, missing geocode,
//     malformed response) the previous cache entry is returned regardless
//     of freshness, or Unavailable when no entry exists.
//
// Fetch never returns an error. An abandoned caller context does not
// cancel an in-flight refresh; the refresh may complete and populate the
// cache for future callers.
func (g *Gateway) Fetch(ctx context.Context, location string) Result {
	key := CacheKey(location)

	if entry, ok := g.cache.Get(key); ok && g.cache.IsFresh(entry) {
		g.cache.recordHit()
		metrics.WeatherCacheHits.Inc()
		logging.Debug().Str("key", key).Msg("Returning cached weather")
		return Result{Status: StatusOK, Snapshot: entry.Data}
	}

	g.cache.recordMiss()
	metrics.WeatherCacheMisses.Inc()

	snapshot, err, _ := g.group.Do(key, func() (interface{}, error) {
		return g.refresh(ctx, location, key)
	})
	if err == nil {
		return Result{Status: StatusOK, Snapshot: snapshot.(Snapshot)}
	}

	logging.Warn().Err(err).Str("location", location).Msg("Weather refresh failed")

	if entry, ok := g.cache.Get(key); ok {
		g.cache.recordStaleHit()
		metrics.WeatherStaleFallbacks.Inc()
		return Result{Status: StatusStale, Snapshot: entry.Data}
	}

	return Result{Status: StatusUnavailable}
}

// refresh performs one full provider round trip and updates the cache.
// The refresh is detached from the caller's cancellation but inherits its
// values, and is bounded by the configured refresh timeout.
func (g *Gateway) refresh(ctx context.Context, location, key string) (interface{}, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
	defer cancel()

	loc := models.ParseLocation(location, g.defaultState)

	coord, err := g.provider.Geocode(ctx, loc.City, loc.State)
	if err != nil {
		metrics.WeatherRefreshes.WithLabelValues("failure").Inc()
		return Snapshot{}, err
	}

	// Current weather and forecast fetch concurrently; both must succeed.
	var current *CurrentConditions
	var forecast *Forecast

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		current, err = g.provider.Current(groupCtx, coord)
		return err
	})
	group.Go(func() error {
		var err error
		forecast, err = g.provider.FiveDayForecast(groupCtx, coord)
		return err
	})
	if err := group.Wait(); err != nil {
		metrics.WeatherRefreshes.WithLabelValues("failure").Inc()
		return Snapshot{}, err
	}

	snapshot := buildSnapshot(current, forecast)
	g.cache.Put(key, snapshot)

	metrics.WeatherRefreshes.WithLabelValues("success").Inc()
	metrics.WeatherRefreshDuration.Observe(time.Since(start).Seconds())
	logging.Debug().Str("key", key).Float64("avg_temp", snapshot.AvgTemp).Msg("Weather refreshed")

	return snapshot, nil
}

// buildSnapshot reduces provider responses to a snapshot. The average
// temperature falls back to the current temperature when the forecast
// list is empty; missing precipitation counts as zero.
func buildSnapshot(current *CurrentConditions, forecast *Forecast) Snapshot {
	avgTemp := current.Temp
	if len(forecast.Periods) > 0 {
		var sum float64
		for _, p := range forecast.Periods {
			sum += p.Temp
		}
		avgTemp = round1(sum / float64(len(forecast.Periods)))
	}

	var rainfall float64
	for _, p := range forecast.Periods {
		rainfall += p.Rain3h
	}

	return Snapshot{
		AvgTemp:          avgTemp,
		Humidity:         current.Humidity,
		RainfallForecast: round1(rainfall),
		WindSpeed:        current.WindSpeed,
		CurrentTemp:      current.Temp,
	}
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
