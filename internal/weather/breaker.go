// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/thalir-ai/thalir/internal/logging"
	"github.com/thalir-ai/thalir/internal/metrics"
)

// BreakerProvider wraps a Provider with a circuit breaker so a dead or
// slow weather API stops consuming the refresh budget of every request.
// An open circuit fails refreshes immediately; the gateway then serves
// stale cache data.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. Tests should mock the wrapped
// provider, not the breaker.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker[interface{}]
	name     string
}

// NewBreakerProvider wraps provider with a circuit breaker.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 1 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 6 requests
func NewBreakerProvider(provider Provider) *BreakerProvider {
	cbName := "weather-provider"

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,

		// ReadyToTrip determines when to open the circuit
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 6 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// A geocode miss is a caller problem, not provider health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoGeocodeMatch)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerProvider{
		provider: provider,
		cb:       cb,
		name:     cbName,
	}
}

// execute wraps a provider call with circuit breaker protection.
func (b *BreakerProvider) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Geocode resolves coordinates with circuit breaker protection.
func (b *BreakerProvider) Geocode(ctx context.Context, city, state string) (Coordinates, error) {
	result, err := b.execute(func() (interface{}, error) {
		coord, err := b.provider.Geocode(ctx, city, state)
		if err != nil {
			return nil, err
		}
		return &coord, nil
	})
	coord, err := castResult[Coordinates](result, err)
	if err != nil {
		return Coordinates{}, err
	}
	return *coord, nil
}

// Current fetches current weather with circuit breaker protection.
func (b *BreakerProvider) Current(ctx context.Context, coord Coordinates) (*CurrentConditions, error) {
	return castResult[CurrentConditions](b.execute(func() (interface{}, error) {
		return b.provider.Current(ctx, coord)
	}))
}

// FiveDayForecast fetches the forecast with circuit breaker protection.
func (b *BreakerProvider) FiveDayForecast(ctx context.Context, coord Coordinates) (*Forecast, error) {
	return castResult[Forecast](b.execute(func() (interface{}, error) {
		return b.provider.FiveDayForecast(ctx, coord)
	}))
}

// stateToFloat converts circuit breaker state to numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Verify interface implementations at compile time
var (
	_ Provider = (*Client)(nil)
	_ Provider = (*BreakerProvider)(nil)
)
