// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/thalir-ai/thalir/internal/config"
)

// maxErrorBodySize limits the maximum amount of response body read for
// error reporting to prevent unbounded memory allocation.
const maxErrorBodySize = 64 * 1024 // 64KB

// ErrNoGeocodeMatch indicates the provider returned no coordinates for a
// city/state query.
var ErrNoGeocodeMatch = errors.New("geocoding returned no match")

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// CurrentConditions is the provider's current-weather report reduced to
// the fields the gateway consumes.
type CurrentConditions struct {
	Temp      float64
	Humidity  float64
	WindSpeed float64
}

// ForecastPeriod is one 3-hour forecast period.
type ForecastPeriod struct {
	Temp   float64
	Rain3h float64
}

// Forecast is the multi-day forecast as a flat period list.
type Forecast struct {
	Periods []ForecastPeriod
}

// Provider defines the weather provider operations the gateway needs.
//
// Implemented by Client for production use and by mocks in tests. All
// methods are safe for concurrent use and honor context cancellation.
type Provider interface {
	// Geocode resolves a city/state pair to coordinates.
	// Returns ErrNoGeocodeMatch when the provider knows no such place.
	Geocode(ctx context.Context, city, state string) (Coordinates, error)

	// Current fetches the current weather at the coordinates.
	Current(ctx context.Context, c Coordinates) (*CurrentConditions, error)

	// FiveDayForecast fetches the 5-day/3-hour forecast at the coordinates.
	FiveDayForecast(ctx context.Context, c Coordinates) (*Forecast, error)
}

// Client is the OpenWeatherMap REST client.
//
// Requests are authenticated with the configured API key, issued with
// metric units, bounded by the configured client timeout, and budgeted by
// a client-side rate limiter so bursts of cache misses cannot exhaust the
// provider quota.
//
// Thread Safety: safe for concurrent use; each call builds its own request.
type Client struct {
	geoBaseURL string
	apiBaseURL string
	apiKey     string
	country    string
	client     *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a weather provider client from configuration.
func NewClient(cfg *config.WeatherConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}
	return &Client{
		geoBaseURL: cfg.GeoBaseURL,
		apiBaseURL: cfg.APIBaseURL,
		apiKey:     cfg.APIKey,
		country:    cfg.Country,
		client: &http.Client{
			Timeout: cfg.ClientTimeout,
		},
		limiter: rate.NewLimiter(limit, burstFor(cfg.RequestsPerMinute)),
	}
}

// burstFor sizes the limiter burst so a single refresh (geocode + current +
// forecast) never self-throttles.
func burstFor(perMinute int) int {
	if perMinute <= 0 || perMinute > 3 {
		return 3
	}
	return perMinute
}

// geocodeResult is one entry of the provider's geocoding response.
type geocodeResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// currentResponse is the provider's current-weather JSON schema.
type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// forecastResponse is the provider's 5-day forecast JSON schema.
// The rain field is optional per period; a missing field means no
// precipitation for that period.
type forecastResponse struct {
	List []struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Rain *struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// Geocode implements Provider.
func (c *Client) Geocode(ctx context.Context, city, state string) (Coordinates, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s,%s,%s", city, state, c.country))
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	var results []geocodeResult
	if err := c.getJSON(ctx, c.geoBaseURL+"/direct?"+params.Encode(), "geocode", &results); err != nil {
		return Coordinates{}, err
	}

	if len(results) == 0 {
		return Coordinates{}, ErrNoGeocodeMatch
	}

	return Coordinates{Lat: results[0].Lat, Lon: results[0].Lon}, nil
}

// Current implements Provider.
func (c *Client) Current(ctx context.Context, coord Coordinates) (*CurrentConditions, error) {
	var resp currentResponse
	if err := c.getJSON(ctx, c.weatherURL("/weather", coord), "current weather", &resp); err != nil {
		return nil, err
	}

	return &CurrentConditions{
		Temp:      resp.Main.Temp,
		Humidity:  resp.Main.Humidity,
		WindSpeed: resp.Wind.Speed,
	}, nil
}

// FiveDayForecast implements Provider.
func (c *Client) FiveDayForecast(ctx context.Context, coord Coordinates) (*Forecast, error) {
	var resp forecastResponse
	if err := c.getJSON(ctx, c.weatherURL("/forecast", coord), "forecast", &resp); err != nil {
		return nil, err
	}

	forecast := &Forecast{Periods: make([]ForecastPeriod, 0, len(resp.List))}
	for _, period := range resp.List {
		p := ForecastPeriod{Temp: period.Main.Temp}
		if period.Rain != nil {
			p.Rain3h = period.Rain.ThreeHour
		}
		forecast.Periods = append(forecast.Periods, p)
	}

	return forecast, nil
}

// weatherURL builds a data API URL for the given endpoint and coordinates.
func (c *Client) weatherURL(endpoint string, coord Coordinates) string {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%g", coord.Lat))
	params.Set("lon", fmt.Sprintf("%g", coord.Lon))
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)
	return c.apiBaseURL + endpoint + "?" + params.Encode()
}

// getJSON performs a rate-limited GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, reqURL, operation string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%s request failed with status %d: %s", operation, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	return nil
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
