// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package weather

import (
	"testing"
	"time"
)

func TestCacheFreshness(t *testing.T) {
	cache := NewCache(time.Hour)
	snapshot := Snapshot{AvgTemp: 28.5, Humidity: 70, RainfallForecast: 12.3}

	now := time.Now()
	cache.PutAt("weather_chennai", snapshot, now)

	entry, ok := cache.Get("weather_chennai")
	if !ok {
		t.Fatal("expected entry after Put")
	}
	if entry.Data != snapshot {
		t.Errorf("got %+v, want %+v", entry.Data, snapshot)
	}

	if !cache.IsFreshAt(entry, now.Add(59*time.Minute)) {
		t.Error("entry should be fresh just inside the TTL")
	}
	if cache.IsFreshAt(entry, now.Add(time.Hour)) {
		t.Error("entry should be stale exactly at the TTL")
	}
	if cache.IsFreshAt(entry, now.Add(2*time.Hour)) {
		t.Error("entry should be stale past the TTL")
	}
}

func TestCacheRetainsStaleEntries(t *testing.T) {
	cache := NewCache(time.Millisecond)
	cache.PutAt("weather_pune", Snapshot{AvgTemp: 30}, time.Now().Add(-time.Hour))

	// Expired long ago but must remain retrievable as a fallback.
	entry, ok := cache.Get("weather_pune")
	if !ok {
		t.Fatal("stale entry must remain retrievable")
	}
	if cache.IsFresh(entry) {
		t.Error("entry should report stale")
	}
	if entry.Data.AvgTemp != 30 {
		t.Errorf("got AvgTemp %v, want 30", entry.Data.AvgTemp)
	}
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Put("weather_delhi", Snapshot{AvgTemp: 20})
	cache.Put("weather_delhi", Snapshot{AvgTemp: 25})

	entry, ok := cache.Get("weather_delhi")
	if !ok {
		t.Fatal("expected entry")
	}
	if entry.Data.AvgTemp != 25 {
		t.Errorf("got AvgTemp %v, want 25 after overwrite", entry.Data.AvgTemp)
	}
	if stats := cache.Stats(); stats.TotalKeys != 1 {
		t.Errorf("got %d keys, want 1", stats.TotalKeys)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"Chennai", "weather_chennai"},
		{"Chennai, Tamil Nadu", "weather_chennai,_tamil_nadu"},
		{"  Chennai   Tamil Nadu  ", "weather_chennai_tamil_nadu"},
		{"PUNE", "weather_pune"},
		{"", "weather_"},
	}
	for _, tt := range tests {
		if got := CacheKey(tt.location); got != tt.want {
			t.Errorf("CacheKey(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestCacheStats(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.recordHit()
	cache.recordHit()
	cache.recordMiss()
	cache.recordStaleHit()

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.StaleHits != 1 {
		t.Errorf("got stats %+v, want 2 hits, 1 miss, 1 stale hit", stats)
	}
}
