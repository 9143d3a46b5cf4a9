// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package weather

import (
	"strings"
	"sync"
	"time"
)

// Entry is a cached weather snapshot with its fetch timestamp.
type Entry struct {
	Data      Snapshot
	FetchedAt time.Time
}

// Cache is a thread-safe in-memory cache of weather snapshots keyed by
// normalized location. Unlike a plain TTL cache, entries are never evicted:
// an entry past its TTL stops being fresh but is retained indefinitely as a
// stale fallback until overwritten by a newer successful fetch.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	stats CacheStats
}

// CacheStats tracks cache performance for monitoring.
type CacheStats struct {
	Hits      int64
	Misses    int64
	StaleHits int64
	TotalKeys int64
}

// NewCache creates a snapshot cache whose entries are fresh for ttl.
//
// Thread Safety: safe for concurrent access from multiple goroutines.
// A key maps to at most one entry; concurrent refreshes for the same key
// resolve last-writer-wins.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Get retrieves the entry for key regardless of freshness.
// Callers decide between fresh use and stale fallback via IsFresh.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores a snapshot for key with the current timestamp, overwriting
// any previous entry.
func (c *Cache) Put(key string, data Snapshot) {
	c.PutAt(key, data, time.Now())
}

// PutAt stores a snapshot with an explicit fetch timestamp.
func (c *Cache) PutAt(key string, data Snapshot, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{Data: data, FetchedAt: fetchedAt}
	c.stats.TotalKeys = int64(len(c.entries))
}

// IsFresh reports whether the entry's age is within the cache TTL.
func (c *Cache) IsFresh(entry Entry) bool {
	return c.IsFreshAt(entry, time.Now())
}

// IsFreshAt reports freshness relative to an explicit time.
func (c *Cache) IsFreshAt(entry Entry, now time.Time) bool {
	return now.Sub(entry.FetchedAt) < c.ttl
}

// TTL returns the freshness window of the cache.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// recordHit, recordMiss and recordStaleHit update cache statistics.
func (c *Cache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

func (c *Cache) recordStaleHit() {
	c.mu.Lock()
	c.stats.StaleHits++
	c.mu.Unlock()
}

// Stats returns a snapshot of current cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// CacheKey normalizes a free-text location into a cache key: lower-cased,
// internal whitespace collapsed to underscores, prefixed with "weather_".
// Keys are location-equivalent strings only; ambiguous city names across
// regions are not disambiguated.
//
//	CacheKey("Madurai, Tamil Nadu") -> "weather_madurai,_tamil_nadu"
func CacheKey(location string) string {
	return "weather_" + strings.Join(strings.Fields(strings.ToLower(location)), "_")
}
