// ABOUTME: In-memory render cache that wraps a snapshot rendering function with sha256-keyed caching.
// ABOUTME: Supports TTL-based expiry, concurrent access, and manual cache clearing.
package render

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/2389-research/ducksort/pond"
)

// RenderFunc renders one pond snapshot.
type RenderFunc func(ctx context.Context, snap pond.Snapshot) ([]byte, error)

// cacheEntry holds a single cached render result with its creation timestamp.
type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// RenderCache wraps a RenderFunc with an in-memory cache keyed by the sha256
// of the snapshot's JSON encoding. Entries expire after the configured TTL.
type RenderCache struct {
	renderFn RenderFunc
	ttl      time.Duration
	entries  map[string]*cacheEntry
	mu       sync.RWMutex
}

// NewRenderCache creates a RenderCache wrapping the given rendering function.
func NewRenderCache(renderFn RenderFunc, ttl time.Duration) *RenderCache {
	return &RenderCache{
		renderFn: renderFn,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
}

// Render returns the cached result for snap when present and not expired.
// Errors are never cached.
func (c *RenderCache) Render(ctx context.Context, snap pond.Snapshot) ([]byte, error) {
	key, err := cacheKey(snap)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	if entry, ok := c.entries[key]; ok && time.Since(entry.createdAt) < c.ttl {
		data := entry.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := c.renderFn(ctx, snap)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.evictExpiredLocked()
	c.entries[key] = &cacheEntry{data: data, createdAt: time.Now()}
	c.mu.Unlock()

	return data, nil
}

// Len returns the number of entries currently in the cache.
func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// evictExpiredLocked drops expired entries. c.mu must be held.
func (c *RenderCache) evictExpiredLocked() {
	for k, e := range c.entries {
		if time.Since(e.createdAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

func cacheKey(snap pond.Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("render cache key: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
