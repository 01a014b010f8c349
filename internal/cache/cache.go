package cache

import (
	"context"
	"sync"
	"time"
)

// Cache holds short-lived authorization verdicts. Implementations are
// advisory: a miss or a failed write only costs a database lookup.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is the in-process fallback used when no redis URL is
// configured, and by tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

func (mc *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	mc.mu.RLock()
	entry, ok := mc.entries[key]
	mc.mu.RUnlock()

	if !ok {
		return "", false
	}

	if time.Now().After(entry.expires) {
		mc.mu.Lock()
		delete(mc.entries, key)
		mc.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

func (mc *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries[key] = memoryEntry{
		value:   value,
		expires: time.Now().Add(ttl),
	}
}
