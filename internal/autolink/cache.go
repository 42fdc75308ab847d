package autolink

import (
	"sync"
	"time"
)

// groupCache caches assembled reference-group lists per
// "remoteKey|mode" key with a TTL measured from last access, plus LRU
// eviction at capacity. It is invalidated wholesale (never partially)
// when the custom definitions or the set of registered integrations
// change.
type groupCache struct {
	mu         sync.Mutex
	entries    map[string]*groupCacheEntry
	ttl        time.Duration
	maxEntries int
	metrics    *Metrics
	now        func() time.Time
}

type groupCacheEntry struct {
	groups       []Group
	expiresAt    time.Time
	lastAccessed time.Time
}

func newGroupCache(ttl time.Duration, maxEntries int, metrics *Metrics) *groupCache {
	return &groupCache{
		entries:    make(map[string]*groupCacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		metrics:    metrics,
		now:        time.Now,
	}
}

// get returns the cached groups for key. A hit refreshes the expiry:
// the TTL runs from last access, not creation.
func (c *groupCache) get(key string) ([]Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.metrics.recordSourceCacheMiss()
		return nil, false
	}

	now := c.now()
	if now.After(entry.expiresAt) {
		delete(c.entries, key)
		c.metrics.setSourceCacheSize(len(c.entries))
		c.metrics.recordSourceCacheMiss()
		return nil, false
	}

	entry.lastAccessed = now
	entry.expiresAt = now.Add(c.ttl)
	c.metrics.recordSourceCacheHit()
	return entry.groups, true
}

// set stores the groups for key, evicting the least recently used
// entry at capacity.
func (c *groupCache) set(key string, groups []Group) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictLRU()
		}
	}

	c.entries[key] = &groupCacheEntry{
		groups:       groups,
		expiresAt:    now.Add(c.ttl),
		lastAccessed: now,
	}
	c.metrics.setSourceCacheSize(len(c.entries))
}

// clear drops every entry.
func (c *groupCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*groupCacheEntry)
	c.metrics.setSourceCacheSize(0)
}

// evictLRU removes the least recently used entry. Caller must hold the
// lock.
func (c *groupCache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	first := true
	for key, entry := range c.entries {
		if first || entry.lastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccessed
			first = false
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
