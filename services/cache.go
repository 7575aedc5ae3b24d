package services

import (
	"sync"
	"time"
)

type cacheEntry struct {
	body        []byte
	contentType string
	expiresAt   time.Time
}

// ResponseCache keeps upstream bodies for a short TTL so that several
// dashboards polling at once cost one upstream request.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *ResponseCache) Get(key string) ([]byte, string, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, "", false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, "", false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, "", false
	}
	return entry.body, entry.contentType, true
}

func (c *ResponseCache) Set(key string, body []byte, contentType string) {
	if c == nil || c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		body:        body,
		contentType: contentType,
		expiresAt:   c.now().Add(c.ttl),
	}

	// Opportunistic sweep; the map stays small (a handful of upstream URLs).
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
