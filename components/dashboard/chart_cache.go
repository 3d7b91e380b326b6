package dashboard

import (
	"sync"
	"time"
)

// RenderCache memoizes rendered chart snippets so identical configurations are built once.
type RenderCache interface {
	GetOrRender(key string, render func() (ChartSnippet, error)) (ChartSnippet, error)
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
	now     func() time.Time
}

type cachedChart struct {
	snippet ChartSnippet
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		entries: make(map[string]cachedChart),
		now:     time.Now,
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (ChartSnippet, error)) (ChartSnippet, error) {
	if snippet, ok := c.get(key); ok {
		return snippet, nil
	}
	snippet, err := render()
	if err != nil {
		return ChartSnippet{}, err
	}
	c.set(key, snippet)
	return snippet, nil
}

// Len returns the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune drops expired entries.
func (c *ChartCache) Prune() {
	if c == nil {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
}

func (c *ChartCache) get(key string) (ChartSnippet, bool) {
	if c == nil || c.ttl <= 0 {
		return ChartSnippet{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return ChartSnippet{}, false
	}
	return entry.snippet, true
}

func (c *ChartCache) set(key string, snippet ChartSnippet) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{
		snippet: snippet,
		expires: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}
