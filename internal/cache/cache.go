// Package cache memoizes rendered artifacts per (satellite, hour) with a
// fixed time-to-live.
package cache

import (
	"sync"
	"time"

	"github.com/sekaiwx/vissrview/internal/render"
	"github.com/sekaiwx/vissrview/internal/satellite"
)

type entry struct {
	artifact  *render.Artifact
	createdAt time.Time
}

// Cache is a concurrency-safe in-memory artifact cache. Expired entries
// behave as misses and are evicted lazily on access; Sweep exists for an
// optional background job. The clock is injectable so TTL behaviour can be
// tested without sleeping.
type Cache struct {
	mu sync.RWMutex

	// key: satellite.Request.Key()
	data map[string]entry

	ttl time.Duration
	now func() time.Time
}

// New creates a Cache with the given TTL. A nil clock means time.Now.
func New(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  now,
	}
}

func (c *Cache) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.createdAt) >= c.ttl
}

// Lookup returns the cached artifact for req, treating expired entries as
// misses and evicting them.
func (c *Cache) Lookup(req satellite.Request) (*render.Artifact, bool) {
	key := req.Key()

	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.expired(e) {
		c.mu.Lock()
		// Re-check under the write lock; a Store may have raced us.
		if e, ok = c.data[key]; ok && c.expired(e) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.artifact, true
}

// Store inserts or replaces the entry for req. At most one entry per key is
// ever live.
func (c *Cache) Store(req satellite.Request, artifact *render.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[req.Key()] = entry{artifact: artifact, createdAt: c.now()}
}

// Invalidate drops the entry for req if present.
func (c *Cache) Invalidate(req satellite.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, req.Key())
}

// Sweep evicts all expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, e := range c.data {
		if c.expired(e) {
			delete(c.data, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
