// internal/cache/cache.go
//
// Two-tier read-through/write-through cache for the program listing.
//
// Context
// -------
// Reads consult the remote tier first when it is configured; a remote hit
// is returned immediately without touching the in-process map.  A remote
// miss, error, or absent configuration falls through to the in-process
// tier.  Writes go remote-first (fire and forget) and then always to the
// in-process map, so the process keeps a valid fallback if the remote
// later becomes unreachable.
//
// Del and Clear act on the in-process tier only; remote entries die by
// their own TTL, which for the listing payloads is 60 seconds.  The
// listing handlers call Clear whenever a program is created, trading a
// short staleness window for not tracking individual keys.
package cache

import (
	"context"
	"time"

	"github.com/najeorg/naje-backend/internal/metrics"
)

// Cache combines the in-process tier with an optional remote tier.
type Cache struct {
	mem    *Memory
	remote *Remote
}

// New builds a Cache.  remote may be nil (tier unconfigured).
func New(remote *Remote) *Cache {
	return &Cache{mem: NewMemory(), remote: remote}
}

// Get returns the cached value for key from the first tier that has it.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c.remote != nil {
		if v, ok := c.remote.Get(ctx, key); ok {
			metrics.CacheHitsTotal.WithLabelValues("remote").Inc()
			return v, true
		}
	}
	if v, ok := c.mem.Get(key); ok {
		metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
		return v, true
	}
	metrics.CacheMissesTotal.Inc()
	return "", false
}

// Set writes val to both tiers.  Remote failures are swallowed inside the
// Remote client.
func (c *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) {
	if c.remote != nil {
		c.remote.Set(ctx, key, val, ttl)
	}
	c.mem.Set(key, val, ttl)
}

// Del drops key from the in-process tier.
func (c *Cache) Del(key string) { c.mem.Del(key) }

// Clear empties the in-process tier.
func (c *Cache) Clear() { c.mem.Clear() }
