// internal/cache/memory.go
//
// In-process cache tier.
//
// A mutex-guarded map with per-entry TTL.  Expiry is lazy: an entry is
// checked, and deleted, when it is next read.  There is no capacity bound
// and no sweeper; the listing workload keys the cache by query-parameter
// combinations, and the entries gauge makes growth observable.
package cache

import (
	"sync"
	"time"

	"github.com/najeorg/naje-backend/internal/metrics"
)

type memEntry struct {
	val string
	at  time.Time
	ttl time.Duration
}

// Memory is safe for concurrent use.
type Memory struct {
	mu  sync.Mutex
	m   map[string]memEntry
	now func() time.Time // injectable for tests
}

// NewMemory returns an empty in-process tier.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]memEntry), now: time.Now}
}

// Get returns the live value for key, deleting it first if its TTL has
// elapsed.
func (c *Memory) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.at) > e.ttl {
		delete(c.m, key)
		metrics.CacheEntries.Set(float64(len(c.m)))
		return "", false
	}
	return e.val, true
}

// Set stores val under key for ttl.
func (c *Memory) Set(key, val string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = memEntry{val: val, at: c.now(), ttl: ttl}
	metrics.CacheEntries.Set(float64(len(c.m)))
}

// Del removes key if present.
func (c *Memory) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	metrics.CacheEntries.Set(float64(len(c.m)))
}

// Clear empties the tier.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]memEntry)
	metrics.CacheEntries.Set(0)
}

// Len reports current size.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
