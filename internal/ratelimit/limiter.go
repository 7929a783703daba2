// internal/ratelimit/limiter.go
//
// Fixed-window request limiter for the contact endpoint.
//
// Context
// -------
// Each client identifier gets at most Max accepted requests per Window.
// Windows reset lazily: the first request after the boundary starts a
// fresh window, so an idle client costs nothing.  Entries are never
// proactively purged, matching the deterrence-not-security intent; the
// clients gauge makes the map size observable.
//
// The identifier is whatever the caller derives from the request,
// typically the first X-Forwarded-For hop.  It is spoofable, which is
// acceptable for abuse deterrence.
package ratelimit

import (
	"sync"
	"time"

	"github.com/najeorg/naje-backend/internal/metrics"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	m      map[string]window
	window time.Duration
	max    int
	now    func() time.Time // injectable for tests
}

// New returns a Limiter allowing max requests per windowLen per client.
func New(windowLen time.Duration, max int) *Limiter {
	return &Limiter{
		m:      make(map[string]window),
		window: windowLen,
		max:    max,
		now:    time.Now,
	}
}

// Allow records a request from clientID and reports whether it is within
// the current window's budget.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.m[clientID]
	if !ok || now.After(w.resetAt) {
		l.m[clientID] = window{count: 1, resetAt: now.Add(l.window)}
		metrics.RateLimitClients.Set(float64(len(l.m)))
		return true
	}
	if w.count >= l.max {
		metrics.RateLimitedTotal.Inc()
		return false
	}
	w.count++
	l.m[clientID] = w
	return true
}
