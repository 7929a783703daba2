package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_FixedWindow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	l := New(time.Hour, 5)
	l.now = func() time.Time { return now }

	for i := 1; i <= 5; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, l.Allow("1.2.3.4"), "6th request in the window must be denied")

	// Other clients have their own budget.
	assert.True(t, l.Allow("5.6.7.8"))

	// Still denied just before the boundary.
	now = now.Add(time.Hour)
	assert.False(t, l.Allow("1.2.3.4"))

	// A fresh window opens after the boundary.
	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLimiter_LazyReset(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	l := New(time.Hour, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("c"))
	assert.True(t, l.Allow("c"))
	assert.False(t, l.Allow("c"))

	// Two full windows later the first request restarts the counter; the
	// skipped window is never materialised.
	now = now.Add(2*time.Hour + time.Minute)
	assert.True(t, l.Allow("c"))
	assert.True(t, l.Allow("c"))
	assert.False(t, l.Allow("c"))
}
