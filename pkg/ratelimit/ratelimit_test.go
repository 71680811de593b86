package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(window time.Duration, maxHits int) (*Limiter, *time.Time) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(window, maxHits)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAllow(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "hit %d", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "keys are independent")

	*clock = clock.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "window slides")
}

func TestRejectedHitsDoNotCount(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 1)

	assert.True(t, l.Allow("a"))
	*clock = clock.Add(30 * time.Second)
	assert.False(t, l.Allow("a"))
	*clock = clock.Add(31 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestPrune(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 5)

	l.Allow("old")
	*clock = clock.Add(45 * time.Second)
	l.Allow("recent")
	*clock = clock.Add(30 * time.Second)

	assert.Equal(t, 1, l.Prune())
	assert.Len(t, l.limits, 1)
	assert.Contains(t, l.limits, "recent")
}
