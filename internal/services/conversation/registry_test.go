package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(a Agent, ttl time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry(a, Options{IdleTTL: ttl})
	r.now = clock.Now
	seq := 0
	r.newID = func() string {
		seq++
		return fmt.Sprintf("conv-%d", seq)
	}
	return r, clock
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	r, _ := newTestRegistry(&fakeAgent{}, time.Minute)

	first := r.Create()
	second := r.Create()
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get(first.ID())
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.True(t, r.Remove(first.ID()))
	assert.False(t, r.Remove(first.ID()))
	assert.Equal(t, 1, r.Len())
	assert.False(t, first.Submit("closed widgets reject input"))
}

func TestRegistry_FreshWidgetPerPage(t *testing.T) {
	r, _ := newTestRegistry(&fakeAgent{configured: false}, time.Minute)

	w := r.Create()
	require.True(t, w.Submit("hello"))
	assert.Len(t, w.Snapshot().Messages, 2)

	reloaded := r.Create()
	assert.Empty(t, reloaded.Snapshot().Messages)
}

func TestRegistry_SweepsIdleWidgets(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	r, clock := newTestRegistry(gated(release, "ok"), time.Minute)

	idle := r.Create()
	busy := r.Create()
	watched := r.Create()
	require.True(t, busy.Submit("still thinking"))
	_, unsubscribe := watched.Subscribe()
	defer unsubscribe()

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Get(idle.ID())
	assert.False(t, ok)
	_, ok = r.Get(busy.ID())
	assert.True(t, ok)
	_, ok = r.Get(watched.ID())
	assert.True(t, ok)
}

func TestRegistry_GetKeepsWidgetAlive(t *testing.T) {
	r, clock := newTestRegistry(&fakeAgent{}, time.Minute)
	w := r.Create()

	clock.Advance(50 * time.Second)
	_, ok := r.Get(w.ID())
	require.True(t, ok)

	clock.Advance(50 * time.Second)
	assert.Equal(t, 0, r.Sweep())

	clock.Advance(time.Minute)
	assert.Equal(t, 1, r.Sweep())
}

func TestRegistry_CreateSweeps(t *testing.T) {
	r, clock := newTestRegistry(&fakeAgent{}, time.Minute)
	r.Create()
	clock.Advance(time.Hour)
	r.Create()
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Close(t *testing.T) {
	release := make(chan struct{})
	r, _ := newTestRegistry(gated(release, "late"), time.Minute)
	w := r.Create()
	require.True(t, w.Submit("q"))

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Close(ctx))

	assert.Equal(t, 0, r.Len())
	assert.Len(t, w.Snapshot().Messages, 2)
}
