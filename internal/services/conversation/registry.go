package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// Timeout bounds each outbound agent request; zero means no bound
	Timeout time.Duration
	// IdleTTL is how long an untouched widget is kept before it is swept
	IdleTTL time.Duration
}

// Registry holds the widgets of every open page. A page load creates a fresh
// widget, so reloading the page starts a new, empty transcript.
type Registry struct {
	agent   Agent
	timeout time.Duration
	idleTTL time.Duration
	now     func() time.Time
	newID   func() string

	mu      sync.RWMutex
	widgets map[string]*Widget
}

func NewRegistry(agent Agent, opts Options) *Registry {
	log.Info().
		Dur("timeout", opts.Timeout).
		Dur("idle_ttl", opts.IdleTTL).
		Msg("Initialising conversation registry")

	return &Registry{
		agent:   agent,
		timeout: opts.Timeout,
		idleTTL: opts.IdleTTL,
		now:     time.Now,
		newID:   uuid.NewString,
		widgets: make(map[string]*Widget),
	}
}

// Create sweeps idle widgets and registers a new empty one
func (r *Registry) Create() *Widget {
	r.Sweep()

	w := newWidget(r.newID(), r.agent, r.timeout, r.now)

	r.mu.Lock()
	r.widgets[w.ID()] = w
	count := len(r.widgets)
	r.mu.Unlock()

	log.Debug().Str("conversation_id", w.ID()).Int("open", count).Msg("Created conversation")
	return w
}

// Get returns the widget for id and marks it as recently used
func (r *Registry) Get(id string) (*Widget, bool) {
	r.mu.RLock()
	w, ok := r.widgets[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	w.touch()
	return w, true
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	w, ok := r.widgets[id]
	delete(r.widgets, id)
	r.mu.Unlock()

	if ok {
		w.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// Sweep closes and forgets widgets idle for longer than the TTL. Widgets with
// a pending request or a live observer are never swept.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}

	now := r.now()
	var stale []*Widget

	r.mu.Lock()
	for id, w := range r.widgets {
		if w.evictable(now, r.idleTTL) {
			stale = append(stale, w)
			delete(r.widgets, id)
		}
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}
	if len(stale) > 0 {
		log.Debug().Int("evicted", len(stale)).Msg("Swept idle conversations")
	}
	return len(stale)
}

// Close waits for in-flight requests until ctx is done, then closes every widget
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	widgets := make([]*Widget, 0, len(r.widgets))
	for id, w := range r.widgets {
		widgets = append(widgets, w)
		delete(r.widgets, id)
	}
	r.mu.Unlock()

	var waitErr error
	for _, w := range widgets {
		if err := w.Wait(ctx); err != nil && waitErr == nil {
			waitErr = err
		}
		w.Close()
	}
	return waitErr
}
