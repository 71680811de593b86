package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Agent is the remote collaborator a widget forwards questions to
type Agent interface {
	IsConfigured() bool
	Ask(ctx context.Context, question string) (string, error)
}

// Widget owns one transcript and the single request that may be in flight
// for it. All mutations are serialized by mu.
type Widget struct {
	id      string
	agent   Agent
	timeout time.Duration
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	transcript   Transcript
	state        RequestState
	version      uint64
	lastTouched  time.Time
	observers    map[int]chan Snapshot
	nextObserver int
	closed       bool
	// inflight is closed when the running exchange finishes; nil when idle
	inflight chan struct{}
}

func newWidget(id string, agent Agent, timeout time.Duration, now func() time.Time) *Widget {
	ctx, cancel := context.WithCancel(context.Background())
	return &Widget{
		id:          id,
		agent:       agent,
		timeout:     timeout,
		now:         now,
		ctx:         ctx,
		cancel:      cancel,
		transcript:  Transcript{},
		state:       StateIdle,
		lastTouched: now(),
		observers:   make(map[int]chan Snapshot),
	}
}

func (w *Widget) ID() string {
	return w.id
}

// Submit appends text as a user message and starts one outbound request.
// It returns false without touching any state when text is blank or a
// request is already pending. Submit never blocks on the network.
func (w *Widget) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	w.mu.Lock()
	if w.closed || w.state == StatePending {
		state := w.state
		w.mu.Unlock()
		log.Debug().Str("conversation_id", w.id).Stringer("state", state).Msg("Ignoring submission")
		return false
	}

	w.lastTouched = w.now()
	w.transcript = w.transcript.Append(Message{Sender: SenderUser, Text: text})

	if !w.agent.IsConfigured() {
		w.transcript = w.transcript.Append(Message{Sender: SenderAgent, Text: NotConfiguredText})
		w.state = StateIdle
		w.publishLocked()
		w.mu.Unlock()
		log.Warn().Str("conversation_id", w.id).Msg("Agent endpoint not configured, skipping request")
		return true
	}

	w.state = StatePending
	w.publishLocked()
	done := make(chan struct{})
	w.inflight = done
	w.mu.Unlock()

	go w.exchange(text, done)
	return true
}

func (w *Widget) exchange(question string, done chan struct{}) {
	defer close(done)

	ctx, cancel := w.ctx, context.CancelFunc(func() {})
	if w.timeout > 0 {
		ctx, cancel = context.WithTimeout(w.ctx, w.timeout)
	}
	defer cancel()

	started := time.Now()
	answer, err := w.agent.Ask(ctx, question)

	next := StateIdle
	reply := Message{Sender: SenderAgent}
	switch {
	case err == nil:
		reply.Text = answer
		if answer == "" {
			reply.Text = NoAnswerText
		}
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && w.ctx.Err() == nil:
		reply.Text = timeoutText(w.timeout)
		next = StateTimedOut
	default:
		reply.Text = errorText(err.Error())
	}

	logEvent := log.Info()
	if err != nil {
		logEvent = log.Warn().Err(err)
	}
	logEvent.
		Str("conversation_id", w.id).
		Dur("elapsed", time.Since(started)).
		Stringer("state", next).
		Msg("Agent exchange finished")

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inflight = nil
	if w.closed || w.ctx.Err() != nil {
		// Nobody is left to read a reply on a closed widget
		w.state = StateIdle
		return
	}
	w.lastTouched = w.now()
	w.transcript = w.transcript.Append(reply)
	w.state = next
	w.publishLocked()
}

// Snapshot returns a consistent copy of the widget state
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Widget) snapshotLocked() Snapshot {
	return Snapshot{
		ID:       w.id,
		Messages: w.transcript,
		State:    w.state,
		Pending:  w.state == StatePending,
		Version:  w.version,
	}
}

// publishLocked bumps the version and hands the new snapshot to every
// observer, replacing any snapshot the observer has not read yet.
func (w *Widget) publishLocked() {
	w.version++
	snap := w.snapshotLocked()
	for _, ch := range w.observers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Subscribe returns a channel that first yields the current snapshot and
// then the latest snapshot after each mutation. The returned func stops
// delivery and closes the channel.
func (w *Widget) Subscribe() (<-chan Snapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if w.closed {
		close(ch)
		return ch, func() {}
	}

	ch <- w.snapshotLocked()
	key := w.nextObserver
	w.nextObserver++
	w.observers[key] = ch
	w.lastTouched = w.now()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if observer, ok := w.observers[key]; ok {
				delete(w.observers, key)
				close(observer)
			}
		})
	}
}

// Wait blocks until no request is in flight or ctx is done
func (w *Widget) Wait(ctx context.Context) error {
	w.mu.Lock()
	done := w.inflight
	w.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight request and detaches all observers
func (w *Widget) Close() {
	w.cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for key, ch := range w.observers {
		delete(w.observers, key)
		close(ch)
	}
}

func (w *Widget) touch() {
	w.mu.Lock()
	w.lastTouched = w.now()
	w.mu.Unlock()
}

// evictable reports whether the widget has been left alone for at least ttl
func (w *Widget) evictable(now time.Time, ttl time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StatePending || len(w.observers) > 0 {
		return false
	}
	return now.Sub(w.lastTouched) >= ttl
}
