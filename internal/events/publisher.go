package events

import (
	"log/slog"
	"sync"
)

// Publisher receives gameplay events. Implementations must not block: the
// core publishes while holding per-entity locks and never waits on
// subscribers.
type Publisher interface {
	Publish(ev Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Publish(Event) {}

// LogPublisher writes every event to slog at debug level. Used by the
// server binary when no external bus is attached.
type LogPublisher struct{}

func (LogPublisher) Publish(ev Event) {
	slog.Debug("gameplay event", "kind", ev.Kind(), "event", ev)
}

// Bus fans events out to registered subscribers in subscription order.
// Subscribe is expected at wiring time; Publish may run concurrently.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback for all events. Callbacks must be fast
// and must not call back into the publishing entity.
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Recorder captures published events for test assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns recorded events matching kind, in publish order.
func (r *Recorder) OfKind(kind string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}
