package effect

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Aethelvnly/HEAVENSWORN/internal/clock"
	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/state"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/stats"
)

// Stack holds the live effect instances of one entity. Overlapping effects
// may claim the same state; a claim is only reverted when the last live
// effect holding it goes away, and reversion always targets the catalog
// default (the only removal-order-independent policy).
//
// Thread-safe: apply and remove are serialized by a mutex, including the
// autonomous expiry callbacks.
type Stack struct {
	mu       sync.Mutex
	entityID string
	machine  *state.Machine
	agg      *stats.Aggregator
	sched    clock.Scheduler
	pub      events.Publisher

	effects map[string]*Instance
	seq     uint64
}

// NewStack creates an empty effect stack bound to an entity's state
// machine and stat aggregator.
func NewStack(entityID string, machine *state.Machine, agg *stats.Aggregator, sched clock.Scheduler, pub events.Publisher) *Stack {
	return &Stack{
		entityID: entityID,
		machine:  machine,
		agg:      agg,
		sched:    sched,
		pub:      pub,
		effects:  make(map[string]*Instance),
	}
}

// Apply creates a live instance from spec and pushes its claims onto the
// entity. State claims rejected by the blocking policy are silently
// dropped from the instance's bookkeeping: a partially-blocked effect
// tracks just what it achieved. Returns the instance id.
func (s *Stack) Apply(spec Spec) (string, bool) {
	if !spec.Valid() {
		slog.Warn("applyEffect: malformed spec", "entity", s.entityID, "catalogID", spec.CatalogID)
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	in := &Instance{
		ID:          spec.CatalogID + "#" + uuid.NewString(),
		CatalogID:   spec.CatalogID,
		AppliedAt:   s.sched.Now(),
		Duration:    spec.Duration,
		stateClaims: make(map[string]bool, len(spec.States)),
		statClaims:  make(map[string]float64, len(spec.Modifiers)),
	}

	// Claims carry no per-state timer: the instance's own expiry timer
	// owns reversion, so overlapping effects with different durations
	// cannot stomp each other's claims.
	for name, value := range spec.States {
		if s.machine.SetState(name, value, 0, spec.CatalogID) {
			in.stateClaims[name] = value
		}
	}

	for name, delta := range spec.Modifiers {
		if s.agg.ApplyModifier(name, delta) {
			in.statClaims[name] = delta
		}
	}

	s.effects[in.ID] = in

	if spec.Duration > 0 {
		s.seq++
		seq := s.seq
		in.timerSeq = seq
		id := in.ID
		in.handle = s.sched.Schedule(spec.Duration, func() {
			s.expire(id, seq)
		})
	}

	s.pub.Publish(events.EffectApplied{
		EntityID:   s.entityID,
		InstanceID: in.ID,
		CatalogID:  in.CatalogID,
		DurationMs: spec.Duration.Milliseconds(),
	})
	return in.ID, true
}

// ApplyFromCatalog applies the registered template for catalogID.
func (s *Stack) ApplyFromCatalog(catalogID string) (string, bool) {
	spec, ok := FromCatalog(catalogID)
	if !ok {
		slog.Warn("applyEffect: unknown catalog id", "entity", s.entityID, "catalogID", catalogID)
		return "", false
	}
	return s.Apply(spec)
}

// Remove drops a live effect instance and unwinds its claims. Idempotent:
// removing an unknown or already-removed id returns false with no state
// change and no event.
func (s *Stack) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id, false)
}

// expire is the scheduled expiry callback. The captured seq protects
// against the instance being removed and the id racing a cancel.
func (s *Stack) expire(id string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.effects[id]
	if !ok || in.timerSeq != seq {
		return
	}
	s.removeLocked(id, true)
}

// removeLocked unwinds one instance. Must be called with mu held.
func (s *Stack) removeLocked(id string, expired bool) bool {
	in, ok := s.effects[id]
	if !ok {
		return false
	}

	// Drop the record first so "any other live effect" excludes this one.
	delete(s.effects, id)
	if in.handle != nil {
		in.handle.Cancel()
		in.handle = nil
	}

	for name := range in.stateClaims {
		if s.claimedByOtherLocked(name) {
			continue
		}
		s.machine.ResetToDefault(name, in.CatalogID)
	}

	for name, delta := range in.statClaims {
		s.agg.RemoveModifier(name, delta)
	}

	s.pub.Publish(events.EffectRemoved{
		EntityID:   s.entityID,
		InstanceID: in.ID,
		CatalogID:  in.CatalogID,
		Expired:    expired,
	})
	return true
}

// claimedByOtherLocked reports whether any live effect claims the state.
// Presence of the name in a claim map is the reference count; the claimed
// value does not matter. Must be called with mu held.
func (s *Stack) claimedByOtherLocked(name string) bool {
	for _, other := range s.effects {
		if _, ok := other.stateClaims[name]; ok {
			return true
		}
	}
	return false
}

// Reset removes every live effect, unwinding all claims.
func (s *Stack) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.effects {
		s.removeLocked(id, false)
	}
}

// Has reports whether an instance id is live.
func (s *Stack) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.effects[id]
	return ok
}

// Count returns the number of live effect instances.
func (s *Stack) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.effects)
}

// Active returns the live instances (unordered copy of the set).
func (s *Stack) Active() []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Instance, 0, len(s.effects))
	for _, in := range s.effects {
		out = append(out, in)
	}
	return out
}
