package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Aethelvnly/HEAVENSWORN/internal/clock"
	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
)

// Machine holds the boolean state flags of one entity and enforces the
// priority/blocking policy on activation. At most one revert timer exists
// per state; arming a new one cancels and replaces the old.
//
// Thread-safe: all methods are protected by sync.RWMutex. Timer callbacks
// re-acquire the same mutex, so a timer firing concurrently with an API
// call cannot interleave.
type Machine struct {
	mu       sync.RWMutex
	entityID string
	sched    clock.Scheduler
	pub      events.Publisher

	values map[string]bool
	timers map[string]*revertTimer

	// timerSeq increments on every armed timer. A firing callback checks
	// its captured seq against the stored one, so a timer whose
	// cancellation lost the race finds no work to do.
	timerSeq uint64
}

type revertTimer struct {
	seq         uint64
	handle      clock.Handle
	endTime     time.Time
	revertValue bool
}

// TimerSnapshot describes a live revert timer for serialization.
type TimerSnapshot struct {
	RemainingMillis int64 `json:"remainingMillis"`
	RevertValue     bool  `json:"revertValue"`
}

// NewMachine creates a state machine with every catalog state at its
// default value.
func NewMachine(entityID string, sched clock.Scheduler, pub events.Publisher) *Machine {
	values := make(map[string]bool, len(registry))
	for name, def := range registry {
		values[name] = def.Default
	}
	return &Machine{
		entityID: entityID,
		sched:    sched,
		pub:      pub,
		values:   values,
		timers:   make(map[string]*revertTimer),
	}
}

// SetState sets a state flag, honoring the blocking policy. duration > 0
// arms a timer that reverts to the opposite value. Returns false if the
// name is unknown or the activation was blocked by a higher-priority state.
//
// An unchanged value with no duration is a no-op returning true; supplying
// a duration on an unchanged value still restarts the timer.
func (m *Machine) SetState(name string, value bool, duration time.Duration, source string) bool {
	return m.set(name, value, duration, !value, source)
}

func (m *Machine) set(name string, value bool, duration time.Duration, revert bool, source string) bool {
	def, ok := registry[name]
	if !ok {
		slog.Warn("setState: unknown state", "entity", m.entityID, "state", name, "source", source)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.values[name]
	if old == value && duration <= 0 {
		return true
	}

	if value && !m.activationAllowed(def) {
		return false
	}

	m.values[name] = value
	m.cancelTimerLocked(name)

	if old != value {
		m.pub.Publish(events.StateChanged{
			EntityID: m.entityID,
			State:    name,
			OldValue: old,
			NewValue: value,
			Source:   source,
		})
	}

	// Dead always wins: guard and combat are forced off without
	// re-running the blocking check.
	if name == StateDead && value {
		m.forceClearLocked(StateGuarding, source)
		m.forceClearLocked(StateInCombat, source)
	}

	if duration > 0 {
		m.armTimerLocked(name, duration, revert)
	}
	return true
}

// activationAllowed applies the blocking policy for entering a true state.
// Only combat entry and guard entry are gated on other states' block
// flags; a BlocksAllStates state (dead) gates everything. Must be called
// with mu held.
func (m *Machine) activationAllowed(def Definition) bool {
	for other, active := range m.values {
		if !active || other == def.Name {
			continue
		}
		otherDef := registry[other]
		if otherDef.BlocksAllStates {
			return false
		}
		if otherDef.Priority <= def.Priority {
			continue
		}
		switch def.Name {
		case StateInCombat:
			if otherDef.BlocksCombat {
				return false
			}
		case StateGuarding:
			if otherDef.BlocksAbilities {
				return false
			}
		}
	}
	return true
}

// forceClearLocked sets a state to false bypassing the blocking check.
// Must be called with mu held.
func (m *Machine) forceClearLocked(name, source string) {
	if !m.values[name] {
		return
	}
	m.values[name] = false
	m.cancelTimerLocked(name)
	m.pub.Publish(events.StateChanged{
		EntityID: m.entityID,
		State:    name,
		OldValue: true,
		NewValue: false,
		Source:   source,
	})
}

// ResetToDefault reverts a state to its catalog default, bypassing the
// blocking check. Used when the last effect claiming a state is removed.
func (m *Machine) ResetToDefault(name, source string) bool {
	def, ok := registry[name]
	if !ok {
		slog.Warn("resetToDefault: unknown state", "entity", m.entityID, "state", name)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.values[name]
	if old == def.Default {
		return true
	}
	m.values[name] = def.Default
	m.cancelTimerLocked(name)
	m.pub.Publish(events.StateChanged{
		EntityID: m.entityID,
		State:    name,
		OldValue: old,
		NewValue: def.Default,
		Source:   source,
	})
	return true
}

// GetState returns the current value of a state. Unknown names read false.
func (m *Machine) GetState(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[name]
}

// AllStates returns an independent copy of every state value.
func (m *Machine) AllStates() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.values))
	for name, v := range m.values {
		out[name] = v
	}
	return out
}

// CanPerform reports whether the given capability category is currently
// allowed. Unknown categories are permitted and logged, so a typo can
// never soft-lock an entity.
func (m *Machine) CanPerform(cap Capability) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch cap {
	case CapMovement:
		return !m.values[StateDead] && !m.values[StateStunned] && !m.values[StateRagdolled]
	case CapAbilities:
		return !m.values[StateDead] && !m.values[StateStunned] && !m.values[StateRagdolled] &&
			!m.values[StateGuarding] && !m.values[StateSilenced]
	case CapInteraction:
		return !m.values[StateDead] && !m.values[StateStunned]
	case CapTakeDamage:
		return !m.values[StateDead] && !m.values[StateInvulnerable]
	default:
		slog.Warn("canPerform: unknown capability", "entity", m.entityID, "capability", string(cap))
		return true
	}
}

// EnterCombat activates combat stance with the standard cooldown window.
func (m *Machine) EnterCombat(source string) bool {
	return m.SetState(StateInCombat, true, registry[StateInCombat].Cooldown, source)
}

// RefreshCombat restarts the combat cooldown window without reverting the
// value. Safe to call whether or not combat is already active.
func (m *Machine) RefreshCombat(source string) bool {
	return m.EnterCombat(source)
}

// TimerSnapshots returns remaining duration and revert value for every
// live timer, keyed by state name.
func (m *Machine) TimerSnapshots() map[string]TimerSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.sched.Now()
	out := make(map[string]TimerSnapshot, len(m.timers))
	for name, t := range m.timers {
		remaining := t.endTime.Sub(now)
		if remaining <= 0 {
			continue
		}
		out[name] = TimerSnapshot{
			RemainingMillis: remaining.Milliseconds(),
			RevertValue:     t.revertValue,
		}
	}
	return out
}

// Restore overwrites state values and re-arms timers from a snapshot.
// No events are published; deserialization is silent. Unknown state names
// are skipped and logged.
func (m *Machine) Restore(values map[string]bool, timers map[string]TimerSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range m.timers {
		m.cancelTimerSilentLocked(name)
	}

	for name, def := range registry {
		m.values[name] = def.Default
	}
	for name, v := range values {
		if !Known(name) {
			slog.Warn("restore: unknown state skipped", "entity", m.entityID, "state", name)
			continue
		}
		m.values[name] = v
	}

	for name, snap := range timers {
		if !Known(name) || snap.RemainingMillis <= 0 {
			continue
		}
		m.armTimerSilentLocked(name, time.Duration(snap.RemainingMillis)*time.Millisecond, snap.RevertValue)
	}
}

// Reset silently returns every state to its catalog default and drops all
// timers.
func (m *Machine) Reset() {
	m.Restore(nil, nil)
}

// armTimerLocked arms a fresh revert timer for name. Must be called with
// mu held and with any prior timer for name already cancelled.
func (m *Machine) armTimerLocked(name string, duration time.Duration, revert bool) {
	m.armTimerSilentLocked(name, duration, revert)
	m.pub.Publish(events.TimerStarted{
		EntityID:   m.entityID,
		State:      name,
		DurationMs: duration.Milliseconds(),
	})
}

func (m *Machine) armTimerSilentLocked(name string, duration time.Duration, revert bool) {
	m.timerSeq++
	seq := m.timerSeq
	t := &revertTimer{
		seq:         seq,
		endTime:     m.sched.Now().Add(duration),
		revertValue: revert,
	}
	m.timers[name] = t
	t.handle = m.sched.Schedule(duration, func() {
		m.fireTimer(name, seq)
	})
}

// fireTimer is the scheduled callback for a revert timer. The captured seq
// must still match the stored timer; otherwise the timer was cancelled or
// replaced after scheduling and there is nothing to do.
func (m *Machine) fireTimer(name string, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[name]
	if !ok || t.seq != seq {
		return
	}
	delete(m.timers, name)

	old := m.values[name]
	m.values[name] = t.revertValue

	m.pub.Publish(events.TimerEnded{
		EntityID: m.entityID,
		State:    name,
		Expired:  true,
	})
	if old != t.revertValue {
		m.pub.Publish(events.StateChanged{
			EntityID: m.entityID,
			State:    name,
			OldValue: old,
			NewValue: t.revertValue,
			Source:   "timer",
		})
	}
}

// cancelTimerLocked drops the stored timer for name, if any. The handle is
// cleared from the map before Cancel is called, so a callback that already
// won the race sees a stale seq and no-ops. Must be called with mu held.
func (m *Machine) cancelTimerLocked(name string) {
	if m.cancelTimerSilentLocked(name) {
		m.pub.Publish(events.TimerEnded{
			EntityID: m.entityID,
			State:    name,
			Expired:  false,
		})
	}
}

func (m *Machine) cancelTimerSilentLocked(name string) bool {
	t, ok := m.timers[name]
	if !ok {
		return false
	}
	delete(m.timers, name)
	t.handle.Cancel()
	return true
}
