package entity

import (
	"sync"
	"time"

	"github.com/Aethelvnly/HEAVENSWORN/internal/clock"
	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/effect"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/state"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/stats"
)

// Entity is the per-entity coordinator: it owns one state machine, one
// effect stack and one stat aggregator, created and destroyed together,
// and wires their cross-reactions (health hitting zero forces death, death
// cancels guard/combat). Compound operations are serialized by the
// entity's own mutex on top of the components' locks.
type Entity struct {
	mu sync.Mutex

	id      string
	machine *state.Machine
	effects *effect.Stack
	agg     *stats.Aggregator
	pub     events.Publisher

	// dirty marks unsaved changes for the autosave loop.
	dirty bool
}

// New creates an entity with default states and stats.
func New(id string, sched clock.Scheduler, pub events.Publisher) *Entity {
	machine := state.NewMachine(id, sched, pub)
	agg := stats.NewAggregator(id, pub)
	return &Entity{
		id:      id,
		machine: machine,
		effects: effect.NewStack(id, machine, agg, sched, pub),
		agg:     agg,
		pub:     pub,
	}
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// States exposes the entity's state machine.
func (e *Entity) States() *state.Machine { return e.machine }

// Effects exposes the entity's effect stack.
func (e *Entity) Effects() *effect.Stack { return e.effects }

// Stats exposes the entity's stat aggregator.
func (e *Entity) Stats() *stats.Aggregator { return e.agg }

// AttachEquipment wires the equipment modifier source and recomputes.
func (e *Entity) AttachEquipment(src stats.EquipmentSource) {
	e.agg.AttachEquipment(src)
	e.agg.Recalculate(stats.Sources{Equipment: true})
	e.markDirty()
}

// AttachAspect wires the aspect modifier source and recomputes.
func (e *Entity) AttachAspect(src stats.AspectSource) {
	e.agg.AttachAspect(src)
	e.agg.RecalculateAll()
	e.markDirty()
}

// SetState delegates to the state machine and tracks dirtiness.
func (e *Entity) SetState(name string, value bool, duration time.Duration, source string) bool {
	ok := e.machine.SetState(name, value, duration, source)
	if ok {
		e.markDirty()
	}
	return ok
}

// ApplyEffect applies an effect spec through the stack.
func (e *Entity) ApplyEffect(spec effect.Spec) (string, bool) {
	id, ok := e.effects.Apply(spec)
	if ok {
		e.markDirty()
	}
	return id, ok
}

// RemoveEffect removes a live effect instance by id.
func (e *Entity) RemoveEffect(id string) bool {
	ok := e.effects.Remove(id)
	if ok {
		e.markDirty()
	}
	return ok
}

// ApplyDamage routes incoming damage through the takeDamage gate, enters
// combat stance, and forces death when health bottoms out. Returns the
// remaining health, or -1 if damage was not permitted.
func (e *Entity) ApplyDamage(amount float64, source string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 || !e.machine.CanPerform(state.CapTakeDamage) {
		return -1
	}

	e.machine.RefreshCombat(source)
	remaining := e.agg.UpdateHealth(-amount)
	if remaining <= 0 && e.agg.Overhealth() <= 0 {
		e.machine.SetState(state.StateDead, true, 0, source)
	}
	e.markDirtyLocked()
	return remaining
}

// Heal restores health through the aggregator's clamp policy. Dead
// entities are not healed.
func (e *Entity) Heal(amount float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 || e.machine.GetState(state.StateDead) {
		return e.agg.Current(stats.StatHealth)
	}
	e.markDirtyLocked()
	return e.agg.UpdateHealth(amount)
}

// Regenerate applies one regen tick over dt seconds. Dead entities do not
// regenerate; a regen-driven drop to zero health forces death like damage
// does.
func (e *Entity) Regenerate(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine.GetState(state.StateDead) {
		return
	}
	e.agg.RegenerateHealth(dt)
	e.agg.RegenerateStamina(dt)

	if e.agg.Current(stats.StatHealth) <= 0 && e.agg.Overhealth() <= 0 {
		e.machine.SetState(state.StateDead, true, 0, "regen")
	}
}

// Revive clears death, restores a fraction of max health and recomputes.
func (e *Entity) Revive(healthFraction float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.machine.GetState(state.StateDead) {
		return false
	}
	e.machine.SetState(state.StateDead, false, 0, "revive")

	restored := e.agg.Current(stats.StatMaxHealth) * clampFraction(healthFraction)
	e.agg.UpdateHealth(restored)
	e.markDirtyLocked()
	return true
}

// Reset drops all effects and returns states to defaults. Stats keep
// their base table but are recomputed from scratch.
func (e *Entity) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.effects.Reset()
	e.machine.Reset()
	e.agg.RecalculateAll()
	e.markDirtyLocked()
}

// Dirty reports whether the entity has unsaved changes.
func (e *Entity) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// ClearDirty marks the entity as persisted.
func (e *Entity) ClearDirty() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = false
}

func (e *Entity) markDirty() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dirty = true
}

func (e *Entity) markDirtyLocked() {
	e.dirty = true
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
