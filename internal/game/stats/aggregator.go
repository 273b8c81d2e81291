package stats

import (
	"log/slog"
	"sync"

	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
)

// EquipmentSource exposes the modifier tables of everything currently
// equipped. Polled at recomputation time, never cached here.
type EquipmentSource interface {
	ModifierSets() []map[string]float64
}

// AspectSource exposes the passive perk tables of the active aspect and
// sub-aspect. Either table may be empty.
type AspectSource interface {
	AspectPassives() map[string]float64
	SubAspectPassives() map[string]float64
}

// Sources flags which modifier sources a recomputation folds in.
type Sources struct {
	Equipment bool
	Aspect    bool
	SubAspect bool
}

// AllSources folds every modifier source.
var AllSources = Sources{Equipment: true, Aspect: true, SubAspect: true}

// Aggregator holds the base stats and the derived current-stat cache of
// one entity. Current stats are a pure function of base stats plus source
// modifiers at the moment of last recomputation; they are never mutated
// directly except through recomputation or the update/modifier methods.
//
// Thread-safe: all methods are protected by sync.RWMutex.
type Aggregator struct {
	mu       sync.RWMutex
	entityID string
	pub      events.Publisher

	base    map[string]float64
	current map[string]float64

	// overhealth is a temporary pool above maxHealth, consumed before
	// health when damage lands. Not clamped by maxHealth.
	overhealth float64

	// modifiers accumulates the deltas applied through ApplyModifier so
	// a recomputation mid-effect does not drop them.
	modifiers map[string]float64

	equipment EquipmentSource
	aspect    AspectSource
}

// NewAggregator creates an aggregator seeded with DefaultBase values.
func NewAggregator(entityID string, pub events.Publisher) *Aggregator {
	base := DefaultBase()
	current := make(map[string]float64, len(base))
	for name, v := range base {
		current[name] = v
	}
	return &Aggregator{
		entityID:  entityID,
		pub:       pub,
		base:      base,
		current:   current,
		modifiers: make(map[string]float64),
	}
}

// AttachEquipment sets the equipment modifier source.
func (a *Aggregator) AttachEquipment(src EquipmentSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.equipment = src
}

// AttachAspect sets the aspect/sub-aspect modifier source.
func (a *Aggregator) AttachAspect(src AspectSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.aspect = src
}

// SetBase sets a base stat and triggers a full recomputation. Returns
// false for unknown stat names.
func (a *Aggregator) SetBase(name string, value float64) bool {
	if !KnownStat(name) {
		slog.Warn("setBase: unknown stat", "entity", a.entityID, "stat", name)
		return false
	}
	a.mu.Lock()
	a.base[name] = value
	a.mu.Unlock()

	a.Recalculate(AllSources)
	return true
}

// Base returns a base stat value; unknown names read 0.
func (a *Aggregator) Base(name string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.base[name]
}

// Current returns a derived stat value; unknown names read 0.
func (a *Aggregator) Current(name string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current[name]
}

// BaseSnapshot returns an independent copy of the base stat table.
func (a *Aggregator) BaseSnapshot() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyStats(a.base)
}

// CurrentSnapshot returns an independent copy of the current stat table.
func (a *Aggregator) CurrentSnapshot() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyStats(a.current)
}

// Overhealth returns the temporary health pool above maxHealth.
func (a *Aggregator) Overhealth() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.overhealth
}

// AddOverhealth grants temporary health. Negative grants are ignored.
func (a *Aggregator) AddOverhealth(amount float64) {
	if amount <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overhealth += amount
}

// Recalculate rebuilds the current-stat cache from a fresh copy of base
// stats, folding in the modifier tables of each flagged source. Folding is
// additive per stat name; unknown names in a modifier table are ignored.
// Current health/stamina carry over, clamped down into the recomputed caps
// (recomputation never restores resources). Fires StatsModified only when
// a value actually changed.
func (a *Aggregator) Recalculate(sources Sources) map[string]float64 {
	a.mu.Lock()

	old := copyStats(a.current)
	fresh := copyStats(a.base)

	if sources.Equipment && a.equipment != nil {
		for _, set := range a.equipment.ModifierSets() {
			foldModifiers(fresh, set)
		}
	}
	if a.aspect != nil {
		if sources.Aspect {
			foldModifiers(fresh, a.aspect.AspectPassives())
		}
		if sources.SubAspect {
			foldModifiers(fresh, a.aspect.SubAspectPassives())
		}
	}

	// Live effect deltas survive recomputation.
	foldModifiers(fresh, a.modifiers)

	// Resources are not re-derived: carry current values, clamped into
	// the new caps.
	fresh[StatHealth] = clamp(old[StatHealth], 0, fresh[StatMaxHealth])
	fresh[StatStamina] = clamp(old[StatStamina], 0, fresh[StatMaxStamina])

	a.current = fresh
	snapshot := copyStats(fresh)
	changed := !equalStats(old, fresh)
	a.mu.Unlock()

	if changed {
		a.pub.Publish(events.StatsModified{
			EntityID: a.entityID,
			Old:      old,
			New:      snapshot,
		})
	}
	return snapshot
}

// RecalculateAll rebuilds from every source. Used after structural changes
// (load, reset, aspect swap) where the precise delta is not cheaply known.
func (a *Aggregator) RecalculateAll() map[string]float64 {
	return a.Recalculate(AllSources)
}

// UpdateHealth clamp-adds delta to health. Damage is absorbed by
// overhealth first. Always fires HealthChanged, even when the clamped
// result equals the old value.
func (a *Aggregator) UpdateHealth(delta float64) float64 {
	a.mu.Lock()

	if delta < 0 && a.overhealth > 0 {
		absorbed := min(a.overhealth, -delta)
		a.overhealth -= absorbed
		delta += absorbed
	}

	old := a.current[StatHealth]
	maxV := a.current[StatMaxHealth]
	newV := clamp(old+delta, 0, maxV)
	a.current[StatHealth] = newV
	a.mu.Unlock()

	a.pub.Publish(events.HealthChanged{
		EntityID: a.entityID,
		Old:      old,
		New:      newV,
		Max:      maxV,
	})
	return newV
}

// UpdateStamina clamp-adds delta to stamina. Always fires StaminaChanged.
func (a *Aggregator) UpdateStamina(delta float64) float64 {
	a.mu.Lock()
	old := a.current[StatStamina]
	maxV := a.current[StatMaxStamina]
	newV := clamp(old+delta, 0, maxV)
	a.current[StatStamina] = newV
	a.mu.Unlock()

	a.pub.Publish(events.StaminaChanged{
		EntityID: a.entityID,
		Old:      old,
		New:      newV,
		Max:      maxV,
	})
	return newV
}

// RegenerateHealth applies healthRegenRate over dt seconds. A zero rate
// performs no update and fires no event; regen ticks at high frequency and
// must stay silent when inactive.
func (a *Aggregator) RegenerateHealth(dt float64) {
	if rate := a.Current(StatHealthRegenRate); rate != 0 {
		a.UpdateHealth(rate * dt)
	}
}

// RegenerateStamina applies staminaRegenRate over dt seconds. Zero rate is
// silent.
func (a *Aggregator) RegenerateStamina(dt float64) {
	if rate := a.Current(StatStaminaRegenRate); rate != 0 {
		a.UpdateStamina(rate * dt)
	}
}

// ApplyModifier adds delta directly to a current stat. Used for effect
// stat claims, which layer on top of the recomputed snapshot. Max caps
// trigger a resource clamp. Returns false for unknown stat names.
func (a *Aggregator) ApplyModifier(name string, delta float64) bool {
	if !KnownStat(name) {
		slog.Warn("applyModifier: unknown stat", "entity", a.entityID, "stat", name)
		return false
	}

	a.mu.Lock()
	old := copyStats(a.current)
	a.current[name] += delta
	a.modifiers[name] += delta
	if a.modifiers[name] == 0 {
		delete(a.modifiers, name)
	}
	a.clampResourcesLocked()
	snapshot := copyStats(a.current)
	changed := !equalStats(old, snapshot)
	a.mu.Unlock()

	if changed {
		a.pub.Publish(events.StatsModified{
			EntityID: a.entityID,
			Old:      old,
			New:      snapshot,
		})
	}
	return true
}

// RemoveModifier subtracts a previously applied modifier delta.
func (a *Aggregator) RemoveModifier(name string, delta float64) bool {
	return a.ApplyModifier(name, -delta)
}

// Restore overwrites base and current stats from a snapshot. Silent: no
// events. The caller is expected to follow with a full recomputation.
func (a *Aggregator) Restore(base, current map[string]float64, overhealth float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.base = DefaultBase()
	for name, v := range base {
		if KnownStat(name) {
			a.base[name] = v
		}
	}
	a.current = make(map[string]float64, len(a.base))
	for name, v := range a.base {
		a.current[name] = v
	}
	for name, v := range current {
		if KnownStat(name) {
			a.current[name] = v
		}
	}
	a.overhealth = overhealth
	a.modifiers = make(map[string]float64)
	a.clampResourcesLocked()
}

// clampResourcesLocked re-clamps health/stamina into their caps. Must be
// called with mu held.
func (a *Aggregator) clampResourcesLocked() {
	a.current[StatHealth] = clamp(a.current[StatHealth], 0, a.current[StatMaxHealth])
	a.current[StatStamina] = clamp(a.current[StatStamina], 0, a.current[StatMaxStamina])
}

// foldModifiers adds each known-stat entry of mods into dst.
func foldModifiers(dst map[string]float64, mods map[string]float64) {
	for name, delta := range mods {
		if !KnownStat(name) {
			continue
		}
		dst[name] += delta
	}
}

func copyStats(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for name, v := range src {
		out[name] = v
	}
	return out
}

func equalStats(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for name, v := range a {
		if b[name] != v {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
