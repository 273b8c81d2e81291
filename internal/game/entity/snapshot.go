package entity

import (
	"log/slog"

	"github.com/Aethelvnly/HEAVENSWORN/internal/game/state"
)

// Snapshot is the serialize/deserialize contract for one entity: state
// values, live revert timers with remaining duration, base and current
// stats, and the overhealth pool.
type Snapshot struct {
	States       map[string]bool                `json:"states"`
	StateTimers  map[string]state.TimerSnapshot `json:"stateTimers"`
	BaseStats    map[string]float64             `json:"baseStats"`
	CurrentStats map[string]float64             `json:"currentStats"`
	Overhealth   float64                        `json:"overhealth"`
}

// valid checks the required fields. Timers may be empty but the three
// tables must be present.
func (s Snapshot) valid() bool {
	return s.States != nil && s.BaseStats != nil && s.CurrentStats != nil
}

// Serialize captures the entity's full persistent state.
func (e *Entity) Serialize() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		States:       e.machine.AllStates(),
		StateTimers:  e.machine.TimerSnapshots(),
		BaseStats:    e.agg.BaseSnapshot(),
		CurrentStats: e.agg.CurrentSnapshot(),
		Overhealth:   e.agg.Overhealth(),
	}
}

// Deserialize restores the entity from a snapshot: state values first,
// then re-armed timers, then stats. Malformed input (missing required
// tables) fails before any mutation. The caller must follow with a full
// recomputation once the entity's modifier sources are attached.
func (e *Entity) Deserialize(snap Snapshot) bool {
	if !snap.valid() {
		slog.Warn("deserialize: malformed snapshot", "entity", e.id)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.effects.Reset()
	e.machine.Restore(snap.States, snap.StateTimers)
	e.agg.Restore(snap.BaseStats, snap.CurrentStats, snap.Overhealth)
	e.dirty = false
	return true
}
