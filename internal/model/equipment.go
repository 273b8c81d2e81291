package model

import (
	"log/slog"
	"sync"
)

// Equipment slot names.
const (
	SlotHead     = "head"
	SlotChest    = "chest"
	SlotLegs     = "legs"
	SlotMainHand = "mainHand"
	SlotOffHand  = "offHand"
	SlotTrinket  = "trinket"
)

// Item is a piece of equipment carrying a flat stat modifier table.
// Modifier tables are normalized at load time; see NormalizeModifiers.
type Item struct {
	ID        string
	Name      string
	Modifiers map[string]float64
}

// Equipment holds one entity's equipped items by slot and implements
// stats.EquipmentSource.
//
// Thread-safe: protected by sync.RWMutex.
type Equipment struct {
	mu    sync.RWMutex
	slots map[string]*Item
}

// NewEquipment creates an empty equipment set.
func NewEquipment() *Equipment {
	return &Equipment{slots: make(map[string]*Item)}
}

// Equip places an item in a slot, returning the displaced item if the
// slot was occupied.
func (e *Equipment) Equip(slot string, item *Item) *Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.slots[slot]
	e.slots[slot] = item
	return prev
}

// Unequip clears a slot, returning the removed item (nil if empty).
func (e *Equipment) Unequip(slot string) *Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.slots[slot]
	delete(e.slots, slot)
	return prev
}

// Get returns the item in a slot, nil if empty.
func (e *Equipment) Get(slot string) *Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots[slot]
}

// ModifierSets returns the modifier table of every equipped item.
// Implements stats.EquipmentSource; polled at recomputation time.
func (e *Equipment) ModifierSets() []map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]map[string]float64, 0, len(e.slots))
	for _, item := range e.slots {
		if item != nil && len(item.Modifiers) > 0 {
			out = append(out, item.Modifiers)
		}
	}
	return out
}

// NormalizeModifiers flattens a loosely-typed modifier table (as decoded
// from item data files) into statName → delta. A value may itself be a
// nested table of sub-stat deltas, which flattens one level deep; entries
// that resolve to neither a number nor a table are dropped and logged.
func NormalizeModifiers(raw map[string]any) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		switch val := v.(type) {
		case float64:
			out[name] += val
		case int:
			out[name] += float64(val)
		case map[string]any:
			for sub, subv := range val {
				n, ok := toFloat(subv)
				if !ok {
					slog.Warn("modifier table: unusable nested entry", "stat", sub)
					continue
				}
				out[sub] += n
			}
		default:
			slog.Warn("modifier table: unusable entry", "stat", name)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
