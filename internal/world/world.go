package world

import (
	"sync"

	"github.com/Aethelvnly/HEAVENSWORN/internal/game/entity"
)

// World is the registry of live entities. Entities are fully independent
// of each other; the registry only provides lookup and iteration, never
// reaches into their state.
//
// Thread-safe: protected by sync.RWMutex.
type World struct {
	mu       sync.RWMutex
	entities map[string]*entity.Entity
}

// New creates an empty world.
func New() *World {
	return &World{entities: make(map[string]*entity.Entity)}
}

// Add registers an entity. Returns false if the id is already present.
func (w *World) Add(e *entity.Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.entities[e.ID()]; ok {
		return false
	}
	w.entities[e.ID()] = e
	return true
}

// Remove unregisters an entity by id, returning it (nil if unknown).
func (w *World) Remove(id string) *entity.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := w.entities[id]
	delete(w.entities, id)
	return e
}

// Get returns the entity with the given id, nil if unknown.
func (w *World) Get(id string) *entity.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities[id]
}

// Count returns the number of live entities.
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// ForEach calls fn for every live entity. The entity set is snapshotted
// up front, so fn may add or remove entities without deadlocking.
func (w *World) ForEach(fn func(*entity.Entity)) {
	w.mu.RLock()
	snapshot := make([]*entity.Entity, 0, len(w.entities))
	for _, e := range w.entities {
		snapshot = append(snapshot, e)
	}
	w.mu.RUnlock()

	for _, e := range snapshot {
		fn(e)
	}
}

// Regenerate applies one regen tick of dt seconds to every entity.
func (w *World) Regenerate(dt float64) {
	w.ForEach(func(e *entity.Entity) {
		e.Regenerate(dt)
	})
}
