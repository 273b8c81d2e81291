package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aethelvnly/HEAVENSWORN/internal/cache"
	"github.com/Aethelvnly/HEAVENSWORN/internal/clock"
	"github.com/Aethelvnly/HEAVENSWORN/internal/db"
	"github.com/Aethelvnly/HEAVENSWORN/internal/events"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/entity"
	"github.com/Aethelvnly/HEAVENSWORN/internal/world"
)

// server owns the live world and its background loops.
type server struct {
	world *world.World
	sched clock.Scheduler
	bus   *events.Bus
	repo  *db.EntityRepository
	cache *cache.SnapshotCache
}

// SpawnEntity creates and registers an entity, restoring its snapshot
// from cache or database when one exists.
func (s *server) SpawnEntity(ctx context.Context, id string) (*entity.Entity, error) {
	e := entity.New(id, s.sched, s.bus)

	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if !e.Deserialize(*snap) {
			slog.Warn("discarding malformed stored snapshot", "entity", id)
		}
		e.Stats().RecalculateAll()
	}

	if !s.world.Add(e) {
		slog.Warn("spawn: entity already live", "entity", id)
		return s.world.Get(id), nil
	}
	return e, nil
}

// DespawnEntity saves and removes an entity from the world.
func (s *server) DespawnEntity(ctx context.Context, id string) {
	e := s.world.Remove(id)
	if e == nil {
		return
	}
	s.saveEntity(ctx, e)
}

func (s *server) loadSnapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, id)
		if err != nil {
			slog.Warn("snapshot cache read failed", "entity", id, "err", err)
		} else if snap != nil {
			return snap, nil
		}
	}
	return s.repo.Load(ctx, id)
}

func (s *server) saveEntity(ctx context.Context, e *entity.Entity) {
	snap := e.Serialize()
	if err := s.repo.Save(ctx, e.ID(), snap); err != nil {
		slog.Error("saving entity failed", "entity", e.ID(), "err", err)
		return
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, e.ID(), snap); err != nil {
			slog.Warn("snapshot cache write failed", "entity", e.ID(), "err", err)
		}
	}
	e.ClearDirty()
}

// regenLoop ticks regeneration across the world at a fixed interval.
func (s *server) regenLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := interval.Seconds()
	for {
		select {
		case <-ticker.C:
			s.world.Regenerate(dt)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// autosaveLoop periodically flushes dirty entities.
func (s *server) autosaveLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.saveDirty(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// saveDirty persists every entity with unsaved changes.
func (s *server) saveDirty(ctx context.Context) {
	saved := 0
	s.world.ForEach(func(e *entity.Entity) {
		if e.Dirty() {
			s.saveEntity(ctx, e)
			saved++
		}
	})
	if saved > 0 {
		slog.Debug("autosave flushed entities", "count", saved)
	}
}
