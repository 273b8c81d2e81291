package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aethelvnly/HEAVENSWORN/internal/game/entity"
)

const keyPrefix = "hw:entity:"

// SnapshotCache keeps hot entity snapshots in Redis so a reconnecting
// session can restore without a database round trip. Entries expire after
// the configured TTL; the database remains the source of truth.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a snapshot cache against the given Redis address.
func New(addr string, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies the Redis connection.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

// Put stores a snapshot under the entity id with the cache TTL.
func (c *SnapshotCache) Put(ctx context.Context, entityID string, snap entity.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", entityID, err)
	}
	if err := c.client.Set(ctx, keyPrefix+entityID, blob, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching snapshot for %s: %w", entityID, err)
	}
	return nil
}

// Get returns the cached snapshot for entityID.
// Returns nil, nil on a cache miss (not an error).
func (c *SnapshotCache) Get(ctx context.Context, entityID string) (*entity.Snapshot, error) {
	blob, err := c.client.Get(ctx, keyPrefix+entityID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached snapshot for %s: %w", entityID, err)
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling cached snapshot for %s: %w", entityID, err)
	}
	return &snap, nil
}

// Invalidate drops the cached snapshot for entityID, if any.
func (c *SnapshotCache) Invalidate(ctx context.Context, entityID string) error {
	if err := c.client.Del(ctx, keyPrefix+entityID).Err(); err != nil {
		return fmt.Errorf("invalidating snapshot for %s: %w", entityID, err)
	}
	return nil
}
