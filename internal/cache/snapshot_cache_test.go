package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aethelvnly/HEAVENSWORN/internal/game/entity"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/state"
	"github.com/Aethelvnly/HEAVENSWORN/internal/game/stats"
)

func newTestCache(t *testing.T) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func sampleSnapshot() entity.Snapshot {
	return entity.Snapshot{
		States: map[string]bool{state.StateGuarding: true},
		StateTimers: map[string]state.TimerSnapshot{
			state.StateStunned: {RemainingMillis: 1200, RevertValue: false},
		},
		BaseStats:    map[string]float64{stats.StatMaxHealth: 100},
		CurrentStats: map[string]float64{stats.StatHealth: 62, stats.StatMaxHealth: 100},
		Overhealth:   8,
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "ent-1", sampleSnapshot()))

	got, err := c.Get(ctx, "ent-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.States[state.StateGuarding])
	assert.Equal(t, int64(1200), got.StateTimers[state.StateStunned].RemainingMillis)
	assert.Equal(t, 62.0, got.CurrentStats[stats.StatHealth])
	assert.Equal(t, 8.0, got.Overhealth)
}

func TestSnapshotCache_MissReturnsNil(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "ent-1", sampleSnapshot()))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "ent-1")
	require.NoError(t, err)
	assert.Nil(t, got, "entry must expire after the TTL")
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "ent-1", sampleSnapshot()))
	require.NoError(t, c.Invalidate(ctx, "ent-1"))

	got, err := c.Get(ctx, "ent-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Invalidate(ctx, "ent-1"), "invalidating a missing entry is a no-op")
}
