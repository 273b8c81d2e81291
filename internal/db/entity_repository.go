package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aethelvnly/HEAVENSWORN/internal/game/entity"
)

// EntityRepository persists entity snapshots as jsonb rows.
type EntityRepository struct {
	db *pgxpool.Pool
}

// NewEntityRepository creates a repository on the given pool.
func NewEntityRepository(db *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{db: db}
}

// Save upserts the snapshot for entityID.
func (r *EntityRepository) Save(ctx context.Context, entityID string, snap entity.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", entityID, err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO entities (entity_id, snapshot, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (entity_id) DO UPDATE
		 SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`,
		entityID, blob, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("saving entity %s: %w", entityID, err)
	}
	return nil
}

// Load returns the stored snapshot for entityID.
// Returns nil, nil if no snapshot exists (not an error).
func (r *EntityRepository) Load(ctx context.Context, entityID string) (*entity.Snapshot, error) {
	var blob []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM entities WHERE entity_id = $1`, entityID,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying entity %s: %w", entityID, err)
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot for %s: %w", entityID, err)
	}
	return &snap, nil
}

// Delete removes the stored snapshot for entityID. Deleting a missing row
// is not an error.
func (r *EntityRepository) Delete(ctx context.Context, entityID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM entities WHERE entity_id = $1`, entityID)
	if err != nil {
		return fmt.Errorf("deleting entity %s: %w", entityID, err)
	}
	return nil
}
