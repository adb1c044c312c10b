package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chroniclehq/chronicle/internal/models"
)

// SnapshotStore owns the entity_snapshots table: the current persisted
// state of every tracked entity. It is the engine's only source of
// "before" values.
type SnapshotStore struct {
	Base
}

// NewSnapshotStore creates a SnapshotStore.
func NewSnapshotStore(base Base) *SnapshotStore {
	return &SnapshotStore{Base: base}
}

// MutationResult is what Apply hands back to the engine: the snapshots the
// diff needs plus the (possibly generated) entity id.
type MutationResult struct {
	EntityID string
	Before   *models.Snapshot
	After    *models.Snapshot
}

// Apply performs one entity mutation with read-then-write atomicity: the
// before snapshot is fetched under a row lock and the mutation committed in
// the same database transaction, so concurrent operations on the same
// entity cannot interleave between read and write.
//
// Create fails with ErrEntityExists if a snapshot is already present;
// update and delete fail with ErrEntityNotFound if none is.
func (s *SnapshotStore) Apply(
	ctx context.Context, et *models.EntityType, op models.Operation,
) (*MutationResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var res *MutationResult

	switch op.Action {
	case models.ActionCreate:
		res, err = s.applyCreate(ctx, tx, et, op)
	case models.ActionUpdate:
		res, err = s.applyUpdate(ctx, tx, et, op)
	case models.ActionDelete:
		res, err = s.applyDelete(ctx, tx, et, op)
	default:
		return nil, models.InvalidArgumentf("unknown operation %q", op.Action)
	}

	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("committing entity mutation", err)
	}

	return res, nil
}

func (s *SnapshotStore) applyCreate(
	ctx context.Context, tx pgx.Tx, et *models.EntityType, op models.Operation,
) (*MutationResult, error) {
	entityID := op.EntityID
	if entityID == "" {
		entityID = uuid.New().String()
	}

	after := et.NewSnapshot(op.Data)

	stateJSON, err := after.MarshalJSON()
	if err != nil {
		return nil, storageErr("encoding entity state", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO entity_snapshots (entity_type, entity_id, state)
		VALUES ($1, $2, $3)`,
		et.Name, entityID, stateJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrEntityExists
		}

		return nil, storageErr("inserting entity snapshot", err)
	}

	return &MutationResult{EntityID: entityID, After: after}, nil
}

func (s *SnapshotStore) applyUpdate(
	ctx context.Context, tx pgx.Tx, et *models.EntityType, op models.Operation,
) (*MutationResult, error) {
	before, err := lockSnapshot(ctx, tx, et.Name, op.EntityID)
	if err != nil {
		return nil, err
	}

	after := before.Merge(op.Data)

	stateJSON, err := after.MarshalJSON()
	if err != nil {
		return nil, storageErr("encoding entity state", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE entity_snapshots SET state = $3, updated_at = NOW()
		WHERE entity_type = $1 AND entity_id = $2`,
		et.Name, op.EntityID, stateJSON,
	)
	if err != nil {
		return nil, storageErr("updating entity snapshot", err)
	}

	return &MutationResult{EntityID: op.EntityID, Before: before, After: after}, nil
}

func (s *SnapshotStore) applyDelete(
	ctx context.Context, tx pgx.Tx, et *models.EntityType, op models.Operation,
) (*MutationResult, error) {
	before, err := lockSnapshot(ctx, tx, et.Name, op.EntityID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		"DELETE FROM entity_snapshots WHERE entity_type = $1 AND entity_id = $2",
		et.Name, op.EntityID,
	)
	if err != nil {
		return nil, storageErr("deleting entity snapshot", err)
	}

	return &MutationResult{EntityID: op.EntityID, Before: before}, nil
}

// lockSnapshot fetches an entity's state FOR UPDATE within tx.
func lockSnapshot(ctx context.Context, tx pgx.Tx, entityType, entityID string) (*models.Snapshot, error) {
	var stateJSON []byte

	err := tx.QueryRow(ctx, `
		SELECT state FROM entity_snapshots
		WHERE entity_type = $1 AND entity_id = $2
		FOR UPDATE`,
		entityType, entityID,
	).Scan(&stateJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEntityNotFound
		}

		return nil, storageErr("fetching entity snapshot", err)
	}

	snap := models.NewSnapshot()
	if err := snap.UnmarshalJSON(stateJSON); err != nil {
		return nil, storageErr("decoding entity snapshot", err)
	}

	return snap, nil
}

// GetEntity returns the current state of one entity.
func (s *SnapshotStore) GetEntity(ctx context.Context, ref models.EntityRef) (*models.EntityState, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var e models.EntityState
	var stateJSON []byte

	err := s.Pool.QueryRow(ctx, `
		SELECT entity_type, entity_id, state, created_at, updated_at
		FROM entity_snapshots WHERE entity_type = $1 AND entity_id = $2`,
		ref.Type, ref.ID,
	).Scan(&e.EntityType, &e.EntityID, &stateJSON, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEntityNotFound
		}

		return nil, storageErr("getting entity", err)
	}

	e.State = models.NewSnapshot()
	if err := e.State.UnmarshalJSON(stateJSON); err != nil {
		return nil, storageErr("decoding entity state", err)
	}

	return &e, nil
}

// ListEntities returns current entities of one type, newest first.
func (s *SnapshotStore) ListEntities(
	ctx context.Context, entityType string, limit, offset int,
) ([]models.EntityState, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit = clampLimit(limit, 50)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT entity_type, entity_id, state, created_at, updated_at
		FROM entity_snapshots WHERE entity_type = $1
		ORDER BY created_at DESC, entity_id LIMIT $2 OFFSET $3`,
		entityType, limit+1, offset,
	)
	if err != nil {
		return nil, false, storageErr("listing entities", err)
	}
	defer rows.Close()

	entities := make([]models.EntityState, 0, limit+1)

	for rows.Next() {
		var e models.EntityState
		var stateJSON []byte

		if err := rows.Scan(&e.EntityType, &e.EntityID, &stateJSON, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, false, storageErr("scanning entity row", err)
		}

		e.State = models.NewSnapshot()
		if err := e.State.UnmarshalJSON(stateJSON); err != nil {
			return nil, false, storageErr("decoding entity state", err)
		}

		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, false, storageErr("iterating entity rows", err)
	}

	hasMore := len(entities) > limit
	if hasMore {
		entities = entities[:limit]
	}

	return entities, hasMore, nil
}
