package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chroniclehq/chronicle/internal/models"
)

// TransactionStore is the ledger: it owns the transactions table and the
// PENDING -> COMPLETED/FAILED lifecycle.
type TransactionStore struct {
	Base
}

// NewTransactionStore creates a TransactionStore.
func NewTransactionStore(base Base) *TransactionStore {
	return &TransactionStore{Base: base}
}

const transactionColumns = "transaction_id, description, initiator, status, created_at, completed_at"

// scanTransaction scans one transaction row.
func scanTransaction(scan func(dest ...any) error) (*models.TransactionRecord, error) {
	var t models.TransactionRecord
	var initiator *string

	if err := scan(&t.TransactionID, &t.Description, &initiator, &t.Status, &t.CreatedAt, &t.CompletedAt); err != nil {
		return nil, err
	}

	if initiator != nil {
		t.Initiator = *initiator
	}

	return &t, nil
}

// CreateTransaction opens a new PENDING transaction with a fresh UUID.
func (s *TransactionStore) CreateTransaction(
	ctx context.Context, req models.OpenTransactionRequest,
) (*models.TransactionRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var initiator *string
	if req.Initiator != "" {
		initiator = &req.Initiator
	}

	row := s.Pool.QueryRow(ctx, `
		INSERT INTO transactions (transaction_id, description, initiator, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING `+transactionColumns,
		uuid.New(), req.Description, initiator,
	)

	t, err := scanTransaction(row.Scan)
	if err != nil {
		return nil, storageErr("creating transaction", err)
	}

	return t, nil
}

// GetTransaction returns one transaction by id.
func (s *TransactionStore) GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE transaction_id = $1", id)

	t, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}

		return nil, storageErr("getting transaction", err)
	}

	return t, nil
}

// ListTransactions returns transactions ordered newest first.
func (s *TransactionStore) ListTransactions(
	ctx context.Context, limit, offset int,
) ([]models.TransactionRecord, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit = clampLimit(limit, 50)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.Pool.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY created_at DESC, transaction_id LIMIT $1 OFFSET $2",
		limit+1, offset)
	if err != nil {
		return nil, false, storageErr("listing transactions", err)
	}
	defer rows.Close()

	txns := make([]models.TransactionRecord, 0, limit+1)

	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, false, storageErr("scanning transaction row", err)
		}
		txns = append(txns, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, false, storageErr("iterating transaction rows", err)
	}

	hasMore := len(txns) > limit
	if hasMore {
		txns = txns[:limit]
	}

	return txns, hasMore, nil
}

// transition moves a PENDING transaction to the given terminal status.
func (s *TransactionStore) transition(
	ctx context.Context, id uuid.UUID, to models.TransactionStatus,
) (*models.TransactionRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `
		UPDATE transactions SET status = $2, completed_at = NOW()
		WHERE transaction_id = $1 AND status = 'PENDING'
		RETURNING `+transactionColumns,
		id, to,
	)

	t, err := scanTransaction(row.Scan)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storageErr("transitioning transaction", err)
	}

	// No PENDING row matched: distinguish unknown id from a terminal state.
	if _, getErr := s.GetTransaction(ctx, id); getErr != nil {
		return nil, getErr
	}

	return nil, fmt.Errorf("transaction %s: %w", id, models.ErrInvalidState)
}

// CompleteTransaction transitions PENDING -> COMPLETED. Fails with
// ErrTransactionNotFound for unknown ids and ErrInvalidState for
// transactions that already reached a terminal status.
func (s *TransactionStore) CompleteTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return s.transition(ctx, id, models.StatusCompleted)
}

// FailTransaction transitions PENDING -> FAILED under the same rules as
// CompleteTransaction.
func (s *TransactionStore) FailTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return s.transition(ctx, id, models.StatusFailed)
}

// DeleteTransaction removes a transaction and all of its change records.
// This is the administrative escape hatch that breaks the append-only
// invariant; it is only reachable through the privileged ledger service.
// Returns the number of change records removed with the transaction.
func (s *TransactionStore) DeleteTransaction(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Delete audit rows explicitly so the count can be reported; the FK
	// cascade would remove them silently otherwise.
	tag, err := tx.Exec(ctx, "DELETE FROM change_records WHERE transaction_id = $1", id)
	if err != nil {
		return 0, storageErr("deleting change records", err)
	}

	txTag, err := tx.Exec(ctx, "DELETE FROM transactions WHERE transaction_id = $1", id)
	if err != nil {
		return 0, storageErr("deleting transaction", err)
	}

	if txTag.RowsAffected() == 0 {
		return 0, models.ErrTransactionNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storageErr("committing transaction delete", err)
	}

	return int(tag.RowsAffected()), nil
}
