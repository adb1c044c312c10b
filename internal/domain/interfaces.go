// Package domain defines the canonical service interfaces shared across
// API layers (REST handlers, the CLI client, tests). Consumers should
// depend on these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
)

// Ledger defines transaction lifecycle operations.
type Ledger interface {
	OpenTransaction(ctx context.Context, req models.OpenTransactionRequest) (*models.TransactionRecord, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]models.TransactionRecord, bool, error)
	CompleteTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	FailTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	// DeleteTransaction is the privileged cascade delete. It removes the
	// transaction record and its audit trail, breaking the append-only
	// invariant by design; it must never be reachable from the standard
	// mutation path.
	DeleteTransaction(ctx context.Context, id uuid.UUID) (int, error)
}

// Engine defines operation execution under a transaction boundary.
type Engine interface {
	ApplyOperation(ctx context.Context, txID uuid.UUID, op models.Operation) (*models.ChangeRecord, error)
	// ApplyOperations applies ops in order, stopping at the first failure.
	// Records appended before the failure remain committed; the results
	// slice covers every attempted operation including the failed one.
	ApplyOperations(ctx context.Context, txID uuid.UUID, ops []models.Operation) ([]models.OperationResult, error)
}

// AuditQuery defines read-only access to the audit history.
type AuditQuery interface {
	GetTransactionAudit(ctx context.Context, txID uuid.UUID) ([]models.ChangeRecord, error)
	GetEntityHistory(ctx context.Context, ref models.EntityRef) ([]models.ChangeRecord, error)
	GetRecent(ctx context.Context, q models.RecentQuery) ([]models.ChangeRecord, error)
	Summarize(ctx context.Context, days int) (*models.AuditSummary, error)
}

// EntityReader defines read access to current entity snapshots.
type EntityReader interface {
	GetEntity(ctx context.Context, ref models.EntityRef) (*models.EntityState, error)
	ListEntities(ctx context.Context, entityType string, limit, offset int) ([]models.EntityState, bool, error)
}
