// Package service provides business logic between API handlers and data
// stores.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/metrics"
	"github.com/chroniclehq/chronicle/internal/models"
)

// LedgerStore is the data-access interface LedgerService depends on.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, req models.OpenTransactionRequest) (*models.TransactionRecord, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]models.TransactionRecord, bool, error)
	CompleteTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	FailTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) (int, error)
}

// Compile-time check: *LedgerService must satisfy domain.Ledger.
var _ domain.Ledger = (*LedgerService)(nil)

// LedgerService wraps the transaction store with lifecycle logging and
// metrics. Completion and failure close the transaction to further
// operations; deletion is the privileged escape hatch and is logged loudly.
type LedgerService struct {
	store  LedgerStore
	events EventPublisher
	log    *logrus.Logger
}

// NewLedgerService creates a LedgerService. events may be nil.
func NewLedgerService(store LedgerStore, events EventPublisher, log *logrus.Logger) *LedgerService {
	return &LedgerService{store: store, events: events, log: log}
}

// OpenTransaction creates a PENDING transaction with a fresh id.
func (s *LedgerService) OpenTransaction(
	ctx context.Context, req models.OpenTransactionRequest,
) (*models.TransactionRecord, error) {
	t, err := s.store.CreateTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": t.TransactionID,
		"initiator":      t.Initiator,
	}).Info("ledger.open")

	return t, nil
}

// GetTransaction returns one transaction by id (pass-through).
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns transactions newest first (pass-through).
func (s *LedgerService) ListTransactions(
	ctx context.Context, limit, offset int,
) ([]models.TransactionRecord, bool, error) {
	return s.store.ListTransactions(ctx, limit, offset)
}

// CompleteTransaction transitions PENDING -> COMPLETED. After this no
// further operations are admitted for the id.
func (s *LedgerService) CompleteTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return s.close(ctx, id, models.StatusCompleted)
}

// FailTransaction transitions PENDING -> FAILED. Callers use this after a
// partial batch failure when they decide not to retry the remainder.
func (s *LedgerService) FailTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return s.close(ctx, id, models.StatusFailed)
}

func (s *LedgerService) close(
	ctx context.Context, id uuid.UUID, to models.TransactionStatus,
) (*models.TransactionRecord, error) {
	var t *models.TransactionRecord
	var err error

	if to == models.StatusCompleted {
		t, err = s.store.CompleteTransaction(ctx, id)
	} else {
		t, err = s.store.FailTransaction(ctx, id)
	}

	if err != nil {
		return nil, err
	}

	metrics.TransactionsClosed.WithLabelValues(string(to)).Inc()
	s.log.WithFields(logrus.Fields{
		"transaction_id": id,
		"status":         to,
	}).Info("ledger.close")

	if s.events != nil {
		s.events.PublishTransaction(t)
	}

	return t, nil
}

// DeleteTransaction removes a transaction and cascades deletion of its
// change records. Privileged: this is the one path that violates the
// append-only audit invariant, so it is logged at Warn with the removed
// record count.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID) (int, error) {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id":  id,
		"deleted_records": deleted,
	}).Warn("ledger.delete: audit trail removed (privileged)")

	return deleted, nil
}
