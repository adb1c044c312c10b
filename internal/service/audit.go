package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/models"
)

// AuditReadStore is the data-access interface AuditService depends on.
type AuditReadStore interface {
	QueryByTransaction(ctx context.Context, txID uuid.UUID) ([]models.ChangeRecord, error)
	QueryByEntity(ctx context.Context, ref models.EntityRef) ([]models.ChangeRecord, error)
	QueryRecent(ctx context.Context, q models.RecentQuery) ([]models.ChangeRecord, error)
	Summarize(ctx context.Context, days int) (*models.AuditSummary, error)
}

// Compile-time check: *AuditService must satisfy domain.AuditQuery.
var _ domain.AuditQuery = (*AuditService)(nil)

// AuditService answers read-only queries over the audit history. It never
// mutates the log or the ledger.
type AuditService struct {
	store  AuditReadStore
	ledger TransactionReader
	log    *logrus.Logger

	// summaries dedupes concurrent Summarize calls for the same window;
	// the scan is the most expensive query the service runs.
	summaries singleflight.Group
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditReadStore, ledger TransactionReader, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, ledger: ledger, log: log}
}

// GetTransactionAudit returns a transaction's change records in applied
// order. Unknown transaction ids fail with ErrTransactionNotFound; a known
// transaction with no operations yields an empty (non-error) result.
func (s *AuditService) GetTransactionAudit(ctx context.Context, txID uuid.UUID) ([]models.ChangeRecord, error) {
	if _, err := s.ledger.GetTransaction(ctx, txID); err != nil {
		return nil, err
	}

	return s.store.QueryByTransaction(ctx, txID)
}

// GetEntityHistory returns the full history of one entity across all
// transactions (pass-through).
func (s *AuditService) GetEntityHistory(ctx context.Context, ref models.EntityRef) ([]models.ChangeRecord, error) {
	return s.store.QueryByEntity(ctx, ref)
}

// GetRecent returns the recent-activity feed (pass-through).
func (s *AuditService) GetRecent(ctx context.Context, q models.RecentQuery) ([]models.ChangeRecord, error) {
	return s.store.QueryRecent(ctx, q)
}

// Summarize aggregates change activity over the trailing window.
// Concurrent calls for the same window share one underlying scan.
func (s *AuditService) Summarize(ctx context.Context, days int) (*models.AuditSummary, error) {
	v, err, shared := s.summaries.Do(strconv.Itoa(days), func() (any, error) {
		return s.store.Summarize(ctx, days)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.log.WithField("days", days).Debug("audit.summarize: shared in-flight result")
	}

	summary, ok := v.(*models.AuditSummary)
	if !ok {
		return nil, fmt.Errorf("audit.summarize: unexpected singleflight result type %T", v)
	}

	return summary, nil
}
