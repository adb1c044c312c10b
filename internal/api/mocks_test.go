package api_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/chroniclehq/chronicle/internal/models"
)

// mockLedger implements domain.Ledger for testing.
type mockLedger struct {
	openFn     func(ctx context.Context, req models.OpenTransactionRequest) (*models.TransactionRecord, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	listFn     func(ctx context.Context, limit, offset int) ([]models.TransactionRecord, bool, error)
	completeFn func(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	failFn     func(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) (int, error)
}

func (m *mockLedger) OpenTransaction(ctx context.Context, req models.OpenTransactionRequest) (*models.TransactionRecord, error) {
	return m.openFn(ctx, req)
}

func (m *mockLedger) GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return m.getFn(ctx, id)
}

func (m *mockLedger) ListTransactions(ctx context.Context, limit, offset int) ([]models.TransactionRecord, bool, error) {
	return m.listFn(ctx, limit, offset)
}

func (m *mockLedger) CompleteTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return m.completeFn(ctx, id)
}

func (m *mockLedger) FailTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	return m.failFn(ctx, id)
}

func (m *mockLedger) DeleteTransaction(ctx context.Context, id uuid.UUID) (int, error) {
	return m.deleteFn(ctx, id)
}

// mockEngine implements domain.Engine for testing.
type mockEngine struct {
	applyFn      func(ctx context.Context, txID uuid.UUID, op models.Operation) (*models.ChangeRecord, error)
	applyBatchFn func(ctx context.Context, txID uuid.UUID, ops []models.Operation) ([]models.OperationResult, error)
}

func (m *mockEngine) ApplyOperation(ctx context.Context, txID uuid.UUID, op models.Operation) (*models.ChangeRecord, error) {
	return m.applyFn(ctx, txID, op)
}

func (m *mockEngine) ApplyOperations(ctx context.Context, txID uuid.UUID, ops []models.Operation) ([]models.OperationResult, error) {
	return m.applyBatchFn(ctx, txID, ops)
}

// mockAuditQuery implements domain.AuditQuery for testing.
type mockAuditQuery struct {
	byTxFn      func(ctx context.Context, txID uuid.UUID) ([]models.ChangeRecord, error)
	byEntityFn  func(ctx context.Context, ref models.EntityRef) ([]models.ChangeRecord, error)
	recentFn    func(ctx context.Context, q models.RecentQuery) ([]models.ChangeRecord, error)
	summarizeFn func(ctx context.Context, days int) (*models.AuditSummary, error)
}

func (m *mockAuditQuery) GetTransactionAudit(ctx context.Context, txID uuid.UUID) ([]models.ChangeRecord, error) {
	return m.byTxFn(ctx, txID)
}

func (m *mockAuditQuery) GetEntityHistory(ctx context.Context, ref models.EntityRef) ([]models.ChangeRecord, error) {
	return m.byEntityFn(ctx, ref)
}

func (m *mockAuditQuery) GetRecent(ctx context.Context, q models.RecentQuery) ([]models.ChangeRecord, error) {
	return m.recentFn(ctx, q)
}

func (m *mockAuditQuery) Summarize(ctx context.Context, days int) (*models.AuditSummary, error) {
	return m.summarizeFn(ctx, days)
}

// mockEntityReader implements domain.EntityReader for testing.
type mockEntityReader struct {
	getFn  func(ctx context.Context, ref models.EntityRef) (*models.EntityState, error)
	listFn func(ctx context.Context, entityType string, limit, offset int) ([]models.EntityState, bool, error)
}

func (m *mockEntityReader) GetEntity(ctx context.Context, ref models.EntityRef) (*models.EntityState, error) {
	return m.getFn(ctx, ref)
}

func (m *mockEntityReader) ListEntities(ctx context.Context, entityType string, limit, offset int) ([]models.EntityState, bool, error) {
	return m.listFn(ctx, entityType, limit, offset)
}
