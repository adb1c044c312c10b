package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/diff"
	"github.com/chroniclehq/chronicle/internal/domain"
	"github.com/chroniclehq/chronicle/internal/metrics"
	"github.com/chroniclehq/chronicle/internal/models"
	"github.com/chroniclehq/chronicle/internal/store"
)

// TransactionReader is the slice of the ledger the engine needs: status
// checks before admitting an operation.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
}

// SnapshotMutator performs entity mutations with read-then-write atomicity
// and hands back the before/after snapshots.
type SnapshotMutator interface {
	Apply(ctx context.Context, et *models.EntityType, op models.Operation) (*store.MutationResult, error)
}

// ChangeAppender appends change records to the audit log.
type ChangeAppender interface {
	Append(ctx context.Context, rec *models.ChangeRecord) (*models.ChangeRecord, error)
}

// EventPublisher broadcasts engine events to live subscribers.
type EventPublisher interface {
	PublishChange(rec *models.ChangeRecord)
	PublishTransaction(t *models.TransactionRecord)
}

// Compile-time check: *EngineService must satisfy domain.Engine.
var _ domain.Engine = (*EngineService)(nil)

// EngineService orchestrates operation execution: transaction status check,
// entity mutation through the snapshot store, diff computation, and audit
// append. Calls targeting the same transaction id are serialized; different
// transactions run in parallel.
type EngineService struct {
	ledger    TransactionReader
	snapshots SnapshotMutator
	audit     ChangeAppender
	registry  *models.Registry
	events    EventPublisher
	locks     *txLocker
	log       *logrus.Logger
	now       func() time.Time
}

// NewEngineService creates an EngineService. events may be nil.
func NewEngineService(
	ledger TransactionReader,
	snapshots SnapshotMutator,
	audit ChangeAppender,
	registry *models.Registry,
	events EventPublisher,
	log *logrus.Logger,
) *EngineService {
	return &EngineService{
		ledger:    ledger,
		snapshots: snapshots,
		audit:     audit,
		registry:  registry,
		events:    events,
		locks:     newTxLocker(),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ApplyOperation executes one entity operation under the transaction and
// returns the persisted change record. The per-transaction lock is held for
// the whole call.
func (s *EngineService) ApplyOperation(
	ctx context.Context, txID uuid.UUID, op models.Operation,
) (*models.ChangeRecord, error) {
	release := s.locks.acquire(txID)
	defer release()

	return s.applyLocked(ctx, txID, op)
}

// ApplyOperations applies ops in order under one lock hold, stopping at the
// first failure. Already-appended records remain committed (no automatic
// rollback); the returned error is the failure that stopped the batch and
// the results slice discloses the partial outcome.
func (s *EngineService) ApplyOperations(
	ctx context.Context, txID uuid.UUID, ops []models.Operation,
) ([]models.OperationResult, error) {
	release := s.locks.acquire(txID)
	defer release()

	results := make([]models.OperationResult, 0, len(ops))

	for i, op := range ops {
		rec, err := s.applyLocked(ctx, txID, op)
		if err != nil {
			results = append(results, models.OperationResult{Index: i, Error: err.Error()})

			return results, fmt.Errorf("operation %d: %w", i, err)
		}

		results = append(results, models.OperationResult{Index: i, Success: true, Record: rec})
	}

	return results, nil
}

// applyLocked runs the status check / mutate / diff / append pipeline;
// callers hold the transaction lock.
func (s *EngineService) applyLocked(
	ctx context.Context, txID uuid.UUID, op models.Operation,
) (*models.ChangeRecord, error) {
	txn, err := s.ledger.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	if txn.Status != models.StatusPending {
		return nil, fmt.Errorf("transaction %s is %s: %w", txID, txn.Status, models.ErrInvalidState)
	}

	if err := op.Validate(s.registry); err != nil {
		return nil, err
	}

	et, err := s.registry.Lookup(op.EntityType)
	if err != nil {
		return nil, err
	}

	// Before-fetch and mutation commit together in one storage transaction.
	mutation, err := s.snapshots.Apply(ctx, et, op)
	if err != nil {
		return nil, err
	}

	author := txn.Initiator
	if author == "" {
		author = "system"
	}

	ref := models.EntityRef{Type: op.EntityType, ID: mutation.EntityID}

	rec, err := diff.ComputeChange(ref, op.ChangeType(), mutation.Before, mutation.After, author, s.now())
	if err != nil {
		return nil, s.auditGap(txID, ref, err)
	}
	rec.TransactionID = txID

	persisted, err := s.audit.Append(ctx, rec)
	if err != nil {
		return nil, s.auditGap(txID, ref, err)
	}

	metrics.ChangesRecorded.WithLabelValues(string(persisted.ChangeType)).Inc()

	s.log.WithFields(logrus.Fields{
		"transaction_id": txID,
		"entity_type":    ref.Type,
		"entity_id":      ref.ID,
		"change_type":    persisted.ChangeType,
		"change_id":      persisted.ID,
	}).Info("engine.apply")

	if s.events != nil {
		s.events.PublishChange(persisted)
	}

	return persisted, nil
}

// auditGap reports the known failure window: the entity mutation committed
// but the change record was not appended. The mutation is not rolled back;
// the caller gets the error and the gap is counted and logged, never
// swallowed.
func (s *EngineService) auditGap(txID uuid.UUID, ref models.EntityRef, err error) error {
	metrics.AuditGaps.Inc()

	s.log.WithError(err).WithFields(logrus.Fields{
		"transaction_id": txID,
		"entity_type":    ref.Type,
		"entity_id":      ref.ID,
	}).Error("engine.audit_gap: entity mutated but no change record appended")

	return fmt.Errorf("entity %s/%s mutated but audit append failed: %w", ref.Type, ref.ID, err)
}
