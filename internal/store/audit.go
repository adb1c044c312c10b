package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chroniclehq/chronicle/internal/models"
)

// AuditStore owns the change_records table: the append-only audit log.
// Records are never updated or deleted here; cascade deletion of a
// transaction's trail belongs to the ledger's administrative path.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

const changeColumns = "id, transaction_id, entity_type, entity_id, change_type, old_values, new_values, changed_fields, author, commit_date"

// Append inserts one change record and returns it with its assigned id.
// Ids come from a single global sequence, so they are strictly increasing
// under concurrent appends across transactions.
func (s *AuditStore) Append(ctx context.Context, rec *models.ChangeRecord) (*models.ChangeRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	oldJSON, newJSON, changedJSON, err := encodeChangePayloads(rec)
	if err != nil {
		return nil, err
	}

	var author *string
	if rec.Author != "" {
		author = &rec.Author
	}

	row := s.Pool.QueryRow(ctx, `
		INSERT INTO change_records
			(transaction_id, entity_type, entity_id, change_type, old_values, new_values, changed_fields, author, commit_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+changeColumns,
		rec.TransactionID, rec.EntityType, rec.EntityID, rec.ChangeType,
		oldJSON, newJSON, changedJSON, author, rec.CommitDate,
	)

	persisted, err := scanChangeRecord(row.Scan)
	if err != nil {
		return nil, storageErr("appending change record", err)
	}

	return persisted, nil
}

// encodeChangePayloads marshals the snapshot and changed-field columns.
// Snapshots use their own order-preserving encoder; nil snapshots become
// SQL NULL. changed_fields is only stored for UPDATED records (an empty
// list is meaningful there and still stored).
func encodeChangePayloads(rec *models.ChangeRecord) (oldJSON, newJSON, changedJSON []byte, err error) {
	if rec.OldValues != nil {
		if oldJSON, err = rec.OldValues.MarshalJSON(); err != nil {
			return nil, nil, nil, fmt.Errorf("encoding old values: %w", err)
		}
	}

	if rec.NewValues != nil {
		if newJSON, err = rec.NewValues.MarshalJSON(); err != nil {
			return nil, nil, nil, fmt.Errorf("encoding new values: %w", err)
		}
	}

	if rec.ChangeType == models.ChangeUpdated {
		fields := rec.ChangedFields
		if fields == nil {
			fields = []string{}
		}
		if changedJSON, err = json.Marshal(fields); err != nil {
			return nil, nil, nil, fmt.Errorf("encoding changed fields: %w", err)
		}
	}

	return oldJSON, newJSON, changedJSON, nil
}

// scanChangeRecord scans one change_records row.
func scanChangeRecord(scan func(dest ...any) error) (*models.ChangeRecord, error) {
	var rec models.ChangeRecord
	var oldJSON, newJSON, changedJSON []byte
	var author *string

	if err := scan(
		&rec.ID, &rec.TransactionID, &rec.EntityType, &rec.EntityID, &rec.ChangeType,
		&oldJSON, &newJSON, &changedJSON, &author, &rec.CommitDate,
	); err != nil {
		return nil, err
	}

	if author != nil {
		rec.Author = *author
	}

	if oldJSON != nil {
		rec.OldValues = models.NewSnapshot()
		if err := rec.OldValues.UnmarshalJSON(oldJSON); err != nil {
			return nil, fmt.Errorf("decoding old values: %w", err)
		}
	}

	if newJSON != nil {
		rec.NewValues = models.NewSnapshot()
		if err := rec.NewValues.UnmarshalJSON(newJSON); err != nil {
			return nil, fmt.Errorf("decoding new values: %w", err)
		}
	}

	if changedJSON != nil {
		if err := json.Unmarshal(changedJSON, &rec.ChangedFields); err != nil {
			return nil, fmt.Errorf("decoding changed fields: %w", err)
		}
		if rec.ChangedFields == nil {
			rec.ChangedFields = []string{}
		}
	}

	return &rec, nil
}

// queryChangeRecords runs a query and scans all change records.
func (s *AuditStore) queryChangeRecords(ctx context.Context, query string, args ...any) ([]models.ChangeRecord, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("querying change records", err)
	}
	defer rows.Close()

	records := make([]models.ChangeRecord, 0)

	for rows.Next() {
		rec, err := scanChangeRecord(rows.Scan)
		if err != nil {
			return nil, storageErr("scanning change record", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating change records", err)
	}

	return records, nil
}

// QueryByTransaction returns a transaction's change records in insertion
// order (id ascending), which is the order operations were applied.
func (s *AuditStore) QueryByTransaction(ctx context.Context, txID uuid.UUID) ([]models.ChangeRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.queryChangeRecords(ctx,
		"SELECT "+changeColumns+" FROM change_records WHERE transaction_id = $1 ORDER BY id", txID)
}

// QueryByEntity returns the full history of one entity across all
// transactions, id ascending.
func (s *AuditStore) QueryByEntity(ctx context.Context, ref models.EntityRef) ([]models.ChangeRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.queryChangeRecords(ctx,
		"SELECT "+changeColumns+" FROM change_records WHERE entity_type = $1 AND entity_id = $2 ORDER BY id",
		ref.Type, ref.ID)
}

// QueryRecent returns the newest records committed within the trailing
// window, commit_date descending.
func (s *AuditStore) QueryRecent(ctx context.Context, q models.RecentQuery) ([]models.ChangeRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit := clampLimit(q.Limit, 50)
	days := q.Days
	if days <= 0 {
		days = 7
	}

	return s.queryChangeRecords(ctx, `
		SELECT `+changeColumns+` FROM change_records
		WHERE commit_date >= NOW() - make_interval(days => $1)
		ORDER BY commit_date DESC, id DESC LIMIT $2`,
		days, limit)
}

// Summarize aggregates change activity over the trailing window in a
// single read transaction so the counts are mutually consistent.
func (s *AuditStore) Summarize(ctx context.Context, days int) (*models.AuditSummary, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if days <= 0 {
		days = 30
	}

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	summary := &models.AuditSummary{
		PeriodDays:          days,
		ChangeTypeBreakdown: map[models.ChangeType]int{},
		EntityTypeBreakdown: map[string]int{},
	}

	err = tx.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT transaction_id)
		FROM change_records
		WHERE commit_date >= NOW() - make_interval(days => $1)`,
		days,
	).Scan(&summary.TotalCount, &summary.UniqueTransactionCount)
	if err != nil {
		return nil, storageErr("counting change records", err)
	}

	if err := summarizeBreakdown(ctx, tx, "change_type", days, func(key string, count int) {
		summary.ChangeTypeBreakdown[models.ChangeType(key)] = count
	}); err != nil {
		return nil, err
	}

	if err := summarizeBreakdown(ctx, tx, "entity_type", days, func(key string, count int) {
		summary.EntityTypeBreakdown[key] = count
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("committing summary query", err)
	}

	return summary, nil
}

// summarizeBreakdown runs one GROUP BY aggregation. column is one of the
// fixed identifiers "change_type" or "entity_type", never caller input.
func summarizeBreakdown(ctx context.Context, tx pgx.Tx, column string, days int, add func(key string, count int)) error {
	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM change_records
		WHERE commit_date >= NOW() - make_interval(days => $1)
		GROUP BY %s`, column, column),
		days,
	)
	if err != nil {
		return storageErr("querying "+column+" breakdown", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int

		if err := rows.Scan(&key, &count); err != nil {
			return storageErr("scanning "+column+" breakdown", err)
		}

		add(key, count)
	}

	return rows.Err()
}
