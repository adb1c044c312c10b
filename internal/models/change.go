// Package models defines data types for the change-capture engine.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChangeType classifies a single entity mutation.
type ChangeType string

// Change types recorded in the audit log.
const (
	ChangeCreated ChangeType = "CREATED"
	ChangeUpdated ChangeType = "UPDATED"
	ChangeDeleted ChangeType = "DELETED"
)

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeCreated, ChangeUpdated, ChangeDeleted:
		return true
	default:
		return false
	}
}

// EntityRef identifies the subject of a change. Immutable once created.
type EntityRef struct {
	Type string `json:"entity_type"`
	ID   string `json:"entity_id"`
}

// ChangeRecord is one immutable audit entry describing a single entity
// mutation. Records are append-only: the engine never updates or deletes
// them (administrative cascade delete lives behind the ledger, not here).
//
// For DELETED records NewValues holds the final pre-deletion snapshot and
// OldValues is absent. A dedicated deleted_snapshot field would be cleaner;
// the overload is kept for compatibility with consumers of the feed.
type ChangeRecord struct {
	ID            int64      `json:"id"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	EntityType    string     `json:"entity_type"`
	EntityID      string     `json:"entity_id"`
	ChangeType    ChangeType `json:"change_type"`
	OldValues     *Snapshot  `json:"old_values,omitempty"`
	NewValues     *Snapshot  `json:"new_values,omitempty"`
	ChangedFields []string   `json:"changed_fields,omitempty"`
	Author        string     `json:"author,omitempty"`
	CommitDate    time.Time  `json:"commit_date"`
}

// Ref returns the entity reference of the record.
func (r *ChangeRecord) Ref() EntityRef {
	return EntityRef{Type: r.EntityType, ID: r.EntityID}
}

// MarshalJSON emits changed_fields for every UPDATED record, including the
// empty list when the diff found nothing. A no-op update is a recorded
// fact; dropping the key would make it look like a CREATED or DELETED
// record, where changed_fields genuinely does not apply.
func (r ChangeRecord) MarshalJSON() ([]byte, error) {
	type plain ChangeRecord

	if r.ChangeType != ChangeUpdated {
		return json.Marshal(plain(r))
	}

	fields := r.ChangedFields
	if fields == nil {
		fields = []string{}
	}

	return json.Marshal(struct {
		plain
		ChangedFields []string `json:"changed_fields"`
	}{plain(r), fields})
}

// RecentQuery bounds the recent-activity feed: at most Limit records with
// commit_date within the last Days days.
type RecentQuery struct {
	Limit int
	Days  int
}

// AuditSummary aggregates change activity over a trailing window.
// Breakdown maps only contain keys with a count greater than zero.
type AuditSummary struct {
	PeriodDays             int                `json:"period_days"`
	TotalCount             int                `json:"total_count"`
	UniqueTransactionCount int                `json:"unique_transaction_count"`
	ChangeTypeBreakdown    map[ChangeType]int `json:"change_type_breakdown"`
	EntityTypeBreakdown    map[string]int     `json:"entity_type_breakdown"`
}
