package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

// Transaction lifecycle states. PENDING admits operations; COMPLETED and
// FAILED are terminal for everything except administrative deletion.
const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// Terminal reports whether the status admits no further operations.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TransactionRecord groups entity operations under one auditable boundary.
type TransactionRecord struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	Description   string            `json:"description"`
	Initiator     string            `json:"initiator,omitempty"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// OpenTransactionRequest is the payload for opening a transaction.
type OpenTransactionRequest struct {
	Description string `json:"description"`
	Initiator   string `json:"initiator,omitempty"`
}

// Validate checks required fields and length limits.
func (r *OpenTransactionRequest) Validate() error {
	if r.Description == "" {
		return InvalidArgumentf("description is required")
	}

	if len(r.Description) > 10000 {
		return ErrFieldTooLong("description", 10000)
	}

	if len(r.Initiator) > 255 {
		return ErrFieldTooLong("initiator", 255)
	}

	return nil
}
