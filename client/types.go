package client

import "time"

// Transaction is one auditable group of entity operations.
type Transaction struct {
	TransactionID string     `json:"transaction_id"`
	Description   string     `json:"description"`
	Initiator     string     `json:"initiator,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// OpenTransactionRequest is the payload for opening a transaction.
type OpenTransactionRequest struct {
	Description string `json:"description"`
	Initiator   string `json:"initiator,omitempty"`
}

// Operation is one entity mutation to apply under a transaction.
type Operation struct {
	EntityType string         `json:"type"`
	Action     string         `json:"operation"`
	EntityID   string         `json:"entity_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Change is one audit log entry. For DELETED changes NewValues carries the
// final pre-deletion snapshot.
type Change struct {
	ID            int64          `json:"id"`
	TransactionID string         `json:"transaction_id"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	ChangeType    string         `json:"change_type"`
	OldValues     map[string]any `json:"old_values,omitempty"`
	NewValues     map[string]any `json:"new_values,omitempty"`
	ChangedFields []string       `json:"changed_fields,omitempty"`
	Author        string         `json:"author,omitempty"`
	CommitDate    time.Time      `json:"commit_date"`
}

// OperationResult reports the outcome of one operation within a batch.
type OperationResult struct {
	Index   int     `json:"index"`
	Success bool    `json:"success"`
	Record  *Change `json:"record,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ExecuteResponse is the body returned by the execute endpoint. Code and
// Message are set only when the batch stopped at a failure.
type ExecuteResponse struct {
	Results []OperationResult `json:"results"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Summary aggregates change activity over a trailing window.
type Summary struct {
	PeriodDays             int            `json:"period_days"`
	TotalCount             int            `json:"total_count"`
	UniqueTransactionCount int            `json:"unique_transaction_count"`
	ChangeTypeBreakdown    map[string]int `json:"change_type_breakdown"`
	EntityTypeBreakdown    map[string]int `json:"entity_type_breakdown"`
}

// Entity is the current snapshot of one tracked entity.
type Entity struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	State      map[string]any `json:"state"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	FeedClients   int     `json:"feed_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// DeleteResponse reports the outcome of a privileged transaction delete.
type DeleteResponse struct {
	Deleted        bool `json:"deleted"`
	DeletedRecords int  `json:"deleted_records"`
}
