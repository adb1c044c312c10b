package models

import "time"

// EntityState is a snapshot-store row: the current persisted state of one
// tracked entity.
type EntityState struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	State      *Snapshot `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
