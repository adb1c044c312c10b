package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// Event types pushed to live subscribers.
const (
	EventChangeRecorded    = "change.recorded"
	EventTransactionClosed = "transaction.closed"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// EventSequence issues monotonic event ids for the feed.
type EventSequence struct {
	counter atomic.Uint64
}

// Next returns the next sequence number.
func (es *EventSequence) Next() uint64 {
	return es.counter.Add(1)
}
