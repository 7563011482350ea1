package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outbox event statuses
const (
	OutboxStatusPending   = "pending"
	OutboxStatusProcessed = "processed"
	OutboxStatusRetry     = "retry"
	OutboxStatusFailed    = "failed"
)

// OutboxEvent is a collection-change record written in the same transaction
// as the mutation it describes. A worker drains pending events and publishes
// them to the per-collection channel; subscribers treat each event as an
// invalidation and re-fetch the full result set (snapshot replace).
type OutboxEvent struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Collection string          `json:"collection" db:"collection"`
	EventType  string          `json:"event_type" db:"event_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	Status     string          `json:"status" db:"status"`
	Error      *string         `json:"error,omitempty" db:"error"`
	RetryAt    *time.Time      `json:"retry_at,omitempty" db:"retry_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// ChangeEvent is the message published on a collection channel.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	Action     string          `json:"action"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}
