package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusRetry     OutboxStatus = "RETRY"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxEvent is a pending publication written in the same transaction as
// the state change it describes. AggregateID links back to the appointment
// or draft the event is about.
type OutboxEvent struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	AggregateID  uuid.UUID         `db:"aggregate_id" json:"aggregate_id"`
	EventType    string            `db:"event_type" json:"event_type"`
	Payload      json.RawMessage   `db:"payload" json:"payload"`
	Headers      map[string]string `db:"-" json:"headers,omitempty"`
	Status       string            `db:"status" json:"status"`
	ErrorMessage *string           `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
	RetryCount   int               `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time        `db:"retry_at" json:"retry_at,omitempty"`
}
