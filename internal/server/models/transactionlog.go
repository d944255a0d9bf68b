package models

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionCreated Action = "CREATED"
	ActionUpdated Action = "UPDATED"
	ActionDeleted Action = "DELETED"
)

// TransactionLog is an immutable audit record of one transaction mutation.
// Changes holds a TransactionSnapshot for CREATED/DELETED and a
// TransactionChange for UPDATED.
type TransactionLog struct {
	ID            string          `json:"_id"`
	Action        Action          `json:"action"`
	TransactionID string          `json:"transactionId"`
	UserID        string          `json:"user"`
	Changes       json.RawMessage `json:"changes"`
	Timestamp     time.Time       `json:"timestamp"`
}
