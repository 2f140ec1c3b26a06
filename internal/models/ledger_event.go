package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEvent is one entry in the mutation audit trail. Every balance or
// inventory write produces exactly one event, so payouts can be traced back
// to the request that caused them.
type LedgerEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
