package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/models"
)

// EventLog records every ledger mutation so balances can be audited back to
// the request that produced them.
type EventLog interface {
	Append(ctx context.Context, userID int64, action string, balance int64) models.LedgerEvent
	Recent(n int) []models.LedgerEvent
}

const maxRetainedEvents = 1024

// MemoryEventLog keeps a bounded in-memory trail and mirrors every event to
// the structured log, which is the durable copy.
type MemoryEventLog struct {
	log zerolog.Logger

	mu     sync.Mutex
	events []models.LedgerEvent
}

func NewMemoryEventLog(log zerolog.Logger) *MemoryEventLog {
	return &MemoryEventLog{log: log.With().Str("component", "event_log").Logger()}
}

func (l *MemoryEventLog) Append(ctx context.Context, userID int64, action string, balance int64) models.LedgerEvent {
	event := models.LedgerEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	if len(l.events) > maxRetainedEvents {
		l.events = l.events[len(l.events)-maxRetainedEvents:]
	}
	l.mu.Unlock()

	l.log.Info().
		Str("event_id", event.ID.String()).
		Int64("user_id", userID).
		Str("action", action).
		Int64("balance", balance).
		Msg("ledger event")

	return event
}

func (l *MemoryEventLog) Recent(n int) []models.LedgerEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.events) {
		n = len(l.events)
	}
	out := make([]models.LedgerEvent, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}
