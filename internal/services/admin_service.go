package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/models"
	"github.com/mpetrov/chipsync/internal/repositories"
)

// ErrNotAuthorized is returned when a non-admin caller invokes a privileged
// operation.
var ErrNotAuthorized = errors.New("not authorized")

const resetAction = "admin_reset"

// AdminService holds the privileged operations. Only the configured admin
// user may invoke them.
type AdminService struct {
	store   repositories.LedgerStore
	events  EventLog
	adminID int64
	log     zerolog.Logger
}

func NewAdminService(store repositories.LedgerStore, events EventLog, adminID int64, log zerolog.Logger) *AdminService {
	return &AdminService{
		store:   store,
		events:  events,
		adminID: adminID,
		log:     log.With().Str("component", "admin_service").Logger(),
	}
}

// ResetBalances sets every existing account's balance back to the default,
// leaving inventories untouched. Returns the number of accounts reset.
// An adminID of zero means no admin is configured and everything is denied.
func (s *AdminService) ResetBalances(ctx context.Context, callerID int64) (int, error) {
	if s.adminID == 0 || callerID != s.adminID {
		s.log.Warn().Int64("caller_id", callerID).Msg("denied balance reset")
		return 0, ErrNotAuthorized
	}

	count, err := s.store.ResetBalances(ctx, models.DefaultBalance)
	if err != nil {
		return 0, err
	}

	s.events.Append(ctx, callerID, resetAction, models.DefaultBalance)
	s.log.Info().Int("accounts", count).Msg("reset all balances")
	return count, nil
}
