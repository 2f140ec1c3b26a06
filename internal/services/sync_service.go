package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpetrov/chipsync/internal/models"
	"github.com/mpetrov/chipsync/internal/repositories"
)

var (
	ErrMalformedRequest = errors.New("malformed sync request")
	ErrMissingBalance   = errors.New("balance is required for this action")
	ErrNegativeBalance  = errors.New("balance must not be negative")
)

// SyncResult is the outcome of one handled request: an optional state
// snapshot for the web app and an optional human-readable notification for
// the chat. Both empty means the request was a deliberate no-op.
type SyncResult struct {
	Data         *models.SyncResponse
	Notification string
}

// SyncService interprets state-sync requests from the web app and applies
// them to the ledger. It holds no per-request state; everything durable
// lives in the store.
type SyncService struct {
	store  repositories.LedgerStore
	events EventLog
	log    zerolog.Logger
}

func NewSyncService(store repositories.LedgerStore, events EventLog, log zerolog.Logger) *SyncService {
	return &SyncService{
		store:  store,
		events: events,
		log:    log.With().Str("component", "sync_service").Logger(),
	}
}

// Handle decodes one raw payload, dispatches on its action and returns the
// response snapshot plus any notification. An unknown or missing action
// returns (nil, nil): the payload was meant for someone else, not for us.
func (s *SyncService) Handle(ctx context.Context, userID int64, raw []byte) (*SyncResult, error) {
	var req models.SyncRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	switch req.Action {
	case models.ActionGetData, models.ActionGetBalance:
		return s.handleGetData(ctx, userID)
	case models.ActionUpdateData:
		update, err := decodeUpdateData(&req)
		if err != nil {
			return nil, err
		}
		return s.handleUpdateData(ctx, userID, update)
	case models.ActionUpdateBalance:
		update, err := decodeUpdateBalance(&req)
		if err != nil {
			return nil, err
		}
		return s.handleUpdateBalance(ctx, userID, update)
	default:
		s.log.Debug().Int64("user_id", userID).Str("action", req.Action).Msg("ignoring unknown action")
		return nil, nil
	}
}

// updateDataRequest carries the validated fields of an update_data action.
type updateDataRequest struct {
	balance      int64
	inventory    []models.Item
	hasInventory bool
	wonItem      *models.Item
	itemSold     *models.Item
}

// updateBalanceRequest carries the validated fields of an update_balance
// action.
type updateBalanceRequest struct {
	balance     int64
	creditTaken bool
	winAmount   *int64
	multiplier  decimal.Decimal
}

func decodeUpdateData(req *models.SyncRequest) (*updateDataRequest, error) {
	balance, err := requireBalance(req)
	if err != nil {
		return nil, err
	}
	return &updateDataRequest{
		balance:      balance,
		inventory:    req.Inventory,
		hasInventory: req.Inventory != nil,
		wonItem:      req.WonItem,
		itemSold:     req.ItemSold,
	}, nil
}

func decodeUpdateBalance(req *models.SyncRequest) (*updateBalanceRequest, error) {
	balance, err := requireBalance(req)
	if err != nil {
		return nil, err
	}
	update := &updateBalanceRequest{
		balance:     balance,
		creditTaken: req.CreditTaken,
		winAmount:   req.WinAmount,
	}
	if req.Multiplier != nil {
		update.multiplier = *req.Multiplier
	}
	return update, nil
}

func requireBalance(req *models.SyncRequest) (int64, error) {
	if req.Balance == nil {
		return 0, ErrMissingBalance
	}
	if *req.Balance < 0 {
		return 0, ErrNegativeBalance
	}
	return *req.Balance, nil
}

func (s *SyncService) handleGetData(ctx context.Context, userID int64) (*SyncResult, error) {
	// GetBalance creates the default account for a never-seen user, so
	// the follow-up read always finds one.
	if _, err := s.store.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, userID, "")
}

func (s *SyncService) handleUpdateData(ctx context.Context, userID int64, update *updateDataRequest) (*SyncResult, error) {
	if err := s.store.SetBalance(ctx, userID, update.balance); err != nil {
		return nil, err
	}
	if update.hasInventory {
		if err := s.store.SetInventory(ctx, userID, update.balance, update.inventory); err != nil {
			return nil, err
		}
	}

	notification := ""
	switch {
	case update.wonItem != nil:
		notification = fmt.Sprintf("You received: %s", update.wonItem.Name)
	case update.itemSold != nil:
		notification = fmt.Sprintf("You sold %s for %d coins", update.itemSold.Name, update.itemSold.Value)
	}

	s.events.Append(ctx, userID, models.ActionUpdateData, update.balance)
	return s.snapshot(ctx, userID, notification)
}

func (s *SyncService) handleUpdateBalance(ctx context.Context, userID int64, update *updateBalanceRequest) (*SyncResult, error) {
	if err := s.store.SetBalance(ctx, userID, update.balance); err != nil {
		return nil, err
	}

	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	notification := ""
	switch {
	case update.creditTaken:
		notification = "You took a credit of 1000 coins"
	case update.winAmount != nil:
		if *update.winAmount > 0 {
			notification = fmt.Sprintf("Win: %d coins (x%s)", *update.winAmount, update.multiplier)
		} else {
			notification = "No winning combination"
		}
	}

	s.events.Append(ctx, userID, models.ActionUpdateBalance, balance)
	return &SyncResult{
		Data:         &models.SyncResponse{Balance: balance},
		Notification: notification,
	}, nil
}

// snapshot re-reads the authoritative state so responses never echo the
// request's own values.
func (s *SyncService) snapshot(ctx context.Context, userID int64, notification string) (*SyncResult, error) {
	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SyncResult{
		Data: &models.SyncResponse{
			Balance:   balance,
			Inventory: &account.Inventory,
		},
		Notification: notification,
	}, nil
}
