package models

import (
	"github.com/shopspring/decimal"
)

// Actions the web app may request. Anything else is a deliberate no-op.
const (
	ActionGetData       = "get_data"
	ActionGetBalance    = "get_balance"
	ActionUpdateData    = "update_data"
	ActionUpdateBalance = "update_balance"
)

// SyncRequest is the raw envelope sent by the web app over the chat
// transport's data-message channel. All fields besides Action are optional;
// which ones are required depends on the action (validated at decode).
type SyncRequest struct {
	Action      string           `json:"action"`
	Balance     *int64           `json:"balance,omitempty"`
	Inventory   []Item           `json:"inventory,omitempty"`
	WonItem     *Item            `json:"won_item,omitempty"`
	ItemSold    *Item            `json:"item_sold,omitempty"`
	CreditTaken bool             `json:"credit_taken,omitempty"`
	WinAmount   *int64           `json:"win_amount,omitempty"`
	Multiplier  *decimal.Decimal `json:"multiplier,omitempty"`
}

// SyncResponse is the authoritative state snapshot sent back to the web
// app. It always reflects post-mutation store state, never the request's
// own values. Inventory is omitted for balance-only actions.
type SyncResponse struct {
	Balance   int64   `json:"balance"`
	Inventory *[]Item `json:"inventory,omitempty"`
}
