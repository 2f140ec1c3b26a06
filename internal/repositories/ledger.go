package repositories

import (
	"context"
	"errors"

	"github.com/mpetrov/chipsync/internal/models"
)

// ErrNotFound is returned when a user has no account yet.
var ErrNotFound = errors.New("account not found")

// LedgerStore owns all durable account state. No other component holds a
// writable reference to an account; mutations go through this interface and
// are persisted write-through before the call returns.
type LedgerStore interface {
	// GetBalance returns the user's balance. If the user has never been
	// seen it creates the default account first and persists it.
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// GetAccount returns a copy of the user's account, or ErrNotFound.
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)

	// SetBalance overwrites the balance, creating the account with amount
	// as the initial balance if it does not exist.
	SetBalance(ctx context.Context, userID, amount int64) error

	// SetInventory replaces the inventory wholesale. If the account does
	// not exist it is created with the supplied balance; an existing
	// account keeps its current balance.
	SetInventory(ctx context.Context, userID, balance int64, items []models.Item) error

	// ResetBalances sets every existing account's balance to amount,
	// leaving inventories untouched. Returns the number of accounts
	// affected.
	ResetBalances(ctx context.Context, amount int64) (int, error)

	// Load initializes the store from its durable medium. Called once at
	// process start.
	Load(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
