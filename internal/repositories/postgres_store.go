package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpetrov/chipsync/internal/models"
)

// PostgresStore backs the ledger with a single accounts table. The
// inventory column holds the item list as JSONB since items are opaque to
// the ledger. Each mutation is one statement, so per-user locking is left
// to the database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS accounts (
	              user_id   BIGINT PRIMARY KEY,
	              balance   BIGINT NOT NULL CHECK (balance >= 0),
	              inventory JSONB  NOT NULL DEFAULT '[]'::jsonb
	          )`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure accounts table: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	query := `INSERT INTO accounts (user_id, balance)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO UPDATE SET balance = accounts.balance
	          RETURNING balance`

	var balance int64
	err := s.pool.QueryRow(ctx, query, userID, models.DefaultBalance).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	query := `SELECT balance, inventory FROM accounts WHERE user_id = $1`

	var account models.Account
	var inventory []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(&account.Balance, &inventory)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := json.Unmarshal(inventory, &account.Inventory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inventory: %w", err)
	}
	if account.Inventory == nil {
		account.Inventory = []models.Item{}
	}
	return &account, nil
}

func (s *PostgresStore) SetBalance(ctx context.Context, userID, amount int64) error {
	query := `INSERT INTO accounts (user_id, balance)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance`

	if _, err := s.pool.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetInventory(ctx context.Context, userID, balance int64, items []models.Item) error {
	if items == nil {
		items = []models.Item{}
	}
	inventory, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	// An existing account keeps its balance; the supplied balance only
	// seeds a freshly created one.
	query := `INSERT INTO accounts (user_id, balance, inventory)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE SET inventory = EXCLUDED.inventory`

	if _, err := s.pool.Exec(ctx, query, userID, balance, inventory); err != nil {
		return fmt.Errorf("failed to set inventory: %w", err)
	}
	return nil
}

func (s *PostgresStore) ResetBalances(ctx context.Context, amount int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET balance = $1`, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to reset balances: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
