package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/models"
)

// FileStore keeps all accounts in memory and writes the whole store to a
// single JSON file after every mutation. The in-memory map is authoritative:
// a failed write is logged and swallowed, and the state is written again on
// the next mutation.
//
// The file layout is one JSON object keyed by the stringified user ID, each
// value an account record. Keys are converted back to int64 on load; a key
// that fails to parse drops that entry only, never the whole store.
type FileStore struct {
	path string
	log  zerolog.Logger

	mu       sync.RWMutex
	accounts map[int64]*models.Account
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{
		path:     path,
		log:      log.With().Str("component", "file_store").Logger(),
		accounts: make(map[int64]*models.Account),
	}
}

func (s *FileStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[int64]*models.Account)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		// A store we cannot read starts empty rather than killing the
		// process. The file is rewritten on the first mutation.
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to read ledger file, starting empty")
		return nil
	}

	var raw map[string]*models.Account
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("malformed ledger file, starting empty")
		return nil
	}

	for key, account := range raw {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.log.Warn().Str("key", key).Msg("skipping ledger entry with non-numeric user id")
			continue
		}
		if account == nil {
			s.log.Warn().Str("key", key).Msg("skipping ledger entry with null account")
			continue
		}
		if account.Inventory == nil {
			account.Inventory = []models.Item{}
		}
		s.accounts[userID] = account
	}
	return nil
}

func (s *FileStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		account = models.NewAccount(models.DefaultBalance)
		s.accounts[userID] = account
		s.persistLocked()
	}
	return account.Balance, nil
}

func (s *FileStore) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return account.Clone(), nil
}

func (s *FileStore) SetBalance(ctx context.Context, userID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		account = models.NewAccount(amount)
		s.accounts[userID] = account
	} else {
		account.Balance = amount
	}
	s.persistLocked()
	return nil
}

func (s *FileStore) SetInventory(ctx context.Context, userID, balance int64, items []models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		account = models.NewAccount(balance)
		s.accounts[userID] = account
	}
	account.Inventory = make([]models.Item, len(items))
	copy(account.Inventory, items)
	s.persistLocked()
	return nil
}

func (s *FileStore) ResetBalances(ctx context.Context, amount int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		account.Balance = amount
	}
	s.persistLocked()
	return len(s.accounts), nil
}

func (s *FileStore) Close() error {
	return nil
}

// persistLocked writes the whole store to disk. Callers must hold mu. A
// failed write is logged and swallowed: the in-memory state stays
// authoritative and is written again on the next mutation.
func (s *FileStore) persistLocked() {
	raw := make(map[string]*models.Account, len(s.accounts))
	for userID, account := range s.accounts {
		raw[strconv.FormatInt(userID, 10)] = account
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal ledger")
		return
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to persist ledger")
	}
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated store behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
