package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/models"
)

const accountKeyPrefix = "account:"

// RedisStore keeps one JSON-encoded account per "account:{userID}" key.
// Redis GET/SET pairs are not atomic, so mutations that read before writing
// take a per-user lock.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
	locks  *userLocks
}

func NewRedisStore(client *redis.Client, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		log:    log.With().Str("component", "redis_store").Logger(),
		locks:  newUserLocks(),
	}
}

func accountKey(userID int64) string {
	return accountKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Load(ctx context.Context) error {
	// Nothing to warm up; Redis is the durable medium itself.
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

func (s *RedisStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	lock := s.locks.lock(userID)
	defer lock.Unlock()

	account, err := s.getAccount(ctx, userID)
	if err == ErrNotFound {
		account = models.NewAccount(models.DefaultBalance)
		if err := s.setAccount(ctx, userID, account); err != nil {
			return 0, err
		}
		return account.Balance, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (s *RedisStore) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	return s.getAccount(ctx, userID)
}

func (s *RedisStore) SetBalance(ctx context.Context, userID, amount int64) error {
	lock := s.locks.lock(userID)
	defer lock.Unlock()

	account, err := s.getAccount(ctx, userID)
	if err == ErrNotFound {
		account = models.NewAccount(amount)
	} else if err != nil {
		return err
	} else {
		account.Balance = amount
	}
	return s.setAccount(ctx, userID, account)
}

func (s *RedisStore) SetInventory(ctx context.Context, userID, balance int64, items []models.Item) error {
	lock := s.locks.lock(userID)
	defer lock.Unlock()

	account, err := s.getAccount(ctx, userID)
	if err == ErrNotFound {
		account = models.NewAccount(balance)
	} else if err != nil {
		return err
	}
	account.Inventory = make([]models.Item, len(items))
	copy(account.Inventory, items)
	return s.setAccount(ctx, userID, account)
}

func (s *RedisStore) ResetBalances(ctx context.Context, amount int64) (int, error) {
	var count int
	iter := s.client.Scan(ctx, 0, accountKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID, err := strconv.ParseInt(strings.TrimPrefix(key, accountKeyPrefix), 10, 64)
		if err != nil {
			s.log.Warn().Str("key", key).Msg("skipping account key with non-numeric user id")
			continue
		}

		lock := s.locks.lock(userID)
		account, err := s.getAccount(ctx, userID)
		if err != nil {
			lock.Unlock()
			if err == ErrNotFound {
				continue
			}
			return count, err
		}
		account.Balance = amount
		err = s.setAccount(ctx, userID, account)
		lock.Unlock()
		if err != nil {
			return count, err
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("failed to scan accounts: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) getAccount(ctx context.Context, userID int64) (*models.Account, error) {
	data, err := s.client.Get(ctx, accountKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	if account.Inventory == nil {
		account.Inventory = []models.Item{}
	}
	return &account, nil
}

func (s *RedisStore) setAccount(ctx context.Context, userID int64, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := s.client.Set(ctx, accountKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set account: %w", err)
	}
	return nil
}
