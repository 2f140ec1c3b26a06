package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	ServerPort   string
	LogLevel     string
	StoreBackend string
	DataFile     string
	PaytableFile string
	DatabaseURL  string
	RedisURL     string

	TelegramToken  string
	AdminUserID    int64
	WebAppURL      string
	CasesWebAppURL string

	JWTSecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StoreBackend:   getEnv("STORE_BACKEND", BackendFile),
		DataFile:       getEnv("DATA_FILE", "users_data.json"),
		PaytableFile:   os.Getenv("PAYTABLE_FILE"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminUserID:    getEnvInt64("ADMIN_USER_ID", 0),
		WebAppURL:      os.Getenv("WEBAPP_URL"),
		CasesWebAppURL: os.Getenv("CASES_WEBAPP_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
	}

	switch cfg.StoreBackend {
	case BackendFile:
		if cfg.DataFile == "" {
			return nil, errors.New("DATA_FILE is required for the file backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for the redis backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	// Bot tokens look like "1234567890:ABC...". Catch a truncated paste
	// at startup instead of failing on the first API call.
	if cfg.TelegramToken != "" && len(strings.Split(cfg.TelegramToken, ":")) != 2 {
		return nil, errors.New("TELEGRAM_BOT_TOKEN has invalid format")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
