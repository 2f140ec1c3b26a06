package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mpetrov/chipsync/internal/config"
	"github.com/mpetrov/chipsync/internal/database"
	"github.com/mpetrov/chipsync/internal/gateway"
	"github.com/mpetrov/chipsync/internal/payout"
	"github.com/mpetrov/chipsync/internal/repositories"
	"github.com/mpetrov/chipsync/internal/services"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize ledger store")
	}
	defer store.Close()

	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load ledger store")
	}

	table := payout.DefaultTable()
	if cfg.PaytableFile != "" {
		table, err = payout.LoadTable(cfg.PaytableFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load paytable")
		}
	}
	engine := payout.NewEngine(table)

	events := services.NewMemoryEventLog(log)
	syncSvc := services.NewSyncService(store, events, log)
	adminSvc := services.NewAdminService(store, events, cfg.AdminUserID, log)
	gw := gateway.New(syncSvc, log)

	router := gateway.NewRouter(gw, adminSvc, engine, cfg.JWTSecret, log)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Str("port", cfg.ServerPort).Msg("starting http server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.TelegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to telegram")
		}
		log.Info().Str("username", bot.Self.UserName).Msg("telegram bot connected")

		tg := gateway.NewTelegram(bot, gw, adminSvc, cfg.WebAppURL, cfg.CasesWebAppURL, log)
		group.Go(func() error {
			if err := tg.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, running without the chat transport")
	}

	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("stopped gracefully")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repositories.LedgerStore, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return repositories.NewPostgresStore(pool), nil
	case config.BackendRedis:
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		return repositories.NewRedisStore(client, log), nil
	default:
		return repositories.NewFileStore(cfg.DataFile, log), nil
	}
}
