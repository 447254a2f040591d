package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sultanops/coinwallet/internal/bot"
	"github.com/sultanops/coinwallet/internal/config"
	"github.com/sultanops/coinwallet/internal/infra/logging"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	pgsettings "github.com/sultanops/coinwallet/internal/repos/settings/postgres"
	"github.com/sultanops/coinwallet/internal/services/pricing"
	"github.com/sultanops/coinwallet/internal/services/wallet"
	"github.com/sultanops/coinwallet/pkg/envconf"
	"github.com/sultanops/coinwallet/pkg/shutdownqueue"
)

type botConfig struct {
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Postgres        config.PostgresConfig
	Telegram        config.TelegramConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running bot: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg := new(botConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return dbConns.Close()
	})

	prices := pricing.New(pgsettings.New(dbConns))
	walletSrv := wallet.New(dbConns, prices)

	b, err := bot.New(cfg.Telegram, walletSrv, prices)
	if err != nil {
		return fmt.Errorf("init bot: %w", err)
	}

	slog.Info("bot started")

	err = b.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}
