// Package bot is the Telegram front of the wallet. It owns no money
// semantics: every command is routed either straight to the wallet core
// (single-shot actions) or into the dialog engine (multi-turn flows).
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sultanops/coinwallet/internal/config"
	"github.com/sultanops/coinwallet/internal/services/dialog"
	"github.com/sultanops/coinwallet/internal/services/pricing"
	"github.com/sultanops/coinwallet/internal/services/wallet"
)

const sessionMaxAge = 30 * time.Minute

type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     config.TelegramConfig
	wallet  *wallet.Service
	dialogs *dialog.Engine
	prices  *pricing.Service
}

func New(cfg config.TelegramConfig, svc *wallet.Service, prices *pricing.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating bot api: %w", err)
	}

	b := &Bot{
		api:     api,
		cfg:     cfg,
		wallet:  svc,
		dialogs: dialog.New(svc),
		prices:  prices,
	}

	// Post-commit notifications from the wallet core go out through the
	// same transport.
	svc.SetNotifier(b)

	return b, nil
}

// Run consumes updates until ctx is cancelled. Each update is handled on
// its own goroutine; DB row locks serialize the money paths.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("bot authorized", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	sweep := time.NewTicker(10 * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()

		case <-sweep.C:
			if n := b.dialogs.SweepIdle(sessionMaxAge); n > 0 {
				slog.Info("swept idle dialog sessions", "count", n)
			}

		case update, ok := <-updates:
			if !ok {
				return nil
			}

			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in update handler", "panic", r)
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// --- wallet.Notifier ---

func (b *Bot) NotifyAccount(id int64, text string) {
	b.send(id, text)
}

func (b *Bot) NotifyAdmin(text string) {
	b.send(b.cfg.AdminID, text)
}

// --- send helpers ---

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("sending message failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("sending message failed", "chat_id", chatID, "error", err)
	}
}
