package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
	"github.com/sultanops/coinwallet/internal/services/dialog"
	"github.com/sultanops/coinwallet/internal/services/wallet"
)

// Main menu buttons. Free text that matches none of these is fed into the
// in-flight dialog, if any.
const (
	btnBalance  = "💰 Balance"
	btnClicker  = "👆 Clicker"
	btnBonus    = "🎁 Daily bonus"
	btnWheel    = "🎡 Wheel"
	btnTransfer = "🔁 Transfer"
	btnDeposit  = "📥 Deposit"
	btnWithdraw = "📤 Withdraw"
	btnTier     = "⭐ Status"
	btnServices = "🛠 Services"
	btnProjects = "📦 Projects"
	btnReferral = "👥 Invite"
	btnHistory  = "📜 History"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBalance),
			tgbotapi.NewKeyboardButton(btnClicker),
			tgbotapi.NewKeyboardButton(btnBonus),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnTransfer),
			tgbotapi.NewKeyboardButton(btnDeposit),
			tgbotapi.NewKeyboardButton(btnWithdraw),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnWheel),
			tgbotapi.NewKeyboardButton(btnTier),
			tgbotapi.NewKeyboardButton(btnServices),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnProjects),
			tgbotapi.NewKeyboardButton(btnReferral),
			tgbotapi.NewKeyboardButton(btnHistory),
		),
	)
	kb.ResizeKeyboard = true

	return kb
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}

	accountID := msg.From.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	switch msg.Text {
	case btnBalance:
		b.showBalance(ctx, accountID)
	case btnClicker:
		b.doClick(ctx, accountID)
	case btnBonus:
		b.doDailyBonus(ctx, accountID)
	case btnWheel:
		b.doSpin(ctx, accountID)
	case btnTier:
		b.startDialog(ctx, accountID, dialog.KindTier)
	case btnTransfer:
		b.startDialog(ctx, accountID, dialog.KindTransfer)
	case btnDeposit:
		b.startDialog(ctx, accountID, dialog.KindDeposit)
	case btnWithdraw:
		b.startDialog(ctx, accountID, dialog.KindWithdrawal)
	case btnServices:
		b.startDialog(ctx, accountID, dialog.KindOrder)
	case btnProjects:
		b.showProjects(ctx, accountID)
	case btnReferral:
		b.showReferral(accountID)
	case btnHistory:
		b.showHistory(ctx, accountID)
	default:
		b.feedDialog(ctx, accountID, msg.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	accountID := msg.From.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "cancel":
		reply := b.dialogs.Cancel(accountID)
		b.send(accountID, reply.Text)
	case "balance":
		b.showBalance(ctx, accountID)
	case "help":
		b.sendWithKeyboard(accountID, "Pick an action from the menu below. /cancel aborts the current operation.", mainKeyboard())
	case "admin":
		if accountID == b.cfg.AdminID {
			b.showAdminMenu(accountID)
		}
	default:
		if accountID == b.cfg.AdminID && b.handleAdminCommand(ctx, msg) {
			return
		}
		b.send(accountID, "Unknown command. /help shows the menu.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	accountID := msg.From.ID

	var referrerID *int64
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id != accountID {
			referrerID = &id
		}
	}

	created, err := b.wallet.Register(ctx, accountID, referrerID)
	if err != nil {
		slog.Error("registration failed", "account_id", accountID, "error", err)
		b.send(accountID, "Something went wrong, try again later.")
		return
	}

	greeting := fmt.Sprintf("Welcome back! Your %s wallet is ready.", b.cfg.CurrencyName)
	if created {
		greeting = fmt.Sprintf("Welcome! Your %s wallet has been created.", b.cfg.CurrencyName)
	}
	b.sendWithKeyboard(accountID, greeting, mainKeyboard())
}

// startDialog begins a multi-turn flow. Starting a new one silently
// abandons whatever flow was in flight.
func (b *Bot) startDialog(ctx context.Context, accountID int64, kind dialog.OpKind) {
	reply, err := b.dialogs.StartOperation(ctx, accountID, kind)
	if err != nil {
		slog.Error("starting dialog failed", "account_id", accountID, "kind", kind, "error", err)
		b.send(accountID, "Something went wrong, try again later.")
		return
	}

	text := reply.Text
	if kind == dialog.KindDeposit && b.cfg.CardDetails != "" {
		text += "\n\nPay to: " + b.cfg.CardDetails
	}
	b.send(accountID, text)
}

func (b *Bot) feedDialog(ctx context.Context, accountID int64, input string) {
	reply, err := b.dialogs.FeedInput(ctx, accountID, input)
	if err != nil {
		slog.Error("dialog input failed", "account_id", accountID, "error", err)
		b.send(accountID, "Something went wrong, try again later.")
		return
	}

	b.send(accountID, reply.Text)

	if reply.AdminReview != nil {
		b.sendAdminReview(reply.AdminReview)
	}
}

// --- single-shot actions ---

func (b *Bot) showBalance(ctx context.Context, accountID int64) {
	bal, err := b.wallet.Balance(ctx, accountID)
	if err != nil {
		b.sendUserError(accountID, err)
		return
	}

	tier, err := b.wallet.Tier(ctx, accountID)
	if err != nil {
		b.sendUserError(accountID, err)
		return
	}

	text := fmt.Sprintf("Balance: %d %s\nStatus: %s", bal, b.cfg.CurrencyName, tier.Name)
	if tier.Expiry != nil {
		text += fmt.Sprintf(" (until %s)", tier.Expiry.Format("2006-01-02"))
	}
	b.send(accountID, text)
}

func (b *Bot) doClick(ctx context.Context, accountID int64) {
	reward, balance, err := b.wallet.Click(ctx, accountID)
	if err != nil {
		b.sendUserError(accountID, err)
		return
	}

	b.send(accountID, fmt.Sprintf("+%d %s! Balance: %d.", reward, b.cfg.CurrencyName, balance))
}

func (b *Bot) doDailyBonus(ctx context.Context, accountID int64) {
	amount, balance, err := b.wallet.ClaimDailyBonus(ctx, accountID)
	if err != nil {
		if errors.Is(err, wallet.ErrBonusAlreadyClaimed) {
			b.send(accountID, "Daily bonus already claimed, come back tomorrow.")
			return
		}
		b.sendUserError(accountID, err)
		return
	}

	b.send(accountID, fmt.Sprintf("Daily bonus: +%d %s. Balance: %d.", amount, b.cfg.CurrencyName, balance))
}

func (b *Bot) doSpin(ctx context.Context, accountID int64) {
	res, err := b.wallet.SpinWheel(ctx, accountID)
	if err != nil {
		b.sendUserError(accountID, err)
		return
	}

	if res.Prize == 0 {
		b.send(accountID, fmt.Sprintf("The wheel took your %d %s stake. Balance: %d.", res.Stake, b.cfg.CurrencyName, res.NewBalance))
		return
	}
	b.send(accountID, fmt.Sprintf("The wheel pays %d %s on a %d stake! Balance: %d.", res.Prize, b.cfg.CurrencyName, res.Stake, res.NewBalance))
}

func (b *Bot) showReferral(accountID int64) {
	link := fmt.Sprintf("https://t.me/%s?start=%d", b.api.Self.UserName, accountID)
	b.send(accountID, "Invite friends and earn when they join:\n"+link)
}

func (b *Bot) showHistory(ctx context.Context, accountID int64) {
	entries, err := b.wallet.History(ctx, accountID, 10)
	if err != nil {
		b.sendUserError(accountID, err)
		return
	}

	if len(entries) == 0 {
		b.send(accountID, "No transactions yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent transactions:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %+d  %s", e.CreatedAt.Format("01-02 15:04"), e.Amount, e.Cause)
		if e.Note != "" {
			sb.WriteString("  " + e.Note)
		}
		sb.WriteByte('\n')
	}
	b.send(accountID, sb.String())
}

func (b *Bot) showProjects(ctx context.Context, accountID int64) {
	projects, err := b.wallet.Projects(ctx)
	if err != nil {
		b.sendUserError(accountID, err)
		return
	}

	if len(projects) == 0 {
		b.send(accountID, "No projects available right now.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(projects))
	for _, p := range projects {
		label := fmt.Sprintf("%s - %d %s", p.Name, p.Price, b.cfg.CurrencyName)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("proj:%d", p.ID)),
		))
	}
	b.sendWithKeyboard(accountID, "Available projects (status discount applies):", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) sendUserError(accountID int64, err error) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		b.send(accountID, "You are not registered yet, press /start first.")
	case errors.Is(err, accounts.ErrInsufficientFunds):
		b.send(accountID, "Not enough coins for that.")
	default:
		slog.Error("user action failed", "account_id", accountID, "error", err)
		b.send(accountID, "Something went wrong, try again later.")
	}
}
