package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sultanops/coinwallet/internal/repos/catalog"
	"github.com/sultanops/coinwallet/internal/services/dialog"
	"github.com/sultanops/coinwallet/internal/services/pricing"
	"github.com/sultanops/coinwallet/internal/services/wallet"
)

func (b *Bot) showAdminMenu(chatID int64) {
	text := strings.Join([]string{
		"Admin commands:",
		"/stats - accounts and signups",
		"/pending - unsettled withdrawals",
		"/adjust <account> <delta> [note] - change a balance",
		"/prices - current price table",
		"/setprice <key> <value> - change a price",
		"/addproject <price> <name> | <payload> - add a catalog item",
		"/delproject <id> - remove a catalog item",
	}, "\n")
	b.send(chatID, text)
}

// handleAdminCommand runs admin-only slash commands. Returns false when
// the command is not one of ours so the caller can fall through.
func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) bool {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "stats":
		b.showStats(ctx)
	case "pending":
		b.showPendingWithdrawals(ctx)
	case "adjust":
		b.adjustBalance(ctx, args)
	case "prices":
		b.showPrices(ctx)
	case "setprice":
		b.setPrice(ctx, args)
	case "addproject":
		b.addProject(ctx, args)
	case "delproject":
		b.deleteProject(ctx, args)
	default:
		return false
	}

	return true
}

func (b *Bot) showStats(ctx context.Context) {
	stats, err := b.wallet.Stats(ctx)
	if err != nil {
		b.sendAdminError(err)
		return
	}

	b.NotifyAdmin(fmt.Sprintf(
		"Accounts: %d total\nNew today: %d\nNew this week: %d\nNew this month: %d",
		stats.Total, stats.Day, stats.Week, stats.Month,
	))
}

func (b *Bot) showPendingWithdrawals(ctx context.Context) {
	pending, err := b.wallet.PendingWithdrawals(ctx, 20)
	if err != nil {
		b.sendAdminError(err)
		return
	}

	if len(pending) == 0 {
		b.NotifyAdmin("No pending withdrawals.")
		return
	}

	for _, w := range pending {
		b.sendAdminReview(&dialog.AdminReview{
			Kind:      dialog.ReviewWithdrawal,
			RequestID: w.ID,
			AccountID: w.AccountID,
			Amount:    w.Amount,
			Details:   w.PayoutDetails,
		})
	}
}

func (b *Bot) adjustBalance(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.NotifyAdmin("Usage: /adjust <account> <delta> [note]")
		return
	}

	accountID, err1 := strconv.ParseInt(fields[0], 10, 64)
	delta, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil || delta == 0 {
		b.NotifyAdmin("Usage: /adjust <account> <delta> [note]")
		return
	}

	note := strings.Join(fields[2:], " ")
	if note == "" {
		note = "admin adjustment"
	}

	balance, err := b.wallet.AdminAdjust(ctx, accountID, delta, note)
	if err != nil {
		b.sendAdminError(err)
		return
	}

	b.NotifyAdmin(fmt.Sprintf("Account %d adjusted by %+d, balance now %d.", accountID, delta, balance))
}

func (b *Bot) showPrices(ctx context.Context) {
	var sb strings.Builder
	sb.WriteString("Price table:\n")
	for _, key := range pricing.Keys() {
		fmt.Fprintf(&sb, "%s = %d\n", key, b.prices.Int64(ctx, key))
	}
	b.NotifyAdmin(sb.String())
}

func (b *Bot) setPrice(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.NotifyAdmin("Usage: /setprice <key> <value>")
		return
	}

	value, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		b.NotifyAdmin("Usage: /setprice <key> <value>")
		return
	}

	if err := b.prices.Set(ctx, fields[0], value); err != nil {
		b.NotifyAdmin("Cannot set that: " + err.Error())
		return
	}
	b.NotifyAdmin(fmt.Sprintf("%s set to %d.", fields[0], value))
}

func (b *Bot) addProject(ctx context.Context, args string) {
	fields := strings.SplitN(args, " ", 2)
	if len(fields) != 2 {
		b.NotifyAdmin("Usage: /addproject <price> <name> | <payload>")
		return
	}

	price, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || price < 0 {
		b.NotifyAdmin("Usage: /addproject <price> <name> | <payload>")
		return
	}

	name, payload, _ := strings.Cut(fields[1], "|")
	name = strings.TrimSpace(name)
	payload = strings.TrimSpace(payload)
	if name == "" {
		b.NotifyAdmin("Project name is required.")
		return
	}

	id, err := b.wallet.AddProject(ctx, name, price, payload)
	if err != nil {
		b.sendAdminError(err)
		return
	}
	b.NotifyAdmin(fmt.Sprintf("Project %d added: %s (%d %s).", id, name, price, b.cfg.CurrencyName))
}

func (b *Bot) deleteProject(ctx context.Context, args string) {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		b.NotifyAdmin("Usage: /delproject <id>")
		return
	}

	if err := b.wallet.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProjectNotFound) {
			b.NotifyAdmin("No such project.")
			return
		}
		b.sendAdminError(err)
		return
	}
	b.NotifyAdmin(fmt.Sprintf("Project %d removed.", id))
}

// --- callbacks ---

// sendAdminReview pushes a settlement request to the admin with inline
// approve/reject buttons.
func (b *Bot) sendAdminReview(review *dialog.AdminReview) {
	var kindLabel, prefix string
	switch review.Kind {
	case dialog.ReviewDeposit:
		kindLabel, prefix = "Deposit", "dep"
	case dialog.ReviewWithdrawal:
		kindLabel, prefix = "Withdrawal", "wd"
	default:
		return
	}

	text := fmt.Sprintf("%s request from account %d: %d %s", kindLabel, review.AccountID, review.Amount, b.cfg.CurrencyName)
	if review.Details != "" {
		text += "\n" + review.Details
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", prefix+"_ok:"+review.RequestID.String()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", prefix+"_no:"+review.RequestID.String()),
		),
	)
	b.sendWithKeyboard(b.cfg.AdminID, text, kb)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			slog.Error("answering callback failed", "error", err)
		}
	}()

	data := query.Data

	if raw, ok := strings.CutPrefix(data, "proj:"); ok {
		b.buyProject(ctx, query.From.ID, raw)
		return
	}

	// Settlement callbacks are admin-only.
	if query.From.ID != b.cfg.AdminID {
		return
	}

	var kind dialog.ReviewKind
	var approve bool
	var raw string
	switch {
	case strings.HasPrefix(data, "dep_ok:"):
		kind, approve, raw = dialog.ReviewDeposit, true, data[len("dep_ok:"):]
	case strings.HasPrefix(data, "dep_no:"):
		kind, approve, raw = dialog.ReviewDeposit, false, data[len("dep_no:"):]
	case strings.HasPrefix(data, "wd_ok:"):
		kind, approve, raw = dialog.ReviewWithdrawal, true, data[len("wd_ok:"):]
	case strings.HasPrefix(data, "wd_no:"):
		kind, approve, raw = dialog.ReviewWithdrawal, false, data[len("wd_no:"):]
	default:
		return
	}

	requestID, err := uuid.Parse(raw)
	if err != nil {
		b.NotifyAdmin("Malformed settlement reference.")
		return
	}

	summary, err := b.dialogs.HandleAdminDecision(ctx, kind, requestID, approve)
	if err != nil {
		if errors.Is(err, wallet.ErrAlreadyTerminal) {
			b.NotifyAdmin("Already settled, nothing changed.")
			return
		}
		b.sendAdminError(err)
		return
	}
	b.NotifyAdmin(summary)
}

func (b *Bot) buyProject(ctx context.Context, accountID int64, raw string) {
	projectID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}

	res, err := b.wallet.PurchaseProject(ctx, accountID, projectID)
	if err != nil {
		if errors.Is(err, catalog.ErrProjectNotFound) {
			b.send(accountID, "That project is no longer available.")
			return
		}
		b.sendUserError(accountID, err)
		return
	}

	text := fmt.Sprintf("Purchased %s for %d %s.", res.Project.Name, res.Charged, b.cfg.CurrencyName)
	if res.Project.Payload != "" {
		text += "\n" + res.Project.Payload
	}
	b.send(accountID, text)
}

func (b *Bot) sendAdminError(err error) {
	slog.Error("admin action failed", "error", err)
	b.NotifyAdmin("Operation failed: " + err.Error())
}
