package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
	"github.com/sultanops/coinwallet/internal/services/wallet"
)

func promptf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// advance runs one transition. The caller holds the session lock.
func (e *Engine) advance(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	switch s.state {
	case stateTransferRecipient:
		return e.transferRecipient(ctx, accountID, s, input)
	case stateTransferAmount:
		return e.transferAmount(ctx, accountID, s, input)
	case stateTransferConfirm:
		return e.transferConfirm(ctx, accountID, s, input)
	case stateDepositAmount:
		return e.depositAmount(s, input)
	case stateDepositReceipt:
		return e.depositReceipt(ctx, accountID, s, input)
	case stateWithdrawAmount:
		return e.withdrawAmount(ctx, s, input)
	case stateWithdrawDetails:
		return e.withdrawDetails(s, input)
	case stateWithdrawConfirm:
		return e.withdrawConfirm(ctx, accountID, s, input)
	case stateTierLevel:
		return e.tierLevel(ctx, s, input)
	case stateTierConfirm:
		return e.tierConfirm(ctx, accountID, s, input)
	case stateOrderKind:
		return e.orderKind(ctx, s, input)
	case stateOrderDesc:
		return e.orderDesc(ctx, s, input)
	case stateOrderConfirm:
		return e.orderConfirm(ctx, accountID, s, input)
	default:
		s.reset(e.now())
		return Reply{Text: "Something went wrong, starting over.", Done: true}, nil
	}
}

// finish resets the session and marks the reply terminal.
func (e *Engine) finish(s *session, r Reply) (Reply, error) {
	s.reset(e.now())
	r.Done = true

	return r, nil
}

// fail maps a core error to a plain-language terminal reply. Unknown
// errors propagate so the transport can log them and apologize.
func (e *Engine) fail(s *session, err error) (Reply, error) {
	msg, known := userMessage(err)
	if !known {
		s.reset(e.now())
		return Reply{}, err
	}

	return e.finish(s, Reply{Text: msg})
}

func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, accounts.ErrInsufficientFunds):
		return "Not enough coins on your balance.", true
	case errors.Is(err, accounts.ErrAccountNotFound):
		return "Account not found.", true
	case errors.Is(err, wallet.ErrInvalidRecipient):
		return "You cannot send coins to that account.", true
	case errors.Is(err, wallet.ErrInvalidAmount):
		return "That amount is not valid.", true
	case errors.Is(err, wallet.ErrLimitExceeded):
		return "The amount is over your tier's transfer limit.", true
	case errors.Is(err, wallet.ErrBelowMinimum):
		return "The amount is below the minimum.", true
	case errors.Is(err, wallet.ErrAlreadyAtOrAboveTier):
		return "You already hold this tier or a higher one.", true
	case errors.Is(err, wallet.ErrAlreadyTerminal):
		return "This request was already settled.", true
	default:
		return "", false
	}
}

// --- transfer ---

func (e *Engine) transferRecipient(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	recipient, err := strconv.ParseInt(input, 10, 64)
	if err != nil || recipient <= 0 {
		return Reply{Text: "The recipient ID must be a number. Try again:"}, nil
	}

	if recipient == accountID {
		return Reply{Text: "You cannot send coins to yourself. Enter another ID:"}, nil
	}

	_, err = e.core.Balance(ctx, recipient)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return Reply{Text: "No such account. Enter another ID:"}, nil
		}

		return Reply{}, err
	}

	s.recipient = recipient
	s.state = stateTransferAmount

	return Reply{Text: "Enter the amount to send:"}, nil
}

func (e *Engine) transferAmount(ctx context.Context, _ int64, s *session, input string) (Reply, error) {
	amount, ok := parseAmount(input)
	if !ok {
		return Reply{Text: "Enter a positive whole number:"}, nil
	}

	s.amount = amount
	s.state = stateTransferConfirm

	fee := e.core.CommissionFee(ctx, amount)

	return Reply{Text: promptf(
		"Send %d coins to account %d?\nCommission: %d\nTotal charge: %d\n(yes/no)",
		amount, s.recipient, fee, amount+fee)}, nil
}

func (e *Engine) transferConfirm(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	switch {
	case isYes(input):
		res, err := e.core.Transfer(ctx, accountID, s.recipient, s.amount)
		if err != nil {
			return e.fail(s, err)
		}

		return e.finish(s, Reply{Text: promptf(
			"Sent %d coins to account %d (fee %d). Your balance: %d.",
			res.Amount, s.recipient, res.Fee, res.SenderBalance)})
	case isNo(input):
		return e.finish(s, Reply{Text: "Transfer cancelled."})
	default:
		return Reply{Text: "Please answer yes or no."}, nil
	}
}

// --- deposit ---

func (e *Engine) depositAmount(s *session, input string) (Reply, error) {
	amount, ok := parseAmount(input)
	if !ok {
		return Reply{Text: "Enter a positive whole number:"}, nil
	}

	s.amount = amount
	s.state = stateDepositReceipt

	return Reply{Text: "Now send the payment receipt (a reference or photo):"}, nil
}

func (e *Engine) depositReceipt(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	if input == "" {
		return Reply{Text: "A receipt is required. Send it, or cancel:"}, nil
	}

	req, err := e.core.RequestDeposit(ctx, accountID, s.amount, input)
	if err != nil {
		return e.fail(s, err)
	}

	return e.finish(s, Reply{
		Text: "Sent to the admin for review. You will be notified.",
		AdminReview: &AdminReview{
			Kind:      ReviewDeposit,
			RequestID: req.ID,
			AccountID: accountID,
			Amount:    req.Amount,
			Details:   req.ReceiptRef,
		},
	})
}

// --- withdrawal ---

func (e *Engine) withdrawAmount(ctx context.Context, s *session, input string) (Reply, error) {
	amount, ok := parseAmount(input)
	if !ok {
		return Reply{Text: "Enter a positive whole number:"}, nil
	}

	if min := e.core.WithdrawMinimum(ctx); amount < min {
		return Reply{Text: promptf("The minimum withdrawal is %d. Enter a larger amount:", min)}, nil
	}

	s.amount = amount
	s.state = stateWithdrawDetails

	return Reply{Text: "Enter your payout details (card number and name):"}, nil
}

func (e *Engine) withdrawDetails(s *session, input string) (Reply, error) {
	if input == "" {
		return Reply{Text: "Payout details are required. Enter them, or cancel:"}, nil
	}

	s.details = input
	s.state = stateWithdrawConfirm

	return Reply{Text: promptf(
		"Withdraw %d coins to:\n%s\nThe coins are held until the admin pays out. (yes/no)",
		s.amount, s.details)}, nil
}

func (e *Engine) withdrawConfirm(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	switch {
	case isYes(input):
		w, err := e.core.RequestWithdrawal(ctx, accountID, s.amount, s.details)
		if err != nil {
			return e.fail(s, err)
		}

		return e.finish(s, Reply{
			Text: promptf("Withdrawal of %d coins requested; the amount is on hold.", w.Amount),
			AdminReview: &AdminReview{
				Kind:      ReviewWithdrawal,
				RequestID: w.ID,
				AccountID: accountID,
				Amount:    w.Amount,
				Details:   w.PayoutDetails,
			},
		})
	case isNo(input):
		return e.finish(s, Reply{Text: "Withdrawal cancelled."})
	default:
		return Reply{Text: "Please answer yes or no."}, nil
	}
}

// --- tier purchase ---

func (e *Engine) tierMenu(ctx context.Context) (Reply, error) {
	price1, err := e.core.TierPrice(ctx, 1)
	if err != nil {
		return Reply{}, err
	}

	price2, err := e.core.TierPrice(ctx, 2)
	if err != nil {
		return Reply{}, err
	}

	return Reply{Text: promptf(
		"Which tier do you want for 30 days?\n1 - Pro (%d coins)\n2 - Elite (%d coins)",
		price1, price2)}, nil
}

func (e *Engine) tierLevel(ctx context.Context, s *session, input string) (Reply, error) {
	level, err := strconv.Atoi(input)
	if err != nil {
		return Reply{Text: "Enter 1 or 2:"}, nil
	}

	price, perr := e.core.TierPrice(ctx, level)
	if perr != nil {
		return Reply{Text: "Enter 1 or 2:"}, nil
	}

	s.tierLevel = level
	s.state = stateTierConfirm

	return Reply{Text: promptf("Buy tier %d for %d coins (30 days)? (yes/no)", level, price)}, nil
}

func (e *Engine) tierConfirm(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	switch {
	case isYes(input):
		status, err := e.core.PurchaseTier(ctx, accountID, s.tierLevel)
		if err != nil {
			return e.fail(s, err)
		}

		return e.finish(s, Reply{Text: promptf(
			"%s tier active until %s.",
			status.Name, status.Expiry.Format("2006-01-02 15:04"))})
	case isNo(input):
		return e.finish(s, Reply{Text: "Purchase cancelled."})
	default:
		return Reply{Text: "Please answer yes or no."}, nil
	}
}

// --- service order ---

func (e *Engine) orderKind(ctx context.Context, s *session, input string) (Reply, error) {
	price, err := e.core.ServicePrice(ctx, input)
	if err != nil {
		return Reply{Text: "Choose one of: web, apk, bot."}, nil
	}

	s.orderKind = input
	s.state = stateOrderDesc

	return Reply{Text: promptf("A %s order costs %d coins. Describe the task:", input, price)}, nil
}

func (e *Engine) orderDesc(ctx context.Context, s *session, input string) (Reply, error) {
	if input == "" {
		return Reply{Text: "The description cannot be empty. Describe the task:"}, nil
	}

	s.details = input
	s.state = stateOrderConfirm

	price, err := e.core.ServicePrice(ctx, s.orderKind)
	if err != nil {
		return Reply{}, err
	}

	return Reply{Text: promptf("Place the %s order for %d coins? (yes/no)", s.orderKind, price)}, nil
}

func (e *Engine) orderConfirm(ctx context.Context, accountID int64, s *session, input string) (Reply, error) {
	switch {
	case isYes(input):
		price, err := e.core.OrderService(ctx, accountID, s.orderKind, s.details)
		if err != nil {
			return e.fail(s, err)
		}

		return e.finish(s, Reply{Text: promptf(
			"Order placed, %d coins charged. The admin will contact you.", price)})
	case isNo(input):
		return e.finish(s, Reply{Text: "Order cancelled."})
	default:
		return Reply{Text: "Please answer yes or no."}, nil
	}
}

func parseAmount(input string) (int64, bool) {
	amount, err := strconv.ParseInt(input, 10, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}

	return amount, true
}
