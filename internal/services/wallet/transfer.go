package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sultanops/coinwallet/internal/infra/metrics"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	"github.com/sultanops/coinwallet/internal/repos/accounts"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

// TransferResult reports what a completed transfer moved: the recipient
// received Amount, the sender was charged Amount+Fee.
type TransferResult struct {
	Amount        int64
	Fee           int64
	SenderBalance int64
}

// fee = amount * rate% rounded down, floor 1 coin, charged to the
// sender on top of the stated amount.
func commission(amount, ratePct int64) int64 {
	fee := amount * ratePct / 100
	if fee < 1 {
		fee = 1
	}

	return fee
}

// CommissionFee previews the fee a transfer of amount would carry at the
// current rate.
func (s *Service) CommissionFee(ctx context.Context, amount int64) int64 {
	return commission(amount, s.prices.Int64(ctx, pricing.KeyCommissionPct))
}

// WithdrawMinimum reads the current minimum withdrawal amount.
func (s *Service) WithdrawMinimum(ctx context.Context) int64 {
	return s.prices.Int64(ctx, pricing.KeyWithdrawMin)
}

// Transfer moves amount from sender to recipient as one atomic unit:
// both row locks are taken in ascending account-id order, then the debit,
// credit and both log entries commit together or not at all.
func (s *Service) Transfer(ctx context.Context, sender, recipient, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if recipient == sender {
		return nil, ErrInvalidRecipient
	}

	fee := commission(amount, s.prices.Int64(ctx, pricing.KeyCommissionPct))
	total := amount + fee

	var senderBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var senderAcct *accounts.Account

		first, second := sender, recipient
		if first > second {
			first, second = second, first
		}

		for _, id := range []int64{first, second} {
			acct, err := s.accounts.LockAndGet(tx, id)
			if err != nil {
				if id == recipient && errors.Is(err, accounts.ErrAccountNotFound) {
					return ErrInvalidRecipient
				}

				return err
			}

			if id == sender {
				senderAcct = acct
			}
		}

		limit := EffectiveTier(senderAcct, s.now()).TransferLimit
		if amount > limit {
			return ErrLimitExceeded
		}

		if senderAcct.Balance < total {
			return accounts.ErrInsufficientFunds
		}

		err := s.debit(tx, sender, total, ledger.CauseTransferOut,
			fmt.Sprintf("to %d (fee %d)", recipient, fee))
		if err != nil {
			return err
		}

		err = s.credit(tx, recipient, amount, ledger.CauseTransferIn,
			fmt.Sprintf("from %d", sender))
		if err != nil {
			return err
		}

		senderBalance = senderAcct.Balance - total

		return nil
	})
	if err != nil {
		if isValidationErr(err) {
			metrics.RejectedOps.WithLabelValues("transfer").Inc()
		}

		return nil, fmt.Errorf("transfer %d -> %d: %w", sender, recipient, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseTransferOut)).Inc()
	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseTransferIn)).Inc()

	s.notifier.NotifyAccount(recipient,
		fmt.Sprintf("You received %d coins from account %d.", amount, sender))

	return &TransferResult{Amount: amount, Fee: fee, SenderBalance: senderBalance}, nil
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRecipient) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrBelowMinimum) ||
		errors.Is(err, accounts.ErrInsufficientFunds)
}
