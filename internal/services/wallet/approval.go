package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sultanops/coinwallet/internal/infra/metrics"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	"github.com/sultanops/coinwallet/internal/repos/deposits"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	"github.com/sultanops/coinwallet/internal/repos/withdrawals"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

// RequestDeposit records a claimed top-up awaiting the admin verdict.
// Nothing is credited here; the balance moves only on approval.
func (s *Service) RequestDeposit(ctx context.Context, accountID, amount int64, receiptRef string) (*deposits.Request, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	req := &deposits.Request{
		ID:         uuid.New(),
		AccountID:  accountID,
		Amount:     amount,
		ReceiptRef: receiptRef,
		Status:     deposits.StatusRequested,
		CreatedAt:  s.now(),
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.accounts.Exists(tx, accountID)
		if err != nil {
			return err
		}

		return s.deposits.Insert(tx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("request deposit for %d: %w", accountID, err)
	}

	return req, nil
}

// SettleDeposit applies the admin verdict exactly once. A repeated
// decision on a settled request returns ErrAlreadyTerminal and has no
// balance effect.
func (s *Service) SettleDeposit(ctx context.Context, id uuid.UUID, approve bool) (*deposits.Request, error) {
	var req *deposits.Request

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		req, err = s.deposits.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		if req.Status != deposits.StatusRequested {
			return ErrAlreadyTerminal
		}

		status := deposits.StatusRejected
		if approve {
			status = deposits.StatusApproved
		}

		err = s.deposits.Settle(tx, id, status, s.now())
		if err != nil {
			return err
		}

		req.Status = status

		if approve {
			// Lock order is irrelevant here: a settlement touches one account.
			if _, err = s.accounts.LockAndGet(tx, req.AccountID); err != nil {
				return err
			}

			return s.credit(tx, req.AccountID, req.Amount, ledger.CauseDeposit, "top-up approved")
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle deposit %s: %w", id, err)
	}

	if approve {
		metrics.LedgerMutations.WithLabelValues(string(ledger.CauseDeposit)).Inc()
		metrics.Settlements.WithLabelValues("deposit", "approved").Inc()
		s.notifier.NotifyAccount(req.AccountID,
			fmt.Sprintf("Your top-up was approved: +%d coins.", req.Amount))
	} else {
		metrics.Settlements.WithLabelValues("deposit", "rejected").Inc()
		s.notifier.NotifyAccount(req.AccountID, "Your top-up was rejected.")
	}

	return req, nil
}

// RequestWithdrawal debits the amount immediately (optimistic hold) and
// opens a pending payout row for the admin to settle.
func (s *Service) RequestWithdrawal(ctx context.Context, accountID, amount int64, payoutDetails string) (*withdrawals.Withdrawal, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if amount < s.prices.Int64(ctx, pricing.KeyWithdrawMin) {
		return nil, ErrBelowMinimum
	}

	w := &withdrawals.Withdrawal{
		ID:            uuid.New(),
		AccountID:     accountID,
		Amount:        amount,
		PayoutDetails: payoutDetails,
		Status:        withdrawals.StatusPending,
		CreatedAt:     s.now(),
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.accounts.LockAndGet(tx, accountID)
		if err != nil {
			return err
		}

		err = s.debit(tx, accountID, amount, ledger.CauseWithdrawal, "withdrawal hold")
		if err != nil {
			return err
		}

		return s.withdrawals.Insert(tx, w)
	})
	if err != nil {
		return nil, fmt.Errorf("request withdrawal for %d: %w", accountID, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseWithdrawal)).Inc()

	return w, nil
}

// SettleWithdrawal finishes a pending payout: paid keeps the earlier
// debit, rejected refunds it. Either way the row becomes terminal and
// later decisions are refused.
func (s *Service) SettleWithdrawal(ctx context.Context, id uuid.UUID, paid bool) (*withdrawals.Withdrawal, error) {
	var w *withdrawals.Withdrawal

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		w, err = s.withdrawals.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		if w.Status != withdrawals.StatusPending {
			return ErrAlreadyTerminal
		}

		status := withdrawals.StatusRejected
		if paid {
			status = withdrawals.StatusPaid
		}

		err = s.withdrawals.Settle(tx, id, status, s.now())
		if err != nil {
			return err
		}

		w.Status = status

		if !paid {
			if _, err = s.accounts.LockAndGet(tx, w.AccountID); err != nil {
				return err
			}

			return s.credit(tx, w.AccountID, w.Amount, ledger.CauseWithdrawalRefund,
				"withdrawal rejected")
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle withdrawal %s: %w", id, err)
	}

	if paid {
		metrics.Settlements.WithLabelValues("withdrawal", "paid").Inc()
		s.notifier.NotifyAccount(w.AccountID,
			fmt.Sprintf("Your withdrawal of %d coins was paid out.", w.Amount))
	} else {
		metrics.LedgerMutations.WithLabelValues(string(ledger.CauseWithdrawalRefund)).Inc()
		metrics.Settlements.WithLabelValues("withdrawal", "rejected").Inc()
		s.notifier.NotifyAccount(w.AccountID,
			fmt.Sprintf("Your withdrawal was rejected; %d coins were returned.", w.Amount))
	}

	return w, nil
}

// PendingWithdrawals lists open payout requests for the admin panel.
func (s *Service) PendingWithdrawals(ctx context.Context, limit int) ([]withdrawals.Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	return s.withdrawals.ListPending(ctx, limit)
}
