// Package wallet is the ledger core: every balance-affecting operation
// lives here and runs as one database transaction, so a balance change
// and its log entry commit or roll back together.
package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sultanops/coinwallet/internal/infra/metrics"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	"github.com/sultanops/coinwallet/internal/repos/accounts"
	pgaccounts "github.com/sultanops/coinwallet/internal/repos/accounts/postgres"
	"github.com/sultanops/coinwallet/internal/repos/catalog"
	pgcatalog "github.com/sultanops/coinwallet/internal/repos/catalog/postgres"
	"github.com/sultanops/coinwallet/internal/repos/deposits"
	pgdeposits "github.com/sultanops/coinwallet/internal/repos/deposits/postgres"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	pgledger "github.com/sultanops/coinwallet/internal/repos/ledger/postgres"
	"github.com/sultanops/coinwallet/internal/repos/withdrawals"
	pgwithdrawals "github.com/sultanops/coinwallet/internal/repos/withdrawals/postgres"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

// Notifier delivers best-effort messages through the outer transport.
// Implementations must not block; the ledger commit never waits on them.
type Notifier interface {
	NotifyAccount(accountID int64, text string)
	NotifyAdmin(text string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyAccount(int64, string) {}
func (nopNotifier) NotifyAdmin(string)          {}

type Service struct {
	db          *sql.DB
	accounts    accounts.Accounts
	ledger      ledger.Ledger
	withdrawals withdrawals.Withdrawals
	deposits    deposits.Deposits
	catalog     catalog.Projects
	prices      pricing.Source
	notifier    Notifier

	now     func() time.Time
	randInt func(n int) int
}

func New(db *sql.DB, prices pricing.Source) *Service {
	return &Service{
		db:          db,
		accounts:    pgaccounts.New(db),
		ledger:      pgledger.New(db),
		withdrawals: pgwithdrawals.New(db),
		deposits:    pgdeposits.New(db),
		catalog:     pgcatalog.New(db),
		prices:      prices,
		notifier:    nopNotifier{},
		now:         time.Now,
		randInt:     rand.IntN,
	}
}

// SetNotifier wires the outer transport in after construction (the bot
// needs the service to exist first).
func (s *Service) SetNotifier(n Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// GetAccount returns the stored account row.
func (s *Service) GetAccount(ctx context.Context, id int64) (*accounts.Account, error) {
	return s.accounts.Get(ctx, id)
}

// Balance returns the current balance of an existing account.
func (s *Service) Balance(ctx context.Context, id int64) (int64, error) {
	acct, err := s.accounts.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	return acct.Balance, nil
}

// History returns the newest-first transaction log for an account.
func (s *Service) History(ctx context.Context, id int64, limit int) ([]ledger.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if _, err := s.accounts.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.ledger.History(ctx, id, limit)
}

// Reconcile reports the stored balance against the ledger sum. The two
// must be equal; the ops API exposes this for audits.
func (s *Service) Reconcile(ctx context.Context, id int64) (balance, ledgerSum int64, err error) {
	acct, err := s.accounts.Get(ctx, id)
	if err != nil {
		return 0, 0, err
	}

	sum, err := s.ledger.SumForAccount(ctx, id)
	if err != nil {
		return 0, 0, err
	}

	return acct.Balance, sum, nil
}

// AdminAdjust applies a signed delta on behalf of an operator. The
// account is created when missing, and the change goes through the
// ledger like any other mutation so reconciliation keeps holding.
func (s *Service) AdminAdjust(ctx context.Context, id, delta int64, note string) (int64, error) {
	if delta == 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := s.accounts.Create(tx, id, nil, s.now())
		if err != nil {
			return fmt.Errorf("ensure account: %w", err)
		}

		acct, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		if note == "" {
			note = "admin adjustment"
		}

		if delta > 0 {
			err = s.credit(tx, id, delta, ledger.CauseBonus, note)
		} else {
			err = s.debit(tx, id, -delta, ledger.CauseBonus, note)
		}
		if err != nil {
			return err
		}

		newBalance = acct.Balance + delta

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("admin adjust %d: %w", id, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseBonus)).Inc()

	return newBalance, nil
}

// Stats returns registration counters for the admin panel.
func (s *Service) Stats(ctx context.Context) (*accounts.Stats, error) {
	return s.accounts.Stats(ctx, s.now())
}

// credit adds amount to the balance and appends the matching log entry.
// Callers must hold the account row lock.
func (s *Service) credit(tx *sql.Tx, id, amount int64, cause ledger.Cause, note string) error {
	err := s.accounts.IncreaseBalance(tx, id, amount)
	if err != nil {
		return err
	}

	return s.ledger.Append(tx, id, amount, cause, note)
}

// debit removes amount (positive) from the balance, failing with
// ErrInsufficientFunds before any write when the funds are not there,
// and appends the matching negative log entry.
func (s *Service) debit(tx *sql.Tx, id, amount int64, cause ledger.Cause, note string) error {
	err := s.accounts.DecreaseBalance(tx, id, amount)
	if err != nil {
		return err
	}

	return s.ledger.Append(tx, id, -amount, cause, note)
}
