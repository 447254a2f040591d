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

// Register creates the account if missing and pays the referral reward on
// first creation. Repeated calls are no-ops and never re-credit the
// referrer.
func (s *Service) Register(ctx context.Context, id int64, referrerID *int64) (bool, error) {
	var (
		created bool
		reward  int64
		ref     *int64
	)

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ref = referrerID
		if ref != nil {
			if *ref == id {
				ref = nil
			} else if err := s.accounts.Exists(tx, *ref); err != nil {
				if !errors.Is(err, accounts.ErrAccountNotFound) {
					return fmt.Errorf("check referrer: %w", err)
				}
				ref = nil
			}
		}

		var err error
		created, err = s.accounts.Create(tx, id, ref, s.now())
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		if created && ref != nil {
			reward = s.prices.Int64(ctx, pricing.KeyReferralReward)
			if reward > 0 {
				err = s.credit(tx, *ref, reward, ledger.CauseReferral,
					fmt.Sprintf("invited account %d", id))
				if err != nil {
					return fmt.Errorf("referral reward: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register account %d: %w", id, err)
	}

	if created && ref != nil && reward > 0 {
		metrics.LedgerMutations.WithLabelValues(string(ledger.CauseReferral)).Inc()
		s.notifier.NotifyAccount(*ref,
			fmt.Sprintf("You earned %d coins: account %d joined with your invite link.", reward, id))
	}

	return created, nil
}
