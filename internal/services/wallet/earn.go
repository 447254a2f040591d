package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sultanops/coinwallet/internal/infra/metrics"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

const bonusCooldown = 24 * time.Hour

// wheelPrizes are stake multipliers with percentage weights (sum 100).
// Expected payout is just under the stake.
var wheelPrizes = []struct {
	Multiplier int64
	Weight     int
}{
	{0, 55},
	{1, 25},
	{2, 12},
	{5, 6},
	{10, 2},
}

// Click credits the tier's per-click reward.
func (s *Service) Click(ctx context.Context, id int64) (reward, newBalance int64, err error) {
	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acct, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		reward = EffectiveTier(acct, s.now()).ClickReward
		newBalance = acct.Balance + reward

		return s.credit(tx, id, reward, ledger.CauseBonus, "clicker")
	})
	if err != nil {
		return 0, 0, fmt.Errorf("click for %d: %w", id, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseBonus)).Inc()

	return reward, newBalance, nil
}

// SpinResult is one wheel round: the stake was debited, the prize (zero
// or a multiple of the stake) credited in the same transaction.
type SpinResult struct {
	Stake      int64
	Prize      int64
	NewBalance int64
}

// SpinWheel plays one round of the wheel. The stake debit and the prize
// credit are one atomic unit; a player can never lose the stake without
// being entered, or win without paying.
func (s *Service) SpinWheel(ctx context.Context, id int64) (*SpinResult, error) {
	stake := s.prices.Int64(ctx, pricing.KeyWheelStake)
	res := &SpinResult{Stake: stake}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acct, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		err = s.debit(tx, id, stake, ledger.CauseWheel, "wheel stake")
		if err != nil {
			return err
		}

		res.Prize = stake * s.spinMultiplier()
		res.NewBalance = acct.Balance - stake + res.Prize

		if res.Prize > 0 {
			return s.credit(tx, id, res.Prize, ledger.CauseWheel, "wheel prize")
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("spin wheel for %d: %w", id, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseWheel)).Inc()

	return res, nil
}

func (s *Service) spinMultiplier() int64 {
	roll := s.randInt(100)

	for _, p := range wheelPrizes {
		if roll < p.Weight {
			return p.Multiplier
		}

		roll -= p.Weight
	}

	return 0
}

// ClaimDailyBonus credits the daily base amount times the tier
// multiplier, at most once per 24 hours.
func (s *Service) ClaimDailyBonus(ctx context.Context, id int64) (amount, newBalance int64, err error) {
	base := s.prices.Int64(ctx, pricing.KeyDailyBonus)

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acct, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if acct.LastBonusAt != nil && now.Sub(*acct.LastBonusAt) < bonusCooldown {
			return ErrBonusAlreadyClaimed
		}

		amount = base * EffectiveTier(acct, now).BonusMultiplier
		newBalance = acct.Balance + amount

		err = s.credit(tx, id, amount, ledger.CauseBonus, "daily bonus")
		if err != nil {
			return err
		}

		return s.accounts.SetLastBonusAt(tx, id, now)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("daily bonus for %d: %w", id, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseBonus)).Inc()

	return amount, newBalance, nil
}
