package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/sultanops/coinwallet/internal/infra/metrics"
	"github.com/sultanops/coinwallet/internal/infra/pgutils"
	"github.com/sultanops/coinwallet/internal/repos/accounts"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

// tierDuration is the fixed membership window. A purchase always starts a
// fresh window; remaining time is never extended or stacked.
const tierDuration = 30 * 24 * time.Hour

// TierParams are the per-level limits and rates. Level 0 is the base tier
// applied to untiered accounts and to accounts whose membership expired.
type TierParams struct {
	Level           int
	Name            string
	TransferLimit   int64
	ClickReward     int64
	BonusMultiplier int64
	DiscountPct     int64
}

var tierTable = map[int]TierParams{
	0: {Level: 0, Name: "Basic", TransferLimit: 25, ClickReward: 1, BonusMultiplier: 1, DiscountPct: 0},
	1: {Level: 1, Name: "Pro", TransferLimit: 250, ClickReward: 2, BonusMultiplier: 2, DiscountPct: 50},
	2: {Level: 2, Name: "Elite", TransferLimit: 2500, ClickReward: 3, BonusMultiplier: 3, DiscountPct: 100},
}

var tierPriceKeys = map[int]string{
	1: pricing.KeyTierPrice1,
	2: pricing.KeyTierPrice2,
}

// TierByLevel returns the static parameters for a level, falling back to
// the base tier for unknown levels.
func TierByLevel(level int) TierParams {
	p, ok := tierTable[level]
	if !ok {
		return tierTable[0]
	}

	return p
}

// EffectiveTier computes the tier an account snapshot actually holds at
// now. An expired membership reads as level 0 regardless of the stored
// level; no write happens here.
func EffectiveTier(acct *accounts.Account, now time.Time) TierParams {
	if acct.TierLevel == 0 {
		return tierTable[0]
	}

	if acct.TierExpiry != nil && !acct.TierExpiry.After(now) {
		return tierTable[0]
	}

	return TierByLevel(acct.TierLevel)
}

// TierStatus is the effective tier of an account plus its expiry, when
// one is still running.
type TierStatus struct {
	TierParams
	Expiry *time.Time
}

// Tier reports the account's effective tier. Reading an expired tier
// schedules the idempotent write-back that resets the stored fields; the
// reader never waits on it.
func (s *Service) Tier(ctx context.Context, id int64) (*TierStatus, error) {
	acct, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eff := EffectiveTier(acct, now)

	if acct.TierLevel > 0 && eff.Level == 0 {
		go func() {
			err := s.accounts.ClearExpiredTier(context.Background(), id, now)
			if err != nil {
				slog.Warn("tier expiry write-back failed", "account", id, "error", err)
			}
		}()

		return &TierStatus{TierParams: eff}, nil
	}

	status := &TierStatus{TierParams: eff}
	if eff.Level > 0 {
		status.Expiry = acct.TierExpiry
	}

	return status, nil
}

// TierPrice reads the current price of a purchasable level.
func (s *Service) TierPrice(ctx context.Context, level int) (int64, error) {
	key, ok := tierPriceKeys[level]
	if !ok {
		return 0, ErrTierNotFound
	}

	return s.prices.Int64(ctx, key), nil
}

// PurchaseTier debits the tier price and assigns the level with a fresh
// 30-day expiry, all in one transaction. Buying a level at or below the
// effective one is rejected; there is no extension of remaining time.
func (s *Service) PurchaseTier(ctx context.Context, id int64, level int) (*TierStatus, error) {
	price, err := s.TierPrice(ctx, level)
	if err != nil {
		return nil, err
	}

	var expiry time.Time

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acct, err := s.accounts.LockAndGet(tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if EffectiveTier(acct, now).Level >= level {
			return ErrAlreadyAtOrAboveTier
		}

		expiry = now.Add(tierDuration)

		err = s.debit(tx, id, price, ledger.CauseStatusPurchase,
			fmt.Sprintf("%s tier for 30 days", TierByLevel(level).Name))
		if err != nil {
			return err
		}

		return s.accounts.SetTier(tx, id, level, expiry)
	})
	if err != nil {
		return nil, fmt.Errorf("purchase tier %d for %d: %w", level, id, err)
	}

	metrics.LedgerMutations.WithLabelValues(string(ledger.CauseStatusPurchase)).Inc()

	return &TierStatus{TierParams: TierByLevel(level), Expiry: &expiry}, nil
}
