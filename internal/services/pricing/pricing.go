// Package pricing exposes the mutable prices and rates of the wallet as
// an injected read interface. Every operation reads its price at call
// time; nothing is cached in process, so an admin change takes effect on
// the next operation.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sultanops/coinwallet/internal/repos/settings"
)

// Known setting keys with their fallback values.
const (
	KeyReferralReward = "referral_reward"
	KeyWithdrawMin    = "withdraw_min"
	KeyCommissionPct  = "commission_pct"
	KeyTierPrice1     = "tier_price_1"
	KeyTierPrice2     = "tier_price_2"
	KeyPriceWeb       = "price_web"
	KeyPriceAPK       = "price_apk"
	KeyPriceBot       = "price_bot"
	KeyWheelStake     = "wheel_stake"
	KeyDailyBonus     = "daily_bonus"
)

var defaults = map[string]int64{
	KeyReferralReward: 1,
	KeyWithdrawMin:    10,
	KeyCommissionPct:  1,
	KeyTierPrice1:     20,
	KeyTierPrice2:     75,
	KeyPriceWeb:       50,
	KeyPriceAPK:       100,
	KeyPriceBot:       30,
	KeyWheelStake:     5,
	KeyDailyBonus:     2,
}

var ErrUnknownKey = errors.New("unknown pricing key")

// Source is the read side handed to components that need a price.
type Source interface {
	Int64(ctx context.Context, key string) int64
}

type Service struct {
	settings settings.Settings
}

func New(st settings.Settings) *Service {
	return &Service{settings: st}
}

// Int64 returns the stored value for key, or its default when the key was
// never set or the stored value is unreadable. A miss seeds the default
// best-effort, matching the read-creates-default behavior admins expect
// from the settings table.
func (s *Service) Int64(ctx context.Context, key string) int64 {
	def, known := defaults[key]
	if !known {
		slog.Warn("pricing read for unknown key", "key", key)
		return 0
	}

	raw, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, settings.ErrKeyNotFound) {
			serr := s.settings.Upsert(ctx, key, strconv.FormatInt(def, 10))
			if serr != nil {
				slog.Warn("seed default setting", "key", key, "error", serr)
			}
		} else {
			slog.Warn("read setting", "key", key, "error", err)
		}

		return def
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("malformed setting value", "key", key, "value", raw)
		return def
	}

	return v
}

// Set overwrites a known pricing key. Unknown keys are rejected so a typo
// in an admin flow cannot create orphan settings.
func (s *Service) Set(ctx context.Context, key string, value int64) error {
	_, known := defaults[key]
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if value < 0 {
		return fmt.Errorf("negative value for %s", key)
	}

	err := s.settings.Upsert(ctx, key, strconv.FormatInt(value, 10))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}

// Keys lists the known pricing keys, for the admin menu.
func Keys() []string {
	return []string{
		KeyReferralReward, KeyWithdrawMin, KeyCommissionPct,
		KeyTierPrice1, KeyTierPrice2,
		KeyPriceWeb, KeyPriceAPK, KeyPriceBot,
		KeyWheelStake, KeyDailyBonus,
	}
}
