package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
)

func TestSpinMultiplier_WeightBuckets(t *testing.T) {
	t.Parallel()

	svc := &Service{}

	// Weighted buckets over a 0..99 roll: 0-54 lose, 55-79 x1, 80-91 x2,
	// 92-97 x5, 98-99 x10.
	tests := []struct {
		roll int
		want int64
	}{
		{0, 0}, {54, 0},
		{55, 1}, {79, 1},
		{80, 2}, {91, 2},
		{92, 5}, {97, 5},
		{98, 10}, {99, 10},
	}

	for _, tt := range tests {
		svc.randInt = func(int) int { return tt.roll }
		if got := svc.spinMultiplier(); got != tt.want {
			t.Errorf("roll %d: want x%d, got x%d", tt.roll, tt.want, got)
		}
	}
}

func TestClick_PaysTierReward(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, 110, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	reward, balance, err := svc.Click(ctx, 110)
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if reward != 1 || balance != 1 {
		t.Fatalf("basic click: reward=%d balance=%d", reward, balance)
	}

	setTier(t, svc, 110, 2)

	reward, balance, err = svc.Click(ctx, 110)
	if err != nil {
		t.Fatalf("elite click: %v", err)
	}
	if reward != 3 || balance != 4 {
		t.Fatalf("elite click: reward=%d balance=%d", reward, balance)
	}
}

func TestSpinWheel_StakeAndPrizeAtomic(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminAdjust(ctx, 111, 10, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Losing round burns the 5-coin stake.
	svc.randInt = func(int) int { return 0 }
	res, err := svc.SpinWheel(ctx, 111)
	if err != nil {
		t.Fatalf("losing spin: %v", err)
	}
	if res.Prize != 0 || res.NewBalance != 5 {
		t.Fatalf("losing spin: %+v", res)
	}

	// Winning round pays stake times the multiplier.
	svc.randInt = func(int) int { return 99 }
	res, err = svc.SpinWheel(ctx, 111)
	if err != nil {
		t.Fatalf("winning spin: %v", err)
	}
	if res.Prize != 50 || res.NewBalance != 50 {
		t.Fatalf("winning spin: %+v", res)
	}
	if got := mustBalance(t, svc, 111); got != 50 {
		t.Fatalf("stored balance: want 50, got %d", got)
	}

	// No balance, no entry.
	if _, err := svc.Register(ctx, 112, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.SpinWheel(ctx, 112); !errors.Is(err, accounts.ErrInsufficientFunds) {
		t.Fatalf("broke spin: want ErrInsufficientFunds, got %v", err)
	}
}

func TestClaimDailyBonus_CooldownAndMultiplier(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, 113, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	amount, balance, err := svc.ClaimDailyBonus(ctx, 113)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if amount != 2 || balance != 2 {
		t.Fatalf("first claim: amount=%d balance=%d", amount, balance)
	}

	_, _, err = svc.ClaimDailyBonus(ctx, 113)
	if !errors.Is(err, ErrBonusAlreadyClaimed) {
		t.Fatalf("second claim: want ErrBonusAlreadyClaimed, got %v", err)
	}

	// Next day, with a Pro multiplier.
	setTier(t, svc, 113, 1)
	svc.now = func() time.Time { return testClock.Add(25 * time.Hour) }

	amount, balance, err = svc.ClaimDailyBonus(ctx, 113)
	if err != nil {
		t.Fatalf("next-day claim: %v", err)
	}
	if amount != 4 || balance != 6 {
		t.Fatalf("next-day claim: amount=%d balance=%d", amount, balance)
	}
}
