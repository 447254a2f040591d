package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
)

func TestEffectiveTier_ExpiryReadsAsBasic(t *testing.T) {
	t.Parallel()

	now := testClock
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		level int
		exp   *time.Time
		want  int
	}{
		{"untiered", 0, nil, 0},
		{"active_pro", 1, &future, 1},
		{"expired_pro", 1, &past, 0},
		{"expires_exactly_now", 2, &now, 0},
		{"active_elite", 2, &future, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := &accounts.Account{TierLevel: tt.level, TierExpiry: tt.exp}
			if got := EffectiveTier(acct, now).Level; got != tt.want {
				t.Fatalf("want level %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTierByLevel_UnknownFallsBack(t *testing.T) {
	t.Parallel()

	if got := TierByLevel(9).Level; got != 0 {
		t.Fatalf("unknown level: want base tier, got %d", got)
	}
}

func TestPurchaseTier_UpgradeOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminAdjust(ctx, 90, 100, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	status, err := svc.PurchaseTier(ctx, 90, 1)
	if err != nil {
		t.Fatalf("buy pro: %v", err)
	}
	if status.Level != 1 || status.Expiry == nil {
		t.Fatalf("status: %+v", status)
	}
	if !status.Expiry.Equal(testClock.Add(tierDuration)) {
		t.Fatalf("expiry: want %v, got %v", testClock.Add(tierDuration), status.Expiry)
	}
	if got := mustBalance(t, svc, 90); got != 80 {
		t.Fatalf("after pro: want 80, got %d", got)
	}

	// Same level again is refused while the membership runs.
	_, err = svc.PurchaseTier(ctx, 90, 1)
	if !errors.Is(err, ErrAlreadyAtOrAboveTier) {
		t.Fatalf("rebuy: want ErrAlreadyAtOrAboveTier, got %v", err)
	}
	if got := mustBalance(t, svc, 90); got != 80 {
		t.Fatalf("after refused rebuy: want 80, got %d", got)
	}

	// Upgrading a running membership is allowed and restarts the window.
	status, err = svc.PurchaseTier(ctx, 90, 2)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if status.Level != 2 {
		t.Fatalf("after upgrade: %+v", status)
	}
	if got := mustBalance(t, svc, 90); got != 5 {
		t.Fatalf("after elite: want 5, got %d", got)
	}

	_, err = svc.PurchaseTier(ctx, 90, 1)
	if !errors.Is(err, ErrAlreadyAtOrAboveTier) {
		t.Fatalf("downgrade: want ErrAlreadyAtOrAboveTier, got %v", err)
	}
}

func TestPurchaseTier_ExpiredMembershipCanRebuy(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminAdjust(ctx, 91, 100, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.PurchaseTier(ctx, 91, 1); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// Jump past the expiry; the stale stored level must not block a rebuy.
	svc.now = func() time.Time { return testClock.Add(tierDuration + time.Hour) }

	if _, err := svc.PurchaseTier(ctx, 91, 1); err != nil {
		t.Fatalf("rebuy after expiry: %v", err)
	}
	if got := mustBalance(t, svc, 91); got != 60 {
		t.Fatalf("after two purchases: want 60, got %d", got)
	}
}

func TestPurchaseTier_Errors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, 92, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.PurchaseTier(ctx, 92, 7); !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("unknown level: want ErrTierNotFound, got %v", err)
	}
	if _, err := svc.PurchaseTier(ctx, 92, 1); !errors.Is(err, accounts.ErrInsufficientFunds) {
		t.Fatalf("broke account: want ErrInsufficientFunds, got %v", err)
	}
}

func TestTier_ReadResetsExpired(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminAdjust(ctx, 93, 50, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.PurchaseTier(ctx, 93, 1); err != nil {
		t.Fatalf("buy: %v", err)
	}

	svc.now = func() time.Time { return testClock.Add(tierDuration + time.Hour) }

	status, err := svc.Tier(ctx, 93)
	if err != nil {
		t.Fatalf("tier: %v", err)
	}
	if status.Level != 0 || status.Expiry != nil {
		t.Fatalf("expired read: %+v", status)
	}

	// The lazy write-back runs async; poll for the stored reset.
	deadline := time.Now().Add(2 * time.Second)
	for {
		acct, err := svc.GetAccount(ctx, 93)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if acct.TierLevel == 0 && acct.TierExpiry == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("write-back never landed: %+v", acct)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
