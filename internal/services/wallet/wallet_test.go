package wallet

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sultanops/coinwallet/internal/infra/pgtestutil"
	"github.com/sultanops/coinwallet/internal/repos/accounts"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
	"github.com/sultanops/coinwallet/internal/services/pricing"
)

// staticPrices pins the price table so tests do not depend on the
// settings table contents.
type staticPrices map[string]int64

func (p staticPrices) Int64(_ context.Context, key string) int64 { return p[key] }

var testPrices = staticPrices{
	pricing.KeyReferralReward: 1,
	pricing.KeyWithdrawMin:    10,
	pricing.KeyCommissionPct:  1,
	pricing.KeyTierPrice1:     20,
	pricing.KeyTierPrice2:     75,
	pricing.KeyPriceWeb:       50,
	pricing.KeyPriceAPK:       100,
	pricing.KeyPriceBot:       30,
	pricing.KeyWheelStake:     5,
	pricing.KeyDailyBonus:     2,
}

var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	svc := New(db, testPrices)
	svc.now = func() time.Time { return testClock }

	return svc, db
}

func mustBalance(t *testing.T, svc *Service, id int64) int64 {
	t.Helper()

	bal, err := svc.Balance(context.Background(), id)
	if err != nil {
		t.Fatalf("balance of %d: %v", id, err)
	}

	return bal
}

func setTier(t *testing.T, svc *Service, id int64, level int) {
	t.Helper()

	tx, err := svc.db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	if err := svc.accounts.SetTier(tx, id, level, testClock.Add(tierDuration)); err != nil {
		tx.Rollback()
		t.Fatalf("set tier: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestRegister_ReferralRewardPaidOnce(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, 10, nil)
	if err != nil || !created {
		t.Fatalf("register referrer: created=%v err=%v", created, err)
	}

	referrer := int64(10)
	created, err = svc.Register(ctx, 11, &referrer)
	if err != nil || !created {
		t.Fatalf("register invitee: created=%v err=%v", created, err)
	}

	if got := mustBalance(t, svc, 10); got != 1 {
		t.Fatalf("referrer balance: want 1, got %d", got)
	}

	// Re-registration must not pay again.
	created, err = svc.Register(ctx, 11, &referrer)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if created {
		t.Fatal("re-register: want created=false")
	}
	if got := mustBalance(t, svc, 10); got != 1 {
		t.Fatalf("referrer balance after repeat: want 1, got %d", got)
	}

	history, err := svc.History(ctx, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Cause != ledger.CauseReferral {
		t.Fatalf("want exactly one referral entry, got %v", history)
	}
}

func TestRegister_SelfAndUnknownReferrerIgnored(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	self := int64(20)
	if _, err := svc.Register(ctx, 20, &self); err != nil {
		t.Fatalf("self-referral register: %v", err)
	}
	if got := mustBalance(t, svc, 20); got != 0 {
		t.Fatalf("self-referral paid: %d", got)
	}

	ghost := int64(999)
	if _, err := svc.Register(ctx, 21, &ghost); err != nil {
		t.Fatalf("ghost-referrer register: %v", err)
	}
	acct, err := svc.GetAccount(ctx, 21)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acct.ReferrerID != nil {
		t.Fatalf("unknown referrer recorded: %v", *acct.ReferrerID)
	}
}

func TestAdminAdjust_CreatesAndMoves(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	// Crediting an unseen account registers it first.
	bal, err := svc.AdminAdjust(ctx, 30, 100, "promo")
	if err != nil {
		t.Fatalf("adjust up: %v", err)
	}
	if bal != 100 {
		t.Fatalf("after credit: want 100, got %d", bal)
	}

	bal, err = svc.AdminAdjust(ctx, 30, -40, "correction")
	if err != nil {
		t.Fatalf("adjust down: %v", err)
	}
	if bal != 60 {
		t.Fatalf("after debit: want 60, got %d", bal)
	}

	// Debiting below zero is refused and leaves the balance alone.
	_, err = svc.AdminAdjust(ctx, 30, -100, "too much")
	if !errors.Is(err, accounts.ErrInsufficientFunds) {
		t.Fatalf("overdraw: want ErrInsufficientFunds, got %v", err)
	}
	if got := mustBalance(t, svc, 30); got != 60 {
		t.Fatalf("after refused debit: want 60, got %d", got)
	}
}

func TestReconcile_MatchesAfterActivity(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminAdjust(ctx, 40, 100, "seed"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := svc.Click(ctx, 40); err != nil {
		t.Fatalf("click: %v", err)
	}

	balance, ledgerSum, err := svc.Reconcile(ctx, 40)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if balance != ledgerSum {
		t.Fatalf("drift: balance=%d ledger=%d", balance, ledgerSum)
	}
	if balance != 101 {
		t.Fatalf("want 101, got %d", balance)
	}
}
