package accounts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/sultanops/coinwallet/internal/infra/pgtestutil"
)

func TestAccounts_ClearExpiredTier_Guard(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()
	now := time.Now().UTC()

	const id = int64(301)
	pgtestutil.SeedAccount(t, db, id, 0)

	// Active tier survives the clear.
	withTx(t, db, func(tx *sql.Tx) error {
		return repo.SetTier(tx, id, 1, now.Add(time.Hour))
	})
	if err := repo.ClearExpiredTier(ctx, id, now); err != nil {
		t.Fatalf("clear active: %v", err)
	}
	acct, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acct.TierLevel != 1 || acct.TierExpiry == nil {
		t.Fatalf("active tier cleared: level=%d expiry=%v", acct.TierLevel, acct.TierExpiry)
	}

	// Expired tier gets reset, and a repeat clear stays a no-op.
	withTx(t, db, func(tx *sql.Tx) error {
		return repo.SetTier(tx, id, 2, now.Add(-time.Minute))
	})
	for range 2 {
		if err := repo.ClearExpiredTier(ctx, id, now); err != nil {
			t.Fatalf("clear expired: %v", err)
		}
	}
	acct, err = repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acct.TierLevel != 0 || acct.TierExpiry != nil {
		t.Fatalf("expired tier not cleared: level=%d expiry=%v", acct.TierLevel, acct.TierExpiry)
	}
}
