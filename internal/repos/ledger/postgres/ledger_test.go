package ledger

import (
	"context"
	"testing"

	"github.com/sultanops/coinwallet/internal/infra/pgtestutil"
	"github.com/sultanops/coinwallet/internal/repos/ledger"
)

func TestLedger_AppendHistorySum(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()

	const accountID = int64(701)
	pgtestutil.SeedAccount(t, db, accountID, 0)
	pgtestutil.SeedAccount(t, db, 702, 0)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	appends := []struct {
		amount int64
		cause  ledger.Cause
		note   string
	}{
		{100, ledger.CauseDeposit, ""},
		{-41, ledger.CauseTransferOut, "to 702 (fee 1)"},
		{5, ledger.CauseBonus, "clicker"},
	}
	for _, a := range appends {
		if err := repo.Append(tx, accountID, a.amount, a.cause, a.note); err != nil {
			t.Fatalf("append %v: %v", a, err)
		}
	}
	// Noise on another account must not leak into history or sums.
	if err := repo.Append(tx, 702, 40, ledger.CauseTransferIn, "from 701"); err != nil {
		t.Fatalf("append other: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	entries, err := repo.History(ctx, accountID, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history limit: want 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Cause != ledger.CauseBonus || entries[1].Cause != ledger.CauseTransferOut {
		t.Fatalf("history order wrong: %v", entries)
	}
	if entries[0].Note != "clicker" {
		t.Fatalf("note not stored: %q", entries[0].Note)
	}

	sum, err := repo.SumForAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 64 {
		t.Fatalf("sum: want 64, got %d", sum)
	}
}

func TestLedger_SumForAccount_EmptyIsZero(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	sum, err := repo.SumForAccount(context.Background(), 999)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 0 {
		t.Fatalf("empty sum: want 0, got %d", sum)
	}
}

