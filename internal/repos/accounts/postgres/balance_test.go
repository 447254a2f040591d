package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/sultanops/coinwallet/internal/infra/pgtestutil"
	"github.com/sultanops/coinwallet/internal/repos/accounts"
)

func TestAccounts_DecreaseBalance_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		seedBalance int64
		seedMissing bool
		amount      int64
		wantBalance int64
		wantErr     error
	}{
		{
			name:        "sufficient_funds",
			seedBalance: 1000,
			amount:      250,
			wantBalance: 750,
		},
		{
			name:        "exact_to_zero",
			seedBalance: 300,
			amount:      300,
			wantBalance: 0,
		},
		{
			name:        "insufficient_funds_balance_unchanged",
			seedBalance: 200,
			amount:      300,
			wantBalance: 200,
			wantErr:     accounts.ErrInsufficientFunds,
		},
		{
			name:        "missing_account_treated_as_insufficient",
			seedMissing: true,
			amount:      100,
			wantErr:     accounts.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			repo := New(db)
			ctx := context.Background()

			const id = int64(201)
			if !tt.seedMissing {
				pgtestutil.SeedAccount(t, db, id, tt.seedBalance)
			}

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}

			err = repo.DecreaseBalance(tx, id, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("unexpected error: got %v, want %v", err, tt.wantErr)
			}

			if err := tx.Commit(); err != nil {
				t.Fatalf("commit: %v", err)
			}

			if tt.seedMissing {
				return
			}

			acct, err := repo.Get(ctx, id)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if acct.Balance != tt.wantBalance {
				t.Fatalf("balance: want %d, got %d", tt.wantBalance, acct.Balance)
			}
		})
	}
}

func TestAccounts_LockAndGet_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	_, err = repo.LockAndGet(tx, 424242)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func withTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		t.Fatalf("tx fn: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}
