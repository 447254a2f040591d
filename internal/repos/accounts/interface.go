package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrAccountNotFound = errors.New("account not found")

// Account is one wallet row. Balance is whole coins.
type Account struct {
	ID          int64
	Balance     int64
	TierLevel   int
	TierExpiry  *time.Time
	ReferrerID  *int64
	LastBonusAt *time.Time
	CreatedAt   time.Time
}

// Stats are the admin-panel registration counters.
type Stats struct {
	Total int
	Day   int
	Week  int
	Month int
}

type Accounts interface {
	Get(ctx context.Context, id int64) (*Account, error)
	// Create inserts the account if missing and reports whether a row was
	// actually created. Creating an existing account is a no-op.
	Create(tx *sql.Tx, id int64, referrerID *int64, now time.Time) (bool, error)
	Exists(tx *sql.Tx, id int64) error
	LockAndGet(tx *sql.Tx, id int64) (*Account, error)
	IncreaseBalance(tx *sql.Tx, id int64, amount int64) error
	DecreaseBalance(tx *sql.Tx, id int64, amount int64) error
	SetTier(tx *sql.Tx, id int64, level int, expiry time.Time) error
	// ClearExpiredTier resets tier fields iff the stored expiry has passed.
	// Safe to call repeatedly and from outside any transaction.
	ClearExpiredTier(ctx context.Context, id int64, now time.Time) error
	SetLastBonusAt(tx *sql.Tx, id int64, at time.Time) error
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}
