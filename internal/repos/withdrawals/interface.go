package withdrawals

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("withdrawal not found")
var ErrAlreadySettled = errors.New("withdrawal already settled")

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

// Withdrawal is money already debited from the account but not yet paid
// out externally. Exactly one transition away from pending is allowed.
type Withdrawal struct {
	ID            uuid.UUID
	AccountID     int64
	Amount        int64
	PayoutDetails string
	Status        Status
	CreatedAt     time.Time
	SettledAt     *time.Time
}

type Withdrawals interface {
	Insert(tx *sql.Tx, w *Withdrawal) error
	LockAndGet(tx *sql.Tx, id uuid.UUID) (*Withdrawal, error)
	// Settle flips a pending row to paid or rejected. The status guard in
	// the UPDATE makes a second settlement report ErrAlreadySettled.
	Settle(tx *sql.Tx, id uuid.UUID, status Status, at time.Time) error
	ListPending(ctx context.Context, limit int) ([]Withdrawal, error)
}
