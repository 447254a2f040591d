package deposits

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("deposit request not found")
var ErrAlreadySettled = errors.New("deposit request already settled")

type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Request is a claimed top-up awaiting an admin verdict. It has no
// balance effect until approved.
type Request struct {
	ID         uuid.UUID
	AccountID  int64
	Amount     int64
	ReceiptRef string
	Status     Status
	CreatedAt  time.Time
	SettledAt  *time.Time
}

type Deposits interface {
	Insert(tx *sql.Tx, d *Request) error
	LockAndGet(tx *sql.Tx, id uuid.UUID) (*Request, error)
	Settle(tx *sql.Tx, id uuid.UUID, status Status, at time.Time) error
}
