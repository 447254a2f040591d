package ledger

import (
	"context"
	"database/sql"
	"time"
)

// Cause tags every balance mutation with why it happened.
type Cause string

const (
	CauseReferral         Cause = "REFERRAL"
	CauseTransferIn       Cause = "TRANSFER_IN"
	CauseTransferOut      Cause = "TRANSFER_OUT"
	CauseDeposit          Cause = "DEPOSIT"
	CauseWithdrawal       Cause = "WITHDRAWAL"
	CauseWithdrawalRefund Cause = "WITHDRAWAL_REFUND"
	CauseStatusPurchase   Cause = "STATUS_PURCHASE"
	CauseBonus            Cause = "BONUS"
	CauseWheel            Cause = "WHEEL"
	CauseProjectPurchase  Cause = "PROJECT_PURCHASE"
	CauseServiceOrder     Cause = "SERVICE_ORDER"
)

// Entry is one immutable row of the append-only transaction log.
// Amount is signed: positive = credit, negative = debit.
type Entry struct {
	ID        int64
	AccountID int64
	Amount    int64
	Cause     Cause
	Note      string
	CreatedAt time.Time
}

type Ledger interface {
	// Append must run inside the same transaction as the balance change it
	// records; the two commit or roll back together.
	Append(tx *sql.Tx, accountID, amount int64, cause Cause, note string) error
	History(ctx context.Context, accountID int64, limit int) ([]Entry, error)
	// SumForAccount is the reconciliation check: it must equal the stored
	// balance at all times.
	SumForAccount(ctx context.Context, accountID int64) (int64, error)
}
