package deposits

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sultanops/coinwallet/internal/repos/deposits"
)

type depositsRepo struct{ db *sql.DB }

func New(db *sql.DB) *depositsRepo {
	return &depositsRepo{db: db}
}

func (r *depositsRepo) Insert(tx *sql.Tx, d *deposits.Request) error {
	_, err := tx.Exec(`
		INSERT INTO deposits (id, account_id, amount, receipt_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.AccountID, d.Amount, d.ReceiptRef, string(d.Status), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deposit request: %w", err)
	}

	return nil
}

func (r *depositsRepo) LockAndGet(tx *sql.Tx, id uuid.UUID) (*deposits.Request, error) {
	var (
		d         deposits.Request
		settledAt sql.NullTime
	)

	err := tx.QueryRow(`
		SELECT id, account_id, amount, receipt_ref, status, created_at, settled_at
		FROM deposits
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&d.ID, &d.AccountID, &d.Amount, &d.ReceiptRef, &d.Status,
		&d.CreatedAt, &settledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deposits.ErrNotFound
		}

		return nil, fmt.Errorf("lock/get deposit request: %w", err)
	}

	if settledAt.Valid {
		d.SettledAt = &settledAt.Time
	}

	return &d, nil
}

func (r *depositsRepo) Settle(tx *sql.Tx, id uuid.UUID, status deposits.Status, at time.Time) error {
	res, err := tx.Exec(`
		UPDATE deposits
		SET status = $2, settled_at = $3
		WHERE id = $1
		  AND status = 'requested'
	`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("settle deposit request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return deposits.ErrAlreadySettled
	}

	return nil
}
