package withdrawals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sultanops/coinwallet/internal/repos/withdrawals"
)

type withdrawalsRepo struct{ db *sql.DB }

func New(db *sql.DB) *withdrawalsRepo {
	return &withdrawalsRepo{db: db}
}

func (r *withdrawalsRepo) Insert(tx *sql.Tx, w *withdrawals.Withdrawal) error {
	_, err := tx.Exec(`
		INSERT INTO withdrawals (id, account_id, amount, payout_details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, w.ID, w.AccountID, w.Amount, w.PayoutDetails, string(w.Status), w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}

	return nil
}

func (r *withdrawalsRepo) LockAndGet(tx *sql.Tx, id uuid.UUID) (*withdrawals.Withdrawal, error) {
	var (
		w         withdrawals.Withdrawal
		settledAt sql.NullTime
	)

	err := tx.QueryRow(`
		SELECT id, account_id, amount, payout_details, status, created_at, settled_at
		FROM withdrawals
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&w.ID, &w.AccountID, &w.Amount, &w.PayoutDetails, &w.Status,
		&w.CreatedAt, &settledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, withdrawals.ErrNotFound
		}

		return nil, fmt.Errorf("lock/get withdrawal: %w", err)
	}

	if settledAt.Valid {
		w.SettledAt = &settledAt.Time
	}

	return &w, nil
}

func (r *withdrawalsRepo) Settle(tx *sql.Tx, id uuid.UUID, status withdrawals.Status, at time.Time) error {
	res, err := tx.Exec(`
		UPDATE withdrawals
		SET status = $2, settled_at = $3
		WHERE id = $1
		  AND status = 'pending'
	`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("settle withdrawal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return withdrawals.ErrAlreadySettled
	}

	return nil
}

func (r *withdrawalsRepo) ListPending(ctx context.Context, limit int) ([]withdrawals.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount, payout_details, status, created_at, settled_at
		FROM withdrawals
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending withdrawals: %w", err)
	}
	defer rows.Close()

	var list []withdrawals.Withdrawal

	for rows.Next() {
		var (
			w         withdrawals.Withdrawal
			settledAt sql.NullTime
		)

		err = rows.Scan(&w.ID, &w.AccountID, &w.Amount, &w.PayoutDetails,
			&w.Status, &w.CreatedAt, &settledAt)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}

		if settledAt.Valid {
			w.SettledAt = &settledAt.Time
		}

		list = append(list, w)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate withdrawals: %w", err)
	}

	return list, nil
}
