package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sultanops/coinwallet/internal/repos/ledger"
)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Append(tx *sql.Tx, accountID, amount int64, cause ledger.Cause, note string) error {
	_, err := tx.Exec(`
		INSERT INTO ledger_entries (account_id, amount, cause, note)
		VALUES ($1, $2, $3, $4)
	`, accountID, amount, string(cause), note)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}

	return nil
}

func (r *ledgerRepo) History(ctx context.Context, accountID int64, limit int) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount, cause, note, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry

	for rows.Next() {
		var e ledger.Entry

		err = rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Cause, &e.Note, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		entries = append(entries, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

func (r *ledgerRepo) SumForAccount(ctx context.Context, accountID int64) (int64, error) {
	var sum int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE account_id = $1
	`, accountID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum entries: %w", err)
	}

	return sum, nil
}
