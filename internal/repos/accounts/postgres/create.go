package accounts

import (
	"database/sql"
	"fmt"
	"time"
)

func (r *accountsRepo) Create(tx *sql.Tx, id int64, referrerID *int64, now time.Time) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO accounts (id, balance, referrer_id, created_at)
		VALUES ($1, 0, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, referrerID, now)
	if err != nil {
		return false, fmt.Errorf("insert account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
