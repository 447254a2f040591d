package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (r *accountsRepo) SetTier(tx *sql.Tx, id int64, level int, expiry time.Time) error {
	_, err := tx.Exec(`
		UPDATE accounts
		SET tier_level = $2, tier_expiry = $3
		WHERE id = $1
	`, id, level, expiry)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}

	return nil
}

// ClearExpiredTier is the lazy write-back half of tier expiry. The WHERE
// guard makes it idempotent and a no-op when the tier was renewed between
// the read and this call.
func (r *accountsRepo) ClearExpiredTier(ctx context.Context, id int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET tier_level = 0, tier_expiry = NULL
		WHERE id = $1
		  AND tier_expiry IS NOT NULL
		  AND tier_expiry <= $2
	`, id, now)
	if err != nil {
		return fmt.Errorf("clear expired tier: %w", err)
	}

	return nil
}

func (r *accountsRepo) SetLastBonusAt(tx *sql.Tx, id int64, at time.Time) error {
	_, err := tx.Exec(`
		UPDATE accounts
		SET last_bonus_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("set last bonus at: %w", err)
	}

	return nil
}
