package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
)

func (r *accountsRepo) Get(ctx context.Context, id int64) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, balance, tier_level, tier_expiry, referrer_id, last_bonus_at, created_at
		FROM accounts
		WHERE id = $1
	`, id)

	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account: %w", err)
	}

	return acct, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*accounts.Account, error) {
	var (
		acct        accounts.Account
		tierExpiry  sql.NullTime
		referrerID  sql.NullInt64
		lastBonusAt sql.NullTime
	)

	err := row.Scan(&acct.ID, &acct.Balance, &acct.TierLevel, &tierExpiry,
		&referrerID, &lastBonusAt, &acct.CreatedAt)
	if err != nil {
		return nil, err
	}

	if tierExpiry.Valid {
		acct.TierExpiry = &tierExpiry.Time
	}
	if referrerID.Valid {
		acct.ReferrerID = &referrerID.Int64
	}
	if lastBonusAt.Valid {
		acct.LastBonusAt = &lastBonusAt.Time
	}

	return &acct, nil
}
