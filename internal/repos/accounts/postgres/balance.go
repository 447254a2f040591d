package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
)

func (r *accountsRepo) Exists(tx *sql.Tx, id int64) error {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return accounts.ErrAccountNotFound
	}

	return nil
}

func (r *accountsRepo) LockAndGet(tx *sql.Tx, id int64) (*accounts.Account, error) {
	row := tx.QueryRow(`
		SELECT id, balance, tier_level, tier_expiry, referrer_id, last_bonus_at, created_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id)

	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("lock/get account: %w", err)
	}

	return acct, nil
}

func (r *accountsRepo) IncreaseBalance(tx *sql.Tx, id int64, amount int64) error {
	_, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("increase balance: %w", err)
	}

	return nil
}

func (r *accountsRepo) DecreaseBalance(tx *sql.Tx, id int64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
	`, id, amount)
	if err != nil {
		return fmt.Errorf("decrease balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientFunds
	}

	return nil
}
