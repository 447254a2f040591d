package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sultanops/coinwallet/internal/repos/settings"
)

type settingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *settingsRepo {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := r.db.QueryRowContext(ctx, `
		SELECT value
		FROM settings
		WHERE key = $1
	`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", settings.ErrKeyNotFound
		}

		return "", fmt.Errorf("get setting: %w", err)
	}

	return value, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}

	return nil
}
