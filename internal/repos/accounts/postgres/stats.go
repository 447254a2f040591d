package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/sultanops/coinwallet/internal/repos/accounts"
)

func (r *accountsRepo) Stats(ctx context.Context, now time.Time) (*accounts.Stats, error) {
	var stats accounts.Stats

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM accounts
	`,
		now.Add(-24*time.Hour),
		now.Add(-7*24*time.Hour),
		now.Add(-30*24*time.Hour),
	).Scan(&stats.Total, &stats.Day, &stats.Week, &stats.Month)
	if err != nil {
		return nil, fmt.Errorf("account stats: %w", err)
	}

	return &stats, nil
}
