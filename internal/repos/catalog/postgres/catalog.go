package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sultanops/coinwallet/internal/repos/catalog"
)

type catalogRepo struct{ db *sql.DB }

func New(db *sql.DB) *catalogRepo {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) Get(ctx context.Context, id int64) (*catalog.Project, error) {
	var p catalog.Project

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, payload
		FROM projects
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrProjectNotFound
		}

		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

func (r *catalogRepo) List(ctx context.Context) ([]catalog.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, payload
		FROM projects
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var list []catalog.Project

	for rows.Next() {
		var p catalog.Project

		err = rows.Scan(&p.ID, &p.Name, &p.Price, &p.Payload)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}

		list = append(list, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return list, nil
}

func (r *catalogRepo) Add(ctx context.Context, name string, price int64, payload string) (int64, error) {
	var id int64

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO projects (name, price, payload)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, price, payload).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add project: %w", err)
	}

	return id, nil
}

func (r *catalogRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM projects
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	return nil
}
