package catalog

import (
	"context"
	"errors"
)

var ErrProjectNotFound = errors.New("project not found")

// Project is a ready-made catalog item delivered after purchase.
// Payload is a file reference or a download link.
type Project struct {
	ID      int64
	Name    string
	Price   int64
	Payload string
}

type Projects interface {
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Add(ctx context.Context, name string, price int64, payload string) (int64, error)
	Delete(ctx context.Context, id int64) error
}
