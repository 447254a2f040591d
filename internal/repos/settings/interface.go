package settings

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("setting not found")

// Settings is the mutable key-value store behind prices and rates.
// Values are read at the moment of each operation, never cached.
type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
}
