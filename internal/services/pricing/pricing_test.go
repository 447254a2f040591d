package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/sultanops/coinwallet/internal/repos/settings"
)

type memSettings map[string]string

func (m memSettings) Get(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", settings.ErrKeyNotFound
	}

	return v, nil
}

func (m memSettings) Upsert(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func TestInt64_DefaultsAndSeeding(t *testing.T) {
	t.Parallel()

	store := memSettings{}
	svc := New(store)
	ctx := context.Background()

	if got := svc.Int64(ctx, KeyWithdrawMin); got != 10 {
		t.Fatalf("default withdraw min: want 10, got %d", got)
	}

	// The miss seeded the default so admins see the row.
	if raw := store[KeyWithdrawMin]; raw != "10" {
		t.Fatalf("default not seeded: %q", raw)
	}

	store[KeyWithdrawMin] = "25"
	if got := svc.Int64(ctx, KeyWithdrawMin); got != 25 {
		t.Fatalf("stored value ignored: got %d", got)
	}

	// Garbage in the table falls back to the default.
	store[KeyCommissionPct] = "lots"
	if got := svc.Int64(ctx, KeyCommissionPct); got != 1 {
		t.Fatalf("malformed value: want default 1, got %d", got)
	}

	if got := svc.Int64(ctx, "no_such_key"); got != 0 {
		t.Fatalf("unknown key: want 0, got %d", got)
	}
}

func TestSet_RejectsUnknownAndNegative(t *testing.T) {
	t.Parallel()

	store := memSettings{}
	svc := New(store)
	ctx := context.Background()

	if err := svc.Set(ctx, KeyDailyBonus, 7); err != nil {
		t.Fatalf("set known: %v", err)
	}
	if got := svc.Int64(ctx, KeyDailyBonus); got != 7 {
		t.Fatalf("set not applied: %d", got)
	}

	if err := svc.Set(ctx, "taco_price", 1); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("unknown key: want ErrUnknownKey, got %v", err)
	}
	if err := svc.Set(ctx, KeyDailyBonus, -1); err == nil {
		t.Fatal("negative value accepted")
	}
}

func TestKeys_CoverAllDefaults(t *testing.T) {
	t.Parallel()

	keys := Keys()
	if len(keys) != len(defaults) {
		t.Fatalf("Keys() lists %d, defaults has %d", len(keys), len(defaults))
	}
	for _, k := range keys {
		if _, ok := defaults[k]; !ok {
			t.Fatalf("listed key %q has no default", k)
		}
	}
}
