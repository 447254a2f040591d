package pgtestutil

import (
	"strings"
	"testing"
)

func TestReplaceDBInDSN(t *testing.T) {
	out, err := ReplaceDBInDSN(defaultBaseDSN, "wallettest_foo")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "wallettest_foo") {
		t.Fatalf("db not replaced: %s", out)
	}
	if strings.Contains(out, "/postgres?") {
		t.Fatalf("old db name still present: %s", out)
	}
}

func TestBaseDSNOverride(t *testing.T) {
	t.Setenv("PG_TEST_DSN", "postgres://other:other@db:5432/postgres?sslmode=disable")
	if got := BaseDSN(); !strings.Contains(got, "@db:5432") {
		t.Fatalf("override ignored: %s", got)
	}
}

func TestSanitizeForPgIdent(t *testing.T) {
	got := sanitizeForPgIdent("Wallet/Test Name:Sub\\Case")
	if strings.ContainsAny(got, "/ :\\") {
		t.Fatalf("unsanitized ident: %s", got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("ident not lowercased: %s", got)
	}

	long := sanitizeForPgIdent(strings.Repeat("a", 100))
	if len(long) > 63 {
		t.Fatalf("ident too long: %d", len(long))
	}
}
