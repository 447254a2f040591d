package envconf

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

type nested struct {
	DSN string `env:"TEST_ENVCONF_DSN"`
}

type sample struct {
	Port     uint16        `env:"TEST_ENVCONF_PORT" envDefault:"8080"`
	Level    slog.Level    `env:"TEST_ENVCONF_LEVEL" envDefault:"INFO"`
	Timeout  time.Duration `env:"TEST_ENVCONF_TIMEOUT" envDefault:"10s"`
	Optional string        `env:"TEST_ENVCONF_OPT" envDefault:""`
	Nested   nested
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("TEST_ENVCONF_DSN", "postgres://localhost/x")
	t.Setenv("TEST_ENVCONF_PORT", "9090")

	var cfg sample
	if err := Load(&cfg); err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("env should win over the default, got %d", cfg.Port)
	}
	if cfg.Level != slog.LevelInfo {
		t.Errorf("level default: got %v", cfg.Level)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("duration default: got %v", cfg.Timeout)
	}
	if cfg.Optional != "" {
		t.Errorf("empty default: got %q", cfg.Optional)
	}
	if cfg.Nested.DSN != "postgres://localhost/x" {
		t.Errorf("nested struct: got %q", cfg.Nested.DSN)
	}
}

func TestLoad_MissingWithoutDefaultFails(t *testing.T) {
	var cfg nested

	err := Load(&cfg)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("want ErrMissingRequired, got %v", err)
	}
}
