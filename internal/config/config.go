package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type TelegramConfig struct {
	Token        string `env:"BOT_TOKEN"`
	AdminID      int64  `env:"BOT_ADMIN_ID"`
	CurrencyName string `env:"CURRENCY_NAME" envDefault:"coins"`
	CardDetails  string `env:"PAYMENT_CARD" envDefault:""`
}
