package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN          string `env:"DATABASE_DSN,required=true"`
	RedisURL             string `env:"REDIS_URL,required=true"`
	APIPort              int    `env:"API_PORT,default=8080"`
	LogLevel             string `env:"LOG_LEVEL,default=info"`
	PaymentGraceMonths   int    `env:"PAYMENT_GRACE_MONTHS,default=2"`
	StaleAfterDays       int    `env:"STALE_AFTER_DAYS,default=60"`
	FireTimeoutSeconds   int    `env:"FIRE_TIMEOUT_SECONDS,default=30"`
	ShutdownGraceSeconds int    `env:"SHUTDOWN_GRACE_SECONDS,default=10"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.PaymentGraceMonths <= 0 {
		return nil, fmt.Errorf("PAYMENT_GRACE_MONTHS must be positive (got %d)", cfg.PaymentGraceMonths)
	}
	if cfg.StaleAfterDays <= 0 {
		return nil, fmt.Errorf("STALE_AFTER_DAYS must be positive (got %d)", cfg.StaleAfterDays)
	}
	return &cfg, nil
}

func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterDays) * 24 * time.Hour
}

func (c *Config) FireTimeout() time.Duration {
	return time.Duration(c.FireTimeoutSeconds) * time.Second
}

func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}
