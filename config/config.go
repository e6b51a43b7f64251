package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	DatabaseURL string `env:"DATABASE_URL,required,unset" validate:"required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"25" validate:"min=1,max=500"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"5"  validate:"min=0,ltefield=DBMaxConns"`

	JWTSecret      string        `env:"JWT_SECRET,required,unset"      validate:"required,min=32"`
	JWTTTL         time.Duration `env:"JWT_TTL"    envDefault:"1h"     validate:"min=1m"`
	JWTLeeway      time.Duration `env:"JWT_LEEWAY" envDefault:"0s"     validate:"min=0,max=5m"`
	PasswordPepper string        `env:"PASSWORD_PEPPER,required,unset" validate:"required,min=16"`

	BcryptCost      int `env:"BCRYPT_COST"      envDefault:"10" validate:"min=4,max=31"`
	HashConcurrency int `env:"HASH_CONCURRENCY" envDefault:"0"  validate:"min=0"`

	RedisURL         string        `env:"REDIS_URL"          validate:"required_if=Env production"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"  validate:"min=1"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW"       envDefault:"15m" validate:"min=1s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto slog. Load has already rejected anything
// else.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
