package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// appConfig holds daemon configuration sourced from environment variables.
// Engine secrets are required; everything else has a workable default.
type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`

	AccessSecret  string `env:"RENTAUTH_ACCESS_SECRET,required"`
	RefreshSecret string `env:"RENTAUTH_REFRESH_SECRET,required"`
	// CipherKeyHex is the hex-encoded 32-byte national-ID encryption key.
	CipherKeyHex string `env:"RENTAUTH_CIPHER_KEY,required"`

	AccessTokenTTL  time.Duration `env:"RENTAUTH_ACCESS_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"RENTAUTH_REFRESH_TTL" envDefault:"168h"`

	EnforceUniquePhone bool `env:"RENTAUTH_UNIQUE_PHONE" envDefault:"true"`

	// DatabaseURL selects the postgres store; when empty the redis store
	// at RedisAddr is used instead.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"ra"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
	// PublicBaseURL is the web root the mailed links point at.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	GoogleUserinfoURL string `env:"GOOGLE_USERINFO_URL"`
}

func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.cipherKey(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func (c appConfig) cipherKey() ([]byte, error) {
	key, err := hex.DecodeString(c.CipherKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode RENTAUTH_CIPHER_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("RENTAUTH_CIPHER_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (c appConfig) httpAddress() string {
	return ":" + c.HTTPPort
}

func (c appConfig) smtpConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
