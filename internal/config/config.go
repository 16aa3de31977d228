package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type WaitlistConfig struct {
	WebhookURL      string `env:"WAITLIST_WEBHOOK_URL"`
	SheetId         string `env:"WAITLIST_SHEET_ID"`
	SheetRange      string `env:"WAITLIST_SHEET_RANGE" envDefault:"Waitlist!A:H"`
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
}

type Config struct {
	ServerAddr      string        `env:"ADDR" envDefault:":8000"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	SigningSecret   string        `env:"SIGNING_KEY"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	LandingOnly     bool          `env:"LANDING_ONLY" envDefault:"false"`
	SeedRooms       bool          `env:"SEED_ROOMS" envDefault:"true"`
	Debug           bool          `env:"DEBUG" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Waitlist        WaitlistConfig

	SigningKey []byte `env:"-"`
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	if base64Secret == "" {
		return nil, errors.New("empty secret")
	}
	return base64.StdEncoding.DecodeString(base64Secret)
}

// Load reads an optional dotenv file into the environment and parses the
// configuration from it.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}
	if c.SigningSecret == "" {
		return fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(c.SigningSecret)
	if err != nil {
		return fmt.Errorf("decode signing secret: %w", err)
	}
	c.SigningKey = signingKey

	if c.Waitlist.SheetId != "" && c.Waitlist.CredentialsFile == "" {
		return fmt.Errorf("waitlist sheet requires GOOGLE_CREDENTIALS_FILE")
	}

	return nil
}
