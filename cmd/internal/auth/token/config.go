package token

import (
	"os"
	"time"
)

// Config defines runtime configuration for the token authority.
type Config struct {
	// TTL is the lifetime granted on issuance and on each extension.
	TTL time.Duration

	// IDLength is the length of generated token ids.
	IDLength int
}

// DefaultConfig returns the canonical defaults: one-hour tokens with
// 20-char ids.
func DefaultConfig() Config {
	return Config{
		TTL:      time.Hour,
		IDLength: 20,
	}
}

// LoadConfigFromEnv loads token configuration from environment
// variables on top of defaults.
//
// Optional:
//   - UPTIME_TOKEN_TTL (Go duration string)
//
// Returns ErrConfig if a provided value is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("UPTIME_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	return cfg, nil
}
