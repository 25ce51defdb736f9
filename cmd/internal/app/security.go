package app

import (
	"errors"

	"uptime/cmd/identity"
)

// ValidateSecurityConfig enforces the startup security policy.
// Fail-fast is intentional: silently running production with the
// staging dev key would make every stored digest guessable.
func ValidateSecurityConfig(cfg Config) error {
	if cfg.Env != Production {
		return nil
	}

	// Measured in bytes (not runes) because the key is used as raw bytes.
	if len(cfg.DigestKey) < identity.MinDigestKeyBytes {
		return errors.New("security policy: production requires UPTIME_DIGEST_KEY of at least 32 bytes")
	}
	return nil
}
