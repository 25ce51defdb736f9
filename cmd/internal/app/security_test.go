package app

import (
	"strings"
	"testing"
)

func TestValidateSecurityConfigStaging(t *testing.T) {
	cfg := profileDefaults(Staging)
	// Short dev key is fine outside production.
	if err := ValidateSecurityConfig(cfg); err != nil {
		t.Fatalf("staging: %v", err)
	}
}

func TestValidateSecurityConfigProduction(t *testing.T) {
	cfg := profileDefaults(Production)

	if err := ValidateSecurityConfig(cfg); err == nil {
		t.Fatal("production with empty digest key must be rejected")
	}

	cfg.DigestKey = "too-short"
	if err := ValidateSecurityConfig(cfg); err == nil {
		t.Fatal("production with short digest key must be rejected")
	}

	cfg.DigestKey = strings.Repeat("k", 32)
	if err := ValidateSecurityConfig(cfg); err != nil {
		t.Fatalf("production with 32-byte key: %v", err)
	}
}
