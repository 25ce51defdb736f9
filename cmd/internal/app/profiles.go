package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// profileDefaults returns the built-in profile for env. Unknown
// environments fall back to staging, mirroring the service's original
// behavior of treating any unrecognized selector as staging.
func profileDefaults(env Environment) Config {
	base := Config{
		Env:       Staging,
		HTTPAddr:  "0.0.0.0:3000",
		LogLevel:  "debug",
		LogFormat: "pretty",
		DataDir:   ".data",
		// Dev-only key; production refuses to start without a real one.
		DigestKey:    "staging-insecure-digest-key",
		MaxChecks:    5,
		MaxBodyBytes: 1 << 20,

		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	if env == Production {
		base.Env = Production
		base.HTTPAddr = "0.0.0.0:8000"
		base.LogLevel = "info"
		base.LogFormat = "json"
		base.DigestKey = "" // must be provided via file or env
	}

	return base
}

// fileOverrides is one override section of the config file. Pointer
// fields distinguish "absent" from "set to zero".
type fileOverrides struct {
	HTTPAddr     *string `yaml:"http_addr,omitempty"`
	LogLevel     *string `yaml:"log_level,omitempty"`
	LogFormat    *string `yaml:"log_format,omitempty"`
	DataDir      *string `yaml:"data_dir,omitempty"`
	DigestKey    *string `yaml:"digest_key,omitempty"`
	MaxChecks    *int    `yaml:"max_checks,omitempty"`
	MaxBodyBytes *int64  `yaml:"max_body_bytes,omitempty"`
}

// fileConfig is the on-disk config layout: base values plus optional
// per-environment sections applied when the environment matches.
type fileConfig struct {
	fileOverrides `yaml:",inline"`

	Staging    *fileOverrides `yaml:"staging,omitempty"`
	Production *fileOverrides `yaml:"production,omitempty"`
}

func (o fileOverrides) applyTo(cfg *Config) {
	if o.HTTPAddr != nil {
		cfg.HTTPAddr = *o.HTTPAddr
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.LogFormat != nil {
		cfg.LogFormat = *o.LogFormat
	}
	if o.DataDir != nil {
		cfg.DataDir = *o.DataDir
	}
	if o.DigestKey != nil {
		cfg.DigestKey = *o.DigestKey
	}
	if o.MaxChecks != nil {
		cfg.MaxChecks = *o.MaxChecks
	}
	if o.MaxBodyBytes != nil {
		cfg.MaxBodyBytes = *o.MaxBodyBytes
	}
}

// loadConfigFile parses the YAML config file and flattens it for env:
// base values first, then the matching environment section.
func loadConfigFile(path string, env Environment) (fileOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileOverrides{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileOverrides{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	merged := fc.fileOverrides
	var section *fileOverrides
	switch env {
	case Production:
		section = fc.Production
	default:
		section = fc.Staging
	}
	if section != nil {
		mergeOverrides(&merged, *section)
	}
	return merged, nil
}

func mergeOverrides(dst *fileOverrides, src fileOverrides) {
	if src.HTTPAddr != nil {
		dst.HTTPAddr = src.HTTPAddr
	}
	if src.LogLevel != nil {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != nil {
		dst.LogFormat = src.LogFormat
	}
	if src.DataDir != nil {
		dst.DataDir = src.DataDir
	}
	if src.DigestKey != nil {
		dst.DigestKey = src.DigestKey
	}
	if src.MaxChecks != nil {
		dst.MaxChecks = src.MaxChecks
	}
	if src.MaxBodyBytes != nil {
		dst.MaxBodyBytes = src.MaxBodyBytes
	}
}
