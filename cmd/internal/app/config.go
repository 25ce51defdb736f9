package app

import "time"

// Environment names the configuration profile a process runs under.
type Environment string

const (
	// Staging is the default profile for local development and tests.
	Staging Environment = "staging"
	// Production is the hardened profile.
	Production Environment = "production"
)

// Config contains all runtime configuration. It is built once at
// startup and passed by value into every component that needs it; no
// component reads ambient globals.
type Config struct {
	Env Environment

	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" or "pretty"

	// DataDir is the record store's base directory.
	DataDir string

	// DigestKey keys the identity digest. Production requires at least
	// 32 bytes (see ValidateSecurityConfig).
	DigestKey string

	// MaxChecks is the per-account check quota.
	MaxChecks int

	MaxBodyBytes int64

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// LoadConfig resolves configuration in three layers: the profile
// selected by UPTIME_ENV, the optional config file named by
// UPTIME_CONFIG, and finally individual UPTIME_* env vars.
func LoadConfig() (Config, error) {
	env := Environment(EnvString("UPTIME_ENV", string(Staging)))
	cfg := profileDefaults(env)

	if path := EnvString("UPTIME_CONFIG", ""); path != "" {
		fileCfg, err := loadConfigFile(path, env)
		if err != nil {
			return Config{}, err
		}
		fileCfg.applyTo(&cfg)
	}

	cfg.HTTPAddr = EnvString("UPTIME_HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogLevel = EnvString("UPTIME_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = EnvString("UPTIME_LOG_FORMAT", cfg.LogFormat)
	cfg.DataDir = EnvString("UPTIME_DATA_DIR", cfg.DataDir)
	cfg.DigestKey = EnvString("UPTIME_DIGEST_KEY", cfg.DigestKey)
	cfg.MaxChecks = EnvInt("UPTIME_MAX_CHECKS", cfg.MaxChecks)
	cfg.MaxBodyBytes = EnvInt64("UPTIME_MAX_BODY_BYTES", cfg.MaxBodyBytes)

	cfg.ReadHeaderTimeout = EnvDuration("UPTIME_HTTP_READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout)
	cfg.ReadTimeout = EnvDuration("UPTIME_HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = EnvDuration("UPTIME_HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = EnvDuration("UPTIME_HTTP_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.MaxHeaderBytes = EnvInt("UPTIME_HTTP_MAX_HEADER_BYTES", cfg.MaxHeaderBytes)

	return cfg, nil
}
