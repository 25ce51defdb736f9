package api

// Config controls API behavior limits.
type Config struct {
	// MaxChecks is the per-account check quota.
	MaxChecks int

	// MaxBodyBytes bounds request body reads.
	MaxBodyBytes int64
}

// DefaultConfig returns the canonical defaults.
func DefaultConfig() Config {
	return Config{
		MaxChecks:    5,
		MaxBodyBytes: 1 << 20, // 1 MiB
	}
}

// normalized fills zero fields with defaults so a partially built
// Config cannot disable the quota or the body limit.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxChecks <= 0 {
		c.MaxChecks = def.MaxChecks
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = def.MaxBodyBytes
	}
	return c
}
