package testsupport

import (
	"path/filepath"
	"testing"

	"labeld/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLeaseTimeout overrides the lease window on the test config.
func WithLeaseTimeout(minutes int) ConfigOption {
	return func(c *config.Config) {
		c.Lease.TimeoutMinutes = minutes
	}
}

// WithAPIToken sets the bearer token required by the API on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(c *config.Config) {
		c.Paths.APIToken = token
	}
}
