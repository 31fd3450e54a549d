package testsupport

import (
	"path/filepath"
	"testing"

	"bipv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 5

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSite overrides the site parameters on the test config.
func WithSite(latitude, longitude, altitude float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Site.Latitude = latitude
		cfg.Site.Longitude = longitude
		cfg.Site.Altitude = altitude
	}
}

// WithBudget sets the optimization budget on the test config.
func WithBudget(budget float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Finance.Budget = budget
	}
}
