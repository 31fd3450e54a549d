package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkspaceDir string `toml:"workspace_dir"`
	LogDir       string `toml:"log_dir"`
	ReportDir    string `toml:"report_dir"`
}

// Site contains the building site parameters shared by all projects unless
// overridden at project creation.
type Site struct {
	Latitude            float64 `toml:"latitude"`
	Longitude           float64 `toml:"longitude"`
	Altitude            float64 `toml:"altitude"`
	TimezoneOffsetHours int     `toml:"timezone_offset_hours"`
	Albedo              float64 `toml:"albedo"`
	MeanAirTempC        float64 `toml:"mean_air_temp_c"`
	MeanHumidityPercent float64 `toml:"mean_humidity_percent"`
}

// Electricity contains tariff configuration used by yield balancing and the
// financial evaluation.
type Electricity struct {
	ImportRate       float64 `toml:"import_rate"`
	FeedInTariff     float64 `toml:"feed_in_tariff"`
	AnnualEscalation float64 `toml:"annual_escalation"`
}

// Finance contains the cash-flow projection parameters.
type Finance struct {
	DiscountRate    float64 `toml:"discount_rate"`
	AnalysisYears   int     `toml:"analysis_years"`
	OMRate          float64 `toml:"om_rate"`
	DegradationRate float64 `toml:"degradation_rate"`
	Budget          float64 `toml:"budget"`
}

// PV contains facade candidate filtering and yield modeling parameters.
type PV struct {
	PerformanceRatio  float64 `toml:"performance_ratio"`
	MinElementArea    float64 `toml:"min_element_area"`
	IncludeNorth      bool    `toml:"include_north"`
	DefaultGlassRatio float64 `toml:"default_glass_ratio"`
}

// Workflow contains pipeline timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for bipv.
//
// Configuration sections by subsystem:
//   - Paths: workspace, log, and report directories
//   - Site: building location and climate parameters
//   - Electricity: import/export tariffs and escalation
//   - Finance: discounting, analysis period, O&M, budget
//   - PV: candidate filtering and performance assumptions
//   - Workflow: pipeline polling intervals and timeouts
//   - Logging: log format, level, and retention
type Config struct {
	Paths       Paths       `toml:"paths"`
	Site        Site        `toml:"site"`
	Electricity Electricity `toml:"electricity"`
	Finance     Finance     `toml:"finance"`
	PV          PV          `toml:"pv"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bipv/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/bipv/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bipv.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.Paths.LogDir, c.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the element registry database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.WorkspaceDir, "bipv.db")
}

// LockPath returns the location of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkspaceDir, "bipv.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
