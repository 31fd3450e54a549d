package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bipv/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if path != missing {
		t.Fatalf("expected resolved path %q, got %q", missing, path)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected default log format, got %q", cfg.Logging.Format)
	}
	if cfg.Finance.AnalysisYears != 25 {
		t.Fatalf("expected default analysis years, got %d", cfg.Finance.AnalysisYears)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bipv.toml")
	content := `
[site]
latitude = 47.37
longitude = 8.54
altitude = 408.0
timezone_offset_hours = 1

[electricity]
import_rate = 0.28
feed_in_tariff = 0.10

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if cfg.Site.Latitude != 47.37 {
		t.Fatalf("expected latitude override, got %v", cfg.Site.Latitude)
	}
	if cfg.Electricity.ImportRate != 0.28 {
		t.Fatalf("expected import rate override, got %v", cfg.Electricity.ImportRate)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	// Untouched sections keep defaults.
	if cfg.PV.PerformanceRatio != 0.80 {
		t.Fatalf("expected default performance ratio, got %v", cfg.PV.PerformanceRatio)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "latitude",
			content: "[site]\nlatitude = 120.0\n",
			want:    "site.latitude",
		},
		{
			name:    "import rate",
			content: "[electricity]\nimport_rate = -0.1\n",
			want:    "electricity.import_rate",
		},
		{
			name:    "heartbeat ordering",
			content: "[workflow]\nheartbeat_interval = 60\nheartbeat_timeout = 30\n",
			want:    "heartbeat_timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bipv.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkspaceDir, cfg.Paths.LogDir, cfg.Paths.ReportDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
	if got := cfg.DatabasePath(); got != filepath.Join(cfg.Paths.WorkspaceDir, "bipv.db") {
		t.Fatalf("unexpected database path %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[site]") {
		t.Fatal("expected sample config to contain a [site] section")
	}
}
