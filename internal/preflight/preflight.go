package preflight

import (
	"context"
	"fmt"

	"bipv/internal/config"
	"bipv/internal/store"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Minimum free space in the workspace before runs are refused.
const minFreeBytes = 256 << 20

// RunAll executes all preflight checks for the given config. A nil store
// skips the database checks.
func RunAll(ctx context.Context, cfg *config.Config, st *store.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Workspace directory", cfg.Paths.WorkspaceDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir),
		CheckFreeSpace("Workspace free space", cfg.Paths.WorkspaceDir, minFreeBytes),
		CheckConfig(cfg),
	}
	if st != nil {
		results = append(results, CheckDatabase(ctx, st))
	}
	return results
}

// Passed reports whether every check succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckConfig runs configuration validation as a preflight result.
func CheckConfig(cfg *config.Config) Result {
	const name = "Configuration"
	if err := cfg.Validate(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "valid"}
}

// CheckDatabase verifies the element registry is reachable and intact.
func CheckDatabase(ctx context.Context, st *store.Store) Result {
	const name = "Element registry"
	health, err := st.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed: %v", err)}
	}
	if !health.IntegrityCheck {
		detail := health.Error
		if detail == "" {
			detail = "integrity check failed"
		}
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d elements", health.TotalElements)}
}
