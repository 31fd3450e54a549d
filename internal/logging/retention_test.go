package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bipv/internal/logging"
)

func writeLogFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("line\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

func TestCleanupOldLogsPrunesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeLogFile(t, dir, "bipv-2026-01-03.log", 90*24*time.Hour)
	fresh := writeLogFile(t, dir, "bipv-2026-08-25.log", 24*time.Hour)
	current := writeLogFile(t, dir, "bipv-2026-08-26.log", 90*24*time.Hour)
	other := writeLogFile(t, dir, "notes.txt", 90*24*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 60,
		logging.RetentionTarget{Dir: dir, Pattern: "bipv-*.log", Exclude: []string{current}},
	)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expired log not pruned: %v", err)
	}
	for _, path := range []string{fresh, current, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should survive pruning: %v", filepath.Base(path), err)
		}
	}
}

func TestCleanupOldLogsDisabledByZeroRetention(t *testing.T) {
	dir := t.TempDir()
	old := writeLogFile(t, dir, "bipv-2025-01-01.log", 400*24*time.Hour)

	logging.CleanupOldLogs(logging.NewNop(), 0,
		logging.RetentionTarget{Dir: dir, Pattern: "bipv-*.log"},
	)

	if _, err := os.Stat(old); err != nil {
		t.Fatalf("retention 0 must not prune: %v", err)
	}
}
