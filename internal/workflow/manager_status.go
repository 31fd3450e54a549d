package workflow

import (
	"context"

	"bipv/internal/logging"
	"bipv/internal/stage"
	"bipv/internal/store"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastElement *store.Element
	Stats       map[store.Status]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastElement := m.lastElement
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx, m.projectID)
	if err != nil {
		m.logger.Warn("failed to read element stats", logging.Error(err))
	}

	summary := StatusSummary{Running: running, Stats: stats, StageHealth: m.StageHealth(ctx)}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastElement != nil {
		copy := *lastElement
		summary.LastElement = &copy
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastElement(element *store.Element) {
	m.mu.Lock()
	if element != nil {
		copy := *element
		m.lastElement = &copy
	} else {
		m.lastElement = nil
	}
	m.mu.Unlock()
}
