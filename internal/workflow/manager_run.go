package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bipv/internal/logging"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errNoStages
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.runLoop(runCtx)
	}()

	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// RunUntilIdle processes elements until none are ready or the context ends.
// It returns the number of stage executions that completed successfully.
func (m *Manager) RunUntilIdle(ctx context.Context) (int, error) {
	if len(m.configuredStages()) == 0 {
		return 0, errNoStages
	}
	logger := logging.WithContext(ctx, m.logger)

	processed := 0
	for {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		m.reclaimStale(ctx, logger)

		element, err := m.store.NextForStatuses(ctx, m.projectID, m.startStatuses()...)
		if err != nil {
			m.setLastError(err)
			return processed, err
		}
		if element == nil {
			return processed, nil
		}
		if err := m.processElement(ctx, logger, element); err != nil {
			if errors.Is(err, context.Canceled) {
				return processed, err
			}
			// Stage failures are recorded on the element; keep draining.
			continue
		}
		processed++
	}
}

func (m *Manager) runLoop(ctx context.Context) {
	logger := logging.WithContext(ctx, m.logger)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.reclaimStale(ctx, logger)

		element, err := m.store.NextForStatuses(ctx, m.projectID, m.startStatuses()...)
		if err != nil {
			m.handleNextElementError(ctx, logger, err)
			continue
		}
		if element == nil {
			m.waitForElementOrShutdown(ctx)
			continue
		}

		if err := m.processElement(ctx, logger, element); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) reclaimStale(ctx context.Context, logger *slog.Logger) {
	if err := m.heartbeat.ReclaimStaleElements(ctx, logger); err != nil {
		logger.Warn("reclaim stale processing failed; stuck elements may remain",
			logging.Error(err),
			logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
			logging.String(logging.FieldErrorHint, "check registry database access"),
		)
	}
}

func (m *Manager) handleNextElementError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next element",
		logging.Error(err),
		logging.String(logging.FieldEventType, "element_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check registry database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForElementOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
