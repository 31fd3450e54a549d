package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bipv/internal/logging"
	"bipv/internal/services"
	"bipv/internal/store"
)

func (m *Manager) processElement(ctx context.Context, baseLogger *slog.Logger, element *store.Element) error {
	stg, ok := m.stageForStatus(element.Status)
	if !ok {
		baseLogger.Warn("no stage configured for status", logging.String("status", string(element.Status)))
		m.waitForElementOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithElementID(ctx, element.ID), stg.name), requestID)
	stageLogger := logging.WithContext(stageCtx, m.logger).With(
		logging.String(logging.FieldElementKey, element.ElementKey),
		logging.Int64(logging.FieldProjectID, element.ProjectID),
	)

	claimed, err := m.store.Claim(stageCtx, element.ID, stg.startStatus, stg.processingStatus)
	if err != nil {
		wrapped := fmt.Errorf("claim stage transition: %w", err)
		stageLogger.Error("failed to claim element for processing", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	if !claimed {
		// Another runner won the transition; nothing to do here.
		stageLogger.Debug("element already claimed",
			logging.String(logging.FieldEventType, "claim_lost"),
		)
		return nil
	}

	refreshed, err := m.store.GetElement(stageCtx, element.ID)
	if err != nil {
		wrapped := fmt.Errorf("reload claimed element: %w", err)
		stageLogger.Error("failed to reload claimed element", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	refreshed.SetProgress(deriveStageLabel(stg.processingStatus), fmt.Sprintf("%s started", deriveStageLabel(stg.processingStatus)), 0)
	if err := m.store.UpdateElement(stageCtx, refreshed); err != nil {
		wrapped := fmt.Errorf("persist processing transition: %w", err)
		stageLogger.Error("failed to persist processing transition", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	m.setLastElement(refreshed)

	return m.executeStage(stageCtx, stageLogger, stg, refreshed)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, element *store.Element) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("element_label", strings.TrimSpace(element.Label)),
	)

	if err := stg.handler.Prepare(ctx, element); err != nil {
		m.handleStageFailure(ctx, stg.name, element, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.UpdateElement(ctx, element); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, element)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, element, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if element.Status == stg.processingStatus || element.Status == "" {
		element.Status = stg.doneStatus
	}
	element.LastHeartbeat = nil
	if element.Status == store.StatusCompleted {
		if element.ProgressPercent < 100 {
			element.ProgressPercent = 100
		}
		if strings.TrimSpace(element.ProgressMessage) == "" {
			element.ProgressMessage = deriveStageLabel(store.StatusCompleted)
		}
		element.ProgressStage = deriveStageLabel(store.StatusCompleted)
	}
	if err := m.store.UpdateElement(ctx, element); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(element.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastElement(element)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, element *store.Element) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, element.ID)

	execErr := stg.handler.Execute(ctx, element)
	hbCancel()
	hbWG.Wait()
	return execErr
}
