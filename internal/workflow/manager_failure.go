package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bipv/internal/logging"
	"bipv/internal/services"
	"bipv/internal/store"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, element *store.Element, stageErr error) {
	logger := logging.WithContext(ctx, m.logger).With(
		logging.String(logging.FieldElementKey, element.ElementKey),
	)

	message := m.classifyStageFailure(stageName, stageErr)
	review := services.NeedsReview(stageErr)
	if review {
		element.SetReview(message)
	} else {
		element.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String("resolved_status", string(element.Status)),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.Bool("needs_review", review),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldEventType, "stage_failure"),
	)

	if err := m.store.UpdateElement(ctx, element); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastElement(element)
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
