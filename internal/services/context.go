package services

import "context"

type contextKey string

const (
	elementIDKey contextKey = "element_id"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithElementID annotates context with the facade element identifier.
func WithElementID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, elementIDKey, id)
}

// ElementIDFromContext extracts the facade element identifier if present.
func ElementIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(elementIDKey).(int64)
	return id, ok
}

// WithStage annotates context with the workflow stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	stage, ok := ctx.Value(stageKey).(string)
	return stage, ok
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}
