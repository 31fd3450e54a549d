package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// rollbackCaseSQL and rollbackInSQL are generated from stageRollbackTransitions
// so the SQL and the lifecycle table cannot drift apart.
var rollbackCaseSQL, rollbackInSQL = func() (string, string) {
	whens := make([]string, len(stageRollbackTransitions))
	marks := make([]string, len(stageRollbackTransitions))
	for i := range stageRollbackTransitions {
		whens[i] = "WHEN ? THEN ?"
		marks[i] = "?"
	}
	return strings.Join(whens, " "), strings.Join(marks, ", ")
}()

// rollbackArgs appends the CASE pairs, the extra mid-query args, and the
// WHERE-IN processing statuses in statement order.
func rollbackArgs(mid ...any) []any {
	args := make([]any, 0, 3*len(stageRollbackTransitions)+len(mid))
	for _, t := range stageRollbackTransitions {
		args = append(args, t.from, t.to)
	}
	args = append(args, mid...)
	for _, t := range stageRollbackTransitions {
		args = append(args, t.from)
	}
	return args
}

// ResetStuckProcessing resets elements in processing states back to the start of their current stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE elements
         SET status = CASE status `+rollbackCaseSQL+` ELSE status END,
             progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+rollbackInSQL+`)`,
		rollbackArgs(time.Now().UTC().Format(time.RFC3339Nano))...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck elements: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight element.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ensureContext(ctx),
		`UPDATE elements SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns elements stuck in processing back to the start
// of their current stage when heartbeats expire.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC()
	args := append(
		rollbackArgs(now.Format(time.RFC3339Nano)),
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	res, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE elements
        SET status = CASE status `+rollbackCaseSQL+` ELSE status END,
            progress_stage = 'Reclaimed from stale processing',
            progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (`+rollbackInSQL+`) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale elements: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed elements back to pending for reprocessing. With no
// ids, all failed elements in the project are retried.
func (s *Store) RetryFailed(ctx context.Context, projectID int64, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ensureContext(ctx),
			`UPDATE elements
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, updated_at = ?
            WHERE project_id = ? AND status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			projectID,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed elements: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano), projectID)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE elements
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, updated_at = ?
        WHERE project_id = ? AND id IN (` + placeholders + `) AND status = '` + string(StatusFailed) + `'`
	res, err := s.execWithRetry(ensureContext(ctx), query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected elements: %w", err)
	}
	return res.RowsAffected()
}
