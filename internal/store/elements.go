package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingFingerprint indicates an element was registered without identity.
var ErrMissingFingerprint = errors.New("element fingerprint must not be empty")

// RegisterElement inserts a facade element for processing. Registration is
// idempotent per project: when an element with the same fingerprint already
// exists, the existing row is returned and created is false. This is the
// duplicate-prevention primitive; callers never insert the same element twice.
func (s *Store) RegisterElement(ctx context.Context, element *Element) (*Element, bool, error) {
	if element == nil {
		return nil, false, errors.New("element is nil")
	}
	if strings.TrimSpace(element.Fingerprint) == "" {
		return nil, false, ErrMissingFingerprint
	}
	if strings.TrimSpace(element.ElementKey) == "" {
		return nil, false, errors.New("element key must not be empty")
	}

	ctx = ensureContext(ctx)
	existing, err := s.FindByFingerprint(ctx, element.ProjectID, element.Fingerprint)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO elements (
            project_id, element_key, fingerprint, label, level,
            azimuth_deg, tilt_deg, width_m, height_m, glass_area_m2,
            status, created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		element.ProjectID,
		element.ElementKey,
		element.Fingerprint,
		nullableString(element.Label),
		nullableString(element.Level),
		element.AzimuthDeg,
		element.TiltDeg,
		element.WidthM,
		element.HeightM,
		element.GlassAreaM2,
		StatusPending,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		// A concurrent import may have raced us to the unique index; the
		// fingerprint lookup settles who won.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			existing, lookupErr := s.FindByFingerprint(ctx, element.ProjectID, element.Fingerprint)
			if lookupErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("insert element: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	inserted, err := s.GetElement(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return inserted, true, nil
}

// GetElement fetches an element by identifier.
func (s *Store) GetElement(ctx context.Context, id int64) (*Element, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+elementColumns+` FROM elements WHERE id = ?`, id)
	element, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get element: %w", err)
	}
	return element, nil
}

// FindByFingerprint returns the element matching a fingerprint within a project.
func (s *Store) FindByFingerprint(ctx context.Context, projectID int64, fingerprint string) (*Element, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+elementColumns+` FROM elements WHERE project_id = ? AND fingerprint = ? LIMIT 1`,
		projectID,
		fingerprint,
	)
	element, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}
	return element, nil
}

// UpdateElement persists changes to an existing element.
func (s *Store) UpdateElement(ctx context.Context, element *Element) error {
	if element == nil {
		return errors.New("element is nil")
	}
	element.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE elements
         SET element_key = ?, label = ?, level = ?, azimuth_deg = ?, tilt_deg = ?,
             width_m = ?, height_m = ?, glass_area_m2 = ?, status = ?,
             radiation_json = ?, spec_json = ?, yield_json = ?, finance_json = ?,
             error_message = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             updated_at = ?, last_heartbeat = ?, needs_review = ?, review_reason = ?
         WHERE id = ?`,
		element.ElementKey,
		nullableString(element.Label),
		nullableString(element.Level),
		element.AzimuthDeg,
		element.TiltDeg,
		element.WidthM,
		element.HeightM,
		element.GlassAreaM2,
		element.Status,
		nullableString(element.RadiationJSON),
		nullableString(element.SpecJSON),
		nullableString(element.YieldJSON),
		nullableString(element.FinanceJSON),
		nullableString(element.ErrorMessage),
		nullableString(element.ProgressStage),
		element.ProgressPercent,
		nullableString(element.ProgressMessage),
		element.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(element.LastHeartbeat),
		boolToInt(element.NeedsReview),
		nullableString(element.ReviewReason),
		element.ID,
	)
	if err != nil {
		return fmt.Errorf("update element: %w", err)
	}
	return nil
}

// List returns project elements filtered by status set (or all elements when no
// status is provided), ordered by creation time.
func (s *Store) List(ctx context.Context, projectID int64, statuses ...Status) ([]*Element, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + elementColumns + ` FROM elements WHERE project_id = ?`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause, projectID)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, 0, len(statuses)+1)
		args = append(args, projectID)
		for _, status := range statuses {
			args = append(args, status)
		}
		query := baseQuery + ` AND status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ensureContext(ctx), query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()

	var elements []*Element
	for rows.Next() {
		element, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
	}
	return elements, rows.Err()
}

// NextForStatuses returns the oldest element in a project matching any of the
// provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, projectID int64, statuses ...Status) (*Element, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	args = append(args, projectID)
	for _, status := range statuses {
		args = append(args, status)
	}

	query := `SELECT ` + elementColumns + ` FROM elements WHERE project_id = ? AND status IN (` + placeholders + `) ORDER BY created_at, id LIMIT 1`
	row := s.db.QueryRowContext(ensureContext(ctx), query, args...)
	element, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return element, nil
}

// Claim atomically transitions an element from one status to another. The
// conditional UPDATE is the exactly-once guard: when it reports zero affected
// rows another claimant already moved the element and the caller must not
// process it.
func (s *Store) Claim(ctx context.Context, id int64, from, to Status) (bool, error) {
	if from == "" || to == "" {
		return false, errors.New("claim statuses must not be empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE elements
         SET status = ?, last_heartbeat = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		to,
		now,
		now,
		id,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("claim element: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// Stats returns a count of a project's elements grouped by status.
func (s *Store) Stats(ctx context.Context, projectID int64) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM elements WHERE project_id = ? GROUP BY status`, projectID)
	if err != nil {
		return nil, fmt.Errorf("element stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates element state for diagnostic output.
func (s *Store) Health(ctx context.Context, projectID int64) (HealthSummary, error) {
	stats, err := s.Stats(ctx, projectID)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusFailed:
			health.Failed += count
		case StatusReview:
			health.Review += count
		case StatusCompleted:
			health.Completed += count
		default:
			if _, ok := processingStatuses[status]; ok {
				health.Processing += count
			}
		}
	}
	return health, nil
}

// Remove deletes an element by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM elements WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete element: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed elements from a project.
func (s *Store) ClearCompleted(ctx context.Context, projectID int64) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM elements WHERE project_id = ? AND status = ?`, projectID, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed elements from a project.
func (s *Store) ClearFailed(ctx context.Context, projectID int64) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM elements WHERE project_id = ? AND status = ?`, projectID, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all elements from a project.
func (s *Store) Clear(ctx context.Context, projectID int64) (int64, error) {
	res, err := s.execWithRetry(ensureContext(ctx), `DELETE FROM elements WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("clear elements: %w", err)
	}
	return res.RowsAffected()
}

const elementColumns = "id, project_id, element_key, fingerprint, label, level, azimuth_deg, tilt_deg, width_m, height_m, glass_area_m2, status, radiation_json, spec_json, yield_json, finance_json, error_message, progress_stage, progress_percent, progress_message, created_at, updated_at, last_heartbeat, needs_review, review_reason"

func scanElement(scanner interface{ Scan(dest ...any) error }) (*Element, error) {
	var (
		id               int64
		projectID        int64
		elementKey       string
		fingerprint      string
		label            sql.NullString
		level            sql.NullString
		azimuth          float64
		tilt             float64
		width            float64
		height           float64
		glassArea        float64
		statusStr        string
		radiationJSON    sql.NullString
		specJSON         sql.NullString
		yieldJSON        sql.NullString
		financeJSON      sql.NullString
		errorMessage     sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&projectID,
		&elementKey,
		&fingerprint,
		&label,
		&level,
		&azimuth,
		&tilt,
		&width,
		&height,
		&glassArea,
		&statusStr,
		&radiationJSON,
		&specJSON,
		&yieldJSON,
		&financeJSON,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	element := &Element{
		ID:              id,
		ProjectID:       projectID,
		ElementKey:      elementKey,
		Fingerprint:     fingerprint,
		Label:           label.String,
		Level:           level.String,
		AzimuthDeg:      azimuth,
		TiltDeg:         tilt,
		WidthM:          width,
		HeightM:         height,
		GlassAreaM2:     glassArea,
		Status:          Status(statusStr),
		RadiationJSON:   radiationJSON.String,
		SpecJSON:        specJSON.String,
		YieldJSON:       yieldJSON.String,
		FinanceJSON:     financeJSON.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if needsReview.Valid {
		element.NeedsReview = needsReview.Int64 != 0
	}
	element.ReviewReason = reviewReason.String

	if created, err := parseTimeString(createdRaw.String); err == nil {
		element.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		element.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			element.LastHeartbeat = &heartbeat
		}
	}
	return element, nil
}
