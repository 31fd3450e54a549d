package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a facade element in the analysis pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAnalyzing  Status = "analyzing"
	StatusAnalyzed   Status = "analyzed"
	StatusMatching   Status = "matching"
	StatusMatched    Status = "matched"
	StatusSimulating Status = "simulating"
	StatusSimulated  Status = "simulated"
	StatusEvaluating Status = "evaluating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusMatching,
	StatusMatched,
	StatusSimulating,
	StatusSimulated,
	StatusEvaluating,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusAnalyzing:  {},
	StatusMatching:   {},
	StatusSimulating: {},
	StatusEvaluating: {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions returns an interrupted element to the start of its
// current stage so the stage reruns exactly once from a clean claim. The
// rollback UPDATE statements in transitions.go are generated from this table.
var stageRollbackTransitions = []statusTransition{
	{from: StatusAnalyzing, to: StatusPending},
	{from: StatusMatching, to: StatusAnalyzed},
	{from: StatusSimulating, to: StatusMatched},
	{from: StatusEvaluating, to: StatusSimulated},
}

// HealthSummary describes aggregated element counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// DatabaseHealth captures diagnostic information about the registry database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalElements    int
	Error            string
}

// Project represents a BIPV evaluation project.
type Project struct {
	ID          int64
	Name        string
	SiteJSON    string
	DemandJSON  string
	WeatherJSON string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Element represents a facade element persisted in SQLite. ElementKey is the
// external Element ID used as the join key across workflow steps; Fingerprint
// is a hash of the identifying fields used for idempotent registration.
type Element struct {
	ID              int64
	ProjectID       int64
	ElementKey      string
	Fingerprint     string
	Label           string
	Level           string
	AzimuthDeg      float64
	TiltDeg         float64
	WidthM          float64
	HeightM         float64
	GlassAreaM2     float64
	Status          Status
	RadiationJSON   string
	SpecJSON        string
	YieldJSON       string
	FinanceJSON     string
	ErrorMessage    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastHeartbeat   *time.Time
	NeedsReview     bool
	ReviewReason    string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// ProcessingStatuses returns the statuses that reflect in-flight stage work.
func ProcessingStatuses() []Status {
	out := make([]Status, 0, len(processingStatuses))
	for _, status := range allStatuses {
		if _, ok := processingStatuses[status]; ok {
			out = append(out, status)
		}
	}
	return out
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (e Element) IsProcessing() bool {
	_, ok := processingStatuses[e.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// SetProgress updates all three progress fields atomically.
func (e *Element) SetProgress(stage, message string, percent float64) {
	e.ProgressStage = stage
	e.ProgressMessage = message
	e.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (e *Element) SetProgressComplete(stage, message string) {
	e.SetProgress(stage, message, 100)
}

// SetFailed marks the element as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (e *Element) SetFailed(message string) {
	e.Status = StatusFailed
	e.ErrorMessage = message
	e.ProgressPercent = 0
	e.ProgressMessage = message
	e.LastHeartbeat = nil
	e.ProgressStage = "Failed"
}

// SetReview parks the element for manual intervention.
func (e *Element) SetReview(reason string) {
	e.Status = StatusReview
	e.NeedsReview = true
	e.ReviewReason = reason
	e.ErrorMessage = reason
	e.ProgressPercent = 0
	e.ProgressMessage = reason
	e.LastHeartbeat = nil
	e.ProgressStage = "Review"
}

