package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"bipv/internal/config"
	"bipv/internal/logging"
	"bipv/internal/stage"
	"bipv/internal/store"
)

// Manager coordinates element processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	logger       *slog.Logger
	projectID    int64
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor

	stages       []pipelineStage
	stageByStart map[store.Status]pipelineStage
	statusOrder  []store.Status

	mu          sync.RWMutex
	running     bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	lastErr     error
	lastElement *store.Element
}

// NewManager constructs a workflow manager scoped to a single project.
func NewManager(cfg *config.Config, st *store.Store, projectID int64, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        st,
		logger:       logger.With(logging.String(logging.FieldComponent, "workflow-manager")),
		projectID:    projectID,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			st,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		stageByStart: make(map[store.Status]pipelineStage),
	}
}

// ConfigureStages registers the pipeline handlers. Stages without a handler
// are skipped, which lets tests exercise a partial pipeline.
func (m *Manager) ConfigureStages(set StageSet) {
	definitions := []pipelineStage{
		{name: "radiation-analysis", handler: set.Radiation, startStatus: store.StatusPending, processingStatus: store.StatusAnalyzing, doneStatus: store.StatusAnalyzed},
		{name: "panel-matching", handler: set.Matching, startStatus: store.StatusAnalyzed, processingStatus: store.StatusMatching, doneStatus: store.StatusMatched},
		{name: "yield-simulation", handler: set.Simulation, startStatus: store.StatusMatched, processingStatus: store.StatusSimulating, doneStatus: store.StatusSimulated},
		{name: "financial-evaluation", handler: set.Evaluation, startStatus: store.StatusSimulated, processingStatus: store.StatusEvaluating, doneStatus: store.StatusCompleted},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = m.stages[:0]
	m.statusOrder = m.statusOrder[:0]
	m.stageByStart = make(map[store.Status]pipelineStage, len(definitions))
	for _, def := range definitions {
		if def.handler == nil {
			continue
		}
		m.stages = append(m.stages, def)
		m.stageByStart[def.startStatus] = def
		m.statusOrder = append(m.statusOrder, def.startStatus)
	}
}

func (m *Manager) configuredStages() []pipelineStage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]pipelineStage, len(m.stages))
	copy(out, m.stages)
	return out
}

func (m *Manager) stageForStatus(status store.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}

func (m *Manager) startStatuses() []store.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Status, len(m.statusOrder))
	copy(out, m.statusOrder)
	return out
}

// StageHealth reports the health of every configured stage handler.
func (m *Manager) StageHealth(ctx context.Context) map[string]stage.Health {
	stages := m.configuredStages()
	health := make(map[string]stage.Health, len(stages))
	for _, stg := range stages {
		health[stg.name] = stg.handler.HealthCheck(ctx)
	}
	return health
}

var errNoStages = errors.New("workflow stages not configured")
