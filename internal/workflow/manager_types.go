package workflow

import (
	"bipv/internal/stage"
	"bipv/internal/store"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Radiation  stage.Handler
	Matching   stage.Handler
	Simulation stage.Handler
	Evaluation stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      store.Status
	processingStatus store.Status
	doneStatus       store.Status
}

var stageLabels = map[store.Status]string{
	store.StatusPending:    "Radiation analysis",
	store.StatusAnalyzing:  "Radiation analysis",
	store.StatusAnalyzed:   "Panel matching",
	store.StatusMatching:   "Panel matching",
	store.StatusMatched:    "Yield simulation",
	store.StatusSimulating: "Yield simulation",
	store.StatusSimulated:  "Financial evaluation",
	store.StatusEvaluating: "Financial evaluation",
	store.StatusCompleted:  "Completed",
}

func deriveStageLabel(status store.Status) string {
	if label, ok := stageLabels[status]; ok {
		return label
	}
	return string(status)
}
