package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"bipv/internal/logging"
	"bipv/internal/services"
	"bipv/internal/stage"
	"bipv/internal/store"
	"bipv/internal/testsupport"
	"bipv/internal/workflow"
)

type stubHandler struct {
	name     string
	execErr  error
	executed atomic.Int64
}

func (h *stubHandler) Prepare(context.Context, *store.Element) error { return nil }

func (h *stubHandler) Execute(_ context.Context, element *store.Element) error {
	h.executed.Add(1)
	if h.execErr != nil {
		return h.execErr
	}
	element.SetProgressComplete(h.name, h.name+" finished")
	return nil
}

func (h *stubHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func newStubSet() (workflow.StageSet, []*stubHandler) {
	handlers := []*stubHandler{
		{name: "radiation-analysis"},
		{name: "panel-matching"},
		{name: "yield-simulation"},
		{name: "financial-evaluation"},
	}
	return workflow.StageSet{
		Radiation:  handlers[0],
		Matching:   handlers[1],
		Simulation: handlers[2],
		Evaluation: handlers[3],
	}, handlers
}

func TestRunUntilIdleDrivesElementToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	manager := workflow.NewManager(cfg, st, project.ID, logging.NewNop())
	set, handlers := newStubSet()
	manager.ConfigureStages(set)

	processed, err := manager.RunUntilIdle(context.Background())
	if err != nil {
		t.Fatalf("RunUntilIdle failed: %v", err)
	}
	if processed != 4 {
		t.Fatalf("expected 4 stage executions, got %d", processed)
	}
	for _, handler := range handlers {
		if got := handler.executed.Load(); got != 1 {
			t.Fatalf("expected %s to execute once, got %d", handler.name, got)
		}
	}

	final, err := st.GetElement(context.Background(), element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if final.Status != store.StatusCompleted {
		t.Fatalf("expected completed status, got %s", final.Status)
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %v", final.ProgressPercent)
	}
	if final.LastHeartbeat != nil {
		t.Fatal("expected heartbeat cleared after completion")
	}
}

func TestRunUntilIdleRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	manager := workflow.NewManager(cfg, st, project.ID, logging.NewNop())
	if _, err := manager.RunUntilIdle(context.Background()); err == nil {
		t.Fatal("expected error when no stages configured")
	}
}

func TestTransientFailureMarksElementFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	manager := workflow.NewManager(cfg, st, project.ID, logging.NewNop())
	set, handlers := newStubSet()
	handlers[0].execErr = errors.New("weather service unreachable")
	manager.ConfigureStages(set)

	processed, err := manager.RunUntilIdle(context.Background())
	if err != nil {
		t.Fatalf("RunUntilIdle failed: %v", err)
	}
	if processed != 0 {
		t.Fatalf("expected no completed stage executions, got %d", processed)
	}

	failed, err := st.GetElement(context.Background(), element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if failed.Status != store.StatusFailed {
		t.Fatalf("expected failed status, got %s", failed.Status)
	}
	if failed.ErrorMessage == "" {
		t.Fatal("expected error message recorded on element")
	}
	if failed.NeedsReview {
		t.Fatal("transient failure must not park the element for review")
	}
}

func TestValidationFailureParksElementForReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	manager := workflow.NewManager(cfg, st, project.ID, logging.NewNop())
	set, handlers := newStubSet()
	handlers[0].execErr = services.Wrap(
		services.ErrValidation, "radiation-analysis", "check geometry",
		"glass area below configured minimum", nil)
	manager.ConfigureStages(set)

	if _, err := manager.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle failed: %v", err)
	}

	parked, err := st.GetElement(context.Background(), element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if parked.Status != store.StatusReview {
		t.Fatalf("expected review status, got %s", parked.Status)
	}
	if !parked.NeedsReview || parked.ReviewReason == "" {
		t.Fatalf("expected review flag and reason, got %#v", parked)
	}
}

func TestFailedElementResumesAfterRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	manager := workflow.NewManager(cfg, st, project.ID, logging.NewNop())
	set, handlers := newStubSet()
	handlers[2].execErr = errors.New("simulation backend flaked")
	manager.ConfigureStages(set)

	ctx := context.Background()
	if _, err := manager.RunUntilIdle(ctx); err != nil {
		t.Fatalf("RunUntilIdle failed: %v", err)
	}
	midway, err := st.GetElement(ctx, element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if midway.Status != store.StatusFailed {
		t.Fatalf("expected failed status after simulation error, got %s", midway.Status)
	}

	// Retry restarts from the beginning; earlier stages run a second time.
	if _, err := st.RetryFailed(ctx, project.ID); err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	handlers[2].execErr = nil
	if _, err := manager.RunUntilIdle(ctx); err != nil {
		t.Fatalf("second RunUntilIdle failed: %v", err)
	}

	final, err := st.GetElement(ctx, element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if final.Status != store.StatusCompleted {
		t.Fatalf("expected completed after retry, got %s", final.Status)
	}
}

func TestStartAndStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	manager := workflow.NewManager(cfg, st, project.ID, logging.NewNop())
	set, _ := newStubSet()
	manager.ConfigureStages(set)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail while running")
	}
	summary := manager.Status(context.Background())
	if !summary.Running {
		t.Fatal("expected running status summary")
	}
	if len(summary.StageHealth) != 4 {
		t.Fatalf("expected health for 4 stages, got %d", len(summary.StageHealth))
	}
	manager.Stop()
	summary = manager.Status(context.Background())
	if summary.Running {
		t.Fatal("expected stopped status summary")
	}
}
