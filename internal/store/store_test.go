package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bipv/internal/store"
	"bipv/internal/testsupport"
)

func TestRegisterElementIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	ctx := context.Background()
	element := &store.Element{
		ProjectID:   project.ID,
		ElementKey:  "367277",
		Fingerprint: "fp-367277",
		AzimuthDeg:  180,
		TiltDeg:     90,
		GlassAreaM2: 2.4,
	}

	first, created, err := st.RegisterElement(ctx, element)
	if err != nil {
		t.Fatalf("RegisterElement failed: %v", err)
	}
	if !created {
		t.Fatal("expected first registration to create a row")
	}
	if first.Status != store.StatusPending {
		t.Fatalf("expected pending status, got %s", first.Status)
	}

	second, created, err := st.RegisterElement(ctx, element)
	if err != nil {
		t.Fatalf("second RegisterElement failed: %v", err)
	}
	if created {
		t.Fatal("expected duplicate registration to be skipped")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing row %d, got %d", first.ID, second.ID)
	}

	elements, err := st.List(ctx, project.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected exactly one element, got %d", len(elements))
	}
}

func TestRegisterElementRequiresFingerprint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	_, _, err := st.RegisterElement(context.Background(), &store.Element{
		ProjectID:  project.ID,
		ElementKey: "367277",
	})
	if err == nil {
		t.Fatal("expected error when fingerprint missing")
	}
}

func TestClaimTransitionsExactlyOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	ctx := context.Background()
	claimed, err := st.Claim(ctx, element.ID, store.StatusPending, store.StatusAnalyzing)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = st.Claim(ctx, element.ID, store.StatusPending, store.StatusAnalyzing)
	if err != nil {
		t.Fatalf("second Claim failed: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim on the same transition to lose")
	}

	fetched, err := st.GetElement(ctx, element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if fetched.Status != store.StatusAnalyzing {
		t.Fatalf("expected analyzing status, got %s", fetched.Status)
	}
	if fetched.LastHeartbeat == nil {
		t.Fatal("expected claim to start the heartbeat")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus store.Status
		expected      store.Status
	}{
		{"analyzing", store.StatusAnalyzing, store.StatusPending},
		{"matching", store.StatusMatching, store.StatusAnalyzed},
		{"simulating", store.StatusSimulating, store.StatusMatched},
		{"evaluating", store.StatusEvaluating, store.StatusSimulated},
	}
	var ids []int64
	for i, tc := range cases {
		element := testsupport.MustRegisterElement(t, st, project.ID, fmt.Sprintf("el-%d", i))
		element.Status = tc.initialStatus
		element.ProgressStage = tc.name
		if err := st.UpdateElement(ctx, element); err != nil {
			t.Fatalf("UpdateElement failed: %v", err)
		}
		ids = append(ids, element.ID)
	}

	count, err := st.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d elements reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := st.GetElement(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetElement failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	ctx := context.Background()
	stale := time.Now().Add(-time.Hour)
	element.Status = store.StatusSimulating
	element.LastHeartbeat = &stale
	if err := st.UpdateElement(ctx, element); err != nil {
		t.Fatalf("UpdateElement failed: %v", err)
	}

	reclaimed, err := st.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("expected one element reclaimed, got %d", reclaimed)
	}

	updated, err := st.GetElement(ctx, element.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if updated.Status != store.StatusMatched {
		t.Fatalf("expected rollback to matched, got %s", updated.Status)
	}

	// A fresh heartbeat must not be reclaimed.
	now := time.Now()
	updated.Status = store.StatusSimulating
	updated.LastHeartbeat = &now
	if err := st.UpdateElement(ctx, updated); err != nil {
		t.Fatalf("UpdateElement failed: %v", err)
	}
	reclaimed, err = st.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if reclaimed != 0 {
		t.Fatalf("expected no elements reclaimed, got %d", reclaimed)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	ctx := context.Background()
	failed := testsupport.MustRegisterElement(t, st, project.ID, "el-failed")
	failed.SetFailed("radiation model failed")
	if err := st.UpdateElement(ctx, failed); err != nil {
		t.Fatalf("UpdateElement failed: %v", err)
	}
	completed := testsupport.MustRegisterElement(t, st, project.ID, "el-done")
	completed.Status = store.StatusCompleted
	if err := st.UpdateElement(ctx, completed); err != nil {
		t.Fatalf("UpdateElement failed: %v", err)
	}

	count, err := st.RetryFailed(ctx, project.ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one element retried, got %d", count)
	}

	updated, err := st.GetElement(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetElement failed: %v", err)
	}
	if updated.Status != store.StatusPending {
		t.Fatalf("expected pending after retry, got %s", updated.Status)
	}
	if updated.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", updated.ErrorMessage)
	}
}

func TestProjectLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	project, err := st.CreateProject(ctx, "hq", `{"latitude":52.52}`)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if _, err := st.CreateProject(ctx, "hq", ""); err == nil {
		t.Fatal("expected duplicate project name to be rejected")
	}

	byName, err := st.GetProjectByName(ctx, "hq")
	if err != nil {
		t.Fatalf("GetProjectByName failed: %v", err)
	}
	if byName == nil || byName.ID != project.ID {
		t.Fatalf("expected project by name, got %#v", byName)
	}

	project.DemandJSON = `{"annual_kwh":42000}`
	if err := st.UpdateProject(ctx, project); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	fetched, err := st.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if fetched.DemandJSON == "" {
		t.Fatal("expected demand profile persisted")
	}

	testsupport.MustRegisterElement(t, st, project.ID, "367277")
	removed, err := st.RemoveProject(ctx, project.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveProject failed: removed=%v err=%v", removed, err)
	}
	elements, err := st.List(ctx, project.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(elements) != 0 {
		t.Fatalf("expected cascade delete of elements, got %d", len(elements))
	}
}

func TestHealthSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	ctx := context.Background()
	statuses := []store.Status{
		store.StatusPending,
		store.StatusAnalyzing,
		store.StatusCompleted,
		store.StatusFailed,
		store.StatusReview,
	}
	for i, status := range statuses {
		element := testsupport.MustRegisterElement(t, st, project.ID, fmt.Sprintf("el-%d", i))
		element.Status = status
		if err := st.UpdateElement(ctx, element); err != nil {
			t.Fatalf("UpdateElement failed: %v", err)
		}
	}

	health, err := st.Health(ctx, project.ID)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != len(statuses) {
		t.Fatalf("expected total %d, got %d", len(statuses), health.Total)
	}
	if health.Pending != 1 || health.Processing != 1 || health.Completed != 1 || health.Failed != 1 || health.Review != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}
