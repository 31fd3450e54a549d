package simulation_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"bipv/internal/logging"
	"bipv/internal/pvspec"
	"bipv/internal/radiation"
	"bipv/internal/services"
	"bipv/internal/simulation"
	"bipv/internal/stage"
	"bipv/internal/store"
	"bipv/internal/testsupport"
	"bipv/internal/yield"
)

func seededElement(t *testing.T, st *store.Store, projectID int64) *store.Element {
	t.Helper()
	element := testsupport.MustRegisterElement(t, st, projectID, "367277")

	rad := radiation.Result{AnnualKWhM2: 840}
	for i := range rad.MonthlyKWhM2 {
		rad.MonthlyKWhM2[i] = 70
	}
	radJSON, err := stage.EncodeArtifact(rad)
	if err != nil {
		t.Fatalf("EncodeArtifact failed: %v", err)
	}
	element.RadiationJSON = radJSON

	matchJSON, err := stage.EncodeArtifact(pvspec.Match{PanelCode: "cdte-10", CapacityKWp: 0.162, CostEUR: 567})
	if err != nil {
		t.Fatalf("EncodeArtifact failed: %v", err)
	}
	element.SpecJSON = matchJSON
	return element
}

func TestSimulatorProducesYieldArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := seededElement(t, st, project.ID)

	simulator := simulation.NewSimulator(cfg, logging.NewNop())
	ctx := context.Background()
	if err := simulator.Prepare(ctx, element); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := simulator.Execute(ctx, element); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result yield.ElementYield
	if err := json.Unmarshal([]byte(element.YieldJSON), &result); err != nil {
		t.Fatalf("artifact not decodable: %v", err)
	}
	want := 840 * 0.162 * cfg.PV.PerformanceRatio
	if math.Abs(result.AnnualACKWh-want) > 1e-6 {
		t.Fatalf("expected %v kWh, got %v", want, result.AnnualACKWh)
	}
}

func TestSimulatorRequiresBothArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	simulator := simulation.NewSimulator(cfg, logging.NewNop())
	err := simulator.Execute(context.Background(), element)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing artifacts, got %v", err)
	}
}
