package radiation_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"bipv/internal/logging"
	"bipv/internal/radiation"
	"bipv/internal/services"
	"bipv/internal/solar"
	"bipv/internal/testsupport"
)

func TestAnalyzerProducesIrradiationArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	analyzer := radiation.NewAnalyzer(cfg, st, logging.NewNop())
	ctx := context.Background()
	if err := analyzer.Prepare(ctx, element); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := analyzer.Execute(ctx, element); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result radiation.Result
	if err := json.Unmarshal([]byte(element.RadiationJSON), &result); err != nil {
		t.Fatalf("artifact not decodable: %v", err)
	}
	if result.Orientation != "south" {
		t.Fatalf("expected south orientation, got %s", result.Orientation)
	}
	if result.AnnualKWhM2 <= 0 {
		t.Fatalf("expected positive annual irradiation, got %v", result.AnnualKWhM2)
	}
	if element.ProgressPercent != 100 {
		t.Fatalf("expected completed progress, got %v", element.ProgressPercent)
	}
}

func TestAnalyzerPrefersProjectSiteSnapshot(t *testing.T) {
	// The config stays at the central European default while the project
	// carries a southern Mediterranean snapshot.
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")

	snapshot := solar.Site{
		Latitude:            37.98,
		Longitude:           23.73,
		Altitude:            70,
		TimezoneOffsetHours: 2,
		Albedo:              0.2,
		MeanAirTempC:        18.4,
		MeanHumidityPercent: 62,
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	project.SiteJSON = string(payload)
	if err := st.UpdateProject(context.Background(), project); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")

	analyzer := radiation.NewAnalyzer(cfg, st, logging.NewNop())
	if err := analyzer.Execute(context.Background(), element); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result radiation.Result
	if err := json.Unmarshal([]byte(element.RadiationJSON), &result); err != nil {
		t.Fatalf("artifact not decodable: %v", err)
	}
	want := solar.AnnualIrradiation(solar.MonthlyIrradiation(snapshot, element.AzimuthDeg, element.TiltDeg))
	if math.Abs(result.AnnualKWhM2-want) > 0.01 {
		t.Fatalf("artifact computed from wrong site: got %v, want %v from the project snapshot", result.AnnualKWhM2, want)
	}
	fromConfig := solar.AnnualIrradiation(solar.MonthlyIrradiation(solar.SiteFromConfig(cfg), element.AzimuthDeg, element.TiltDeg))
	if math.Abs(result.AnnualKWhM2-fromConfig) < 0.01 {
		t.Fatal("snapshot and config sites are indistinguishable; test setup is wrong")
	}
}

func TestAnalyzerRejectsTinyElement(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	project := testsupport.MustCreateProject(t, st, "hq")
	element := testsupport.MustRegisterElement(t, st, project.ID, "367277")
	element.GlassAreaM2 = 0.01

	analyzer := radiation.NewAnalyzer(cfg, st, logging.NewNop())
	err := analyzer.Prepare(context.Background(), element)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	analyzer := radiation.NewAnalyzer(cfg, nil, logging.NewNop())
	if health := analyzer.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy stage, got %s", health.Detail)
	}

	cfg.Site.Latitude = 120
	if health := analyzer.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy stage for invalid latitude")
	}
}
