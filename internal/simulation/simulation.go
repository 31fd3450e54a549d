// Package simulation implements the third pipeline stage: monthly AC yield
// for a matched element.
package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"bipv/internal/config"
	"bipv/internal/logging"
	"bipv/internal/pvspec"
	"bipv/internal/radiation"
	"bipv/internal/services"
	"bipv/internal/stage"
	"bipv/internal/store"
	"bipv/internal/yield"
)

// Simulator turns irradiation and capacity into AC energy.
type Simulator struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewSimulator constructs the yield-simulation stage handler.
func NewSimulator(cfg *config.Config, logger *slog.Logger) *Simulator {
	return &Simulator{cfg: cfg, logger: logging.NewComponentLogger(logger, "yield-simulation")}
}

func (s *Simulator) Prepare(ctx context.Context, element *store.Element) error {
	if element.ProgressStage == "" {
		element.ProgressStage = "Yield simulation"
	}
	element.ProgressMessage = "Loading stage inputs"
	element.ProgressPercent = 0
	element.ErrorMessage = ""
	return nil
}

func (s *Simulator) Execute(ctx context.Context, element *store.Element) error {
	logger := logging.WithContext(ctx, s.logger)

	var rad radiation.Result
	if err := stage.DecodeArtifact("yield-simulation", element.RadiationJSON, &rad); err != nil {
		return err
	}
	var match pvspec.Match
	if err := stage.DecodeArtifact("yield-simulation", element.SpecJSON, &match); err != nil {
		return err
	}

	element.SetProgress("Yield simulation", "Simulating monthly yield", 50)
	result, err := yield.Simulate(rad.MonthlyKWhM2, match.CapacityKWp, s.cfg.PV.PerformanceRatio)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "yield-simulation", "simulate",
			"element inputs do not form a valid installation", err,
		)
	}

	encoded, err := stage.EncodeArtifact(result)
	if err != nil {
		return services.Wrap(services.ErrTransient, "yield-simulation", "store result", "", err)
	}
	element.YieldJSON = encoded
	element.SetProgressComplete("Yield simulation",
		fmt.Sprintf("%.0f kWh per year", result.AnnualACKWh))

	logger.Info("yield simulated",
		logging.Float64("annual_ac_kwh", result.AnnualACKWh),
		logging.Float64("specific_yield", result.SpecificYieldKWhKWp),
	)
	return nil
}

func (s *Simulator) HealthCheck(ctx context.Context) stage.Health {
	pr := s.cfg.PV.PerformanceRatio
	if pr <= 0 || pr > 1 {
		return stage.Unhealthy("yield-simulation", fmt.Sprintf("performance ratio %v outside (0,1]", pr))
	}
	return stage.Healthy("yield-simulation")
}
