// Package panelmatch implements the second pipeline stage: choosing a BIPV
// glass class for an element and sizing its capacity and cost.
package panelmatch

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
)

// Vertical vision glazing keeps a daylight floor; tilted spandrel or roof
// elements may go opaque.
const visionTransparency = 0.05

// Matcher selects panel classes for analyzed elements.
type Matcher struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewMatcher constructs the panel-matching stage handler.
func NewMatcher(cfg *config.Config, logger *slog.Logger) *Matcher {
	return &Matcher{cfg: cfg, logger: logging.NewComponentLogger(logger, "panel-matching")}
}

func (m *Matcher) Prepare(ctx context.Context, element *store.Element) error {
	if element.ProgressStage == "" {
		element.ProgressStage = "Panel matching"
	}
	element.ProgressMessage = "Loading radiation result"
	element.ProgressPercent = 0
	element.ErrorMessage = ""
	return nil
}

func (m *Matcher) Execute(ctx context.Context, element *store.Element) error {
	logger := logging.WithContext(ctx, m.logger)

	var rad radiation.Result
	if err := stage.DecodeArtifact("panel-matching", element.RadiationJSON, &rad); err != nil {
		return err
	}

	minTransparency := 0.0
	if element.TiltDeg >= 75 {
		minTransparency = visionTransparency
	}

	element.SetProgress("Panel matching", "Selecting panel class", 40)
	match, err := pvspec.MatchElement(element.GlassAreaM2, rad.AnnualKWhM2, minTransparency)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "panel-matching", "select panel",
			"no catalog class fits this element", err,
		)
	}

	encoded, err := stage.EncodeArtifact(match)
	if err != nil {
		return services.Wrap(services.ErrTransient, "panel-matching", "store result", "", err)
	}
	element.SpecJSON = encoded
	element.SetProgressComplete("Panel matching",
		fmt.Sprintf("%s, %.2f kWp", match.PanelCode, match.CapacityKWp))

	logger.Info("panel matched",
		logging.String("panel_code", match.PanelCode),
		logging.Float64("capacity_kwp", match.CapacityKWp),
		logging.Float64("cost_eur", match.CostEUR),
	)
	return nil
}

func (m *Matcher) HealthCheck(ctx context.Context) stage.Health {
	if len(pvspec.Catalog()) == 0 {
		return stage.Unhealthy("panel-matching", "empty panel catalog")
	}
	return stage.Healthy("panel-matching")
}
