// Package evaluation implements the final pipeline stage: the financial
// projection for a simulated element.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"bipv/internal/config"
	"bipv/internal/finance"
	"bipv/internal/ingest"
	"bipv/internal/logging"
	"bipv/internal/pvspec"
	"bipv/internal/services"
	"bipv/internal/stage"
	"bipv/internal/store"
	"bipv/internal/yield"
)

// Evaluator projects element cash flows against the project economics.
type Evaluator struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewEvaluator constructs the financial-evaluation stage handler.
func NewEvaluator(cfg *config.Config, st *store.Store, logger *slog.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, store: st, logger: logging.NewComponentLogger(logger, "financial-evaluation")}
}

// AssumptionsFromConfig maps the configured economics onto a projection.
func AssumptionsFromConfig(cfg *config.Config) finance.Assumptions {
	return finance.Assumptions{
		DiscountRate:     cfg.Finance.DiscountRate,
		AnalysisYears:    cfg.Finance.AnalysisYears,
		ImportRate:       cfg.Electricity.ImportRate,
		FeedInTariff:     cfg.Electricity.FeedInTariff,
		TariffEscalation: cfg.Electricity.AnnualEscalation,
		OMRate:           cfg.Finance.OMRate,
		DegradationRate:  cfg.Finance.DegradationRate,
	}
}

func (e *Evaluator) Prepare(ctx context.Context, element *store.Element) error {
	if element.ProgressStage == "" {
		element.ProgressStage = "Financial evaluation"
	}
	element.ProgressMessage = "Loading stage inputs"
	element.ProgressPercent = 0
	element.ErrorMessage = ""
	return nil
}

func (e *Evaluator) Execute(ctx context.Context, element *store.Element) error {
	logger := logging.WithContext(ctx, e.logger)

	var match pvspec.Match
	if err := stage.DecodeArtifact("financial-evaluation", element.SpecJSON, &match); err != nil {
		return err
	}
	var simulated yield.ElementYield
	if err := stage.DecodeArtifact("financial-evaluation", element.YieldJSON, &simulated); err != nil {
		return err
	}

	element.SetProgress("Financial evaluation", "Projecting cash flows", 50)
	factor, err := e.selfConsumptionFactor(ctx, element.ProjectID, simulated)
	if err != nil {
		return err
	}

	eval, _, err := finance.Evaluate(match.CostEUR, simulated.AnnualACKWh, factor, AssumptionsFromConfig(e.cfg))
	if err != nil {
		return services.Wrap(
			services.ErrConfiguration, "financial-evaluation", "project cash flows",
			"economic parameters rejected", err,
		)
	}

	encoded, err := stage.EncodeArtifact(eval)
	if err != nil {
		return services.Wrap(services.ErrTransient, "financial-evaluation", "store result", "", err)
	}
	element.FinanceJSON = encoded
	element.SetProgressComplete("Financial evaluation",
		fmt.Sprintf("NPV %.0f EUR over %d years", eval.NPVEUR, e.cfg.Finance.AnalysisYears))

	logger.Info("financial evaluation complete",
		logging.Float64("npv_eur", eval.NPVEUR),
		logging.Float64("irr", eval.IRR),
		logging.Float64("payback_years", eval.SimplePaybackYears),
	)
	return nil
}

// selfConsumptionFactor balances this element's production alone against the
// project demand profile. Without a demand profile every kWh is exported.
func (e *Evaluator) selfConsumptionFactor(ctx context.Context, projectID int64, simulated yield.ElementYield) (float64, error) {
	project, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "financial-evaluation", "load project", "", err)
	}
	if project == nil {
		return 0, services.Wrap(services.ErrNotFound, "financial-evaluation", "load project",
			fmt.Sprintf("project %d not found", projectID), nil)
	}
	if strings.TrimSpace(project.DemandJSON) == "" {
		return 0, nil
	}
	var demand ingest.DemandProfile
	if err := json.Unmarshal([]byte(project.DemandJSON), &demand); err != nil {
		return 0, services.Wrap(services.ErrValidation, "financial-evaluation", "decode demand profile",
			"stored demand profile is corrupt; rerun ingest", err)
	}
	balance := yield.ComputeBalance(simulated.MonthlyACKWh, demand.MonthlyKWh, yield.DefaultCoincidence)
	if balance.ProductionKWh <= 0 {
		return 0, nil
	}
	return balance.SelfConsumedKWh / balance.ProductionKWh, nil
}

func (e *Evaluator) HealthCheck(ctx context.Context) stage.Health {
	if err := AssumptionsFromConfig(e.cfg).Validate(); err != nil {
		return stage.Unhealthy("financial-evaluation", err.Error())
	}
	return stage.Healthy("financial-evaluation")
}
