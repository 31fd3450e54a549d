// Package radiation implements the first pipeline stage: the clear-sky
// irradiation profile for one facade element.
package radiation

import (
	"context"
	"fmt"
	"log/slog"

	"bipv/internal/config"
	"bipv/internal/facade"
	"bipv/internal/logging"
	"bipv/internal/services"
	"bipv/internal/solar"
	"bipv/internal/stage"
	"bipv/internal/store"
)

// Result is the stage artifact stored on the element.
type Result struct {
	Orientation  string      `json:"orientation"`
	AzimuthDeg   float64     `json:"azimuth_deg"`
	TiltDeg      float64     `json:"tilt_deg"`
	MonthlyKWhM2 [12]float64 `json:"monthly_kwh_m2"`
	AnnualKWhM2  float64     `json:"annual_kwh_m2"`
}

// Analyzer computes per-element irradiation.
type Analyzer struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewAnalyzer constructs the radiation stage handler.
func NewAnalyzer(cfg *config.Config, st *store.Store, logger *slog.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, store: st, logger: logging.NewComponentLogger(logger, "radiation-analysis")}
}

// siteFor resolves the model site for an element: the site frozen on the
// project at creation wins over the current config, so every element of a
// project is analyzed at the same location the weather profile used.
func (a *Analyzer) siteFor(ctx context.Context, projectID int64) (solar.Site, error) {
	if a.store != nil {
		project, err := a.store.GetProject(ctx, projectID)
		if err != nil {
			return solar.Site{}, err
		}
		if project != nil {
			if site, ok := solar.SiteFromSnapshot(project.SiteJSON); ok {
				return site, nil
			}
		}
	}
	return solar.SiteFromConfig(a.cfg), nil
}

func (a *Analyzer) Prepare(ctx context.Context, element *store.Element) error {
	logger := logging.WithContext(ctx, a.logger)
	if element.ProgressStage == "" {
		element.ProgressStage = "Radiation analysis"
	}
	element.ProgressMessage = "Validating element geometry"
	element.ProgressPercent = 0
	element.ErrorMessage = ""

	if element.GlassAreaM2 < a.cfg.PV.MinElementArea {
		return services.Wrap(
			services.ErrValidation, "radiation-analysis", "validate geometry",
			fmt.Sprintf("glass area %.2f m2 below configured minimum %.2f m2",
				element.GlassAreaM2, a.cfg.PV.MinElementArea),
			nil,
		)
	}
	if element.TiltDeg < 0 || element.TiltDeg > 180 {
		return services.Wrap(
			services.ErrValidation, "radiation-analysis", "validate geometry",
			fmt.Sprintf("tilt %.1f degrees outside [0,180]", element.TiltDeg),
			nil,
		)
	}
	logger.Info("starting radiation analysis",
		logging.Float64("azimuth_deg", element.AzimuthDeg),
		logging.Float64("glass_area_m2", element.GlassAreaM2),
	)
	return nil
}

func (a *Analyzer) Execute(ctx context.Context, element *store.Element) error {
	logger := logging.WithContext(ctx, a.logger)
	site, err := a.siteFor(ctx, element.ProjectID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "radiation-analysis", "load project site", "", err)
	}

	element.SetProgress("Radiation analysis", "Integrating clear-sky model", 30)
	result := Result{
		Orientation: facade.OrientationLabel(element.AzimuthDeg),
		AzimuthDeg:  element.AzimuthDeg,
		TiltDeg:     element.TiltDeg,
	}
	result.MonthlyKWhM2 = solar.MonthlyIrradiation(site, element.AzimuthDeg, element.TiltDeg)
	result.AnnualKWhM2 = solar.AnnualIrradiation(result.MonthlyKWhM2)
	if result.AnnualKWhM2 <= 0 {
		return services.Wrap(
			services.ErrConfiguration, "radiation-analysis", "integrate model",
			"clear-sky model produced zero irradiation; check site latitude and altitude",
			nil,
		)
	}

	encoded, err := stage.EncodeArtifact(result)
	if err != nil {
		return services.Wrap(services.ErrTransient, "radiation-analysis", "store result", "", err)
	}
	element.RadiationJSON = encoded
	element.SetProgressComplete("Radiation analysis", fmt.Sprintf("%.0f kWh/m2 per year", result.AnnualKWhM2))

	logger.Info("radiation analysis complete",
		logging.String("orientation", result.Orientation),
		logging.Float64("annual_kwh_m2", result.AnnualKWhM2),
	)
	return nil
}

func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	site := solar.SiteFromConfig(a.cfg)
	if site.Latitude < -90 || site.Latitude > 90 {
		return stage.Unhealthy("radiation-analysis", fmt.Sprintf("latitude %v out of range", site.Latitude))
	}
	if site.Longitude < -180 || site.Longitude > 180 {
		return stage.Unhealthy("radiation-analysis", fmt.Sprintf("longitude %v out of range", site.Longitude))
	}
	return stage.Healthy("radiation-analysis")
}
