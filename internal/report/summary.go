package report

import (
	"encoding/json"
	"time"

	"bipv/internal/finance"
	"bipv/internal/ingest"
	"bipv/internal/optimize"
	"bipv/internal/pvspec"
	"bipv/internal/solar"
	"bipv/internal/store"
	"bipv/internal/yield"
)

// Totals aggregates the evaluated portfolio.
type Totals struct {
	Elements         int     `json:"elements"`
	Completed        int     `json:"completed"`
	GlassAreaM2      float64 `json:"glass_area_m2"`
	CapacityKWp      float64 `json:"capacity_kwp"`
	InvestmentEUR    float64 `json:"investment_eur"`
	AnnualYieldKWh   float64 `json:"annual_yield_kwh"`
	PortfolioNPVEUR  float64 `json:"portfolio_npv_eur"`
	PositiveNPVCount int     `json:"positive_npv_count"`
}

// Summary is the JSON project report.
type Summary struct {
	Project     string                `json:"project"`
	GeneratedAt time.Time             `json:"generated_at"`
	Demand      *ingest.DemandProfile `json:"demand,omitempty"`
	Weather     *solar.WeatherProfile `json:"weather,omitempty"`
	Balance     *yield.Balance        `json:"balance,omitempty"`
	Totals      Totals                `json:"totals"`
	Selection   *optimize.Selection   `json:"selection,omitempty"`
	ByStatus    map[string]int        `json:"by_status"`
}

// BuildSummary assembles the project summary from stored state, decoding each
// element's stage artifacts directly. selection may be nil when no
// optimization has run.
func BuildSummary(project *store.Project, elements []*store.Element, selection *optimize.Selection) Summary {
	summary := Summary{
		Project:     project.Name,
		GeneratedAt: time.Now().UTC(),
		Selection:   selection,
		ByStatus:    map[string]int{},
	}

	var demand ingest.DemandProfile
	if decodeArtifact(project.DemandJSON, &demand) {
		summary.Demand = &demand
	}
	var weather solar.WeatherProfile
	if decodeArtifact(project.WeatherJSON, &weather) {
		summary.Weather = &weather
	}

	var production [12]float64
	for _, element := range elements {
		summary.ByStatus[string(element.Status)]++
		summary.Totals.Elements++
		summary.Totals.GlassAreaM2 += element.GlassAreaM2
		if element.Status != store.StatusCompleted {
			continue
		}
		summary.Totals.Completed++

		var match pvspec.Match
		if decodeArtifact(element.SpecJSON, &match) {
			summary.Totals.CapacityKWp += match.CapacityKWp
		}
		var eval finance.Evaluation
		if decodeArtifact(element.FinanceJSON, &eval) {
			summary.Totals.InvestmentEUR += eval.InvestmentEUR
			summary.Totals.PortfolioNPVEUR += eval.NPVEUR
			if eval.NPVEUR > 0 {
				summary.Totals.PositiveNPVCount++
			}
		}
		var simulated yield.ElementYield
		if decodeArtifact(element.YieldJSON, &simulated) {
			summary.Totals.AnnualYieldKWh += simulated.AnnualACKWh
			for m := range production {
				production[m] += simulated.MonthlyACKWh[m]
			}
		}
	}

	if summary.Demand != nil && summary.Totals.AnnualYieldKWh > 0 {
		balance := yield.ComputeBalance(production, summary.Demand.MonthlyKWh, yield.DefaultCoincidence)
		summary.Balance = &balance
	}

	return summary
}

// MarshalSummary renders the summary as indented JSON.
func MarshalSummary(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}
