// Package finance projects BIPV cash flows and computes the investment
// metrics reported per element and per project: NPV, IRR, payback, LCOE.
package finance

import (
	"fmt"
	"math"
)

// Assumptions are the economic parameters of a projection.
type Assumptions struct {
	DiscountRate     float64
	AnalysisYears    int
	ImportRate       float64
	FeedInTariff     float64
	TariffEscalation float64
	OMRate           float64
	DegradationRate  float64
}

// Validate rejects assumptions that would make the projection meaningless.
func (a Assumptions) Validate() error {
	if a.AnalysisYears <= 0 {
		return fmt.Errorf("analysis period %d years must be positive", a.AnalysisYears)
	}
	if a.DiscountRate < 0 || a.DiscountRate >= 1 {
		return fmt.Errorf("discount rate %v outside [0,1)", a.DiscountRate)
	}
	if a.DegradationRate < 0 || a.DegradationRate >= 0.1 {
		return fmt.Errorf("degradation rate %v outside [0,0.1)", a.DegradationRate)
	}
	if a.ImportRate < 0 || a.FeedInTariff < 0 {
		return fmt.Errorf("negative tariff")
	}
	return nil
}

// YearFlow is one year of the projection.
type YearFlow struct {
	Year           int     `json:"year"`
	YieldKWh       float64 `json:"yield_kwh"`
	SavingsEUR     float64 `json:"savings_eur"`
	FeedInEUR      float64 `json:"feed_in_eur"`
	OMCostEUR      float64 `json:"om_cost_eur"`
	NetFlowEUR     float64 `json:"net_flow_eur"`
	DiscountedEUR  float64 `json:"discounted_eur"`
	CumulativeEUR  float64 `json:"cumulative_eur"`
	DiscCumulative float64 `json:"discounted_cumulative_eur"`
}

// Evaluation is the financial stage artifact.
type Evaluation struct {
	InvestmentEUR         float64 `json:"investment_eur"`
	NPVEUR                float64 `json:"npv_eur"`
	IRR                   float64 `json:"irr"`
	IRRValid              bool    `json:"irr_valid"`
	SimplePaybackYears    float64 `json:"simple_payback_years"`
	DiscPaybackYears      float64 `json:"discounted_payback_years"`
	LCOEEURPerKWh         float64 `json:"lcoe_eur_per_kwh"`
	LifetimeYieldKWh      float64 `json:"lifetime_yield_kwh"`
	LifetimeRevenueEUR    float64 `json:"lifetime_revenue_eur"`
	SelfConsumptionFactor float64 `json:"self_consumption_factor"`
}

// Evaluate projects cash flows for an installation. annualYieldKWh is the
// first-year AC yield; selfConsumptionFactor splits it between displaced
// imports and feed-in. Year flows degrade the yield, escalate both tariffs,
// and charge O&M as a fraction of the investment.
func Evaluate(investmentEUR, annualYieldKWh, selfConsumptionFactor float64, a Assumptions) (Evaluation, []YearFlow, error) {
	if err := a.Validate(); err != nil {
		return Evaluation{}, nil, err
	}
	if investmentEUR <= 0 {
		return Evaluation{}, nil, fmt.Errorf("non-positive investment %v", investmentEUR)
	}
	if annualYieldKWh < 0 {
		return Evaluation{}, nil, fmt.Errorf("negative annual yield %v", annualYieldKWh)
	}
	if selfConsumptionFactor < 0 || selfConsumptionFactor > 1 {
		return Evaluation{}, nil, fmt.Errorf("self-consumption factor %v outside [0,1]", selfConsumptionFactor)
	}

	flows := make([]YearFlow, a.AnalysisYears)
	// Payback of -1 means the investment never pays back inside the period.
	eval := Evaluation{
		InvestmentEUR:         investmentEUR,
		SelfConsumptionFactor: selfConsumptionFactor,
		SimplePaybackYears:    -1,
		DiscPaybackYears:      -1,
	}

	cumulative := -investmentEUR
	discCumulative := -investmentEUR
	discountedEnergy := 0.0

	for y := 1; y <= a.AnalysisYears; y++ {
		degradation := math.Pow(1-a.DegradationRate, float64(y-1))
		escalation := math.Pow(1+a.TariffEscalation, float64(y-1))
		discount := math.Pow(1+a.DiscountRate, float64(y))

		yieldKWh := annualYieldKWh * degradation
		selfKWh := yieldKWh * selfConsumptionFactor
		exportKWh := yieldKWh - selfKWh

		flow := YearFlow{
			Year:       y,
			YieldKWh:   yieldKWh,
			SavingsEUR: selfKWh * a.ImportRate * escalation,
			FeedInEUR:  exportKWh * a.FeedInTariff * escalation,
			OMCostEUR:  investmentEUR * a.OMRate,
		}
		flow.NetFlowEUR = flow.SavingsEUR + flow.FeedInEUR - flow.OMCostEUR
		flow.DiscountedEUR = flow.NetFlowEUR / discount

		cumulative += flow.NetFlowEUR
		discCumulative += flow.DiscountedEUR
		flow.CumulativeEUR = cumulative
		flow.DiscCumulative = discCumulative

		eval.LifetimeYieldKWh += yieldKWh
		eval.LifetimeRevenueEUR += flow.SavingsEUR + flow.FeedInEUR
		discountedEnergy += yieldKWh / discount

		if eval.SimplePaybackYears < 0 && cumulative >= 0 && flow.NetFlowEUR > 0 {
			eval.SimplePaybackYears = float64(y) - cumulative/flow.NetFlowEUR
		}
		if eval.DiscPaybackYears < 0 && discCumulative >= 0 && flow.DiscountedEUR > 0 {
			eval.DiscPaybackYears = float64(y) - discCumulative/flow.DiscountedEUR
		}

		flows[y-1] = flow
	}

	eval.NPVEUR = discCumulative
	if discountedEnergy > 0 {
		omPresent := 0.0
		for y := 1; y <= a.AnalysisYears; y++ {
			omPresent += (investmentEUR * a.OMRate) / math.Pow(1+a.DiscountRate, float64(y))
		}
		eval.LCOEEURPerKWh = (investmentEUR + omPresent) / discountedEnergy
	}
	eval.IRR, eval.IRRValid = irr(investmentEUR, flows)
	return eval, flows, nil
}

// PaybackReached reports whether a payback value is inside the analysis period.
func PaybackReached(years float64) bool {
	return years >= 0
}

// irr solves NPV(rate)=0 by bisection over [-0.99, 1.0]. The cash flow shape
// here (one negative outlay, then recurring net income) has at most one sign
// change, so when the endpoints bracket a root bisection finds it.
func irr(investmentEUR float64, flows []YearFlow) (float64, bool) {
	npvAt := func(rate float64) float64 {
		total := -investmentEUR
		for _, flow := range flows {
			total += flow.NetFlowEUR / math.Pow(1+rate, float64(flow.Year))
		}
		return total
	}

	lo, hi := -0.99, 1.0
	npvLo, npvHi := npvAt(lo), npvAt(hi)
	if npvLo*npvHi > 0 {
		return 0, false
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		v := npvAt(mid)
		if math.Abs(v) < 1e-9 {
			return mid, true
		}
		if v*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = v
		}
	}
	return (lo + hi) / 2, true
}
