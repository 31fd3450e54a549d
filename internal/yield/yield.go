// Package yield turns per-element irradiation into AC energy and balances
// project production against the demand profile.
package yield

import "fmt"

// ElementYield is the simulation stage artifact stored on the element.
type ElementYield struct {
	MonthlyACKWh        [12]float64 `json:"monthly_ac_kwh"`
	AnnualACKWh         float64     `json:"annual_ac_kwh"`
	SpecificYieldKWhKWp float64     `json:"specific_yield_kwh_kwp"`
	PerformanceRatio    float64     `json:"performance_ratio"`
}

// Simulate computes monthly AC yield as plane-of-array irradiation times
// nameplate capacity times the system performance ratio. Capacity is
// glass area × module efficiency at 1 kW/m², so the irradiation term carries
// the orientation and tilt of the element.
func Simulate(monthlyIrradiationKWhM2 [12]float64, capacityKWp, performanceRatio float64) (ElementYield, error) {
	if capacityKWp <= 0 {
		return ElementYield{}, fmt.Errorf("non-positive capacity %v kWp", capacityKWp)
	}
	if performanceRatio <= 0 || performanceRatio > 1 {
		return ElementYield{}, fmt.Errorf("performance ratio %v outside (0,1]", performanceRatio)
	}

	out := ElementYield{PerformanceRatio: performanceRatio}
	for m, irradiation := range monthlyIrradiationKWhM2 {
		ac := irradiation * capacityKWp * performanceRatio
		out.MonthlyACKWh[m] = ac
		out.AnnualACKWh += ac
	}
	out.SpecificYieldKWhKWp = out.AnnualACKWh / capacityKWp
	return out, nil
}

// Balance describes how project production lines up against demand.
// Rates are percentages.
type Balance struct {
	ProductionKWh       float64     `json:"production_kwh"`
	ConsumptionKWh      float64     `json:"consumption_kwh"`
	SelfConsumedKWh     float64     `json:"self_consumed_kwh"`
	GridImportKWh       float64     `json:"grid_import_kwh"`
	GridExportKWh       float64     `json:"grid_export_kwh"`
	SelfConsumptionRate float64     `json:"self_consumption_rate"`
	AutarchyRate        float64     `json:"autarchy_rate"`
	MonthlyProduction   [12]float64 `json:"monthly_production_kwh"`
	MonthlyConsumption  [12]float64 `json:"monthly_consumption_kwh"`
}

// DefaultCoincidence is the share of monthly demand assumed to fall inside
// production hours when no interval data exists.
const DefaultCoincidence = 0.7

// ComputeBalance nets monthly production against monthly demand. Because only
// monthly totals exist, the coincidence factor caps how much of a month's
// demand production can serve directly; the remainder is exported.
func ComputeBalance(production, consumption [12]float64, coincidence float64) Balance {
	if coincidence <= 0 || coincidence > 1 {
		coincidence = DefaultCoincidence
	}

	balance := Balance{MonthlyProduction: production, MonthlyConsumption: consumption}
	for m := 0; m < 12; m++ {
		prod := production[m]
		cons := consumption[m]
		selfConsumed := min(prod, cons*coincidence)

		balance.ProductionKWh += prod
		balance.ConsumptionKWh += cons
		balance.SelfConsumedKWh += selfConsumed
		balance.GridExportKWh += prod - selfConsumed
		balance.GridImportKWh += cons - selfConsumed
	}

	// Self-consumption: share of production consumed locally.
	if balance.ProductionKWh > 0 {
		balance.SelfConsumptionRate = (balance.ProductionKWh - balance.GridExportKWh) / balance.ProductionKWh * 100
	}
	// Autarchy: share of consumption covered by local production.
	total := balance.GridImportKWh + balance.ProductionKWh - balance.GridExportKWh
	if total > 0 {
		balance.AutarchyRate = (total - balance.GridImportKWh) / total * 100
	}
	return balance
}
