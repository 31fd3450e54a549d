package finance_test

import (
	"math"
	"testing"

	"bipv/internal/finance"
)

func baseAssumptions() finance.Assumptions {
	return finance.Assumptions{
		DiscountRate:     0.04,
		AnalysisYears:    25,
		ImportRate:       0.32,
		FeedInTariff:     0.08,
		TariffEscalation: 0.02,
		OMRate:           0.01,
		DegradationRate:  0.005,
	}
}

func TestEvaluateProfitableInstallation(t *testing.T) {
	// 10 kWp-ish installation: 8500 kWh/a, 12k€ invested, 60% self-consumed.
	eval, flows, err := finance.Evaluate(12000, 8500, 0.6, baseAssumptions())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(flows) != 25 {
		t.Fatalf("expected 25 year flows, got %d", len(flows))
	}
	if eval.NPVEUR <= 0 {
		t.Fatalf("expected positive NPV, got %v", eval.NPVEUR)
	}
	if !eval.IRRValid || eval.IRR <= 0.04 {
		t.Fatalf("expected IRR above discount rate, got %v (valid=%v)", eval.IRR, eval.IRRValid)
	}
	if !finance.PaybackReached(eval.SimplePaybackYears) {
		t.Fatal("expected simple payback inside analysis period")
	}
	if eval.DiscPaybackYears < eval.SimplePaybackYears {
		t.Fatalf("discounted payback %v cannot precede simple payback %v",
			eval.DiscPaybackYears, eval.SimplePaybackYears)
	}
	if eval.LCOEEURPerKWh <= 0 || eval.LCOEEURPerKWh > 0.25 {
		t.Fatalf("LCOE implausible: %v €/kWh", eval.LCOEEURPerKWh)
	}

	// Degradation shrinks yield year over year.
	if flows[10].YieldKWh >= flows[0].YieldKWh {
		t.Fatalf("expected degraded yield: year11=%v year1=%v", flows[10].YieldKWh, flows[0].YieldKWh)
	}
	// Escalation grows per-kWh revenue faster than degradation removes it here.
	if flows[24].SavingsEUR <= flows[0].SavingsEUR {
		t.Fatalf("expected escalated savings: year25=%v year1=%v", flows[24].SavingsEUR, flows[0].SavingsEUR)
	}
}

func TestEvaluateUnprofitableInstallation(t *testing.T) {
	// North facade economics: tiny yield against a large investment.
	eval, _, err := finance.Evaluate(20000, 500, 0.6, baseAssumptions())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if eval.NPVEUR >= 0 {
		t.Fatalf("expected negative NPV, got %v", eval.NPVEUR)
	}
	if finance.PaybackReached(eval.SimplePaybackYears) {
		t.Fatalf("expected no payback, got %v", eval.SimplePaybackYears)
	}
}

func TestEvaluateNPVConsistentWithFlows(t *testing.T) {
	eval, flows, err := finance.Evaluate(10000, 6000, 0.5, baseAssumptions())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	total := -eval.InvestmentEUR
	for _, flow := range flows {
		total += flow.DiscountedEUR
	}
	if math.Abs(total-eval.NPVEUR) > 1e-6 {
		t.Fatalf("NPV %v disagrees with discounted flow sum %v", eval.NPVEUR, total)
	}
	if math.Abs(flows[len(flows)-1].DiscCumulative-eval.NPVEUR) > 1e-6 {
		t.Fatalf("final cumulative %v disagrees with NPV %v",
			flows[len(flows)-1].DiscCumulative, eval.NPVEUR)
	}
}

func TestEvaluateIRRZeroAtBreakEven(t *testing.T) {
	// Flat flows with zero discounting: find the rate where NPV crosses zero.
	a := baseAssumptions()
	a.TariffEscalation = 0
	a.DegradationRate = 0
	a.OMRate = 0
	a.DiscountRate = 0

	// 1000 €/a on 10000 € over 25 years: IRR solves annuity, roughly 9.1%.
	eval, _, err := finance.Evaluate(10000, 3125, 1, a)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !eval.IRRValid {
		t.Fatal("expected valid IRR")
	}
	if eval.IRR < 0.085 || eval.IRR > 0.095 {
		t.Fatalf("expected IRR near 9.1%%, got %v", eval.IRR)
	}
}

func TestEvaluateValidation(t *testing.T) {
	a := baseAssumptions()
	if _, _, err := finance.Evaluate(0, 1000, 0.5, a); err == nil {
		t.Fatal("expected error for zero investment")
	}
	if _, _, err := finance.Evaluate(1000, 1000, 1.5, a); err == nil {
		t.Fatal("expected error for self-consumption factor above 1")
	}
	a.AnalysisYears = 0
	if _, _, err := finance.Evaluate(1000, 1000, 0.5, a); err == nil {
		t.Fatal("expected error for zero analysis period")
	}
}
