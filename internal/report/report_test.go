package report_test

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"bipv/internal/finance"
	"bipv/internal/ingest"
	"bipv/internal/optimize"
	"bipv/internal/pvspec"
	"bipv/internal/radiation"
	"bipv/internal/report"
	"bipv/internal/store"
	"bipv/internal/yield"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(payload)
}

func completedElement(t *testing.T, id int64, key string, npv float64) *store.Element {
	t.Helper()
	simulated := yield.ElementYield{AnnualACKWh: 1200, SpecificYieldKWhKWp: 750}
	for i := range simulated.MonthlyACKWh {
		simulated.MonthlyACKWh[i] = 100
	}
	return &store.Element{
		ID:          id,
		ElementKey:  key,
		Label:       "Window " + key,
		Level:       "02",
		AzimuthDeg:  180,
		TiltDeg:     90,
		GlassAreaM2: 8.4,
		Status:      store.StatusCompleted,
		RadiationJSON: mustJSON(t, radiation.Result{
			Orientation: "south", AnnualKWhM2: 820,
		}),
		SpecJSON: mustJSON(t, pvspec.Match{
			PanelCode: "cigs-05", CapacityKWp: 1.6, CostEUR: 5200,
		}),
		YieldJSON: mustJSON(t, simulated),
		FinanceJSON: mustJSON(t, finance.Evaluation{
			InvestmentEUR: 5200, NPVEUR: npv, IRR: 0.062, IRRValid: true,
			SimplePaybackYears: 11.4, LCOEEURPerKWh: 0.11,
		}),
	}
}

func TestBuildRowsFlattensArtifacts(t *testing.T) {
	elements := []*store.Element{
		completedElement(t, 1, "367277", 900),
		{ID: 2, ElementKey: "367280", AzimuthDeg: 0, Status: store.StatusPending},
	}

	rows := report.BuildRows(elements, []int64{1})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Orientation != "south" || rows[0].PanelCode != "cigs-05" || !rows[0].Selected {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if !rows[0].Evaluated || rows[0].NPVEUR != 900 {
		t.Fatalf("finance artifact not flattened: %+v", rows[0])
	}
	if rows[1].Evaluated || rows[1].Selected || rows[1].Orientation != "north" {
		t.Fatalf("pending element should stay empty: %+v", rows[1])
	}
}

func TestBuildSummaryAggregatesCompletedElements(t *testing.T) {
	demand := ingest.DemandProfile{}
	for i := range demand.MonthlyKWh {
		demand.MonthlyKWh[i] = 2000
		demand.AnnualKWh += 2000
	}
	project := &store.Project{
		Name:       "HQ Refurbishment",
		DemandJSON: mustJSON(t, &demand),
	}
	elements := []*store.Element{
		completedElement(t, 1, "367277", 900),
		completedElement(t, 2, "367278", -150),
		{ID: 3, ElementKey: "367280", Status: store.StatusFailed},
	}
	selection := &optimize.Selection{SelectedIDs: []int64{1}, Method: "exhaustive"}

	summary := report.BuildSummary(project, elements, selection)
	if summary.Totals.Elements != 3 || summary.Totals.Completed != 2 {
		t.Fatalf("unexpected totals: %+v", summary.Totals)
	}
	if summary.Totals.CapacityKWp != 3.2 || summary.Totals.InvestmentEUR != 10400 {
		t.Fatalf("unexpected capacity or investment: %+v", summary.Totals)
	}
	if summary.Totals.PositiveNPVCount != 1 {
		t.Fatalf("expected 1 positive-NPV element, got %d", summary.Totals.PositiveNPVCount)
	}
	if summary.Totals.AnnualYieldKWh != 2400 {
		t.Fatalf("unexpected annual yield: %v", summary.Totals.AnnualYieldKWh)
	}
	if summary.Balance == nil {
		t.Fatal("expected energy balance with demand profile present")
	}
	// 200 kWh/month production against 2000 kWh demand is fully self-consumed.
	if summary.Balance.SelfConsumptionRate < 99 {
		t.Fatalf("unexpected self-consumption rate: %v", summary.Balance.SelfConsumptionRate)
	}
	if summary.ByStatus["failed"] != 1 {
		t.Fatalf("unexpected status counts: %v", summary.ByStatus)
	}
	if summary.Selection == nil || summary.Selection.Method != "exhaustive" {
		t.Fatal("selection not carried into summary")
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	rows := report.BuildRows([]*store.Element{completedElement(t, 1, "367277", 900)}, []int64{1})

	path, err := report.WriteCSV(dir, "HQ Refurbishment", rows)
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if !strings.Contains(path, "hq-refurbishment_elements_") {
		t.Fatalf("unexpected report path: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	if records[0][0] != "Element" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	row := records[1]
	if row[0] != "367277" || row[3] != "South" || row[18] != "yes" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestWriteSummaryRoundTrips(t *testing.T) {
	dir := t.TempDir()
	project := &store.Project{Name: "hq"}
	elements := []*store.Element{completedElement(t, 1, "367277", 900)}
	summary := report.BuildSummary(project, elements, nil)

	path, err := report.WriteSummary(dir, project.Name, summary)
	if err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var decoded report.Summary
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("summary not decodable: %v", err)
	}
	if decoded.Project != "hq" || decoded.Totals.Completed != 1 {
		t.Fatalf("unexpected summary: %+v", decoded)
	}
}
