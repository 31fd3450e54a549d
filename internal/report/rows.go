package report

import (
	"encoding/json"

	"bipv/internal/facade"
	"bipv/internal/finance"
	"bipv/internal/pvspec"
	"bipv/internal/radiation"
	"bipv/internal/store"
	"bipv/internal/yield"
)

// ElementRow flattens one facade element and its stage artifacts for the CSV
// report. Elements that have not completed all stages carry zeros in the
// fields their missing artifacts would have filled.
type ElementRow struct {
	ElementKey          string
	Label               string
	Level               string
	Orientation         string
	AzimuthDeg          float64
	TiltDeg             float64
	GlassAreaM2         float64
	Status              store.Status
	AnnualKWhM2         float64
	PanelCode           string
	CapacityKWp         float64
	InvestmentEUR       float64
	AnnualACKWh         float64
	SpecificYieldKWhKWp float64
	NPVEUR              float64
	IRR                 float64
	IRRValid            bool
	SimplePaybackYears  float64
	LCOEEURPerKWh       float64
	Evaluated           bool
	Selected            bool
}

// BuildRows flattens elements into report rows. selectedIDs marks the
// elements chosen by the portfolio optimizer; pass nil when no optimization
// has run.
func BuildRows(elements []*store.Element, selectedIDs []int64) []ElementRow {
	selected := make(map[int64]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	rows := make([]ElementRow, 0, len(elements))
	for _, element := range elements {
		row := ElementRow{
			ElementKey:  element.ElementKey,
			Label:       element.Label,
			Level:       element.Level,
			Orientation: facade.OrientationLabel(element.AzimuthDeg),
			AzimuthDeg:  element.AzimuthDeg,
			TiltDeg:     element.TiltDeg,
			GlassAreaM2: element.GlassAreaM2,
			Status:      element.Status,
			Selected:    selected[element.ID],
		}

		var rad radiation.Result
		if decodeArtifact(element.RadiationJSON, &rad) {
			row.AnnualKWhM2 = rad.AnnualKWhM2
		}
		var match pvspec.Match
		if decodeArtifact(element.SpecJSON, &match) {
			row.PanelCode = match.PanelCode
			row.CapacityKWp = match.CapacityKWp
			row.InvestmentEUR = match.CostEUR
		}
		var simulated yield.ElementYield
		if decodeArtifact(element.YieldJSON, &simulated) {
			row.AnnualACKWh = simulated.AnnualACKWh
			row.SpecificYieldKWhKWp = simulated.SpecificYieldKWhKWp
		}
		var eval finance.Evaluation
		if decodeArtifact(element.FinanceJSON, &eval) {
			row.Evaluated = true
			row.NPVEUR = eval.NPVEUR
			row.IRR = eval.IRR
			row.IRRValid = eval.IRRValid
			row.SimplePaybackYears = eval.SimplePaybackYears
			row.LCOEEURPerKWh = eval.LCOEEURPerKWh
		}
		rows = append(rows, row)
	}
	return rows
}

func decodeArtifact(raw string, out any) bool {
	if raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}
