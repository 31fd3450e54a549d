package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bipv/internal/finance"
)

var titleCaser = cases.Title(language.English)

var csvHeader = []string{
	"Element", "Label", "Level", "Orientation", "Azimuth [deg]", "Tilt [deg]",
	"Glass Area [m2]", "Status", "Irradiation [kWh/m2a]", "Panel",
	"Capacity [kWp]", "Investment [EUR]", "Yield [kWh/a]",
	"Specific Yield [kWh/kWp]", "NPV [EUR]", "IRR [%]",
	"Payback [a]", "LCOE [EUR/kWh]", "Selected",
}

// WriteCSV writes the per-element report to the report directory and returns
// the path of the created file.
func WriteCSV(dir, projectName string, rows []ElementRow) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_elements_%s.csv", slugify(projectName), timestamp()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(formatRow(row)); err != nil {
			return "", fmt.Errorf("write row %s: %w", row.ElementKey, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return path, nil
}

// WriteSummary writes the JSON project summary and returns the path of the
// created file.
func WriteSummary(dir, projectName string, summary Summary) (string, error) {
	payload, err := MarshalSummary(summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_summary_%s.json", slugify(projectName), timestamp()))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

func formatRow(row ElementRow) []string {
	irr := ""
	if row.IRRValid {
		irr = strconv.FormatFloat(row.IRR*100, 'f', 1, 64)
	}
	payback := ""
	if row.Evaluated && finance.PaybackReached(row.SimplePaybackYears) {
		payback = strconv.FormatFloat(row.SimplePaybackYears, 'f', 1, 64)
	}
	selected := ""
	if row.Selected {
		selected = "yes"
	}
	return []string{
		row.ElementKey,
		row.Label,
		row.Level,
		titleCaser.String(row.Orientation),
		strconv.FormatFloat(row.AzimuthDeg, 'f', 1, 64),
		strconv.FormatFloat(row.TiltDeg, 'f', 1, 64),
		strconv.FormatFloat(row.GlassAreaM2, 'f', 2, 64),
		string(row.Status),
		strconv.FormatFloat(row.AnnualKWhM2, 'f', 1, 64),
		row.PanelCode,
		strconv.FormatFloat(row.CapacityKWp, 'f', 3, 64),
		strconv.FormatFloat(row.InvestmentEUR, 'f', 2, 64),
		strconv.FormatFloat(row.AnnualACKWh, 'f', 1, 64),
		strconv.FormatFloat(row.SpecificYieldKWhKWp, 'f', 1, 64),
		strconv.FormatFloat(row.NPVEUR, 'f', 2, 64),
		irr,
		payback,
		strconv.FormatFloat(row.LCOEEURPerKWh, 'f', 4, 64),
		selected,
	}
}

func timestamp() string {
	return time.Now().Format("2006-01-02_150405")
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, slug)
	if slug == "" {
		slug = "project"
	}
	return slug
}
