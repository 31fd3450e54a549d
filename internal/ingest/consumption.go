package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DemandProfile is the monthly consumption summary persisted on the project.
type DemandProfile struct {
	MonthlyKWh [12]float64 `json:"monthly_kwh"`
	AnnualKWh  float64     `json:"annual_kwh"`
	Years      int         `json:"years_averaged"`
	Source     string      `json:"source"`
}

// PeakMonth returns the 1-based month with the highest average consumption.
func (p *DemandProfile) PeakMonth() int {
	peak := 0
	for m := 1; m < 12; m++ {
		if p.MonthlyKWh[m] > p.MonthlyKWh[peak] {
			peak = m
		}
	}
	return peak + 1
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// LoadConsumptionFile reads and parses a consumption CSV from disk.
func LoadConsumptionFile(path string) (*DemandProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open consumption file: %w", err)
	}
	defer f.Close()

	profile, err := ParseConsumption(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	profile.Source = path
	return profile, nil
}

// ParseConsumption reads month/kWh rows. The first column carries the month
// as a number (1-12), a name ("January", "Jan"), or a year-month ("2023-01");
// the second the consumption in kWh. Header rows and blank lines are skipped,
// and months appearing more than once (several years of data) are averaged.
func ParseConsumption(r io.Reader) (*DemandProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	sums := [12]float64{}
	counts := [12]int{}
	rows := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read consumption row: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		monthField := strings.TrimSpace(record[0])
		valueField := strings.TrimSpace(record[1])
		if monthField == "" || valueField == "" {
			continue
		}

		month, ok := parseMonth(monthField)
		if !ok {
			// Assume a header row and skip it.
			continue
		}
		kwh, err := parseKWh(valueField)
		if err != nil {
			return nil, fmt.Errorf("month %s: %w", monthField, err)
		}
		if kwh < 0 {
			return nil, fmt.Errorf("month %s: negative consumption %v", monthField, kwh)
		}
		sums[month-1] += kwh
		counts[month-1]++
		rows++
	}

	if rows == 0 {
		return nil, errors.New("no consumption rows found")
	}
	var missing []string
	for m := 0; m < 12; m++ {
		if counts[m] == 0 {
			missing = append(missing, time.Month(m+1).String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("incomplete consumption data, missing %s", strings.Join(missing, ", "))
	}

	profile := &DemandProfile{}
	years := counts[0]
	for m := 0; m < 12; m++ {
		profile.MonthlyKWh[m] = sums[m] / float64(counts[m])
		profile.AnnualKWh += profile.MonthlyKWh[m]
		if counts[m] < years {
			years = counts[m]
		}
	}
	profile.Years = years
	return profile, nil
}

func parseMonth(field string) (int, bool) {
	field = strings.TrimSpace(field)
	if n, err := strconv.Atoi(field); err == nil {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	// Year-month forms: 2023-01, 2023/01
	for _, sep := range []string{"-", "/"} {
		if parts := strings.Split(field, sep); len(parts) == 2 {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n >= 1 && n <= 12 {
				return n, true
			}
		}
	}
	lower := strings.ToLower(field)
	if len(lower) >= 3 {
		if n, ok := monthNames[lower[:3]]; ok {
			return n, true
		}
	}
	return 0, false
}

// parseKWh tolerates thousands separators and a decimal comma.
func parseKWh(field string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\'', '_':
			return -1
		}
		return r
	}, field)
	cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "kwh")

	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			// 1,234.5 — comma is the thousands separator.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else if parts := strings.Split(cleaned, ","); len(parts) == 2 && len(parts[1]) != 3 {
			// 1234,5 — decimal comma.
			cleaned = parts[0] + "." + parts[1]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid consumption value %q", field)
	}
	return value, nil
}
