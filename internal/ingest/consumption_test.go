package ingest_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"bipv/internal/ingest"
)

func TestParseConsumptionNumericMonths(t *testing.T) {
	input := `month,kwh
1,3200
2,2900
3,2700
4,2300
5,2100
6,1900
7,1850
8,1900
9,2100
10,2500
11,2900
12,3300
`
	profile, err := ingest.ParseConsumption(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseConsumption failed: %v", err)
	}
	if profile.Years != 1 {
		t.Fatalf("expected 1 year averaged, got %d", profile.Years)
	}
	if math.Abs(profile.AnnualKWh-29650) > 0.01 {
		t.Fatalf("unexpected annual consumption: %v", profile.AnnualKWh)
	}
	if profile.PeakMonth() != 12 {
		t.Fatalf("expected december peak, got %d", profile.PeakMonth())
	}
}

func TestParseConsumptionAveragesYears(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Month,kWh\n")
	for _, year := range []int{2022, 2023} {
		kwh := 2000
		if year == 2023 {
			kwh = 3000
		}
		for m := 1; m <= 12; m++ {
			fmt.Fprintf(&sb, "%d-%02d,%d\n", year, m, kwh)
		}
	}

	profile, err := ingest.ParseConsumption(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ParseConsumption failed: %v", err)
	}
	if profile.Years != 2 {
		t.Fatalf("expected 2 years averaged, got %d", profile.Years)
	}
	for m, v := range profile.MonthlyKWh {
		if math.Abs(v-2500) > 0.01 {
			t.Fatalf("month %d: expected 2500 average, got %v", m+1, v)
		}
	}
}

func TestParseConsumptionMonthNamesAndSeparators(t *testing.T) {
	input := `January,"3,200.5"
Feb,2900
mar,2700
Apr,2300
May,2100
jun,1900
Jul,1850
aug,"1,900"
Sep,2100 kWh
Oct,2500
Nov,2900
December,3300
`
	profile, err := ingest.ParseConsumption(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseConsumption failed: %v", err)
	}
	if math.Abs(profile.MonthlyKWh[0]-3200.5) > 0.001 {
		t.Fatalf("expected thousands separator handled, got %v", profile.MonthlyKWh[0])
	}
	if math.Abs(profile.MonthlyKWh[7]-1900) > 0.001 {
		t.Fatalf("expected grouped thousands handled, got %v", profile.MonthlyKWh[7])
	}
	if math.Abs(profile.MonthlyKWh[8]-2100) > 0.001 {
		t.Fatalf("expected unit suffix stripped, got %v", profile.MonthlyKWh[8])
	}
}

func TestParseConsumptionDecimalComma(t *testing.T) {
	var sb strings.Builder
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(&sb, "%d;x\n", m)
	}
	input := strings.ReplaceAll(sb.String(), ";x", `,"2100,5"`)
	profile, err := ingest.ParseConsumption(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseConsumption failed: %v", err)
	}
	if math.Abs(profile.MonthlyKWh[3]-2100.5) > 0.001 {
		t.Fatalf("expected decimal comma handled, got %v", profile.MonthlyKWh[3])
	}
}

func TestParseConsumptionRejectsIncompleteYear(t *testing.T) {
	input := "1,3200\n2,2900\n3,2700\n"
	_, err := ingest.ParseConsumption(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for missing months")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing-month detail, got %v", err)
	}
}

func TestParseConsumptionRejectsNegative(t *testing.T) {
	input := "1,-10\n"
	if _, err := ingest.ParseConsumption(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for negative consumption")
	}
}
