// Package pvspec holds the built-in BIPV glass catalog and selects a panel
// class per facade element from its irradiation and transparency needs.
package pvspec

import (
	"fmt"
	"sort"
)

// Panel describes one BIPV glass product class.
type Panel struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Efficiency   float64 `json:"efficiency"`
	Transparency float64 `json:"transparency"`
	CostPerM2    float64 `json:"cost_per_m2"`
	// Annual module degradation, fraction per year.
	DegradationRate float64 `json:"degradation_rate"`
	// Irradiation below which the class is not economical.
	MinAnnualKWhM2 float64 `json:"min_annual_kwh_m2"`
}

// PowerDensityKWpM2 is the nameplate capacity per glazed square meter.
func (p Panel) PowerDensityKWpM2() float64 {
	// 1 kW/m² STC irradiance.
	return p.Efficiency
}

// Balance-of-system cost added on top of the glass itself.
const bosCostPerKWp = 400.0

var catalog = []Panel{
	{
		Code:            "asi-20",
		Name:            "Amorphous silicon laminate, 20% light transmission",
		Efficiency:      0.06,
		Transparency:    0.20,
		CostPerM2:       240,
		DegradationRate: 0.010,
		MinAnnualKWhM2:  0,
	},
	{
		Code:            "cdte-10",
		Name:            "CdTe thin-film glass, 10% light transmission",
		Efficiency:      0.10,
		Transparency:    0.10,
		CostPerM2:       310,
		DegradationRate: 0.007,
		MinAnnualKWhM2:  350,
	},
	{
		Code:            "cigs-05",
		Name:            "CIGS glass, 5% light transmission",
		Efficiency:      0.13,
		Transparency:    0.05,
		CostPerM2:       380,
		DegradationRate: 0.007,
		MinAnnualKWhM2:  500,
	},
	{
		Code:            "mono-00",
		Name:            "Monocrystalline spandrel glass, opaque",
		Efficiency:      0.19,
		Transparency:    0,
		CostPerM2:       450,
		DegradationRate: 0.005,
		MinAnnualKWhM2:  700,
	},
}

// Catalog returns the panel classes ordered by efficiency ascending.
func Catalog() []Panel {
	out := make([]Panel, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Efficiency < out[j].Efficiency })
	return out
}

// PanelByCode looks up a catalog entry.
func PanelByCode(code string) (Panel, bool) {
	for _, p := range catalog {
		if p.Code == code {
			return p, true
		}
	}
	return Panel{}, false
}

// SelectPanel picks the most efficient catalog class whose irradiation floor
// the element meets and whose transparency satisfies the daylight constraint.
func SelectPanel(annualIrradiationKWhM2, minTransparency float64) (Panel, error) {
	var best Panel
	found := false
	for _, p := range catalog {
		if p.Transparency < minTransparency {
			continue
		}
		if annualIrradiationKWhM2 < p.MinAnnualKWhM2 {
			continue
		}
		if !found || p.Efficiency > best.Efficiency {
			best = p
			found = true
		}
	}
	if !found {
		return Panel{}, fmt.Errorf("no panel class with transparency >= %.2f", minTransparency)
	}
	return best, nil
}

// Match is the panel-matching stage artifact stored on the element.
type Match struct {
	PanelCode    string  `json:"panel_code"`
	PanelName    string  `json:"panel_name"`
	Efficiency   float64 `json:"efficiency"`
	Transparency float64 `json:"transparency"`
	CapacityKWp  float64 `json:"capacity_kwp"`
	CostEUR      float64 `json:"cost_eur"`
}

// MatchElement sizes the selected panel class onto the element's glass area.
func MatchElement(glassAreaM2, annualIrradiationKWhM2, minTransparency float64) (Match, error) {
	if glassAreaM2 <= 0 {
		return Match{}, fmt.Errorf("non-positive glass area %v", glassAreaM2)
	}
	panel, err := SelectPanel(annualIrradiationKWhM2, minTransparency)
	if err != nil {
		return Match{}, err
	}
	capacity := glassAreaM2 * panel.PowerDensityKWpM2()
	return Match{
		PanelCode:    panel.Code,
		PanelName:    panel.Name,
		Efficiency:   panel.Efficiency,
		Transparency: panel.Transparency,
		CapacityKWp:  capacity,
		CostEUR:      glassAreaM2*panel.CostPerM2 + capacity*bosCostPerKWp,
	}, nil
}
