package solar_test

import (
	"math"
	"testing"

	"bipv/internal/solar"
)

func berlinSite() solar.Site {
	return solar.Site{
		Latitude:            52.52,
		Longitude:           13.405,
		Altitude:            34,
		TimezoneOffsetHours: 1,
		Albedo:              0.2,
		MeanAirTempC:        10,
		MeanHumidityPercent: 70,
	}
}

func TestDeclinationRange(t *testing.T) {
	for day := 1; day <= 365; day++ {
		dec := solar.DeclinationDeg(day)
		if dec < -23.6 || dec > 23.6 {
			t.Fatalf("day %d: declination %v outside tropics", day, dec)
		}
	}
	// Solstices sit near the extremes.
	if dec := solar.DeclinationDeg(172); dec < 23.0 {
		t.Fatalf("june solstice declination too low: %v", dec)
	}
	if dec := solar.DeclinationDeg(355); dec > -23.0 {
		t.Fatalf("december solstice declination too high: %v", dec)
	}
}

func TestClearSkyDayNightCycle(t *testing.T) {
	site := berlinSite()

	noon := solar.ClearSky(site, 172, 12)
	if noon.GlobalHorizontal < 500 || noon.GlobalHorizontal > 1100 {
		t.Fatalf("summer noon GHI implausible: %v W/m2", noon.GlobalHorizontal)
	}
	if noon.BeamNormal <= noon.DiffuseHorizontal {
		t.Fatalf("expected beam to dominate at clear-sky noon: beam=%v diffuse=%v",
			noon.BeamNormal, noon.DiffuseHorizontal)
	}

	midnight := solar.ClearSky(site, 172, 0)
	if midnight.GlobalHorizontal != 0 {
		t.Fatalf("expected zero irradiance at midnight, got %v", midnight.GlobalHorizontal)
	}

	winterNoon := solar.ClearSky(site, 355, 12)
	if winterNoon.GlobalHorizontal >= noon.GlobalHorizontal {
		t.Fatalf("winter noon should be below summer noon: %v >= %v",
			winterNoon.GlobalHorizontal, noon.GlobalHorizontal)
	}
}

func TestSouthFacadeBeatsNorthFacade(t *testing.T) {
	site := berlinSite()
	south := solar.AnnualIrradiation(solar.MonthlyIrradiation(site, 180, 90))
	north := solar.AnnualIrradiation(solar.MonthlyIrradiation(site, 0, 90))
	if south <= north {
		t.Fatalf("south facade %v should exceed north facade %v", south, north)
	}
	if south < 2*north {
		t.Fatalf("expected south facade to at least double north at 52N: south=%v north=%v", south, north)
	}
}

func TestEastWestFacadesSymmetric(t *testing.T) {
	site := berlinSite()
	east := solar.AnnualIrradiation(solar.MonthlyIrradiation(site, 90, 90))
	west := solar.AnnualIrradiation(solar.MonthlyIrradiation(site, 270, 90))
	if diff := math.Abs(east-west) / east; diff > 0.01 {
		t.Fatalf("east/west annual irradiation should be symmetric: east=%v west=%v", east, west)
	}
}

func TestMonthlyGlobalHorizontalSeasonality(t *testing.T) {
	site := berlinSite()
	monthly := solar.MonthlyGlobalHorizontal(site)
	for m, v := range monthly {
		if v <= 0 {
			t.Fatalf("month %d: non-positive irradiation %v", m+1, v)
		}
	}
	if monthly[5] <= monthly[11] {
		t.Fatalf("june %v should exceed december %v at northern latitude", monthly[5], monthly[11])
	}
	annual := solar.AnnualIrradiation(monthly)
	if annual < 800 || annual > 2500 {
		t.Fatalf("annual clear-sky GHI implausible for 52N: %v kWh/m2", annual)
	}
}

func TestBuildWeatherProfile(t *testing.T) {
	profile := solar.BuildWeatherProfile(berlinSite())
	if len(profile.FacadeKWhM2) != 8 {
		t.Fatalf("expected 8 orientation bins, got %d", len(profile.FacadeKWhM2))
	}
	if profile.AnnualHorizontalKWhM2 <= 0 {
		t.Fatal("expected positive annual horizontal irradiation")
	}
	if profile.AnnualFacadeKWhM2["south"] <= profile.AnnualFacadeKWhM2["north"] {
		t.Fatalf("south bin should exceed north bin: %v <= %v",
			profile.AnnualFacadeKWhM2["south"], profile.AnnualFacadeKWhM2["north"])
	}
}

func TestSolarNoonNearTwelve(t *testing.T) {
	noon := solar.SolarNoonHours(berlinSite(), 100)
	if noon < 11 || noon > 13.5 {
		t.Fatalf("solar noon implausible: %v", noon)
	}
}
