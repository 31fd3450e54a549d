package solar

// Representative day of year per month, the ASHRAE mean days.
var meanDays = [12]int{17, 47, 75, 105, 135, 162, 198, 228, 258, 288, 318, 344}

var daysInMonth = [12]float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthlyIrradiation integrates the tilted clear-sky model hourly over each
// month's representative day and scales by the month length. Values are
// kWh/m² per month, January first.
func MonthlyIrradiation(site Site, azimuthDeg, tiltDeg float64) [12]float64 {
	var out [12]float64
	for m := 0; m < 12; m++ {
		var dayWh float64
		for h := 0; h < 24; h++ {
			// Hour-center sample, 1 h integration step.
			dayWh += TiltedIrradiance(site, meanDays[m], float64(h)+0.5, azimuthDeg, tiltDeg)
		}
		out[m] = dayWh * daysInMonth[m] / 1000
	}
	return out
}

// MonthlyGlobalHorizontal integrates the horizontal clear-sky irradiance into
// kWh/m² per month, January first.
func MonthlyGlobalHorizontal(site Site) [12]float64 {
	var out [12]float64
	for m := 0; m < 12; m++ {
		var dayWh float64
		for h := 0; h < 24; h++ {
			dayWh += ClearSky(site, meanDays[m], float64(h)+0.5).GlobalHorizontal
		}
		out[m] = dayWh * daysInMonth[m] / 1000
	}
	return out
}

// AnnualIrradiation sums a monthly profile into a yearly total.
func AnnualIrradiation(monthly [12]float64) float64 {
	var total float64
	for _, v := range monthly {
		total += v
	}
	return total
}

// WeatherProfile is the project-level irradiation summary persisted on the
// project and rendered by the weather command.
type WeatherProfile struct {
	GlobalHorizontalKWhM2 [12]float64            `json:"global_horizontal_kwh_m2"`
	AnnualHorizontalKWhM2 float64                `json:"annual_horizontal_kwh_m2"`
	FacadeKWhM2           map[string][12]float64 `json:"facade_kwh_m2"`
	AnnualFacadeKWhM2     map[string]float64     `json:"annual_facade_kwh_m2"`
}

// Facade orientation bins evaluated for the project weather profile, azimuth
// degrees clockwise from north.
var profileOrientations = map[string]float64{
	"north":     0,
	"northeast": 45,
	"east":      90,
	"southeast": 135,
	"south":     180,
	"southwest": 225,
	"west":      270,
	"northwest": 315,
}

// BuildWeatherProfile computes the monthly horizontal and per-orientation
// vertical irradiation for a site.
func BuildWeatherProfile(site Site) WeatherProfile {
	profile := WeatherProfile{
		GlobalHorizontalKWhM2: MonthlyGlobalHorizontal(site),
		FacadeKWhM2:           make(map[string][12]float64, len(profileOrientations)),
		AnnualFacadeKWhM2:     make(map[string]float64, len(profileOrientations)),
	}
	profile.AnnualHorizontalKWhM2 = AnnualIrradiation(profile.GlobalHorizontalKWhM2)
	for name, azimuth := range profileOrientations {
		monthly := MonthlyIrradiation(site, azimuth, 90)
		profile.FacadeKWhM2[name] = monthly
		profile.AnnualFacadeKWhM2[name] = AnnualIrradiation(monthly)
	}
	return profile
}
