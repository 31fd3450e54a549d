package solar

import (
	"encoding/json"
	"math"

	"bipv/internal/config"
)

// Solar constant in W/m².
const solarConstant = 1361.0

// Clearness index for the ASCE beam transmittance.
const clearnessIndex = 1.0

// Site carries the location and climate parameters the clear-sky model needs.
type Site struct {
	Latitude            float64
	Longitude           float64
	Altitude            float64
	TimezoneOffsetHours int
	Albedo              float64
	MeanAirTempC        float64
	MeanHumidityPercent float64
}

// SiteFromConfig extracts the model site from the loaded configuration.
func SiteFromConfig(cfg *config.Config) Site {
	return Site{
		Latitude:            cfg.Site.Latitude,
		Longitude:           cfg.Site.Longitude,
		Altitude:            cfg.Site.Altitude,
		TimezoneOffsetHours: cfg.Site.TimezoneOffsetHours,
		Albedo:              cfg.Site.Albedo,
		MeanAirTempC:        cfg.Site.MeanAirTempC,
		MeanHumidityPercent: cfg.Site.MeanHumidityPercent,
	}
}

// SiteFromSnapshot decodes a site frozen on a project at creation time. The
// second return is false when the snapshot is empty or not decodable, in
// which case callers fall back to the configured site.
func SiteFromSnapshot(raw string) (Site, bool) {
	if raw == "" {
		return Site{}, false
	}
	var site Site
	if err := json.Unmarshal([]byte(raw), &site); err != nil {
		return Site{}, false
	}
	return site, true
}

// Irradiance holds the clear-sky components for one instant in W/m².
type Irradiance struct {
	BeamNormal        float64
	DiffuseHorizontal float64
	GlobalHorizontal  float64
	ZenithDeg         float64
}

// ClearSky evaluates the ASCE clear-sky shortwave model for a day of year and
// solar time in decimal hours. Below the horizon all components are zero.
func ClearSky(site Site, dayOfYear int, solarHour float64) Irradiance {
	declination := DeclinationDeg(dayOfYear)
	hourAngle := 15 * (solarHour - 12)
	zenith := ZenithDeg(site.Latitude, declination, hourAngle)
	out := Irradiance{ZenithDeg: zenith}

	// Earth-Sun distance correction
	dr := 1 + 0.033*math.Cos((2*math.Pi/365)*float64(dayOfYear))

	// Extraterrestrial radiation on the horizontal (W/m²)
	swa := solarConstant * dr * math.Cos(zenith*degToRad)
	if swa <= 0 {
		return out
	}

	airTemp := site.MeanAirTempC

	// Atmospheric pressure (kPa)
	pressure := 101.325 * math.Exp((site.Altitude*-1*9.80665)/((8.314472/0.028967)*(airTemp+273.15)))

	// Vapor pressure (kPa)
	vapor := 0.61121 * math.Exp(((18.678-airTemp/234.5)*airTemp)/(257.14+airTemp)) * (site.MeanHumidityPercent / 100)

	// Precipitable water (mm)
	water := 0.15*vapor*pressure + 0.6

	sinElevation := math.Sin((90 - zenith) * degToRad)
	if sinElevation <= 0 {
		return out
	}

	// Beam transmittance
	kb := 0.98 * math.Exp((-0.00146*pressure)/(clearnessIndex*sinElevation)-0.075*math.Pow(water/sinElevation, 0.4))

	// Diffuse transmittance
	var kd float64
	if kb > 0.15 {
		kd = 0.35 - 0.36*kb
	} else {
		kd = 0.18 + 0.82*kb
	}

	out.GlobalHorizontal = (kb + kd) * swa
	out.BeamNormal = solarConstant * dr * kb
	out.DiffuseHorizontal = kd * swa
	return out
}

// TiltedIrradiance returns the plane-of-array irradiance in W/m² on a surface
// with the given azimuth (degrees clockwise from north) and tilt (degrees from
// horizontal; a facade is 90). Beam is projected through the incidence angle,
// diffuse and ground-reflected components use the isotropic sky model.
func TiltedIrradiance(site Site, dayOfYear int, solarHour, azimuthDeg, tiltDeg float64) float64 {
	irr := ClearSky(site, dayOfYear, solarHour)
	if irr.GlobalHorizontal <= 0 {
		return 0
	}
	declination := DeclinationDeg(dayOfYear)
	hourAngle := 15 * (solarHour - 12)
	cosTheta := incidenceCosine(site.Latitude, declination, hourAngle, azimuthDeg, tiltDeg)

	tilt := tiltDeg * degToRad
	beam := irr.BeamNormal * math.Max(cosTheta, 0)
	diffuse := irr.DiffuseHorizontal * (1 + math.Cos(tilt)) / 2
	reflected := irr.GlobalHorizontal * site.Albedo * (1 - math.Cos(tilt)) / 2
	return beam + diffuse + reflected
}
