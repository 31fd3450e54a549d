package solar

import "math"

const degToRad = math.Pi / 180

// DeclinationDeg returns the solar declination in degrees for a day of year.
func DeclinationDeg(dayOfYear int) float64 {
	n := float64(dayOfYear)
	inner := (356.6 + 0.9856*n) * degToRad
	outer := (278.97 + 0.9856*n + 1.9165*math.Sin(inner)) * degToRad
	return math.Asin(0.39785*math.Sin(outer)) / degToRad
}

// EquationOfTimeMinutes returns the equation of time in minutes for a day of year.
func EquationOfTimeMinutes(dayOfYear int) float64 {
	b := 2 * math.Pi * float64(dayOfYear-81) / 364
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

// SolarNoonHours returns local solar noon in decimal clock hours for a site.
// Longitudes are positive east; the standard meridian follows from the
// whole-hour UTC offset.
func SolarNoonHours(site Site, dayOfYear int) float64 {
	meridian := float64(site.TimezoneOffsetHours) * 15
	return 12 - EquationOfTimeMinutes(dayOfYear)/60 + (meridian-site.Longitude)/15
}

// ZenithDeg returns the solar zenith angle in degrees for a latitude,
// declination, and hour angle (all in degrees).
func ZenithDeg(latitudeDeg, declinationDeg, hourAngleDeg float64) float64 {
	lat := latitudeDeg * degToRad
	dec := declinationDeg * degToRad
	ha := hourAngleDeg * degToRad
	cosZ := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(ha)
	return math.Acos(clamp(cosZ, -1, 1)) / degToRad
}

// incidenceCosine returns cos of the incidence angle on a surface with the
// given tilt and azimuth. Surface azimuth follows the building convention,
// degrees clockwise from north; internally it is converted to the south-zero,
// west-positive convention the geometry uses.
func incidenceCosine(latitudeDeg, declinationDeg, hourAngleDeg, surfaceAzimuthDeg, tiltDeg float64) float64 {
	lat := latitudeDeg * degToRad
	dec := declinationDeg * degToRad
	ha := hourAngleDeg * degToRad
	tilt := tiltDeg * degToRad
	gamma := (surfaceAzimuthDeg - 180) * degToRad

	cosTheta := math.Sin(dec)*math.Sin(lat)*math.Cos(tilt) -
		math.Sin(dec)*math.Cos(lat)*math.Sin(tilt)*math.Cos(gamma) +
		math.Cos(dec)*math.Cos(lat)*math.Cos(tilt)*math.Cos(ha) +
		math.Cos(dec)*math.Sin(lat)*math.Sin(tilt)*math.Cos(gamma)*math.Cos(ha) +
		math.Cos(dec)*math.Sin(tilt)*math.Sin(gamma)*math.Sin(ha)
	return clamp(cosTheta, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
