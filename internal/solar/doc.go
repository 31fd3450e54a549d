// Package solar models clear-sky irradiance for a project site. It combines
// standard solar geometry (declination, equation of time, hour angle) with the
// ASCE clear-sky shortwave model and integrates hourly values over a
// representative day per month into monthly irradiation totals for the
// horizontal plane and for tilted facade surfaces.
package solar
