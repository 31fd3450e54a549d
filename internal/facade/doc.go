// Package facade turns BIM-derived window schedules into registered pipeline
// elements. Parsing tolerates common header variants, orientations normalize
// to azimuth degrees, and every element is fingerprinted so registration can
// skip rows the registry has already seen.
package facade
