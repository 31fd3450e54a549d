// Package ingest parses historical electricity consumption exports into the
// project demand profile. Input is a CSV of month/kWh rows; multiple years are
// averaged per calendar month.
package ingest
