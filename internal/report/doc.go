// Package report renders evaluation results to files: a per-element CSV for
// spreadsheet work and a JSON project summary with the demand profile, weather
// profile, energy balance, and portfolio totals. Filenames carry a timestamp
// so repeated runs never overwrite earlier results.
package report
