package main

import (
	"context"
	"encoding/json"

	"bipv/internal/finance"
	"bipv/internal/optimize"
	"bipv/internal/pvspec"
	"bipv/internal/store"
	"bipv/internal/yield"
)

// loadCandidates builds optimizer candidates from the completed elements of a
// project. Elements with missing or undecodable artifacts are skipped.
func loadCandidates(ctx context.Context, st *store.Store, projectID int64) ([]optimize.Candidate, error) {
	elements, err := st.List(ctx, projectID, store.StatusCompleted)
	if err != nil {
		return nil, err
	}

	candidates := make([]optimize.Candidate, 0, len(elements))
	for _, element := range elements {
		var match pvspec.Match
		var simulated yield.ElementYield
		var eval finance.Evaluation
		if json.Unmarshal([]byte(element.SpecJSON), &match) != nil ||
			json.Unmarshal([]byte(element.YieldJSON), &simulated) != nil ||
			json.Unmarshal([]byte(element.FinanceJSON), &eval) != nil {
			continue
		}
		candidates = append(candidates, optimize.Candidate{
			ElementID:      element.ID,
			ElementKey:     element.ElementKey,
			CapacityKWp:    match.CapacityKWp,
			CostEUR:        eval.InvestmentEUR,
			AnnualYieldKWh: simulated.AnnualACKWh,
			NPVEUR:         eval.NPVEUR,
		})
	}
	return candidates, nil
}
