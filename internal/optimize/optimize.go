// Package optimize selects the subset of evaluated facade elements that
// maximizes project NPV under a budget. Small candidate sets are solved
// exactly; larger ones fall back to a greedy knapsack on NPV per euro.
package optimize

import (
	"fmt"
	"sort"
)

// Candidate is one evaluated element the optimizer may select.
type Candidate struct {
	ElementID      int64   `json:"element_id"`
	ElementKey     string  `json:"element_key"`
	CapacityKWp    float64 `json:"capacity_kwp"`
	CostEUR        float64 `json:"cost_eur"`
	AnnualYieldKWh float64 `json:"annual_yield_kwh"`
	NPVEUR         float64 `json:"npv_eur"`
}

// Constraints bound the selection. A zero budget means unconstrained.
type Constraints struct {
	BudgetEUR float64 `json:"budget_eur"`
}

// Selection is the optimization result persisted on the project report.
type Selection struct {
	SelectedIDs         []int64  `json:"selected_ids"`
	SelectedKeys        []string `json:"selected_keys"`
	TotalCapacityKWp    float64  `json:"total_capacity_kwp"`
	TotalCostEUR        float64  `json:"total_cost_eur"`
	TotalYieldKWh       float64  `json:"total_yield_kwh"`
	TotalNPVEUR         float64  `json:"total_npv_eur"`
	Method              string   `json:"method"`
	CandidateCount      int      `json:"candidate_count"`
	RejectedNegativeNPV int      `json:"rejected_negative_npv"`
}

// Candidate sets up to this size are solved by exhaustive subset search.
const exhaustiveLimit = 16

// Select picks the NPV-maximizing subset within the budget. Candidates with
// non-positive NPV can never improve an additive objective, so they are
// dropped up front and counted. Ordering is deterministic: candidates sort by
// element key.
func Select(candidates []Candidate, constraints Constraints) (Selection, error) {
	for _, c := range candidates {
		if c.CostEUR < 0 {
			return Selection{}, fmt.Errorf("candidate %s has negative cost", c.ElementKey)
		}
	}

	pool := make([]Candidate, 0, len(candidates))
	rejected := 0
	for _, c := range candidates {
		if c.NPVEUR <= 0 {
			rejected++
			continue
		}
		pool = append(pool, c)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ElementKey < pool[j].ElementKey })

	selection := Selection{
		CandidateCount:      len(candidates),
		RejectedNegativeNPV: rejected,
	}
	var chosen []Candidate
	if len(pool) <= exhaustiveLimit {
		chosen = selectExhaustive(pool, constraints.BudgetEUR)
		selection.Method = "exhaustive"
	} else {
		chosen = selectGreedy(pool, constraints.BudgetEUR)
		selection.Method = "greedy"
	}

	for _, c := range chosen {
		selection.SelectedIDs = append(selection.SelectedIDs, c.ElementID)
		selection.SelectedKeys = append(selection.SelectedKeys, c.ElementKey)
		selection.TotalCapacityKWp += c.CapacityKWp
		selection.TotalCostEUR += c.CostEUR
		selection.TotalYieldKWh += c.AnnualYieldKWh
		selection.TotalNPVEUR += c.NPVEUR
	}
	return selection, nil
}

// selectExhaustive enumerates every subset. With positive-NPV candidates the
// objective is additive, so the best subset under budget is exact.
func selectExhaustive(pool []Candidate, budget float64) []Candidate {
	var bestMask uint32
	bestNPV := 0.0
	bestCost := 0.0

	for mask := uint32(1); mask < 1<<len(pool); mask++ {
		var npv, cost float64
		for i, c := range pool {
			if mask&(1<<i) != 0 {
				npv += c.NPVEUR
				cost += c.CostEUR
			}
		}
		if budget > 0 && cost > budget {
			continue
		}
		if npv > bestNPV || (npv == bestNPV && cost < bestCost) {
			bestMask = mask
			bestNPV = npv
			bestCost = cost
		}
	}

	var out []Candidate
	for i, c := range pool {
		if bestMask&(1<<i) != 0 {
			out = append(out, c)
		}
	}
	return out
}

// selectGreedy takes candidates by NPV per euro of cost until the budget is
// spent. Free candidates (zero cost) always fit.
func selectGreedy(pool []Candidate, budget float64) []Candidate {
	ranked := make([]Candidate, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ratio(ranked[i]) > ratio(ranked[j])
	})

	var out []Candidate
	spent := 0.0
	for _, c := range ranked {
		if budget > 0 && spent+c.CostEUR > budget {
			continue
		}
		out = append(out, c)
		spent += c.CostEUR
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ElementKey < out[j].ElementKey })
	return out
}

func ratio(c Candidate) float64 {
	if c.CostEUR <= 0 {
		return c.NPVEUR * 1e9
	}
	return c.NPVEUR / c.CostEUR
}
