package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/optimize"
	"bipv/internal/store"
)

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	var budget float64

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Select the best element subset within a budget",
		Long: "Picks the combination of evaluated elements that maximizes total net\n" +
			"present value. Elements with non-positive NPV are never selected. Without\n" +
			"a budget every profitable element is chosen.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}

				candidates, err := loadCandidates(cmd.Context(), st, project.ID)
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					return fmt.Errorf("no completed elements in project %q; run the pipeline first", project.Name)
				}

				effectiveBudget := budget
				if effectiveBudget == 0 {
					effectiveBudget = cfg.Finance.Budget
				}
				selection, err := optimize.Select(candidates, optimize.Constraints{BudgetEUR: effectiveBudget})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Evaluated %d candidate(s), %d rejected for non-positive NPV\n",
					selection.CandidateCount, selection.RejectedNegativeNPV)
				if effectiveBudget > 0 {
					fmt.Fprintf(out, "Budget: %s EUR (%s search)\n", formatFloat(effectiveBudget, 0), selection.Method)
				}
				if len(selection.SelectedKeys) == 0 {
					fmt.Fprintln(out, "No profitable elements to select")
					return nil
				}

				selected := make(map[int64]bool, len(selection.SelectedIDs))
				for _, id := range selection.SelectedIDs {
					selected[id] = true
				}
				rows := make([][]string, 0, len(candidates))
				for _, candidate := range candidates {
					if !selected[candidate.ElementID] {
						continue
					}
					rows = append(rows, []string{
						candidate.ElementKey,
						formatFloat(candidate.CapacityKWp, 2),
						formatFloat(candidate.CostEUR, 0),
						formatFloat(candidate.AnnualYieldKWh, 0),
						formatFloat(candidate.NPVEUR, 0),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Element", "kWp", "Cost EUR", "kWh/a", "NPV EUR"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				fmt.Fprintf(out, "Total: %s kWp, %s EUR invested, %s kWh/a, NPV %s EUR\n",
					formatFloat(selection.TotalCapacityKWp, 2),
					formatFloat(selection.TotalCostEUR, 0),
					formatFloat(selection.TotalYieldKWh, 0),
					formatFloat(selection.TotalNPVEUR, 0))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&budget, "budget", 0, "Investment budget in EUR (0 uses the configured budget)")
	return cmd
}
