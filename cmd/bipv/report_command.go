package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/optimize"
	"bipv/internal/report"
	"bipv/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var budget float64
	var withSelection bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the element CSV and project summary JSON",
		Long: "Renders evaluation results to the report directory: a per-element CSV\n" +
			"and a JSON summary with demand, weather, energy balance, and portfolio\n" +
			"totals. With --optimize the budget-constrained selection is included.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}
				elements, err := st.List(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				if len(elements) == 0 {
					return fmt.Errorf("project %q has no elements to report", project.Name)
				}

				var selection *optimize.Selection
				if withSelection {
					candidates, err := loadCandidates(cmd.Context(), st, project.ID)
					if err != nil {
						return err
					}
					if len(candidates) > 0 {
						effectiveBudget := budget
						if effectiveBudget == 0 {
							effectiveBudget = cfg.Finance.Budget
						}
						selected, err := optimize.Select(candidates, optimize.Constraints{BudgetEUR: effectiveBudget})
						if err != nil {
							return err
						}
						selection = &selected
					}
				}

				var selectedIDs []int64
				if selection != nil {
					selectedIDs = selection.SelectedIDs
				}
				rows := report.BuildRows(elements, selectedIDs)
				summary := report.BuildSummary(project, elements, selection)

				csvPath, err := report.WriteCSV(cfg.Paths.ReportDir, project.Name, rows)
				if err != nil {
					return err
				}
				summaryPath, err := report.WriteSummary(cfg.Paths.ReportDir, project.Name, summary)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Element report: %s\n", csvPath)
				fmt.Fprintf(out, "Summary:        %s\n", summaryPath)
				fmt.Fprintf(out, "Elements: %d (%d completed)  Capacity: %s kWp  Yield: %s kWh/a  NPV: %s EUR\n",
					summary.Totals.Elements,
					summary.Totals.Completed,
					formatFloat(summary.Totals.CapacityKWp, 2),
					formatFloat(summary.Totals.AnnualYieldKWh, 0),
					formatFloat(summary.Totals.PortfolioNPVEUR, 0))
				if summary.Balance != nil {
					fmt.Fprintf(out, "Self-consumption: %s%%  Autarchy: %s%%\n",
						formatFloat(summary.Balance.SelfConsumptionRate, 1),
						formatFloat(summary.Balance.AutarchyRate, 1))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withSelection, "optimize", false, "Include the budget-constrained selection in the report")
	cmd.Flags().Float64Var(&budget, "budget", 0, "Investment budget in EUR (0 uses the configured budget)")
	return cmd
}
