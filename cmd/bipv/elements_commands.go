package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/facade"
	"bipv/internal/store"
)

func newElementsCommand(ctx *commandContext) *cobra.Command {
	elementsCmd := &cobra.Command{
		Use:   "elements",
		Short: "Manage facade elements",
	}

	elementsCmd.AddCommand(newElementsImportCommand(ctx))
	elementsCmd.AddCommand(newElementsListCommand(ctx))

	return elementsCmd
}

func newElementsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <schedule.csv>",
		Short: "Import a facade element schedule",
		Long: "Parses a window/curtain-wall schedule exported from the building model,\n" +
			"filters candidates by glass area and orientation, and registers them for\n" +
			"evaluation. Re-importing the same schedule is a no-op.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}
				elements, err := facade.LoadElementsFile(args[0], cfg.PV.DefaultGlassRatio)
				if err != nil {
					return err
				}
				summary, err := facade.Register(cmd.Context(), st, project.ID, elements, facade.FilterFromConfig(cfg))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Parsed %d elements from %s\n", summary.Parsed, args[0])
				fmt.Fprintf(out, "Registered: %d  Duplicates: %d\n", summary.Registered, summary.Duplicates)
				if len(summary.Filtered) > 0 {
					reasons := make([]string, 0, len(summary.Filtered))
					for reason := range summary.Filtered {
						reasons = append(reasons, reason)
					}
					sort.Strings(reasons)
					for _, reason := range reasons {
						fmt.Fprintf(out, "Filtered (%s): %d\n", reason, summary.Filtered[reason])
					}
				}
				return nil
			})
		},
	}
}

func newElementsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List facade elements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}

				var statuses []store.Status
				if statusFilter != "" {
					status, ok := store.ParseStatus(statusFilter)
					if !ok {
						return fmt.Errorf("unknown status %q", statusFilter)
					}
					statuses = append(statuses, status)
				}
				elements, err := st.List(cmd.Context(), project.ID, statuses...)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(elements) == 0 {
					fmt.Fprintln(out, "No elements")
					return nil
				}
				rows := make([][]string, 0, len(elements))
				for _, element := range elements {
					detail := element.ProgressMessage
					if element.NeedsReview {
						detail = element.ReviewReason
					}
					rows = append(rows, []string{
						element.ElementKey,
						element.Level,
						facade.OrientationLabel(element.AzimuthDeg),
						formatFloat(element.GlassAreaM2, 1),
						string(element.Status),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Element", "Level", "Orientation", "Glass m2", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only list elements with this status")
	return cmd
}
