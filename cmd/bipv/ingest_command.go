package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/ingest"
	"bipv/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <consumption.csv>",
		Short: "Load a monthly electricity consumption profile",
		Long: "Parses a CSV of monthly electricity consumption, averages multiple years\n" +
			"where present, and stores the demand profile on the project for the\n" +
			"self-consumption balance.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}
				profile, err := ingest.LoadConsumptionFile(args[0])
				if err != nil {
					return err
				}
				payload, err := json.Marshal(profile)
				if err != nil {
					return fmt.Errorf("encode demand profile: %w", err)
				}
				project.DemandJSON = string(payload)
				if err := st.UpdateProject(cmd.Context(), project); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Loaded demand profile for %q\n", project.Name)
				fmt.Fprintf(out, "Annual consumption: %s kWh", formatFloat(profile.AnnualKWh, 0))
				if profile.Years > 1 {
					fmt.Fprintf(out, " (averaged over %d years)", profile.Years)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Peak month:         %s\n", time.Month(profile.PeakMonth()).String())
				return nil
			})
		},
	}
}
