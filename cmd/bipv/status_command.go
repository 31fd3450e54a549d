package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/evaluation"
	"bipv/internal/logging"
	"bipv/internal/panelmatch"
	"bipv/internal/radiation"
	"bipv/internal/simulation"
	"bipv/internal/store"
	"bipv/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline status and stage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}

				logger := logging.NewNop()
				manager := workflow.NewManager(cfg, st, project.ID, logger)
				manager.ConfigureStages(workflow.StageSet{
					Radiation:  radiation.NewAnalyzer(cfg, st, logger),
					Matching:   panelmatch.NewMatcher(cfg, logger),
					Simulation: simulation.NewSimulator(cfg, logger),
					Evaluation: evaluation.NewEvaluator(cfg, st, logger),
				})
				summary := manager.Status(cmd.Context())

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Project %s", project.Name), colorize) {
					fmt.Fprintln(out, line)
				}

				for _, status := range store.AllStatuses() {
					if count := summary.Stats[status]; count > 0 {
						kind := statusInfo
						switch status {
						case store.StatusCompleted:
							kind = statusOK
						case store.StatusFailed:
							kind = statusError
						case store.StatusReview:
							kind = statusWarn
						}
						fmt.Fprintln(out, renderStatusLine(string(status), kind, formatCount(int64(count)), colorize))
					}
				}
				if summary.LastError != "" {
					fmt.Fprintln(out, renderStatusLine("last error", statusError, summary.LastError, colorize))
				}
				if summary.LastElement != nil {
					fmt.Fprintln(out, renderStatusLine("last element", statusInfo,
						fmt.Sprintf("%s (%s)", summary.LastElement.ElementKey, summary.LastElement.Status), colorize))
				}

				for _, line := range renderSectionHeader("Stage health", colorize) {
					fmt.Fprintln(out, line)
				}
				names := make([]string, 0, len(summary.StageHealth))
				for name := range summary.StageHealth {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					health := summary.StageHealth[name]
					kind := statusOK
					detail := ""
					if !health.Ready {
						kind = statusError
						detail = health.Detail
					}
					fmt.Fprintln(out, renderStatusLine(name, kind, detail, colorize))
				}
				return nil
			})
		},
	}
}
