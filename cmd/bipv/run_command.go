package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/evaluation"
	"bipv/internal/logging"
	"bipv/internal/panelmatch"
	"bipv/internal/preflight"
	"bipv/internal/radiation"
	"bipv/internal/simulation"
	"bipv/internal/store"
	"bipv/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the evaluation pipeline",
		Long: "Drives registered elements through radiation analysis, panel matching,\n" +
			"yield simulation, and financial evaluation. By default the pipeline runs\n" +
			"until no more work is queued; --watch keeps it polling for new elements.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}

				if !skipPreflight {
					results := preflight.RunAll(cmd.Context(), cfg, st)
					if !preflight.Passed(results) {
						out := cmd.ErrOrStderr()
						for _, result := range results {
							if !result.Passed {
								fmt.Fprintf(out, "preflight %s: %s\n", result.Name, result.Detail)
							}
						}
						return errors.New("preflight checks failed (use --skip-preflight to override)")
					}
				}

				lock := flock.New(cfg.LockPath())
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !locked {
					return errors.New("another bipv run is already in progress")
				}
				defer lock.Unlock()

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("initialize logging: %w", err)
				}
				logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
					logging.RetentionTarget{
						Dir:     cfg.Paths.LogDir,
						Pattern: "bipv-*.log",
						Exclude: []string{logging.LogFilePath(cfg)},
					},
				)

				manager := workflow.NewManager(cfg, st, project.ID, logger)
				manager.ConfigureStages(workflow.StageSet{
					Radiation:  radiation.NewAnalyzer(cfg, st, logger),
					Matching:   panelmatch.NewMatcher(cfg, logger),
					Simulation: simulation.NewSimulator(cfg, logger),
					Evaluation: evaluation.NewEvaluator(cfg, st, logger),
				})

				out := cmd.OutOrStdout()
				if watch {
					runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()
					if err := manager.Start(runCtx); err != nil {
						return err
					}
					fmt.Fprintf(out, "Watching project %q for work (Ctrl-C to stop)\n", project.Name)
					<-runCtx.Done()
					manager.Stop()
					fmt.Fprintln(out, "Stopped")
					return nil
				}

				processed, err := manager.RunUntilIdle(cmd.Context())
				if err != nil {
					return err
				}
				stats, statsErr := st.Stats(cmd.Context(), project.ID)
				if statsErr != nil {
					return statsErr
				}
				fmt.Fprintf(out, "Executed %d stage runs for project %q\n", processed, project.Name)
				fmt.Fprintf(out, "Completed: %d  Failed: %d  Review: %d\n",
					stats[store.StatusCompleted], stats[store.StatusFailed], stats[store.StatusReview])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling for new elements until interrupted")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Run even when preflight checks fail")
	return cmd
}
