package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/store"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [element-id...]",
		Short: "Reset failed elements for another attempt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}
				ids := make([]int64, 0, len(args))
				for _, arg := range args {
					id, err := strconv.ParseInt(arg, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid element id %q", arg)
					}
					ids = append(ids, id)
				}
				count, err := st.RetryFailed(cmd.Context(), project.ID, ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d failed element(s) to pending\n", count)
				return nil
			})
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Roll stuck in-flight elements back to their previous stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				count, err := st.ResetStuckProcessing(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d stuck element(s)\n", count)
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove elements from the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}
				var count int64
				switch {
				case completedOnly && failedOnly:
					return fmt.Errorf("--completed and --failed are mutually exclusive")
				case completedOnly:
					count, err = st.ClearCompleted(cmd.Context(), project.ID)
				case failedOnly:
					count, err = st.ClearFailed(cmd.Context(), project.ID)
				default:
					count, err = st.Clear(cmd.Context(), project.ID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d element(s)\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only remove completed elements")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only remove failed elements")
	return cmd
}
