package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/preflight"
	"bipv/internal/store"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run environment and registry preflight checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				results := preflight.RunAll(cmd.Context(), cfg, st)

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
				if !preflight.Passed(results) {
					return errors.New("one or more preflight checks failed")
				}
				return nil
			})
		},
	}
}
