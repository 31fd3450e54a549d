package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/solar"
	"bipv/internal/store"
)

func newWeatherCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weather",
		Short: "Compute and store the site weather profile",
		Long: "Runs the clear-sky irradiation model for the configured site and stores\n" +
			"monthly horizontal and per-orientation facade irradiation on the project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}

				site := siteForProject(cfg, project)
				profile := solar.BuildWeatherProfile(site)
				payload, err := json.Marshal(profile)
				if err != nil {
					return fmt.Errorf("encode weather profile: %w", err)
				}
				project.WeatherJSON = string(payload)
				if err := st.UpdateProject(cmd.Context(), project); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Weather profile for %q (%.4f, %.4f)\n", project.Name, site.Latitude, site.Longitude)
				fmt.Fprintf(out, "Annual horizontal irradiation: %s kWh/m2\n", formatFloat(profile.AnnualHorizontalKWhM2, 0))

				names := make([]string, 0, len(profile.AnnualFacadeKWhM2))
				for name := range profile.AnnualFacadeKWhM2 {
					names = append(names, name)
				}
				sort.Slice(names, func(i, j int) bool {
					return profile.AnnualFacadeKWhM2[names[i]] > profile.AnnualFacadeKWhM2[names[j]]
				})
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, formatFloat(profile.AnnualFacadeKWhM2[name], 0)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Facade", "kWh/m2a"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

// siteForProject prefers the site frozen at project creation over the
// current config so re-running weather stays reproducible.
func siteForProject(cfg *config.Config, project *store.Project) solar.Site {
	if site, ok := solar.SiteFromSnapshot(project.SiteJSON); ok {
		return site
	}
	return solar.SiteFromConfig(cfg)
}
