package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/solar"
	"bipv/internal/store"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage evaluation projects",
	}

	projectCmd.AddCommand(newProjectCreateCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectRemoveCommand(ctx))

	return projectCmd
}

func newProjectCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project with the configured site parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				site := solar.SiteFromConfig(cfg)
				siteJSON, err := json.Marshal(site)
				if err != nil {
					return fmt.Errorf("encode site: %w", err)
				}
				project, err := st.CreateProject(cmd.Context(), args[0], string(siteJSON))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (id %d) at %.4f, %.4f\n",
					project.Name, project.ID, site.Latitude, site.Longitude)
				return nil
			})
		},
	}
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				projects, err := st.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(projects) == 0 {
					fmt.Fprintln(out, "No projects")
					return nil
				}
				rows := make([][]string, 0, len(projects))
				for _, project := range projects {
					stats, err := st.Stats(cmd.Context(), project.ID)
					if err != nil {
						return err
					}
					total := 0
					for _, count := range stats {
						total += count
					}
					rows = append(rows, []string{
						formatCount(project.ID),
						project.Name,
						formatCount(int64(total)),
						formatCount(int64(stats[store.StatusCompleted])),
						yesNo(project.DemandJSON != ""),
						yesNo(project.WeatherJSON != ""),
						project.CreatedAt.Format("2006-01-02"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Elements", "Completed", "Demand", "Weather", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show project details",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := ctx.resolveProject(cmd.Context(), st)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Project:  %s (id %d)\n", project.Name, project.ID)
				fmt.Fprintf(out, "Created:  %s\n", project.CreatedAt.Format("2006-01-02 15:04"))

				var site solar.Site
				if project.SiteJSON != "" {
					if err := json.Unmarshal([]byte(project.SiteJSON), &site); err == nil {
						fmt.Fprintf(out, "Site:     %.4f, %.4f at %.0f m\n", site.Latitude, site.Longitude, site.Altitude)
					}
				}
				fmt.Fprintf(out, "Demand:   %s\n", yesNo(project.DemandJSON != ""))
				fmt.Fprintf(out, "Weather:  %s\n", yesNo(project.WeatherJSON != ""))

				stats, err := st.Stats(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(stats))
				for _, status := range store.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{string(status), formatCount(int64(count))})
					}
				}
				if len(rows) > 0 {
					fmt.Fprintln(out, renderTable(
						[]string{"Status", "Elements"},
						rows,
						[]columnAlignment{alignLeft, alignRight},
					))
				}
				return nil
			})
		},
	}
}

func newProjectRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a project and its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				project, err := st.GetProjectByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if project == nil {
					return fmt.Errorf("project %q not found", args[0])
				}
				removed, err := st.RemoveProject(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("project %q not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed project %q\n", project.Name)
				return nil
			})
		},
	}
}
