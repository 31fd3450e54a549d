package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bipv/internal/config"
	"bipv/internal/store"
)

type commandContext struct {
	configFlag  *string
	projectFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, projectFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		projectFlag: projectFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the element registry for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open element registry: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

// resolveProject picks the project named by --project, or the only project
// when the flag is empty.
func (c *commandContext) resolveProject(ctx context.Context, st *store.Store) (*store.Project, error) {
	name := ""
	if c.projectFlag != nil {
		name = strings.TrimSpace(*c.projectFlag)
	}
	if name != "" {
		project, err := st.GetProjectByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("project %q not found", name)
		}
		return project, nil
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	switch len(projects) {
	case 0:
		return nil, errors.New("no projects exist; create one with `bipv project create <name>`")
	case 1:
		return projects[0], nil
	default:
		return nil, errors.New("multiple projects exist; select one with --project")
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
