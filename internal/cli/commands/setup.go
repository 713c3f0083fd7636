// Package commands implements the mixgen CLI commands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mixgen/internal/cli/config"
	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/engine"
	"github.com/leapstack-labs/mixgen/internal/loader"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, err := newCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(cmdCtx.Cfg.EngineConfig(cmdCtx.Logger))
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cmdCtx, cleanup, nil
}

func newCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading
// it without flags when a command runs on its own.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

// resolveDirs maps package arguments to directories.
func (c *CommandContext) resolveDirs(ctx context.Context, args []string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loader.Resolve(ctx, cwd, args, loader.Options{
		BuildTag: c.Cfg.BuildTag,
		Logger:   c.Logger,
	})
}

// resolveDir maps at most one package argument to a directory.
func (c *CommandContext) resolveDir(ctx context.Context, args []string) (string, error) {
	dirs, err := c.resolveDirs(ctx, args)
	if err != nil {
		return "", err
	}
	if len(dirs) != 1 {
		return "", errMultiplePackages(len(dirs))
	}
	return dirs[0], nil
}
