package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mixgen/internal/engine"
	"github.com/leapstack-labs/mixgen/internal/watcher"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [packages...]",
		Short: "Regenerate packages when their sources change",
		Long: `Generate the given packages once, then watch their directories and
regenerate a package whenever one of its Go files or the manifest changes.
Changes to the generated file itself are ignored. Press Ctrl+C to stop.`,
		Example: `  # Watch the current package
  mixgen watch

  # Watch every package with a longer quiet period
  mixgen watch --debounce 1s ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("debounce") {
				debounce = 0
			}
			return runWatch(cmd, args, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before regenerating")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, debounce time.Duration) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dirs, err := cmdCtx.resolveDirs(ctx, args)
	if err != nil {
		return err
	}

	cfg := cmdCtx.Cfg
	if debounce == 0 {
		debounce = cfg.Watch.Debounce
	}
	eng := cmdCtx.Engine
	r := cmdCtx.Renderer
	logger := cmdCtx.Logger

	regenerate := func(ctx context.Context, dirs []string) {
		results, genErr := eng.GenerateAll(ctx, dirs, engine.GenerateOptions{})
		if err := renderGenerate(r, results, genErr); err != nil {
			logger.Error("failed to render results", "error", err)
		}
		if genErr != nil {
			r.Error(genErr)
		}
	}

	regenerate(ctx, dirs)

	w, err := watcher.New(watcher.Config{
		Dirs:     dirs,
		Debounce: debounce,
		Ignore:   []string{cfg.OutputFile},
		Extra:    []string{cfg.Manifest},
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	r.Muted(fmt.Sprintf("watching %d package(s), press Ctrl+C to stop", len(dirs)))
	if err := w.Run(ctx, regenerate); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
