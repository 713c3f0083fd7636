package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/state"
)

// ErrStateDisabled is returned by status when no state database is configured.
var ErrStateDisabled = errors.New("state tracking is disabled (no_state is set)")

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recorded outputs and recent runs",
		Long: `Show the generated files recorded in the state database together with the
most recent gen and check runs.`,
		Example: `  # Show the last 5 runs
  mixgen status --limit 5

  # As YAML
  mixgen status -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

func runStatus(cmd *cobra.Command, limit int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cmdCtx.Engine.Store()
	if store == nil {
		return ErrStateDisabled
	}

	ctx := cmd.Context()
	outputs, err := store.ListOutputs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list outputs: %w", err)
	}
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := statusOutput(store.Path(), outputs, runs)
	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Encode(out)
	}

	r.Header(1, "State")
	r.KeyValue("Database", out.StatePath)
	r.Println()

	r.Header(2, fmt.Sprintf("Generated files (%d)", len(out.Outputs)))
	if len(out.Outputs) == 0 {
		r.Muted("none recorded")
	} else {
		rows := make([][]string, 0, len(out.Outputs))
		for _, o := range out.Outputs {
			rows = append(rows, []string{o.Path, strings.Join(o.Targets, ", "), o.GeneratedAt})
		}
		r.Table([]string{"File", "Targets", "Generated"}, rows)
	}
	r.Println()

	r.Header(2, "Recent runs")
	if len(out.Runs) == 0 {
		r.Muted("none recorded")
		return nil
	}
	titleCaser := cases.Title(language.English)
	rows := make([][]string, 0, len(out.Runs))
	for _, run := range out.Runs {
		rows = append(rows, []string{
			run.StartedAt,
			run.Command,
			titleCaser.String(run.Status),
			fmt.Sprintf("%d/%d", run.Written, run.Packages),
			run.Error,
		})
	}
	r.Table([]string{"Started", "Command", "Status", "Written", "Error"}, rows)
	return nil
}

func statusOutput(path string, outputs []*state.Output, runs []*state.Run) output.StatusOutput {
	out := output.StatusOutput{
		StatePath: path,
		Outputs:   make([]output.OutputInfo, 0, len(outputs)),
		Runs:      make([]output.RunInfo, 0, len(runs)),
	}
	for _, o := range outputs {
		out.Outputs = append(out.Outputs, output.OutputInfo{
			Dir:         o.Dir,
			Path:        o.Path,
			Targets:     o.Targets,
			GeneratedAt: o.GeneratedAt.Format(time.RFC3339),
		})
	}
	for _, run := range runs {
		info := output.RunInfo{
			ID:        run.ID,
			Command:   run.Command,
			Status:    string(run.Status),
			StartedAt: run.StartedAt.Format(time.RFC3339),
			Packages:  run.Packages,
			Written:   run.Written,
			Error:     run.Error,
		}
		if run.CompletedAt != nil {
			info.CompletedAt = run.CompletedAt.Format(time.RFC3339)
		}
		out.Runs = append(out.Runs, info)
	}
	return out
}
