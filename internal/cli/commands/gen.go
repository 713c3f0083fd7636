package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/engine"
)

// ErrStale is returned by check when a generated file is out of date.
var ErrStale = errors.New("generated files are out of date")

func errMultiplePackages(n int) error {
	return fmt.Errorf("expected exactly one package, got %d", n)
}

// NewGenCommand creates the gen command.
func NewGenCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "gen [packages...]",
		Aliases: []string{"generate"},
		Short:   "Generate composed declarations",
		Long: `Compose every declaration that names parents and write the result to the
package's generated file (mixgen_gen.go by default).

Arguments are package directories or Go package patterns; the default is the
current directory. Packages whose sources and generated file are unchanged
since the last recorded generation are skipped unless --force is given.`,
		Example: `  # Generate the current package
  mixgen gen

  # Generate every package in the module
  mixgen gen ./...

  # Regenerate even when nothing changed
  mixgen gen --force ./shapes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, engine.GenerateOptions{Force: force})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate even when the recorded output is current")

	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [packages...]",
		Short: "Verify generated files are up to date",
		Long: `Compose every package as gen would and compare the result with the file on
disk without writing anything. Differences are printed as a line diff and
the command fails, which makes it suitable for CI.`,
		Example: `  # Fail when any package in the module needs regeneration
  mixgen check ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, engine.GenerateOptions{Check: true})
		},
	}
}

func runGenerate(cmd *cobra.Command, args []string, opts engine.GenerateOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	dirs, err := cmdCtx.resolveDirs(ctx, args)
	if err != nil {
		return err
	}

	results, genErr := cmdCtx.Engine.GenerateAll(ctx, dirs, opts)
	if err := renderGenerate(cmdCtx.Renderer, results, genErr); err != nil {
		return err
	}
	if genErr != nil {
		return genErr
	}

	if opts.Check {
		for _, res := range results {
			if res.Stale() {
				return ErrStale
			}
		}
	}
	return nil
}

func renderGenerate(r *output.Renderer, results []*engine.GenerateResult, genErr error) error {
	out := output.GenerateOutput{Packages: make([]output.GenerateInfo, 0, len(results))}
	for _, res := range results {
		out.Packages = append(out.Packages, output.GenerateInfo{
			Dir:        res.Dir,
			Output:     res.Output,
			Targets:    res.Targets,
			Written:    res.Written,
			Skipped:    res.Skipped,
			Removed:    res.Removed,
			Stale:      res.Stale(),
			Diff:       res.Diff,
			DurationMS: res.Duration.Milliseconds(),
		})
		if res.Written || res.Removed {
			out.Written++
		}
		if res.Stale() {
			out.Stale++
		}
	}
	if genErr != nil {
		out.Errors = strings.Split(genErr.Error(), "\n")
	}

	if r.Structured() {
		return r.Encode(out)
	}

	for _, res := range results {
		line := res.Summary()
		switch {
		case res.Stale():
			r.Fail(line)
			r.Diff(res.Diff)
		case res.Written || res.Removed:
			r.Success(line)
		default:
			r.Muted(line)
		}
	}

	if len(results) > 1 {
		r.Println()
		r.Printf("%d packages, %d written, %d out of date\n", len(results), out.Written, out.Stale)
	}
	return nil
}

// relPath returns path relative to base when that is shorter.
func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil && len(rel) < len(path) {
		return rel
	}
	return path
}
