package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/engine"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var targetsOnly bool

	cmd := &cobra.Command{
		Use:   "list [package]",
		Short: "List declarations and their parents",
		Long: `List every type declaration mixgen sees in a package, with its kind, parent
list and where the parents came from (directive or manifest).

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List declarations of the current package
  mixgen list

  # Only declarations that will be composed
  mixgen list --targets ./shapes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, targetsOnly)
		},
	}

	cmd.Flags().BoolVar(&targetsOnly, "targets", false, "Only list declarations with parents")

	return cmd
}

func runList(cmd *cobra.Command, args []string, targetsOnly bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	dir, err := cmdCtx.resolveDir(ctx, args)
	if err != nil {
		return err
	}
	snap, err := cmdCtx.Engine.Load(ctx, dir)
	if err != nil {
		return err
	}

	out := listOutput(snap, targetsOnly)
	r := cmdCtx.Renderer

	if r.Structured() {
		return r.Encode(out)
	}

	r.Header(1, fmt.Sprintf("Declarations in %s (%d total, %d targets)", out.Package, len(out.Declarations), out.Targets))
	rows := make([][]string, 0, len(out.Declarations))
	for _, d := range out.Declarations {
		kind := d.Kind
		if d.Generic {
			kind += " (generic)"
		}
		rows = append(rows, []string{
			d.Name,
			kind,
			strings.Join(d.Parents, ", "),
			d.ParentsFrom,
			fmt.Sprintf("%s:%d", relPath(snap.Dir, d.File), d.Line),
		})
	}
	r.Table([]string{"Name", "Kind", "Parents", "From", "Position"}, rows)
	return nil
}

func listOutput(snap *engine.Snapshot, targetsOnly bool) output.ListOutput {
	out := output.ListOutput{
		Dir:          snap.Dir,
		Package:      snap.Package.Program.Package,
		Declarations: []output.DeclInfo{},
	}
	for _, e := range snap.Registry.Entries() {
		isTarget := len(e.Parents) > 0
		if isTarget {
			out.Targets++
		}
		if targetsOnly && !isTarget {
			continue
		}
		info := output.DeclInfo{
			Name:      e.Name,
			Kind:      e.Kind.String(),
			Generic:   e.Generic,
			Parents:   e.Parents,
			Fields:    len(e.Fields),
			Behaviors: len(e.Behaviors),
			File:      e.Pos.File,
			Line:      e.Pos.Line,
		}
		if isTarget {
			info.ParentsFrom = e.ParentsFrom.String()
		}
		out.Declarations = append(out.Declarations, info)
	}
	return out
}
