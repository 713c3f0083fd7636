package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/dag"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "graph [package]",
		Short: "Show the inheritance graph",
		Long: `Show the inheritance graph of a package grouped by depth. Level 0 holds
declarations without parents; every other declaration sits one level below
its deepest parent. Parent references to undeclared names are listed
separately, and a cycle is reported as an error.`,
		Example: `  # Show the graph of the current package
  mixgen graph

  # Only Square, its ancestors and its descendants
  mixgen graph --focus Square ./shapes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args, focus)
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "Restrict the graph to one declaration and its relatives")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string, focus string) error {
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

	g := snap.Graph()
	if focus != "" {
		if _, ok := g.Node(focus); !ok {
			return fmt.Errorf("unknown declaration %q", focus)
		}
		names := append(g.Ancestors(focus), focus)
		names = append(names, g.Descendants(focus)...)
		g = g.Subgraph(names)
	}

	out, err := graphOutput(g)
	if err != nil {
		return err
	}
	out.Dir = snap.Dir

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Encode(out)
	}

	r.Header(1, fmt.Sprintf("Inheritance graph (%d declarations, %d edges)", len(out.Nodes), out.Edges))
	level := -1
	for _, n := range out.Nodes {
		if n.Level != level {
			level = n.Level
			r.Println()
			r.Header(2, fmt.Sprintf("Level %d", level))
		}
		line := n.Name
		if len(n.Parents) > 0 {
			line += " <- " + strings.Join(n.Parents, ", ")
		}
		r.Println("  " + line)
	}
	if len(out.Missing) > 0 {
		r.Println()
		r.Header(2, "Missing parents")
		for _, m := range out.Missing {
			r.Warn(fmt.Sprintf("%s names undeclared parent %s", m.Child, m.Parent))
		}
	}
	return nil
}

func graphOutput(g *dag.Graph) (output.GraphOutput, error) {
	levels, err := g.Levels()
	if err != nil {
		if cycle := g.Cycle(); cycle != nil {
			return output.GraphOutput{}, cycle
		}
		return output.GraphOutput{}, err
	}

	out := output.GraphOutput{
		Nodes: make([]output.GraphNode, 0, g.NodeCount()),
		Edges: g.EdgeCount(),
	}
	for l, names := range levels {
		for _, name := range names {
			out.Nodes = append(out.Nodes, output.GraphNode{
				Name:     name,
				Level:    l,
				Parents:  g.Parents(name),
				Children: g.Children(name),
			})
		}
	}
	for _, m := range g.Missing() {
		out.Missing = append(out.Missing, output.MissingParent{Child: m.Child, Parent: m.Parent})
	}
	return out, nil
}
