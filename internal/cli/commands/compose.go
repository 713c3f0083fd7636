package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/engine"
	"github.com/leapstack-labs/mixgen/pkg/format"
)

// NewComposeCommand creates the compose command.
func NewComposeCommand() *cobra.Command {
	var (
		dir       string
		parents   []string
		behaviors bool
	)

	cmd := &cobra.Command{
		Use:   "compose <type>",
		Short: "Print the composition of one declaration",
		Long: `Compose a single declaration and print the result without writing files.

By default the parents come from the declaration's directive or manifest
entry. --parents replaces them, which also lets you preview a composition
for a declaration that names no parents at all.`,
		Example: `  # Preview the composed Rectangle of the current package
  mixgen compose Rectangle

  # Compose with an explicit parent list, fields only
  mixgen compose Square --parents Shape,Named --behaviors=false

  # Inspect the merge as JSON
  mixgen compose Rectangle -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := engine.ComposeRequest{
				Child:    args[0],
				Parents:  parents,
				Explicit: cmd.Flags().Changed("parents"),
			}
			if cmd.Flags().Changed("behaviors") {
				req.Behaviors = &behaviors
			}
			return runCompose(cmd, dir, req)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Package directory containing the declaration")
	cmd.Flags().StringSliceVarP(&parents, "parents", "p", nil, "Explicit parent list, replacing the directive")
	cmd.Flags().BoolVar(&behaviors, "behaviors", true, "Merge behaviors and synthesize a contract")

	return cmd
}

func runCompose(cmd *cobra.Command, dir string, req engine.ComposeRequest) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	snap, err := eng.Load(ctx, dir)
	if err != nil {
		return err
	}
	res, err := eng.Compose(ctx, snap.Registry, req)
	if err != nil {
		return err
	}

	prog := snap.Package.Program
	spec := format.FileSpec{
		Filename: filepath.Join(snap.Dir, eng.Config().OutputFile),
		Package:  prog.Package,
		Imports:  engine.FileImports(prog, res.Decl.Origins()...),
		Decls:    []format.Decl{res.FormatDecl()},
	}
	src, err := format.RenderFile(spec)
	if err != nil {
		return err
	}

	if r.Structured() {
		return r.Encode(composeOutput(res, string(src)))
	}

	r.Header(1, fmt.Sprintf("%s composed from %s", res.Decl.Name, strings.Join(res.Decl.Parents, ", ")))
	if r.EffectiveMode() == output.ModeMarkdown {
		r.KeyValue("Fields", fmt.Sprintf("%d", len(res.Decl.Fields)))
		r.KeyValue("Behaviors", fmt.Sprintf("%d", len(res.Decl.Behaviors)))
		if res.Contract != nil {
			r.KeyValue("Contract", res.Contract.Name)
		}
		r.Println()
	}
	r.Code(string(src))
	return nil
}

func composeOutput(res *engine.ComposeResult, src string) output.ComposeOutput {
	out := output.ComposeOutput{
		Name:      res.Decl.Name,
		Parents:   res.Decl.Parents,
		Fields:    make([]output.FieldInfo, 0, len(res.Decl.Fields)),
		Behaviors: make([]output.BehaviorInfo, 0, len(res.Decl.Behaviors)),
		Source:    src,
	}
	for _, f := range res.Decl.Fields {
		out.Fields = append(out.Fields, output.FieldInfo{
			Name:     f.Name,
			Type:     f.Type,
			Tag:      f.Tag,
			Embedded: f.Embedded,
			Origin:   f.Origin,
		})
	}
	for _, b := range res.Decl.Behaviors {
		out.Behaviors = append(out.Behaviors, output.BehaviorInfo{
			Name:   b.Name,
			Kind:   b.Kind.String(),
			Origin: b.Origin,
		})
	}
	if res.Contract != nil {
		out.Contract = res.Contract.Name
	}
	return out
}
