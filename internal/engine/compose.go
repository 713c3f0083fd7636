package engine

import (
	"context"
	"slices"

	"github.com/leapstack-labs/mixgen/internal/registry"
	"github.com/leapstack-labs/mixgen/pkg/compose"
	"github.com/leapstack-labs/mixgen/pkg/contract"
	"github.com/leapstack-labs/mixgen/pkg/core"
	"github.com/leapstack-labs/mixgen/pkg/format"
	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// ComposeRequest names a declaration to compose.
type ComposeRequest struct {
	Child string
	// Parents replaces the entry's own parent list when Explicit is set.
	Parents  []string
	Explicit bool
	// Behaviors overrides the declaration and config setting when non-nil.
	Behaviors *bool
}

// ComposeResult is a composed declaration with its contract and binding.
// Contract and Binding are nil when behaviors are not merged.
type ComposeResult struct {
	Decl     *core.ComposedDecl
	Contract *core.Contract
	Binding  *core.Binding
}

// FormatDecl returns the result as a format.Decl. Without a binding the
// declaration's own behavior units are carried instead.
func (r *ComposeResult) FormatDecl() format.Decl {
	d := format.Decl{
		Decl:     r.Decl,
		Contract: r.Contract,
		Binding:  r.Binding,
	}
	if r.Binding == nil {
		for _, unit := range r.Decl.Behaviors {
			if unit.Origin == r.Decl.Name {
				d.Own = append(d.Own, unit)
			}
		}
	}
	return d
}

// FileImports returns the imports of the files that declare the given types
// or their behaviors, ready for a generated file.
func FileImports(prog *parser.Program, types ...string) []format.Import {
	var out []format.Import
	for _, imp := range prog.ImportsOf(types...) {
		out = append(out, format.Import{Name: imp.Name, Path: imp.Path})
	}
	return out
}

// Compose resolves req against reg.
func (e *Engine) Compose(ctx context.Context, reg *registry.Registry, req ComposeRequest) (*ComposeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, ok := reg.Lookup(req.Child)
	if !ok {
		return nil, &core.UnknownDeclarationError{Name: req.Child, Sources: reg.Sources()}
	}
	if ok, reason := entry.Composable(); !ok {
		return nil, &core.UnsupportedKindError{Name: entry.Name, Kind: entry.Kind, Reason: reason}
	}

	parents := entry.Parents
	if req.Explicit {
		parents = req.Parents
	}
	if len(parents) == 0 {
		return nil, core.ErrNoParents
	}
	for _, parent := range parents {
		if _, ok := reg.Lookup(parent); !ok {
			return nil, &core.UnknownParentError{Parent: parent, Child: entry.Name, Sources: reg.Sources()}
		}
	}

	c := compose.New(reg, compose.WithLogger(e.logger))
	decl, err := c.Compose(entry.Name, entry.Fields, entry.Behaviors, parents)
	if err != nil {
		return nil, err
	}
	decl.Doc = slices.Clone(entry.Doc)

	result := &ComposeResult{Decl: decl}
	if e.mergeBehaviors(entry, req.Behaviors) {
		result.Contract, result.Binding = contract.Synthesize(decl, contract.Options{Suffix: e.cfg.ContractSuffix})
	}

	e.logger.Debug("composed declaration",
		"name", decl.Name,
		"parents", parents,
		"fields", len(decl.Fields),
		"behaviors", len(decl.Behaviors),
		"contract", result.Contract != nil)

	return result, nil
}

func (e *Engine) mergeBehaviors(entry *core.Entry, override *bool) bool {
	switch {
	case override != nil:
		return *override
	case entry.MergeBehaviors != nil:
		return *entry.MergeBehaviors
	default:
		return e.cfg.Behaviors
	}
}
