// Package registry builds the name → declaration index that composition
// resolves parents against.
//
// A Registry is built once per program and never mutated afterwards, so it
// can be shared between goroutines and cached by content hash.
package registry

import (
	"log/slog"
	"slices"

	"github.com/leapstack-labs/mixgen/pkg/core"
	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// Registry maps declaration names to their entries.
type Registry struct {
	// byName maps type names to entries: "Rectangle" → *core.Entry
	byName map[string]*core.Entry

	// names keeps declaration order for deterministic iteration
	names []string

	// Package is the Go package name of the program.
	Package string

	// sources are the files searched, reported in diagnostics
	sources []string
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	explicit  map[string][]string
	behaviors map[string]bool
	logger    *slog.Logger
}

// WithExplicitParents replaces the directive parent lists of the named
// declarations. Entries given here are marked core.ParentsExplicit.
func WithExplicitParents(parents map[string][]string) Option {
	return func(b *builder) {
		b.explicit = parents
	}
}

// WithBehaviorOverrides sets the behavior merging option of the named
// declarations, taking precedence over their directives.
func WithBehaviorOverrides(behaviors map[string]bool) Option {
	return func(b *builder) {
		b.behaviors = behaviors
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// Build indexes every type declaration of the program and attaches the
// program's behavior blocks to their target declarations.
//
// When a name is declared more than once the first declaration wins and
// later ones are ignored. Behavior units are appended in encounter order
// without de-duplication; the merge resolves duplicates later.
func Build(prog *parser.Program, opts ...Option) (*Registry, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}

	r := &Registry{
		byName:  make(map[string]*core.Entry),
		Package: prog.Package,
		sources: prog.Sources(),
	}

	// Pass 1: declarations
	for _, td := range prog.TypeDecls() {
		if prev, exists := r.byName[td.Name]; exists {
			b.logger.Debug("ignoring duplicate declaration",
				"name", td.Name,
				"pos", td.Pos.String(),
				"first", prev.Pos.String())
			continue
		}
		entry := newEntry(td)
		b.applyOverrides(entry)
		r.byName[td.Name] = entry
		r.names = append(r.names, td.Name)
	}

	for name := range b.explicit {
		if _, ok := r.byName[name]; !ok {
			b.logger.Warn("explicit parents given for undeclared type", "name", name)
		}
	}

	// Pass 2: behavior blocks
	for _, block := range prog.Blocks() {
		entry, ok := r.byName[block.Target]
		if !ok {
			b.logger.Debug("dropping behavior block for undeclared type",
				"target", block.Target,
				"pos", block.Pos.String())
			continue
		}
		entry.Behaviors = append(entry.Behaviors, block.Units...)
	}

	b.logger.Debug("registry built",
		"package", r.Package,
		"declarations", len(r.names),
		"files", len(r.sources))

	return r, nil
}

func newEntry(td *parser.TypeDecl) *core.Entry {
	entry := &core.Entry{
		Name:    td.Name,
		Kind:    td.Kind,
		Generic: td.Generic,
		Fields:  slices.Clone(td.Fields),
		Doc:     slices.Clone(td.Doc),
		Pos:     td.Pos,
	}
	if td.Directive != nil {
		entry.Parents = slices.Clone(td.Directive.Parents)
		entry.ParentsFrom = core.ParentsDirective
		entry.MergeBehaviors = td.Directive.Behaviors
	}
	return entry
}

func (b *builder) applyOverrides(entry *core.Entry) {
	if parents, ok := b.explicit[entry.Name]; ok {
		if entry.ParentsFrom == core.ParentsDirective && !slices.Equal(parents, entry.Parents) {
			b.logger.Warn("explicit parents override directive",
				"name", entry.Name,
				"directive", entry.Parents,
				"explicit", parents)
		}
		entry.Parents = slices.Clone(parents)
		entry.ParentsFrom = core.ParentsExplicit
	}
	if merge, ok := b.behaviors[entry.Name]; ok {
		entry.MergeBehaviors = &merge
	}
}

// Lookup returns the entry declared under name.
func (r *Registry) Lookup(name string) (*core.Entry, bool) {
	entry, ok := r.byName[name]
	return entry, ok
}

// Entries returns all entries in declaration order.
func (r *Registry) Entries() []*core.Entry {
	entries := make([]*core.Entry, 0, len(r.names))
	for _, name := range r.names {
		entries = append(entries, r.byName[name])
	}
	return entries
}

// Targets returns the entries that have a parent list, in declaration order.
func (r *Registry) Targets() []*core.Entry {
	var targets []*core.Entry
	for _, name := range r.names {
		if entry := r.byName[name]; len(entry.Parents) > 0 {
			targets = append(targets, entry)
		}
	}
	return targets
}

// Sources returns the files the registry was built from.
func (r *Registry) Sources() []string {
	return slices.Clone(r.sources)
}

// Count returns the number of registered declarations.
func (r *Registry) Count() int {
	return len(r.names)
}
