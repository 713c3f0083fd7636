// Package compose resolves a child declaration against its parents.
//
// Parents are linear mixins applied left to right. A parent that has parents
// of its own is first resolved completely (grandparents before parents), and
// then contributes its resolved members exactly once per listing. The child's
// own members are merged last, so they override everything inherited, except
// associated constants and types, which live at package level and cannot be
// redeclared.
package compose

import (
	"log/slog"
	"slices"

	"github.com/leapstack-labs/mixgen/pkg/core"
	"github.com/leapstack-labs/mixgen/pkg/merge"
)

// Lookup resolves declaration names. *registry.Registry implements it.
type Lookup interface {
	Lookup(name string) (*core.Entry, bool)
	Sources() []string
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for trace output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// Composer merges declarations found through a Lookup.
// A Composer is not safe for concurrent use; create one per goroutine.
type Composer struct {
	reg    Lookup
	logger *slog.Logger

	// stack holds the names currently being resolved
	stack []string
}

// New creates a Composer over reg.
func New(reg Lookup, opts ...Option) *Composer {
	c := &Composer{reg: reg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// ComposeEntry composes an entry with its own fields, behaviors and parents.
func (c *Composer) ComposeEntry(e *core.Entry) (*core.ComposedDecl, error) {
	decl, err := c.Compose(e.Name, e.Fields, e.Behaviors, e.Parents)
	if err != nil {
		return nil, err
	}
	decl.Doc = slices.Clone(e.Doc)
	return decl, nil
}

// Compose merges the parents' members, then the child's own members.
// The returned declaration shares no slices with the inputs or the registry.
func (c *Composer) Compose(child string, fields []core.Field, behaviors []core.Behavior, parents []string) (*core.ComposedDecl, error) {
	c.stack = c.stack[:0]
	return c.compose(child, fields, behaviors, parents)
}

func (c *Composer) compose(child string, fields []core.Field, behaviors []core.Behavior, parents []string) (*core.ComposedDecl, error) {
	if slices.Contains(c.stack, child) {
		path := append(slices.Clone(c.stack[slices.Index(c.stack, child):]), child)
		return nil, &core.CyclicInheritanceError{Path: path}
	}
	c.stack = append(c.stack, child)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	var accFields []core.Field
	var accBehaviors []core.Behavior

	for _, name := range parents {
		parent, ok := c.reg.Lookup(name)
		if !ok {
			return nil, &core.UnknownParentError{Parent: name, Child: child, Sources: c.reg.Sources()}
		}
		if ok, reason := parent.Composable(); !ok {
			return nil, &core.UnsupportedKindError{Name: name, Kind: parent.Kind, Reason: reason}
		}

		parentFields, parentBehaviors := parent.Fields, parent.Behaviors
		if len(parent.Parents) > 0 {
			resolved, err := c.compose(parent.Name, parent.Fields, parent.Behaviors, parent.Parents)
			if err != nil {
				return nil, err
			}
			parentFields, parentBehaviors = resolved.Fields, resolved.Behaviors
		}

		c.logger.Debug("merging parent",
			"child", child,
			"parent", name,
			"fields", len(parentFields),
			"behaviors", len(parentBehaviors))

		accFields = merge.Fields(accFields, parentFields)
		accBehaviors = merge.Behaviors(accBehaviors, parentBehaviors)
	}

	if err := checkAssoc(child, accBehaviors, behaviors); err != nil {
		return nil, err
	}

	accFields = merge.Fields(accFields, fields)
	accBehaviors = merge.Behaviors(accBehaviors, behaviors)

	return &core.ComposedDecl{
		Name:      child,
		Fields:    cloneFields(accFields),
		Behaviors: cloneBehaviors(accBehaviors),
		Parents:   slices.Clone(parents),
	}, nil
}

// checkAssoc rejects own associated units named like inherited ones.
func checkAssoc(child string, inherited, own []core.Behavior) error {
	for _, u := range own {
		if u.Kind == core.BehaviorMethod {
			continue
		}
		for _, prev := range inherited {
			if prev.Kind != core.BehaviorMethod && prev.Name == u.Name {
				return &core.AssocOverrideError{Name: u.Name, Kind: u.Kind, Child: child, Origin: prev.Origin}
			}
		}
	}
	return nil
}

func cloneFields(in []core.Field) []core.Field {
	out := slices.Clone(in)
	for i := range out {
		out[i].Doc = slices.Clone(out[i].Doc)
	}
	return out
}

func cloneBehaviors(in []core.Behavior) []core.Behavior {
	out := slices.Clone(in)
	for i := range out {
		out[i].Doc = slices.Clone(out[i].Doc)
	}
	return out
}
