// Package contract derives an interface and a method binding from a composed
// declaration.
//
// The contract lists one signature per composed method, in composed order.
// The binding re-declares each of those methods on the composed type, so
// inherited implementations stay callable on it. Go interfaces cannot
// declare constants or types; associated units travel in the binding only.
package contract

import (
	"slices"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// DefaultSuffix is appended to the composed type's name to name its contract.
const DefaultSuffix = "Contract"

// Options configures synthesis.
type Options struct {
	// Suffix names the contract: <Type><Suffix>. Empty means DefaultSuffix.
	Suffix string
}

// Name returns the contract name for a declaration.
func (o Options) Name(decl string) string {
	suffix := o.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return decl + suffix
}

// Synthesize builds the contract and binding for decl.
func Synthesize(decl *core.ComposedDecl, opts Options) (*core.Contract, *core.Binding) {
	c := &core.Contract{
		Name: opts.Name(decl.Name),
		For:  decl.Name,
	}
	b := &core.Binding{
		Contract: c.Name,
		Type:     decl.Name,
	}

	for _, unit := range decl.Behaviors {
		switch unit.Kind {
		case core.BehaviorMethod:
			c.Signatures = append(c.Signatures, core.MethodSig{
				Name:      unit.Name,
				Signature: unit.Signature,
				Doc:       slices.Clone(unit.Doc),
			})
			b.Methods = append(b.Methods, rebind(unit, decl.Name))
		default:
			b.Assoc = append(b.Assoc, unit)
		}
	}

	return c, b
}

// rebind moves a method onto typ, keeping the receiver name and pointer-ness.
// Origin still names the declaration the implementation came from.
func rebind(unit core.Behavior, typ string) core.Behavior {
	unit.Doc = slices.Clone(unit.Doc)
	unit.Receiver.Type = typ
	return unit
}
