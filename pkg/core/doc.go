// Package core defines the shared language of mixgen.
//
// This package contains:
//   - Declaration entities (Field, Behavior, Entry, ComposedDecl)
//   - Contract entities (Contract, MethodSig, Binding)
//   - The composition error taxonomy
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
