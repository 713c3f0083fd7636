package core

import (
	"fmt"
	"strings"
)

// DeclKind classifies a top-level type declaration.
type DeclKind int

// Declaration kinds.
const (
	// DeclStruct is a plain struct declaration, the only composable kind.
	DeclStruct DeclKind = iota
	// DeclInterface is an interface declaration.
	DeclInterface
	// DeclOther covers named non-struct types and aliases.
	DeclOther
)

// String returns the string representation of the kind.
func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclInterface:
		return "interface"
	case DeclOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParentSource records which calling convention supplied an entry's parents.
type ParentSource int

// Parent sources.
const (
	// ParentsNone means the declaration has no parent list.
	ParentsNone ParentSource = iota
	// ParentsDirective means the list came from a directive on the declaration.
	ParentsDirective
	// ParentsExplicit means the list was passed explicitly (manifest or CLI).
	ParentsExplicit
)

// String returns the string representation of the source.
func (s ParentSource) String() string {
	switch s {
	case ParentsDirective:
		return "directive"
	case ParentsExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// Position is a location in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns "file:line:column", omitting unknown parts.
func (p Position) String() string {
	switch {
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	case p.Line == 0:
		return p.File
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// Field is a single data member of a struct declaration.
type Field struct {
	// Name is the field name; empty for embedded fields.
	Name string
	// Type is the type expression as source text.
	Type string
	// Tag is the raw struct tag literal including quotes, if any.
	Tag string
	// Embedded is true for embedded fields.
	Embedded bool
	// Doc holds the lines of the field's doc comment.
	Doc []string
	// Comment is the trailing line comment, if any.
	Comment string
	// Origin is the declaration the field was written in.
	Origin string
}

// Identity returns the merge key of the field.
// Embedded fields are keyed by their implicit name, as the compiler does.
// Blank fields are unnamed and report ok == false, so they never replace
// one another.
func (f Field) Identity() (name string, ok bool) {
	if f.Embedded {
		name = EmbeddedName(f.Type)
		return name, name != ""
	}
	if f.Name == "" || f.Name == "_" {
		return "", false
	}
	return f.Name, true
}

// EmbeddedName returns the implicit field name of an embedded type
// expression: "*pkg.List[int]" is named "List".
func EmbeddedName(typ string) string {
	typ = strings.TrimLeft(strings.TrimSpace(typ), "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	return strings.TrimSpace(typ)
}

// BehaviorKind classifies a behavior unit.
type BehaviorKind int

// Behavior kinds.
const (
	// BehaviorMethod is a method declared with a receiver.
	BehaviorMethod BehaviorKind = iota
	// BehaviorConst is an associated constant.
	BehaviorConst
	// BehaviorType is an associated type.
	BehaviorType
)

// String returns the string representation of the kind.
func (k BehaviorKind) String() string {
	switch k {
	case BehaviorMethod:
		return "method"
	case BehaviorConst:
		return "const"
	case BehaviorType:
		return "type"
	default:
		return "unknown"
	}
}

// Receiver describes a method receiver.
type Receiver struct {
	// Name is the receiver variable name; may be empty.
	Name string
	// Type is the receiver's base type name.
	Type string
	// Pointer is true for *T receivers.
	Pointer bool
}

// Signature is a method's parameter and result lists as source text.
// Params excludes the surrounding parentheses; Results is empty, a single
// type, or a parenthesized list exactly as written.
type Signature struct {
	Params  string
	Results string
}

// Behavior is a named callable, constant or type attached to a declaration.
type Behavior struct {
	// Name is the merge key; always set.
	Name string
	Kind BehaviorKind
	// Origin is the declaration the unit was attached to.
	Origin string
	Doc    []string

	// Receiver, Signature and Body are set for methods.
	Receiver  Receiver
	Signature Signature
	// Body is the method body including braces.
	Body string

	// Spec is the source text of a const or type spec.
	Spec string
}

// Identity returns the merge key of the behavior unit.
func (b Behavior) Identity() (name string, ok bool) {
	return b.Name, true
}

// Entry is the registry record of one top-level type declaration.
type Entry struct {
	Name string
	Kind DeclKind
	// Generic is true when the declaration has type parameters.
	Generic bool
	// Fields are the declaration's own fields in source order.
	Fields []Field
	// Behaviors are the units attached to the declaration in encounter order.
	Behaviors []Behavior
	// Parents is the ordered parent-name list.
	Parents     []string
	ParentsFrom ParentSource
	// MergeBehaviors is the per-declaration behavior merging option, if set.
	MergeBehaviors *bool
	Doc            []string
	Pos            Position
}

// Composable reports whether the entry can take part in composition,
// returning a reason when it cannot.
func (e *Entry) Composable() (bool, string) {
	if e.Kind != DeclStruct {
		return false, "not a struct declaration"
	}
	if e.Generic {
		return false, "type parameters are not supported"
	}
	return true, ""
}

// ComposedDecl is the result of composing a child with its parents.
type ComposedDecl struct {
	Name      string
	Fields    []Field
	Behaviors []Behavior
	// Parents is the parent list the declaration was composed from.
	Parents []string
	Doc     []string
}

// Methods returns the method units of the declaration in order.
func (d *ComposedDecl) Methods() []Behavior {
	var out []Behavior
	for _, b := range d.Behaviors {
		if b.Kind == BehaviorMethod {
			out = append(out, b)
		}
	}
	return out
}

// Origins returns the declaration itself followed by every distinct origin
// of its fields and behaviors, in first-seen order.
func (d *ComposedDecl) Origins() []string {
	seen := map[string]bool{d.Name: true}
	out := []string{d.Name}
	add := func(origin string) {
		if origin != "" && !seen[origin] {
			seen[origin] = true
			out = append(out, origin)
		}
	}
	for _, f := range d.Fields {
		add(f.Origin)
	}
	for _, b := range d.Behaviors {
		add(b.Origin)
	}
	return out
}
