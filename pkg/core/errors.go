package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoParents is returned when a composition request names no parents.
var ErrNoParents = errors.New("no parents specified")

// UnknownParentError reports a parent name missing from the registry.
type UnknownParentError struct {
	Parent string
	Child  string
	// Sources are the files the registry was built from.
	Sources []string
}

func (e *UnknownParentError) Error() string {
	where := "the registry"
	if len(e.Sources) > 0 {
		where = strings.Join(e.Sources, ", ")
	}
	return fmt.Sprintf("parent %q of %q not found in %s", e.Parent, e.Child, where)
}

// UnknownDeclarationError reports a composition target missing from the registry.
type UnknownDeclarationError struct {
	Name    string
	Sources []string
}

func (e *UnknownDeclarationError) Error() string {
	where := "the registry"
	if len(e.Sources) > 0 {
		where = strings.Join(e.Sources, ", ")
	}
	return fmt.Sprintf("declaration %q not found in %s", e.Name, where)
}

// UnsupportedKindError reports a child or ancestor that is not a plain struct.
type UnsupportedKindError struct {
	Name   string
	Kind   DeclKind
	Reason string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("cannot compose %q (%s): %s", e.Name, e.Kind, e.Reason)
}

// CyclicInheritanceError reports a parent chain that loops back on itself.
type CyclicInheritanceError struct {
	// Path lists the names on the loop; the first and last are equal.
	Path []string
}

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("cyclic inheritance: %s", strings.Join(e.Path, " -> "))
}

// AssocOverrideError reports an associated constant or type that shares its
// name with one inherited from a parent. Associated units are package-level
// declarations, so the two cannot coexist and the inherited one cannot be
// overridden.
type AssocOverrideError struct {
	Name string
	Kind BehaviorKind
	// Child declares the overriding unit.
	Child string
	// Origin declares the inherited unit.
	Origin string
}

func (e *AssocOverrideError) Error() string {
	return fmt.Sprintf("associated %s %q of %q redeclares the one inherited from %q; associated declarations cannot be overridden",
		e.Kind, e.Name, e.Child, e.Origin)
}

// ParseError reports source text the parser could not turn into a tree.
type ParseError struct {
	Pos     Position
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
