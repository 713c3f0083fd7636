// Package merge implements the ordered overwrite-by-name merge shared by
// fields and behavior units.
package merge

import "github.com/leapstack-labs/mixgen/pkg/core"

// IdentityFunc returns the merge key of an element. Elements reporting
// ok == false are unnamed: they never match anything and are always appended.
type IdentityFunc[T any] func(T) (name string, ok bool)

// Merge merges incoming into acc. For each incoming element, in order, an
// accumulator element with the same identity is removed and the incoming
// element is appended. The later source always wins and moves to the end.
//
// acc is modified in place; callers that need the original must clone it.
func Merge[T any](acc, incoming []T, identity IdentityFunc[T]) []T {
	for _, item := range incoming {
		name, named := identity(item)
		if named {
			for i, existing := range acc {
				if other, ok := identity(existing); ok && other == name {
					acc = append(acc[:i], acc[i+1:]...)
					break
				}
			}
		}
		acc = append(acc, item)
	}
	return acc
}

// Fields merges incoming fields into acc.
func Fields(acc, incoming []core.Field) []core.Field {
	return Merge(acc, incoming, core.Field.Identity)
}

// Behaviors merges incoming behavior units into acc.
func Behaviors(acc, incoming []core.Behavior) []core.Behavior {
	return Merge(acc, incoming, core.Behavior.Identity)
}
