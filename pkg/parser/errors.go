package parser

import (
	"errors"
	"go/scanner"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// Common error messages
const (
	ErrInvalidImport      = "invalid import path %s"
	ErrDuplicateDirective = "duplicate //%s directive"
	ErrUnsupportedRecv    = "unsupported receiver type %s"
	ErrAssocTarget        = "//%s needs a type name, got %q"
	ErrAssocKind          = "//%s applies to const and type declarations, not %s"
	ErrConstArity         = "constant declaration has %d names and %d values"
	ErrIotaExpand         = "cannot expand iota in %q: %v"

	// Directive error messages
	ErrDirectiveEmpty  = "directive lists no parents"
	ErrDirectiveParent = "invalid parent name %q"
	ErrDirectiveOption = "unknown directive option %q"
	ErrDirectiveValue  = "invalid value %q for option %s"
)

// newParseError converts a go/parser error into a *core.ParseError.
func newParseError(filename string, err error) error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &core.ParseError{
			Pos:     core.Position{File: first.Pos.Filename, Line: first.Pos.Line, Column: first.Pos.Column},
			Message: first.Msg,
			Err:     err,
		}
	}
	return &core.ParseError{Pos: core.Position{File: filename}, Message: err.Error(), Err: err}
}
