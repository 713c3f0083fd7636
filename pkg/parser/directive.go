package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// Directive is a parsed //mixgen:inherit comment.
type Directive struct {
	Parents []string
	// Behaviors is nil unless the directive sets behaviors=true|false.
	Behaviors *bool
	Pos       core.Position
}

// directiveArgs reports whether the comment text is the named directive and
// returns everything after it. Directives follow the Go convention: no space
// after the slashes.
func directiveArgs(text, name string) (string, bool) {
	rest, ok := strings.CutPrefix(text, "//"+name)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// e.g. //mixgen:inheritance
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// parseDirective reads "A, B C behaviors=false". Parent names may be separated
// by commas, spaces or both.
func parseDirective(args string, pos core.Position) (*Directive, error) {
	d := &Directive{Pos: pos}

	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	for _, field := range fields {
		if key, value, ok := strings.Cut(field, "="); ok {
			if key != "behaviors" {
				return nil, &core.ParseError{Pos: pos, Message: fmt.Sprintf(ErrDirectiveOption, key)}
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, &core.ParseError{Pos: pos, Message: fmt.Sprintf(ErrDirectiveValue, value, key), Err: err}
			}
			d.Behaviors = &b
			continue
		}
		if !token.IsIdentifier(field) {
			return nil, &core.ParseError{Pos: pos, Message: fmt.Sprintf(ErrDirectiveParent, field)}
		}
		d.Parents = append(d.Parents, field)
	}

	if len(d.Parents) == 0 {
		return nil, &core.ParseError{Pos: pos, Message: ErrDirectiveEmpty}
	}
	return d, nil
}

// findAssoc looks for the assoc directive in a gen-decl's doc comment.
func findAssoc(doc *ast.CommentGroup, name string) (target string, pos token.Pos, ok bool) {
	if doc == nil {
		return "", token.NoPos, false
	}
	for _, c := range doc.List {
		if args, found := directiveArgs(c.Text, name); found {
			return args, c.Pos(), true
		}
	}
	return "", token.NoPos, false
}

// replaceIota rewrites every iota identifier in expr to the integer literal n.
func replaceIota(expr ast.Expr, n int) ast.Node {
	return astutil.Apply(expr, func(c *astutil.Cursor) bool {
		if ident, ok := c.Node().(*ast.Ident); ok && ident.Name == "iota" {
			c.Replace(&ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(n)})
		}
		return true
	}, nil)
}
