package format

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	pathpkg "path"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ImportConflictError reports distinct import paths bound to the same
// package name, with the name referenced by the generated code.
type ImportConflictError struct {
	Name  string
	Paths []string
}

func (e *ImportConflictError) Error() string {
	return fmt.Sprintf("package name %q is imported from %s; give one of the imports an explicit name",
		e.Name, strings.Join(e.Paths, " and "))
}

// LocalName returns the name code refers to the import by: the explicit name
// if set, else the name assumed from the last path element the way
// goimports assumes it.
func (i Import) LocalName() string {
	if i.Name != "" {
		return i.Name
	}
	return assumedName(i.Path)
}

// resolveImports settles imports that bind the same name to different paths.
// Such a group is dropped when body never qualifies an identifier with the
// name, and rejected otherwise. Other imports are left to goimports.
// Blank imports are dropped; their side effects belong to the package.
func resolveImports(imps []Import, pkg, body string) ([]Import, error) {
	groups := make(map[string][]string)
	var order []string
	for _, imp := range imps {
		if imp.Name == "_" || imp.Name == "." {
			continue
		}
		name := imp.LocalName()
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		if !slices.Contains(groups[name], imp.Path) {
			groups[name] = append(groups[name], imp.Path)
		}
	}

	var refs map[string]bool
	drop := make(map[string]bool)
	for _, name := range order {
		if len(groups[name]) < 2 {
			continue
		}
		if refs == nil {
			var err error
			if refs, err = qualifiers(pkg, body); err != nil {
				return imps, nil
			}
		}
		if refs[name] {
			return nil, &ImportConflictError{Name: name, Paths: groups[name]}
		}
		drop[name] = true
	}

	out := make([]Import, 0, len(imps))
	seen := make(map[[2]string]bool)
	for _, imp := range imps {
		if imp.Name == "_" {
			continue
		}
		key := [2]string{imp.LocalName(), imp.Path}
		if imp.Name == "." {
			key[0] = "."
		}
		if seen[key] || key[0] != "." && drop[key[0]] {
			continue
		}
		seen[key] = true
		out = append(out, imp)
	}
	return out, nil
}

// qualifiers returns the identifiers used as the left side of a selector in
// body. It over-approximates package references: receivers and locals count.
// A body that does not parse yields an error and the caller keeps every
// import, leaving the syntax error to goimports.
func qualifiers(pkg, body string) (map[string]bool, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", "package "+pkg+"\n"+body, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]bool)
	ast.Inspect(f, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				refs[id.Name] = true
			}
		}
		return true
	})
	return refs, nil
}

// assumedName mirrors goimports: the last path element, skipping a major
// version element, without a "go-" prefix, cut at the first character that
// cannot appear in an identifier.
func assumedName(path string) string {
	base := pathpkg.Base(path)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := pathpkg.Dir(path); dir != "." {
				base = pathpkg.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(r rune) bool {
	return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_' ||
		r >= utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}
