// Package parser reads Go source files into the declaration view mixgen
// composes from.
//
// # Usage
//
//	file, err := parser.ParseFile("shapes.go", src, parser.DefaultOptions())
//	if err != nil {
//	    // *core.ParseError
//	}
//	prog, err := parser.NewProgram(file)
//
// A file contributes two kinds of top-level items:
//
//	type declaration → type T struct{...}        (any type spec is recorded with its kind)
//	behavior block   → func (r T) M(...) ...     (one method)
//	                 → //mixgen:assoc T          (const or type gen-decl, one unit per name)
//
// Parents are read from a directive comment on the type declaration:
//
//	//mixgen:inherit Shape, Named behaviors=false
//	type Rectangle struct { ... }
package parser

import (
	"bytes"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/printer"
	"go/token"
	"strconv"
	"strings"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// Default directive names.
const (
	DefaultDirective      = "mixgen:inherit"
	DefaultAssocDirective = "mixgen:assoc"
)

// Options configures directive recognition.
type Options struct {
	// Directive marks a type declaration's parent list (without the leading //).
	Directive string
	// AssocDirective attaches a const or type gen-decl to a declaration.
	AssocDirective string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Directive:      DefaultDirective,
		AssocDirective: DefaultAssocDirective,
	}
}

func (o Options) withDefaults() Options {
	if o.Directive == "" {
		o.Directive = DefaultDirective
	}
	if o.AssocDirective == "" {
		o.AssocDirective = DefaultAssocDirective
	}
	return o
}

// Import is an import spec of a source file.
type Import struct {
	Name string
	Path string
}

// TypeDecl is a top-level type declaration.
type TypeDecl struct {
	Name      string
	Kind      core.DeclKind
	Generic   bool
	Fields    []core.Field
	Doc       []string
	Directive *Directive
	Pos       core.Position
}

// BehaviorBlock is a group of behavior units attached to one type name.
type BehaviorBlock struct {
	Target string
	Units  []core.Behavior
	Pos    core.Position
}

// File is the parsed view of a single Go source file.
type File struct {
	Name    string
	Package string
	Imports []Import
	Types   []*TypeDecl
	Blocks  []*BehaviorBlock
	// Generated is true when the file carries a "Code generated ... DO NOT EDIT." header.
	Generated bool
}

// ParseFile parses Go source and extracts type declarations and behavior blocks.
// Syntax errors are returned as *core.ParseError.
func ParseFile(filename string, src []byte, opts Options) (*File, error) {
	opts = opts.withDefaults()

	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, filename, src, goparser.ParseComments|goparser.SkipObjectResolution)
	if err != nil {
		return nil, newParseError(filename, err)
	}

	p := &fileParser{fset: fset, src: src, opts: opts, filename: filename}
	out := &File{
		Name:      filename,
		Package:   f.Name.Name,
		Generated: ast.IsGenerated(f),
	}

	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return nil, p.errorf(imp.Path.Pos(), ErrInvalidImport, imp.Path.Value)
		}
		i := Import{Path: path}
		if imp.Name != nil {
			i.Name = imp.Name.Name
		}
		out.Imports = append(out.Imports, i)
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if err := p.genDecl(d, out); err != nil {
				return nil, err
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			block, err := p.method(d)
			if err != nil {
				return nil, err
			}
			out.Blocks = append(out.Blocks, block)
		}
	}

	return out, nil
}

type fileParser struct {
	fset     *token.FileSet
	src      []byte
	opts     Options
	filename string
}

func (p *fileParser) position(pos token.Pos) core.Position {
	pp := p.fset.Position(pos)
	return core.Position{File: pp.Filename, Line: pp.Line, Column: pp.Column}
}

func (p *fileParser) errorf(pos token.Pos, format string, args ...any) error {
	return &core.ParseError{Pos: p.position(pos), Message: fmt.Sprintf(format, args...)}
}

// text returns the source text spanned by [from, to).
func (p *fileParser) text(from, to token.Pos) string {
	start := p.fset.Position(from).Offset
	end := p.fset.Position(to).Offset
	return string(p.src[start:end])
}

func (p *fileParser) nodeText(n ast.Node) string {
	return p.text(n.Pos(), n.End())
}

func (p *fileParser) genDecl(d *ast.GenDecl, out *File) error {
	if target, pos, ok := findAssoc(d.Doc, p.opts.AssocDirective); ok {
		block, err := p.assocBlock(d, target, pos)
		if err != nil {
			return err
		}
		if block != nil {
			out.Blocks = append(out.Blocks, block)
		}
		return nil
	}

	if d.Tok != token.TYPE {
		return nil
	}

	for _, spec := range d.Specs {
		ts := spec.(*ast.TypeSpec)

		// An ungrouped declaration keeps its doc comment on the GenDecl.
		doc := ts.Doc
		if doc == nil && !d.Lparen.IsValid() {
			doc = d.Doc
		}

		td, err := p.typeDecl(ts, doc)
		if err != nil {
			return err
		}
		out.Types = append(out.Types, td)
	}
	return nil
}

func (p *fileParser) typeDecl(ts *ast.TypeSpec, doc *ast.CommentGroup) (*TypeDecl, error) {
	td := &TypeDecl{
		Name:    ts.Name.Name,
		Kind:    core.DeclOther,
		Generic: ts.TypeParams != nil && len(ts.TypeParams.List) > 0,
		Pos:     p.position(ts.Name.Pos()),
	}

	lines, directive, err := p.splitDoc(doc)
	if err != nil {
		return nil, err
	}
	td.Doc = lines
	td.Directive = directive

	if ts.Assign.IsValid() {
		return td, nil
	}

	switch t := ts.Type.(type) {
	case *ast.StructType:
		td.Kind = core.DeclStruct
		td.Fields = p.fields(t, td.Name)
	case *ast.InterfaceType:
		td.Kind = core.DeclInterface
	}
	return td, nil
}

// fields flattens a struct's field list; "x, y int" yields two fields.
func (p *fileParser) fields(st *ast.StructType, origin string) []core.Field {
	var out []core.Field
	for _, f := range st.Fields.List {
		base := core.Field{
			Type:    p.nodeText(f.Type),
			Doc:     commentLines(f.Doc),
			Comment: commentText(f.Comment),
			Origin:  origin,
		}
		if f.Tag != nil {
			base.Tag = f.Tag.Value
		}
		if len(f.Names) == 0 {
			base.Embedded = true
			out = append(out, base)
			continue
		}
		for _, name := range f.Names {
			field := base
			field.Name = name.Name
			out = append(out, field)
		}
	}
	return out
}

// splitDoc separates a doc comment into plain lines and the inherit directive.
func (p *fileParser) splitDoc(doc *ast.CommentGroup) ([]string, *Directive, error) {
	if doc == nil {
		return nil, nil, nil
	}
	var lines []string
	var directive *Directive
	for _, c := range doc.List {
		if args, ok := directiveArgs(c.Text, p.opts.Directive); ok {
			if directive != nil {
				return nil, nil, p.errorf(c.Pos(), ErrDuplicateDirective, p.opts.Directive)
			}
			d, err := parseDirective(args, p.position(c.Pos()))
			if err != nil {
				return nil, nil, err
			}
			directive = d
			continue
		}
		lines = append(lines, c.Text)
	}
	return lines, directive, nil
}

func (p *fileParser) method(d *ast.FuncDecl) (*BehaviorBlock, error) {
	field := d.Recv.List[0]

	recv := core.Receiver{}
	if len(field.Names) > 0 {
		recv.Name = field.Names[0].Name
	}

	typ := field.Type
	if star, ok := typ.(*ast.StarExpr); ok {
		recv.Pointer = true
		typ = star.X
	}

	// Receivers of generic types carry their type parameters.
	switch t := typ.(type) {
	case *ast.IndexExpr:
		typ = t.X
	case *ast.IndexListExpr:
		typ = t.X
	}

	ident, ok := typ.(*ast.Ident)
	if !ok {
		return nil, p.errorf(field.Type.Pos(), ErrUnsupportedRecv, p.nodeText(field.Type))
	}
	recv.Type = ident.Name

	sig := core.Signature{
		Params: p.text(d.Type.Params.Opening+1, d.Type.Params.Closing),
	}
	if d.Type.Results != nil {
		sig.Results = p.nodeText(d.Type.Results)
	}

	unit := core.Behavior{
		Name:      d.Name.Name,
		Kind:      core.BehaviorMethod,
		Origin:    ident.Name,
		Doc:       commentLines(d.Doc),
		Receiver:  recv,
		Signature: sig,
	}
	if d.Body != nil {
		unit.Body = p.nodeText(d.Body)
	}

	return &BehaviorBlock{
		Target: ident.Name,
		Units:  []core.Behavior{unit},
		Pos:    p.position(d.Pos()),
	}, nil
}

func (p *fileParser) assocBlock(d *ast.GenDecl, target string, pos token.Pos) (*BehaviorBlock, error) {
	if !token.IsIdentifier(target) {
		return nil, p.errorf(pos, ErrAssocTarget, p.opts.AssocDirective, target)
	}

	block := &BehaviorBlock{Target: target, Pos: p.position(d.Pos())}

	switch d.Tok {
	case token.CONST:
		units, err := p.constUnits(d, target)
		if err != nil {
			return nil, err
		}
		block.Units = units
	case token.TYPE:
		for _, spec := range d.Specs {
			ts := spec.(*ast.TypeSpec)
			block.Units = append(block.Units, core.Behavior{
				Name:   ts.Name.Name,
				Kind:   core.BehaviorType,
				Origin: target,
				Doc:    commentLines(ts.Doc),
				Spec:   p.nodeText(ts),
			})
		}
	default:
		return nil, p.errorf(pos, ErrAssocKind, p.opts.AssocDirective, d.Tok)
	}
	return block, nil
}

// constUnits yields one unit per constant name. Each unit's spec is
// self-contained: implicit repetition is expanded and iota is replaced by
// the constant's index, so units can be reordered by the merge.
func (p *fileParser) constUnits(d *ast.GenDecl, target string) ([]core.Behavior, error) {
	var units []core.Behavior
	var prevType ast.Expr
	var prevValues []ast.Expr

	for index, spec := range d.Specs {
		vs := spec.(*ast.ValueSpec)
		typ, values := vs.Type, vs.Values
		if len(values) == 0 {
			typ, values = prevType, prevValues
		} else {
			prevType, prevValues = vs.Type, vs.Values
		}
		if len(values) != 0 && len(values) != len(vs.Names) {
			return nil, p.errorf(vs.Pos(), ErrConstArity, len(vs.Names), len(values))
		}

		for i, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			var b strings.Builder
			b.WriteString(name.Name)
			if typ != nil {
				b.WriteString(" ")
				b.WriteString(p.nodeText(typ))
			}
			if len(values) > 0 {
				value, err := p.substituteIota(values[i], index)
				if err != nil {
					return nil, err
				}
				b.WriteString(" = ")
				b.WriteString(value)
			}
			units = append(units, core.Behavior{
				Name:   name.Name,
				Kind:   core.BehaviorConst,
				Origin: target,
				Doc:    commentLines(vs.Doc),
				Spec:   b.String(),
			})
		}
	}
	return units, nil
}

// substituteIota renders expr with every iota identifier replaced by n.
func (p *fileParser) substituteIota(expr ast.Expr, n int) (string, error) {
	text := p.nodeText(expr)
	if !strings.Contains(text, "iota") {
		return text, nil
	}

	// Re-parse the expression on its own so rewriting cannot touch the file's tree.
	clone, err := goparser.ParseExpr(text)
	if err != nil {
		return "", p.errorf(expr.Pos(), ErrIotaExpand, text, err)
	}
	rewritten := replaceIota(clone, n)

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), rewritten); err != nil {
		return "", p.errorf(expr.Pos(), ErrIotaExpand, text, err)
	}
	return buf.String(), nil
}

func commentLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	lines := make([]string, 0, len(cg.List))
	for _, c := range cg.List {
		lines = append(lines, c.Text)
	}
	return lines
}

func commentText(cg *ast.CommentGroup) string {
	return strings.Join(commentLines(cg), " ")
}
