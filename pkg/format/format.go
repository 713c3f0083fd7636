package format

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// Header marks files written by mixgen; go/ast.IsGenerated recognizes it.
const Header = "// Code generated by mixgen. DO NOT EDIT."

// Import is an import spec carried into a generated file.
type Import struct {
	Name string
	Path string
}

// Decl is one composed declaration and what is emitted alongside it.
type Decl struct {
	Decl *core.ComposedDecl
	// Contract and Binding are set when behaviors are merged.
	Contract *core.Contract
	Binding  *core.Binding
	// Own holds the declaration's own behavior units, emitted when Binding is nil.
	Own []core.Behavior
}

// FileSpec describes a generated file.
type FileSpec struct {
	// Filename is used for import resolution and error messages.
	Filename string
	Package  string
	// BuildTag, if set, excludes the file from builds that include templates:
	// the file gets "//go:build !<tag>".
	BuildTag string
	Imports  []Import
	Decls    []Decl
}

// RenderDecl renders the struct declaration of decl with its doc comment.
func RenderDecl(decl *core.ComposedDecl) string {
	p := newPrinter()
	p.declaration(decl)
	return p.String()
}

// RenderContract renders the contract interface, the binding's methods and
// the compile-time assertion that the composed type satisfies the contract.
func RenderContract(c *core.Contract, b *core.Binding) string {
	p := newPrinter()
	p.contract(c)
	p.writeln()
	p.assertion(b)
	for _, m := range b.Methods {
		p.writeln()
		p.method(m)
	}
	p.assoc(b.Type, b.Assoc)
	return p.String()
}

// RenderFile renders a complete Go file and formats it with goimports.
// Imports the composed code does not use are dropped. Distinct paths bound
// to the same package name are dropped when unused and rejected with an
// *ImportConflictError otherwise.
func RenderFile(spec FileSpec) ([]byte, error) {
	body := newPrinter()
	for _, d := range spec.Decls {
		body.writeln()
		body.declaration(d.Decl)

		if d.Binding != nil && d.Contract != nil {
			body.writeln()
			body.contract(d.Contract)
			body.writeln()
			body.assertion(d.Binding)
			for _, m := range d.Binding.Methods {
				body.writeln()
				body.method(m)
			}
			body.assoc(d.Decl.Name, d.Binding.Assoc)
			continue
		}

		for _, unit := range d.Own {
			if unit.Kind == core.BehaviorMethod {
				body.writeln()
				body.method(unit)
			}
		}
		body.assoc(d.Decl.Name, d.Own)
	}

	imps, err := resolveImports(spec.Imports, spec.Package, body.String())
	if err != nil {
		return nil, err
	}

	p := newPrinter()
	p.line(Header)
	p.writeln()
	if spec.BuildTag != "" {
		p.line("//go:build !" + spec.BuildTag)
		p.writeln()
	}
	p.line("package " + spec.Package)

	if len(imps) > 0 {
		p.writeln()
		p.line("import (")
		p.indent()
		for _, imp := range imps {
			if imp.Name != "" {
				p.write(imp.Name)
				p.space()
			}
			p.line(strconv.Quote(imp.Path))
		}
		p.dedent()
		p.line(")")
	}
	p.output.WriteString(body.String())

	filename := spec.Filename
	if filename == "" {
		filename = "mixgen_gen.go"
	}
	out, err := imports.Process(filename, []byte(p.String()), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format %s: %w", filename, err)
	}
	return out, nil
}

func (p *Printer) declaration(decl *core.ComposedDecl) {
	composed := fmt.Sprintf("%s is composed from %s.", decl.Name, strings.Join(decl.Parents, ", "))
	if len(decl.Doc) > 0 {
		p.comments(decl.Doc)
		if len(decl.Parents) > 0 {
			p.line("//")
			p.line("// " + composed)
		}
	} else if len(decl.Parents) > 0 {
		p.line("// " + composed)
	}

	if len(decl.Fields) == 0 {
		p.line("type " + decl.Name + " struct{}")
		return
	}
	p.line("type " + decl.Name + " struct {")
	p.indent()
	for _, f := range decl.Fields {
		p.field(f)
	}
	p.dedent()
	p.line("}")
}

func (p *Printer) contract(c *core.Contract) {
	p.line(fmt.Sprintf("// %s is the method set of %s.", c.Name, c.For))
	if len(c.Signatures) == 0 {
		p.line("type " + c.Name + " interface{}")
		return
	}
	p.line("type " + c.Name + " interface {")
	p.indent()
	for _, sig := range c.Signatures {
		p.comments(sig.Doc)
		p.signature(sig.Name, sig.Signature)
		p.writeln()
	}
	p.dedent()
	p.line("}")
}

func (p *Printer) assertion(b *core.Binding) {
	p.line(fmt.Sprintf("var _ %s = (*%s)(nil)", b.Contract, b.Type))
}

// assoc writes the associated constants and types declared by typ itself.
// Inherited ones already exist at package level and are only listed.
func (p *Printer) assoc(typ string, units []core.Behavior) {
	var consts, types, inherited []core.Behavior
	for _, u := range units {
		switch {
		case u.Kind == core.BehaviorMethod:
		case u.Origin != typ:
			inherited = append(inherited, u)
		case u.Kind == core.BehaviorConst:
			consts = append(consts, u)
		case u.Kind == core.BehaviorType:
			types = append(types, u)
		}
	}

	p.specGroup("const", consts)
	p.specGroup("type", types)

	if len(inherited) > 0 {
		p.writeln()
		p.write("// Inherited associated declarations: ")
		p.formatList(len(inherited), func(i int) {
			p.write(inherited[i].Name + " (" + inherited[i].Origin + ")")
		}, ", ")
		p.write(".")
		p.writeln()
	}
}

func (p *Printer) specGroup(keyword string, units []core.Behavior) {
	if len(units) == 0 {
		return
	}
	p.writeln()
	p.line(keyword + " (")
	p.indent()
	for _, u := range units {
		p.comments(u.Doc)
		p.line(u.Spec)
	}
	p.dedent()
	p.line(")")
}
