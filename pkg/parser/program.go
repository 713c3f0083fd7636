package parser

import (
	"fmt"
	"sort"
)

// Program is the ordered set of files of one package.
type Program struct {
	Package string
	Files   []*File
}

// NewProgram groups files into a program. All files must declare the same
// package; their order is kept and decides which declaration wins on a
// duplicate name.
func NewProgram(files ...*File) (*Program, error) {
	prog := &Program{}
	for _, f := range files {
		if f == nil {
			continue
		}
		if prog.Package == "" {
			prog.Package = f.Package
		} else if f.Package != prog.Package {
			return nil, fmt.Errorf("file %s declares package %s, expected %s", f.Name, f.Package, prog.Package)
		}
		prog.Files = append(prog.Files, f)
	}
	return prog, nil
}

// TypeDecls returns every type declaration in file order.
func (p *Program) TypeDecls() []*TypeDecl {
	var out []*TypeDecl
	for _, f := range p.Files {
		out = append(out, f.Types...)
	}
	return out
}

// Blocks returns every behavior block in file order.
func (p *Program) Blocks() []*BehaviorBlock {
	var out []*BehaviorBlock
	for _, f := range p.Files {
		out = append(out, f.Blocks...)
	}
	return out
}

// Sources returns the file names of the program.
func (p *Program) Sources() []string {
	out := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, f.Name)
	}
	return out
}

// Imports returns the distinct imports of all files, sorted by path.
func (p *Program) Imports() []Import {
	return p.imports(func(*File) bool { return true })
}

// ImportsOf returns the distinct imports of the files that declare one of
// the named types or attach a behavior block to one, sorted by path.
// A generated file only needs the imports of the code it copies, and
// unrelated files may bind the same package name to another path.
func (p *Program) ImportsOf(types ...string) []Import {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	return p.imports(func(f *File) bool {
		for _, td := range f.Types {
			if want[td.Name] {
				return true
			}
		}
		for _, b := range f.Blocks {
			if want[b.Target] {
				return true
			}
		}
		return false
	})
}

func (p *Program) imports(keep func(*File) bool) []Import {
	seen := make(map[Import]bool)
	var out []Import
	for _, f := range p.Files {
		if !keep(f) {
			continue
		}
		for _, imp := range f.Imports {
			if seen[imp] {
				continue
			}
			seen[imp] = true
			out = append(out, imp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}
