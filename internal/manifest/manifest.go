// Package manifest reads mixgen.hcl, the explicit list of compositions for a
// package directory.
//
//	compose "Rectangle" {
//	  parents   = ["Shape", "Named"]
//	  behaviors = false
//	}
//
// A compose block replaces the //mixgen:inherit directive of the named
// declaration, or makes a declaration without one a composition target.
package manifest

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultFile is the manifest file name looked up in a package directory.
const DefaultFile = "mixgen.hcl"

// Composition is one compose block.
type Composition struct {
	Child     string
	Parents   []string
	Behaviors *bool
}

// Manifest is the decoded content of a manifest file.
type Manifest struct {
	Path         string
	Compositions []Composition
}

// hclManifestFile represents the top-level structure of a manifest for decoding.
type hclManifestFile struct {
	Compose []*hclCompose `hcl:"compose,block"`
}

type hclCompose struct {
	Child     string   `hcl:"child,label"`
	Parents   []string `hcl:"parents"`
	Behaviors *bool    `hcl:"behaviors,optional"`
}

// Load reads the manifest named name in dir. A missing file yields an empty
// manifest and no error.
func Load(dir, name string) (*Manifest, error) {
	if name == "" {
		name = DefaultFile
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes manifest source.
func Parse(filename string, src []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	var parsed hclManifestFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}

	m := &Manifest{Path: filename}
	seen := make(map[string]bool)
	for _, block := range parsed.Compose {
		if !token.IsIdentifier(block.Child) {
			return nil, fmt.Errorf("%s: invalid declaration name %q", filename, block.Child)
		}
		if seen[block.Child] {
			return nil, fmt.Errorf("%s: duplicate compose block for %q", filename, block.Child)
		}
		seen[block.Child] = true

		if len(block.Parents) == 0 {
			return nil, fmt.Errorf("%s: compose %q lists no parents", filename, block.Child)
		}
		for _, parent := range block.Parents {
			if !token.IsIdentifier(parent) {
				return nil, fmt.Errorf("%s: invalid parent name %q", filename, parent)
			}
		}

		m.Compositions = append(m.Compositions, Composition{
			Child:     block.Child,
			Parents:   block.Parents,
			Behaviors: block.Behaviors,
		})
	}
	return m, nil
}

// Parents returns the parent lists keyed by child name.
func (m *Manifest) Parents() map[string][]string {
	if len(m.Compositions) == 0 {
		return nil
	}
	out := make(map[string][]string, len(m.Compositions))
	for _, c := range m.Compositions {
		out[c.Child] = c.Parents
	}
	return out
}

// Behaviors returns the behavior merging options that were set, keyed by child name.
func (m *Manifest) Behaviors() map[string]bool {
	var out map[string]bool
	for _, c := range m.Compositions {
		if c.Behaviors == nil {
			continue
		}
		if out == nil {
			out = make(map[string]bool)
		}
		out[c.Child] = *c.Behaviors
	}
	return out
}
