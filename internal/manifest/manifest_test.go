package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `
compose "Rectangle" {
  parents   = ["Shape", "Named"]
  behaviors = false
}

compose "Circle" {
  parents = ["Shape"]
}
`
	m, err := Parse("mixgen.hcl", []byte(src))
	require.NoError(t, err)

	require.Len(t, m.Compositions, 2)
	assert.Equal(t, "Rectangle", m.Compositions[0].Child)
	assert.Equal(t, []string{"Shape", "Named"}, m.Compositions[0].Parents)
	require.NotNil(t, m.Compositions[0].Behaviors)
	assert.False(t, *m.Compositions[0].Behaviors)
	assert.Nil(t, m.Compositions[1].Behaviors)

	assert.Equal(t, map[string][]string{
		"Rectangle": {"Shape", "Named"},
		"Circle":    {"Shape"},
	}, m.Parents())
	assert.Equal(t, map[string]bool{"Rectangle": false}, m.Behaviors())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax",
			src:     `compose "A" {`,
			wantErr: "failed to parse manifest",
		},
		{
			name:    "missing parents",
			src:     `compose "A" {}`,
			wantErr: "failed to decode manifest",
		},
		{
			name: "unknown attribute",
			src: `compose "A" {
  parents = ["B"]
  fields  = true
}`,
			wantErr: "failed to decode manifest",
		},
		{
			name:    "empty parents",
			src:     `compose "A" { parents = [] }`,
			wantErr: "lists no parents",
		},
		{
			name:    "bad child",
			src:     `compose "pkg.A" { parents = ["B"] }`,
			wantErr: "invalid declaration name",
		},
		{
			name:    "bad parent",
			src:     `compose "A" { parents = ["b c"] }`,
			wantErr: "invalid parent name",
		},
		{
			name: "duplicate",
			src: `
compose "A" { parents = ["B"] }
compose "A" { parents = ["C"] }
`,
			wantErr: "duplicate compose block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("mixgen.hcl", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	m, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, m.Compositions)
	assert.Nil(t, m.Parents())
	assert.Nil(t, m.Behaviors())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`compose "B" { parents = ["A"] }`), 0o644))

	m, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, map[string][]string{"B": {"A"}}, m.Parents())
}
