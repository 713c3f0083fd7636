package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// SourceFile is a named Go source used to build a test program.
type SourceFile struct {
	Name string
	Src  string
}

// ParseProgram parses the sources in order and groups them into a program.
func ParseProgram(t testing.TB, files ...SourceFile) *parser.Program {
	t.Helper()

	parsed := make([]*parser.File, 0, len(files))
	for _, f := range files {
		pf, err := parser.ParseFile(f.Name, []byte(f.Src), parser.DefaultOptions())
		require.NoError(t, err, "parse %s", f.Name)
		parsed = append(parsed, pf)
	}

	prog, err := parser.NewProgram(parsed...)
	require.NoError(t, err)
	return prog
}

// ParseSource parses a single file named "decls.go".
func ParseSource(t testing.TB, src string) *parser.Program {
	t.Helper()
	return ParseProgram(t, SourceFile{Name: "decls.go", Src: src})
}
