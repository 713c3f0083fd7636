package commands

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mixgen/internal/cli/output"
	"github.com/leapstack-labs/mixgen/internal/cli/testutil"
	"github.com/leapstack-labs/mixgen/internal/engine"
	"github.com/leapstack-labs/mixgen/pkg/core"
	"github.com/leapstack-labs/mixgen/pkg/format"
)

func TestGen_WritesComposedFile(t *testing.T) {
	dir := testutil.SetupTestPackage(t)

	out, _, err := testutil.ExecuteCommand(t, NewGenCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "wrote mixgen_gen.go (2 targets)")
	testutil.AssertNoANSI(t, out)

	src, err := os.ReadFile(filepath.Join(dir, engine.DefaultOutputFile))
	require.NoError(t, err)
	got := string(src)
	assert.True(t, strings.HasPrefix(got, format.Header+"\n"))
	assert.Contains(t, got, "//go:build !mixgen")
	assert.Contains(t, got, "type Rectangle struct")
	assert.Contains(t, got, "type Square struct")
	assert.Contains(t, got, "`json:\"color\"`")
	assert.Contains(t, got, "Rectangle) Describe() string")
	assert.NotContains(t, got, "Square) Describe() string")

	// second run is skipped by the state store
	out, _, err = testutil.ExecuteCommand(t, NewGenCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "up to date (skipped)")
}

func TestCheck_ReportsStaleOutput(t *testing.T) {
	dir := testutil.SetupTestPackage(t)

	out, _, err := testutil.ExecuteCommand(t, NewCheckCommand())
	require.ErrorIs(t, err, ErrStale)
	assert.Contains(t, out, "is out of date")
	assert.Contains(t, out, "```diff")
	testutil.AssertValidMarkdown(t, out)

	_, err = os.Stat(filepath.Join(dir, engine.DefaultOutputFile))
	assert.True(t, errors.Is(err, os.ErrNotExist), "check must not write")

	_, _, err = testutil.ExecuteCommand(t, NewGenCommand())
	require.NoError(t, err)
	_, _, err = testutil.ExecuteCommand(t, NewCheckCommand())
	assert.NoError(t, err)
}

func TestGen_JSONOutput(t *testing.T) {
	testutil.SetupTestPackage(t)
	t.Setenv("MIXGEN_OUTPUT", "json")

	out, _, err := testutil.ExecuteCommand(t, NewGenCommand())
	require.NoError(t, err)

	var res output.GenerateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Packages, 1)
	assert.Equal(t, []string{"Rectangle", "Square"}, res.Packages[0].Targets)
	assert.True(t, res.Packages[0].Written)
	assert.Equal(t, 1, res.Written)
}

func TestCompose_PrintsDeclaration(t *testing.T) {
	testutil.SetupTestPackage(t)

	out, _, err := testutil.ExecuteCommand(t, NewComposeCommand(), "Rectangle")
	require.NoError(t, err)
	assert.Contains(t, out, "# Rectangle composed from Shape, Colored")
	assert.Contains(t, out, "```go")
	assert.Contains(t, out, "type Rectangle struct")
	testutil.AssertValidMarkdown(t, out)
}

func TestCompose_ExplicitParentsJSON(t *testing.T) {
	testutil.SetupTestPackage(t)
	t.Setenv("MIXGEN_OUTPUT", "json")

	out, _, err := testutil.ExecuteCommand(t, NewComposeCommand(), "Colored", "--parents", "Shape", "--behaviors=false")
	require.NoError(t, err)

	var res output.ComposeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Colored", res.Name)
	assert.Equal(t, []string{"Shape"}, res.Parents)
	require.Len(t, res.Fields, 2)
	assert.Equal(t, "Name", res.Fields[0].Name)
	assert.Equal(t, "Shape", res.Fields[0].Origin)
	assert.Equal(t, "Color", res.Fields[1].Name)
	assert.Empty(t, res.Contract)
}

func TestCompose_Errors(t *testing.T) {
	testutil.SetupTestPackage(t)

	_, _, err := testutil.ExecuteCommand(t, NewComposeCommand(), "Missing")
	var unknown *core.UnknownDeclarationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Missing", unknown.Name)

	_, _, err = testutil.ExecuteCommand(t, NewComposeCommand(), "Shape")
	assert.ErrorIs(t, err, core.ErrNoParents)

	_, _, err = testutil.ExecuteCommand(t, NewComposeCommand(), "Shape", "--parents", "Nope")
	var parent *core.UnknownParentError
	require.ErrorAs(t, err, &parent)
	assert.Equal(t, "Nope", parent.Parent)
}

func TestList(t *testing.T) {
	testutil.SetupTestPackage(t)

	out, _, err := testutil.ExecuteCommand(t, NewListCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Declarations in shapes (4 total, 2 targets)")
	assert.Contains(t, out, "Shape, Colored")
	assert.Contains(t, out, "template.go:")

	t.Setenv("MIXGEN_OUTPUT", "json")
	out, _, err = testutil.ExecuteCommand(t, NewListCommand(), "--targets")
	require.NoError(t, err)
	var res output.ListOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Declarations, 2)
	assert.Equal(t, 2, res.Targets)
	for _, d := range res.Declarations {
		assert.Equal(t, "directive", d.ParentsFrom, d.Name)
	}
}

func TestGraph(t *testing.T) {
	testutil.SetupTestPackage(t)
	t.Setenv("MIXGEN_OUTPUT", "json")
	out, _, err := testutil.ExecuteCommand(t, NewGraphCommand())
	require.NoError(t, err)

	var res output.GraphOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	levels := map[string]int{}
	for _, n := range res.Nodes {
		levels[n.Name] = n.Level
	}
	assert.Equal(t, map[string]int{"Shape": 0, "Colored": 0, "Rectangle": 1, "Square": 2}, levels)
	assert.Equal(t, 3, res.Edges)
	assert.Empty(t, res.Missing)

	out, _, err = testutil.ExecuteCommand(t, NewGraphCommand(), "--focus", "Colored")
	require.NoError(t, err)
	res = output.GraphOutput{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Nodes, 3, "Colored, Rectangle and Square")

	_, _, err = testutil.ExecuteCommand(t, NewGraphCommand(), "--focus", "Nope")
	assert.Error(t, err)
}

func TestGraph_Markdown(t *testing.T) {
	testutil.SetupTestPackage(t)

	out, _, err := testutil.ExecuteCommand(t, NewGraphCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "## Level 2")
	assert.Contains(t, out, "Square <- Rectangle")
	testutil.AssertValidMarkdown(t, out)
}

func TestStatus(t *testing.T) {
	testutil.SetupTestPackage(t)

	_, _, err := testutil.ExecuteCommand(t, NewGenCommand())
	require.NoError(t, err)

	t.Setenv("MIXGEN_OUTPUT", "json")
	out, _, err := testutil.ExecuteCommand(t, NewStatusCommand())
	require.NoError(t, err)

	var res output.StatusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, []string{"Rectangle", "Square"}, res.Outputs[0].Targets)
	require.Len(t, res.Runs, 1)
	assert.Equal(t, "gen", res.Runs[0].Command)
	assert.Equal(t, "completed", res.Runs[0].Status)
	assert.Equal(t, 1, res.Runs[0].Written)
}

func TestStatus_Disabled(t *testing.T) {
	testutil.SetupTestPackage(t)
	t.Setenv("MIXGEN_NO_STATE", "true")

	_, _, err := testutil.ExecuteCommand(t, NewStatusCommand())
	assert.ErrorIs(t, err, ErrStateDisabled)
}

func TestVersion(t *testing.T) {
	out, _, err := testutil.ExecuteCommand(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "mixgen 1.2.3")
}

func TestRelPath(t *testing.T) {
	assert.Equal(t, "a/b.go", relPath("/p", "/p/a/b.go"))
	assert.Equal(t, "/other/b.go", relPath("/p/q/r/s", "/other/b.go"))
}

func TestRenderGenerate(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	results := []*engine.GenerateResult{
		{Dir: "/p/a", Output: "/p/a/mixgen_gen.go", Targets: []string{"A"}, Written: true},
		{Dir: "/p/b", Output: "/p/b/mixgen_gen.go", Targets: []string{"B"}, Diff: "--- x\n+++ y\n-old\n+new\n"},
		{Dir: "/p/c", Output: "/p/c/mixgen_gen.go", Skipped: true},
	}

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderGenerate(tr.Renderer, results, nil))
	md := tr.Output()
	assert.Contains(t, md, "/p/a: wrote mixgen_gen.go (1 targets)")
	assert.Contains(t, md, "```diff\n--- x")
	assert.Contains(t, md, "3 packages, 1 written, 1 out of date")
	testutil.AssertValidMarkdown(t, md)

	tr = testutil.NewTestRendererText()
	require.NoError(t, renderGenerate(tr.Renderer, results[:1], nil))
	assert.Contains(t, tr.Output(), "✓ /p/a: wrote mixgen_gen.go")
	assert.NotContains(t, tr.Output(), "packages,")

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, renderGenerate(tr.Renderer, results, errors.New("/p/d: boom")))
	var res output.GenerateOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &res))
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1, res.Stale)
	assert.Equal(t, []string{"/p/d: boom"}, res.Errors)
	assert.True(t, res.Packages[2].Skipped)
	testutil.AssertNoANSI(t, tr.Output())
}
