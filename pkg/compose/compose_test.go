package compose_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mixgen/internal/registry"
	"github.com/leapstack-labs/mixgen/internal/testutil"
	"github.com/leapstack-labs/mixgen/pkg/compose"
	"github.com/leapstack-labs/mixgen/pkg/core"
)

func build(t *testing.T, src string) *registry.Registry {
	t.Helper()
	reg, err := registry.Build(testutil.ParseSource(t, src))
	require.NoError(t, err)
	return reg
}

func composeEntry(t *testing.T, reg *registry.Registry, name string) (*core.ComposedDecl, error) {
	t.Helper()
	entry, ok := reg.Lookup(name)
	require.True(t, ok, "missing %s", name)
	return compose.New(reg, compose.WithLogger(testutil.NewTestLogger(t))).ComposeEntry(entry)
}

// fieldTrace renders fields as "name(origin)" for order assertions.
func fieldTrace(fields []core.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		name := f.Name
		if f.Embedded {
			name = f.Type
		}
		out = append(out, name+"("+f.Origin+")")
	}
	return out
}

func behaviorTrace(units []core.Behavior) []string {
	out := make([]string, 0, len(units))
	for _, b := range units {
		out = append(out, b.Name+"("+b.Origin+")")
	}
	return out
}

func TestCompose_OverrideMovesToEnd(t *testing.T) {
	reg := build(t, `package p

type A struct {
	X int
	Y int
}

//mixgen:inherit A
type B struct {
	X string
}
`)
	decl, err := composeEntry(t, reg, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Y(A)", "X(B)"}, fieldTrace(decl.Fields))
	assert.Equal(t, "string", decl.Fields[1].Type)
}

func TestCompose_Transitive(t *testing.T) {
	reg := build(t, `package p

type A struct {
	X int
	Y int
}

//mixgen:inherit A
type B struct {
	Y string
	Z int
}

//mixgen:inherit B
type C struct {
	W int
}
`)
	decl, err := composeEntry(t, reg, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"X(A)", "Y(B)", "Z(B)", "W(C)"}, fieldTrace(decl.Fields))
	assert.Equal(t, []string{"B"}, decl.Parents)
}

func TestCompose_LaterParentWins(t *testing.T) {
	reg := build(t, `package p

type A struct {
	X int
	Only int
}

type B struct {
	X string
}

//mixgen:inherit A, B
type C struct{}
`)
	decl, err := composeEntry(t, reg, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"Only(A)", "X(B)"}, fieldTrace(decl.Fields))
}

func TestCompose_ChildWins(t *testing.T) {
	reg := build(t, `package p

type A struct {
	X int
	Y int
}

func (A) M() int { return 1 }

//mixgen:inherit A
type B struct {
	X bool
}

func (B) M() int { return 2 }
`)
	decl, err := composeEntry(t, reg, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Y(A)", "X(B)"}, fieldTrace(decl.Fields))
	assert.Equal(t, []string{"M(B)"}, behaviorTrace(decl.Behaviors))
	assert.Equal(t, "{ return 2 }", decl.Behaviors[0].Body)
}

func TestCompose_BehaviorsShapeRectangle(t *testing.T) {
	reg := build(t, `package p

type Shape struct {
	Name string
}

func (s Shape) Area() float64 { return 0 }

func (s Shape) Describe() string { return s.Name }

//mixgen:inherit Shape
type Rectangle struct {
	W, H float64
}

func (r Rectangle) Area() float64 { return r.W * r.H }
`)
	decl, err := composeEntry(t, reg, "Rectangle")
	require.NoError(t, err)

	assert.Equal(t, []string{"Name(Shape)", "W(Rectangle)", "H(Rectangle)"}, fieldTrace(decl.Fields))
	assert.Equal(t, []string{"Describe(Shape)", "Area(Rectangle)"}, behaviorTrace(decl.Behaviors))
}

func TestCompose_BlankFieldsNeverCollide(t *testing.T) {
	reg := build(t, `package p

import "io"

type A struct {
	io.Reader
	_ int
}

//mixgen:inherit A
type B struct {
	*io.Reader
	_ int
}
`)
	decl, err := composeEntry(t, reg, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"_(A)", "*io.Reader(B)", "_(B)"}, fieldTrace(decl.Fields))
}

func TestCompose_DiamondEmbedsOnce(t *testing.T) {
	reg := build(t, `package p

type Base struct{ ID int }

type P1 struct {
	Base
	A int
}

type P2 struct {
	Base
	B int
}

//mixgen:inherit P1, P2
type C struct{}
`)
	decl, err := composeEntry(t, reg, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"A(P1)", "Base(P2)", "B(P2)"}, fieldTrace(decl.Fields))
}

func TestCompose_AssocOverrideRejected(t *testing.T) {
	reg := build(t, `package p

type Shape struct{}

//mixgen:assoc Shape
const Sides = 0

//mixgen:inherit Shape
type Square struct{}

//mixgen:assoc Square
const Sides = 4
`)
	_, err := composeEntry(t, reg, "Square")

	var override *core.AssocOverrideError
	require.True(t, errors.As(err, &override), "got %v", err)
	assert.Equal(t, "Sides", override.Name)
	assert.Equal(t, core.BehaviorConst, override.Kind)
	assert.Equal(t, "Square", override.Child)
	assert.Equal(t, "Shape", override.Origin)
	assert.Contains(t, err.Error(), `"Square"`)
	assert.Contains(t, err.Error(), `"Shape"`)
}

func TestCompose_AssocOverrideAcrossLevels(t *testing.T) {
	reg := build(t, `package p

type A struct{}

//mixgen:assoc A
type Unit int

//mixgen:inherit A
type B struct{}

//mixgen:inherit B
type C struct{}

//mixgen:assoc C
const Unit = 1
`)
	_, err := composeEntry(t, reg, "C")

	var override *core.AssocOverrideError
	require.True(t, errors.As(err, &override), "got %v", err)
	assert.Equal(t, "A", override.Origin)
	assert.Equal(t, core.BehaviorConst, override.Kind)
}

func TestCompose_AssocNamedLikeMethodIsKept(t *testing.T) {
	reg := build(t, `package p

type A struct{}

func (A) Size() int { return 0 }

//mixgen:inherit A
type B struct{}

//mixgen:assoc B
const Size = 1
`)
	decl, err := composeEntry(t, reg, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Size(B)"}, behaviorTrace(decl.Behaviors))
}

func TestCompose_DuplicateParentProcessedTwice(t *testing.T) {
	reg := build(t, `package p

type A struct{ P int }

type B struct{ Q int }

//mixgen:inherit A, B, A
type C struct{}
`)
	decl, err := composeEntry(t, reg, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q(B)", "P(A)"}, fieldTrace(decl.Fields))
	assert.Equal(t, []string{"A", "B", "A"}, decl.Parents)
}

func TestCompose_EmptyParents(t *testing.T) {
	reg := build(t, "package p\n\ntype A struct{ X int }\n")

	decl, err := compose.New(reg).Compose("A", []core.Field{{Name: "X", Type: "int", Origin: "A"}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"X(A)"}, fieldTrace(decl.Fields))
	assert.Empty(t, decl.Behaviors)
}

func TestCompose_UnknownParent(t *testing.T) {
	reg := build(t, `package p

//mixgen:inherit Missing
type B struct{}
`)
	_, err := composeEntry(t, reg, "B")

	var unknown *core.UnknownParentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Missing", unknown.Parent)
	assert.Equal(t, "B", unknown.Child)
	assert.Equal(t, []string{"decls.go"}, unknown.Sources)
	assert.Contains(t, err.Error(), "decls.go")
}

func TestCompose_UnknownGrandparent(t *testing.T) {
	reg := build(t, `package p

//mixgen:inherit Missing
type A struct{}

//mixgen:inherit A
type B struct{}
`)
	_, err := composeEntry(t, reg, "B")

	var unknown *core.UnknownParentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Missing", unknown.Parent)
	assert.Equal(t, "A", unknown.Child)
}

func TestCompose_UnsupportedParentKind(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		kind   core.DeclKind
	}{
		{"interface", "type P interface{ M() }", core.DeclInterface},
		{"named type", "type P int", core.DeclOther},
		{"generic", "type P[T any] struct{ V T }", core.DeclStruct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := build(t, "package p\n\n"+tt.parent+"\n\n//mixgen:inherit P\ntype C struct{}\n")
			_, err := composeEntry(t, reg, "C")

			var unsupported *core.UnsupportedKindError
			require.True(t, errors.As(err, &unsupported), "got %v", err)
			assert.Equal(t, "P", unsupported.Name)
			assert.Equal(t, tt.kind, unsupported.Kind)
		})
	}
}

func TestCompose_Cycle(t *testing.T) {
	reg := build(t, `package p

//mixgen:inherit B
type A struct{}

//mixgen:inherit C
type B struct{}

//mixgen:inherit A
type C struct{}
`)
	_, err := composeEntry(t, reg, "A")

	var cyclic *core.CyclicInheritanceError
	require.True(t, errors.As(err, &cyclic))
	assert.Equal(t, []string{"A", "B", "C", "A"}, cyclic.Path)
}

func TestCompose_SelfParent(t *testing.T) {
	reg := build(t, `package p

//mixgen:inherit A
type A struct{}
`)
	_, err := composeEntry(t, reg, "A")

	var cyclic *core.CyclicInheritanceError
	require.True(t, errors.As(err, &cyclic))
	assert.Equal(t, []string{"A", "A"}, cyclic.Path)
}

func TestCompose_ReusableAfterError(t *testing.T) {
	reg := build(t, `package p

//mixgen:inherit Missing
type Bad struct{}

type A struct{ X int }

//mixgen:inherit A
type Good struct{}
`)
	c := compose.New(reg)

	bad, _ := reg.Lookup("Bad")
	_, err := c.ComposeEntry(bad)
	require.Error(t, err)

	good, _ := reg.Lookup("Good")
	decl, err := c.ComposeEntry(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"X(A)"}, fieldTrace(decl.Fields))
}

func TestCompose_Idempotent(t *testing.T) {
	reg := build(t, `package p

type A struct{ X, Y int }

func (A) M() {}

//mixgen:inherit A
type B struct{ Y string }
`)
	first, err := composeEntry(t, reg, "B")
	require.NoError(t, err)
	second, err := composeEntry(t, reg, "B")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompose_ResultDoesNotAliasRegistry(t *testing.T) {
	reg := build(t, `package p

// A doc.
type A struct {
	// X doc.
	X int
}

//mixgen:inherit A
type B struct{}
`)
	decl, err := composeEntry(t, reg, "B")
	require.NoError(t, err)

	decl.Fields[0].Name = "Changed"
	decl.Fields[0].Doc[0] = "// changed"

	a, _ := reg.Lookup("A")
	assert.Equal(t, "X", a.Fields[0].Name)
	assert.Equal(t, "// X doc.", a.Fields[0].Doc[0])
}
