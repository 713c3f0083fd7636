package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

func names(fields []core.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		if f.Embedded {
			out[i] = "<" + f.Type + ">"
			continue
		}
		out[i] = f.Name
	}
	return out
}

func TestFields_OverrideMovesToEnd(t *testing.T) {
	acc := []core.Field{
		{Name: "x", Type: "int", Origin: "A"},
		{Name: "y", Type: "int", Origin: "A"},
	}
	incoming := []core.Field{{Name: "x", Type: "string", Origin: "B"}}

	got := Fields(acc, incoming)

	assert.Equal(t, []string{"y", "x"}, names(got))
	assert.Equal(t, "string", got[1].Type)
	assert.Equal(t, "B", got[1].Origin)
}

func TestFields_AppendsNewNames(t *testing.T) {
	got := Fields(nil, []core.Field{{Name: "a"}, {Name: "b"}})
	got = Fields(got, []core.Field{{Name: "c"}})
	assert.Equal(t, []string{"a", "b", "c"}, names(got))
}

func TestFields_BlankNeverCollide(t *testing.T) {
	acc := []core.Field{{Name: "_", Type: "int", Origin: "A"}}
	incoming := []core.Field{{Name: "_", Type: "int", Origin: "B"}}

	got := Fields(acc, incoming)
	assert.Equal(t, []string{"_", "_"}, names(got))
}

func TestFields_EmbeddedCollideByTypeName(t *testing.T) {
	acc := []core.Field{
		{Type: "sync.Mutex", Embedded: true, Origin: "A"},
		{Name: "_", Type: "int", Origin: "A"},
	}
	incoming := []core.Field{
		{Type: "*sync.Mutex", Embedded: true, Origin: "B"},
		{Name: "Other", Type: "int", Origin: "B"},
	}

	got := Fields(acc, incoming)
	assert.Equal(t, []string{"_", "<*sync.Mutex>", "Other"}, names(got))
	assert.Equal(t, "B", got[1].Origin)
}

func TestBehaviors_LaterWins(t *testing.T) {
	acc := []core.Behavior{
		{Name: "Area", Origin: "Shape", Body: "{ return 0 }"},
		{Name: "Name", Origin: "Shape"},
	}
	incoming := []core.Behavior{{Name: "Area", Origin: "Rectangle", Body: "{ return r.w * r.h }"}}

	got := Behaviors(acc, incoming)
	require.Len(t, got, 2)
	assert.Equal(t, "Name", got[0].Name)
	assert.Equal(t, "Rectangle", got[1].Origin)
}

func TestMerge_DuplicateWithinIncoming(t *testing.T) {
	got := Fields(nil, []core.Field{{Name: "a", Type: "1"}, {Name: "b"}, {Name: "a", Type: "2"}})
	assert.Equal(t, []string{"b", "a"}, names(got))
	assert.Equal(t, "2", got[1].Type)
}

// model is the reference semantics: accumulator entries whose names are
// overridden disappear, then incoming entries follow in order with only the
// last occurrence of each name kept.
func model(acc, incoming []core.Field) []core.Field {
	lastIndex := map[string]int{}
	for i, f := range incoming {
		if name, ok := f.Identity(); ok {
			lastIndex[name] = i
		}
	}
	var out []core.Field
	for _, f := range acc {
		if name, ok := f.Identity(); ok {
			if _, overridden := lastIndex[name]; overridden {
				continue
			}
		}
		out = append(out, f)
	}
	for i, f := range incoming {
		if name, ok := f.Identity(); ok && lastIndex[name] != i {
			continue
		}
		out = append(out, f)
	}
	return out
}

func key(f core.Field) string {
	return fmt.Sprintf("%s/%s/%t", f.Name, f.Type, f.Embedded)
}

func fieldGen() *rapid.Generator[core.Field] {
	return rapid.Custom(func(t *rapid.T) core.Field {
		switch rapid.IntRange(0, 9).Draw(t, "shape") {
		case 0:
			return core.Field{Type: rapid.SampledFrom([]string{"Base", "*pkg.Base", "a"}).Draw(t, "embed"), Embedded: true}
		case 1:
			return core.Field{Name: "_", Type: "int"}
		}
		return core.Field{
			Name: rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}).Draw(t, "name"),
			Type: fmt.Sprint(rapid.IntRange(0, 100).Draw(t, "type")),
		}
	})
}

// uniqueFields builds an accumulator the way the composer does: by merging.
func uniqueFields(t *rapid.T, label string) []core.Field {
	return Fields(nil, rapid.SliceOf(fieldGen()).Draw(t, label))
}

func TestMerge_MatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		acc := uniqueFields(t, "acc")
		incoming := rapid.SliceOf(fieldGen()).Draw(t, "incoming")

		want := model(append([]core.Field(nil), acc...), incoming)
		got := Fields(acc, incoming)

		if len(got) != len(want) {
			t.Fatalf("len: got %v want %v", names(got), names(want))
		}
		for i := range got {
			if key(got[i]) != key(want[i]) {
				t.Fatalf("index %d: got %+v want %+v", i, got[i], want[i])
			}
		}
	})
}

func TestMerge_NamesStayUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		acc := uniqueFields(t, "acc")
		got := Fields(acc, rapid.SliceOf(fieldGen()).Draw(t, "incoming"))

		seen := map[string]bool{}
		for _, f := range got {
			name, ok := f.Identity()
			if !ok {
				continue
			}
			if seen[name] {
				t.Fatalf("duplicate name %q in %v", name, names(got))
			}
			seen[name] = true
		}
	})
}

func TestMerge_LastIncomingIsLast(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		acc := uniqueFields(t, "acc")
		incoming := rapid.SliceOfN(fieldGen(), 1, 10).Draw(t, "incoming")

		got := Fields(acc, incoming)
		if key(got[len(got)-1]) != key(incoming[len(incoming)-1]) {
			t.Fatalf("last element %+v, want %+v", got[len(got)-1], incoming[len(incoming)-1])
		}
	})
}
