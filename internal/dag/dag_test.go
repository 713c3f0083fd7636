package dag

import (
	"reflect"
	"testing"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

type entries []*core.Entry

func (e entries) Entries() []*core.Entry { return e }

func entry(name string, parents ...string) *core.Entry {
	return &core.Entry{Name: name, Kind: core.DeclStruct, Parents: parents}
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	// b inherits a
	if err := g.AddEdge("a", "b"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// c inherits b
	if err := g.AddEdge("b", "c"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent child node")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent parent node")
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}
}

func TestFromRegistry(t *testing.T) {
	g := FromRegistry(entries{
		entry("Shape"),
		entry("Named"),
		entry("Rectangle", "Shape", "Named"),
		entry("Square", "Rectangle", "Ghost"),
	})

	if g.NodeCount() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.NodeCount())
	}
	if got := g.Parents("Rectangle"); !reflect.DeepEqual(got, []string{"Shape", "Named"}) {
		t.Errorf("unexpected parents of Rectangle: %v", got)
	}
	if got := g.Children("Shape"); !reflect.DeepEqual(got, []string{"Rectangle"}) {
		t.Errorf("unexpected children of Shape: %v", got)
	}

	want := []Missing{{Child: "Square", Parent: "Ghost"}}
	if got := g.Missing(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected missing %v, got %v", want, got)
	}

	n, ok := g.Node("Square")
	if !ok || n.Entry == nil || n.Entry.Name != "Square" {
		t.Errorf("expected Square node with its entry, got %+v", n)
	}
}

func TestGraph_Cycle_None(t *testing.T) {
	g := FromRegistry(entries{entry("A"), entry("B", "A"), entry("C", "B")})

	if cycle := g.Cycle(); cycle != nil {
		t.Errorf("expected no cycle, found %v", cycle.Path)
	}
}

func TestGraph_Cycle(t *testing.T) {
	g := FromRegistry(entries{entry("A", "B"), entry("B", "C"), entry("C", "A")})

	cycle := g.Cycle()
	if cycle == nil {
		t.Fatal("expected cycle to be detected")
	}
	want := []string{"A", "B", "C", "A"}
	if !reflect.DeepEqual(cycle.Path, want) {
		t.Errorf("expected path %v, got %v", want, cycle.Path)
	}
}

func TestGraph_Cycle_SelfInheritance(t *testing.T) {
	g := FromRegistry(entries{entry("A", "A")})

	cycle := g.Cycle()
	if cycle == nil {
		t.Fatal("expected self inheritance to be a cycle")
	}
	if !reflect.DeepEqual(cycle.Path, []string{"A", "A"}) {
		t.Errorf("unexpected path %v", cycle.Path)
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	// Children declared before their parents still sort after them.
	g := FromRegistry(entries{
		entry("Square", "Rectangle"),
		entry("Rectangle", "Shape"),
		entry("Circle", "Shape"),
		entry("Shape"),
	})

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Shape", "Rectangle", "Square", "Circle"}
	if got := names(sorted); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_TopologicalSort_Diamond(t *testing.T) {
	g := FromRegistry(entries{
		entry("D", "B", "C"),
		entry("B", "A"),
		entry("C", "A"),
		entry("A"),
	})

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[string]int)
	for i, n := range sorted {
		pos[n.Name] = i
	}
	if pos["A"] > pos["B"] || pos["A"] > pos["C"] {
		t.Error("A should come before B and C")
	}
	if pos["B"] > pos["D"] || pos["C"] > pos["D"] {
		t.Error("B and C should come before D")
	}
}

func TestGraph_TopologicalSort_WithCycle(t *testing.T) {
	g := FromRegistry(entries{entry("A", "B"), entry("B", "A")})

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("expected error for cyclic graph")
	}
	if _, ok := err.(*core.CyclicInheritanceError); !ok {
		t.Errorf("expected *core.CyclicInheritanceError, got %T", err)
	}
}

func TestGraph_Levels(t *testing.T) {
	g := FromRegistry(entries{
		entry("A"),
		entry("B", "A"),
		entry("C", "A"),
		entry("D", "B", "C"),
		entry("E"),
	})

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{{"A", "E"}, {"B", "C"}, {"D"}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("expected %v, got %v", want, levels)
	}
}

func TestGraph_AncestorsAndDescendants(t *testing.T) {
	g := FromRegistry(entries{
		entry("A"),
		entry("B", "A"),
		entry("C", "B"),
		entry("D"),
	})

	if got := g.Ancestors("C"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("unexpected ancestors of C: %v", got)
	}
	if got := g.Descendants("A"); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("unexpected descendants of A: %v", got)
	}
	if got := g.Descendants("D"); len(got) != 0 {
		t.Errorf("expected no descendants of D, got %v", got)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := FromRegistry(entries{entry("A"), entry("B", "A"), entry("C")})

	if got := g.Roots(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("unexpected roots: %v", got)
	}
	if got := g.Leaves(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("unexpected leaves: %v", got)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := FromRegistry(entries{entry("A"), entry("B", "A"), entry("C", "B")})

	sub := g.Subgraph([]string{"B", "C"})
	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", sub.EdgeCount())
	}
	if got := sub.Roots(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("unexpected roots: %v", got)
	}
}
