// Package dag provides the inheritance graph of a package's declarations.
// It supports cycle detection, topological ordering and ancestor/descendant
// queries used to order generated output and to explain composition.
package dag

import (
	"fmt"
	"slices"
	"sort"

	"github.com/leapstack-labs/mixgen/pkg/core"
)

// Lister enumerates registry entries in declaration order.
// *registry.Registry implements it.
type Lister interface {
	Entries() []*core.Entry
}

// Node is a declaration in the graph.
type Node struct {
	// Name is the declaration name
	Name string
	// Entry is the registry entry, nil for nodes added without one
	Entry *core.Entry
	// order is the insertion index, used to break ties deterministically
	order int
}

// Missing is a parent reference that names no declaration.
type Missing struct {
	Child  string
	Parent string
}

// Graph is a directed graph with edges from parent to child.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	children map[string][]string // parent -> children (inheritors)
	parents  map[string][]string // child -> parents, in listed order

	missing []Missing
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// FromRegistry builds the graph of every entry and its parent references.
// References to undeclared parents are recorded and reported by Missing.
func FromRegistry(reg Lister) *Graph {
	g := NewGraph()
	entries := reg.Entries()
	for _, e := range entries {
		g.AddNode(e.Name, e)
	}
	for _, e := range entries {
		for _, parent := range e.Parents {
			if err := g.AddEdge(parent, e.Name); err != nil {
				g.missing = append(g.missing, Missing{Child: e.Name, Parent: parent})
			}
		}
	}
	return g
}

// AddNode adds a node to the graph, replacing its entry if it exists.
func (g *Graph) AddNode(name string, entry *core.Entry) {
	if n, exists := g.nodes[name]; exists {
		n.Entry = entry
		return
	}
	g.nodes[name] = &Node{Name: name, Entry: entry, order: len(g.order)}
	g.order = append(g.order, name)
}

// AddEdge records that child inherits from parent. Repeated edges are stored
// once; a declaration inheriting from itself is a cycle, not an error here.
func (g *Graph) AddEdge(parent, child string) error {
	if _, exists := g.nodes[parent]; !exists {
		return fmt.Errorf("parent node %q does not exist", parent)
	}
	if _, exists := g.nodes[child]; !exists {
		return fmt.Errorf("child node %q does not exist", child)
	}

	if !slices.Contains(g.children[parent], child) {
		g.children[parent] = append(g.children[parent], child)
	}
	if !slices.Contains(g.parents[child], parent) {
		g.parents[child] = append(g.parents[child], parent)
	}
	return nil
}

// Node returns a node by name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		nodes = append(nodes, g.nodes[name])
	}
	return nodes
}

// Parents returns the distinct parents of a node in listed order.
func (g *Graph) Parents(name string) []string {
	return g.parents[name]
}

// Children returns the declarations that inherit directly from a node.
func (g *Graph) Children(name string) []string {
	return g.children[name]
}

// Missing returns the parent references that name no declaration.
func (g *Graph) Missing() []Missing {
	return g.missing
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.children {
		count += len(children)
	}
	return count
}

// Cycle returns an inheritance cycle if one exists. The path follows
// child → parent references and ends where it starts, e.g. [A B A] when A
// inherits from B and B from A.
func (g *Graph) Cycle() *core.CyclicInheritanceError {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		state[name] = active
		stack = append(stack, name)

		for _, parent := range g.parents[name] {
			switch state[parent] {
			case active:
				start := slices.Index(stack, parent)
				cycle = append(slices.Clone(stack[start:]), parent)
				return true
			case unvisited:
				if dfs(parent) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range g.order {
		if state[name] == unvisited && dfs(name) {
			return &core.CyclicInheritanceError{Path: cycle}
		}
	}
	return nil
}

// TopologicalSort returns nodes with parents before their children.
// Unrelated nodes keep insertion order.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, cycle
	}

	visited := make(map[string]bool, len(g.nodes))
	result := make([]*Node, 0, len(g.nodes))

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, parent := range g.parents[name] {
			visit(parent)
		}
		result = append(result, g.nodes[name])
	}

	for _, name := range g.order {
		visit(name)
	}
	return result, nil
}

// Levels groups node names by inheritance depth. Level 0 holds declarations
// without parents; a node's level is one more than its deepest parent.
func (g *Graph) Levels() ([][]string, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	level := make(map[string]int, len(sorted))
	var levels [][]string
	for _, n := range sorted {
		l := 0
		for _, parent := range g.parents[n.Name] {
			if level[parent]+1 > l {
				l = level[parent] + 1
			}
		}
		level[n.Name] = l
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], n.Name)
	}
	return levels, nil
}

// Ancestors returns every declaration a node inherits from, directly or
// transitively, sorted by name.
func (g *Graph) Ancestors(name string) []string {
	return g.reach(name, g.parents)
}

// Descendants returns every declaration that inherits from a node, directly
// or transitively, sorted by name. These are the declarations affected when
// the node changes.
func (g *Graph) Descendants(name string) []string {
	return g.reach(name, g.children)
}

func (g *Graph) reach(name string, next map[string][]string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		for _, m := range next[n] {
			if !seen[m] {
				seen[m] = true
				walk(m)
			}
		}
	}
	walk(name)

	result := make([]string, 0, len(seen))
	for n := range seen {
		result = append(result, n)
	}
	sort.Strings(result)
	return result
}

// Roots returns declarations without parents, in insertion order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.order {
		if len(g.parents[name]) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Leaves returns declarations nothing inherits from, in insertion order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.order {
		if len(g.children[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// Subgraph returns a new graph containing the named nodes and the edges
// between them.
func (g *Graph) Subgraph(names []string) *Graph {
	sub := NewGraph()
	include := make(map[string]bool, len(names))
	for _, name := range g.order {
		if slices.Contains(names, name) {
			include[name] = true
			sub.AddNode(name, g.nodes[name].Entry)
		}
	}
	for _, name := range sub.order {
		for _, parent := range g.parents[name] {
			if include[parent] {
				_ = sub.AddEdge(parent, name)
			}
		}
	}
	return sub
}
