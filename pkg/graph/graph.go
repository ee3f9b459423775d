package graph

import (
	"fmt"
	"io"
	"sort"
)

// ErrCircularDependency is returned when the graph contains a directed cycle.
var ErrCircularDependency = fmt.Errorf("circular dependency found")

func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
		edges: make(map[edge]struct{}),
	}
}

type edge struct {
	from, to string
}

// Graph is a directed graph over resource names. Edges are kept in both
// directions so that predecessor queries (the only lookups the planner needs)
// are cheap. Insertion order of edges is preserved, which keeps traversal
// deterministic for a deterministic build order.
//
// A Graph is immutable once built and safe for concurrent reads.
type Graph struct {
	nodes map[string]struct{}
	succ  map[string][]string
	pred  map[string][]string
	edges map[edge]struct{}
}

// AddNode adds one or more nodes to the graph. Adding an existing node is a
// no-op.
func (g *Graph) AddNode(names ...string) {
	for _, name := range names {
		g.nodes[name] = struct{}{}
	}
}

// AddEdge adds a directed edge from source to target. Both endpoints are
// registered as nodes if not already present. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	if _, exists := g.edges[edge{from, to}]; exists {
		return
	}
	g.edges[edge{from, to}] = struct{}{}
	g.AddNode(from, to)
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
}

// Has reports whether the graph contains a node with the given name.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Predecessors returns the nodes with an edge pointing at name, in edge
// insertion order. Returns nil if the node is unknown or has no predecessors.
func (g *Graph) Predecessors(name string) []string {
	preds := g.pred[name]
	if len(preds) == 0 {
		return nil
	}
	out := make([]string, len(preds))
	copy(out, preds)
	return out
}

// Successors returns the nodes name has an edge pointing at, in edge
// insertion order.
func (g *Graph) Successors(name string) []string {
	succs := g.succ[name]
	if len(succs) == 0 {
		return nil
	}
	out := make([]string, len(succs))
	copy(out, succs)
	return out
}

// Nodes returns all node names, sorted.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Union returns a new graph containing the nodes and edges of both graphs.
// Neither input is modified.
func Union(graphs ...*Graph) *Graph {
	u := New()
	for _, g := range graphs {
		for name := range g.nodes {
			u.AddNode(name)
		}
		for _, from := range g.Nodes() {
			for _, to := range g.succ[from] {
				u.AddEdge(from, to)
			}
		}
	}
	return u
}

// Acyclic checks the graph for directed cycles using Kahn's algorithm. It
// returns nil if the graph is acyclic, or an error wrapping
// ErrCircularDependency naming the nodes involved in a cycle.
func (g *Graph) Acyclic() error {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = len(g.pred[name])
	}

	queue := make([]string, 0, len(g.nodes))
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++

		for _, m := range g.succ[n] {
			inDegree[m]--
			if inDegree[m] == 0 {
				queue = append(queue, m)
			}
		}
	}

	if visited == len(g.nodes) {
		return nil
	}

	// Every node left with a positive in-degree sits on or downstream of a
	// cycle; report them sorted for a stable message.
	var remaining []string
	for name, degree := range inDegree {
		if degree > 0 {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	return fmt.Errorf("%w: involving %v", ErrCircularDependency, remaining)
}

// AsDot generates a Graphviz DOT representation of the graph.
func (g *Graph) AsDot(w io.Writer, graphName string) {
	fmt.Fprintf(w, "digraph %q {\n", graphName)
	fmt.Fprintf(w, "  rankdir=\"LR\";\n")
	fmt.Fprintf(w, "  node [shape=box, style=rounded];\n")

	for _, name := range g.Nodes() {
		if len(g.succ[name]) == 0 {
			fmt.Fprintf(w, "  %q;\n", name)
			continue
		}
		for _, to := range g.succ[name] {
			fmt.Fprintf(w, "  %q -> %q;\n", name, to)
		}
	}
	fmt.Fprintf(w, "}\n")
}
