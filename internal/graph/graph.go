// Package graph implements the Code Context Graph: an in-memory multigraph
// of symbols (functions, classes, modules) linked by typed relationships.
// Every operation is total; there are no failure modes.
package graph

import "strings"

// Graph owns the node table and the append-only edge list. It is not safe
// for concurrent writers; serialize all mutations through a single owner.
type Graph struct {
	nodes map[string]*Node
	order []string // node keys in insertion order
	edges []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddSymbol upserts a node keyed by (file, name). A new node stores the
// given kind and complexity (default 1). On re-observation the complexity
// is overwritten only when supplied; kind is first-writer-wins and never
// changes.
func (g *Graph) AddSymbol(file, name string, kind SymbolKind, complexity ...int) {
	key := file + ":" + name
	if n, ok := g.nodes[key]; ok {
		if len(complexity) > 0 {
			n.Complexity = complexity[0]
		}
		return
	}
	n := &Node{File: file, Name: name, Kind: kind, Complexity: 1}
	if len(complexity) > 0 {
		n.Complexity = complexity[0]
	}
	g.nodes[key] = n
	g.order = append(g.order, key)
}

// AddEdge appends an edge record unconditionally. Duplicates are kept and
// endpoints are not checked: analysis order does not guarantee definitions
// are discovered before references.
func (g *Graph) AddEdge(source, target string, kind EdgeKind) {
	g.edges = append(g.edges, Edge{Source: source, Target: target, Type: kind})
}

// HasNode reports whether a node with the given key exists.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// Node returns the node for the given key, or nil.
func (g *Graph) Node(key string) *Node {
	return g.nodes[key]
}

// NodeCount returns the number of distinct symbols.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edge records, duplicates included.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// QueryCallsTo returns the sources of all calls edges whose target contains
// the given substring, in edge insertion order. Substring matching lets
// callers query by bare name without file qualification.
func (g *Graph) QueryCallsTo(target string) []string {
	return g.queryEdges(EdgeCalls, target)
}

// QueryInheritsFrom returns the sources of all inherits edges whose target
// contains the given substring, in edge insertion order.
func (g *Graph) QueryInheritsFrom(base string) []string {
	return g.queryEdges(EdgeInherits, base)
}

func (g *Graph) queryEdges(kind EdgeKind, substr string) []string {
	var sources []string
	for _, e := range g.edges {
		if e.Type == kind && strings.Contains(e.Target, substr) {
			sources = append(sources, e.Source)
		}
	}
	return sources
}

// Serialize exports the node and edge sequences in insertion order.
func (g *Graph) Serialize() Snapshot {
	snap := Snapshot{
		Nodes: make([]Node, 0, len(g.order)),
		Edges: make([]Edge, len(g.edges)),
	}
	for _, key := range g.order {
		snap.Nodes = append(snap.Nodes, *g.nodes[key])
	}
	copy(snap.Edges, g.edges)
	return snap
}

// Load replays a snapshot into the graph, preserving node and edge order.
// Replaying a snapshot produced by Serialize yields an identical graph.
func (g *Graph) Load(snap Snapshot) {
	for _, n := range snap.Nodes {
		g.AddSymbol(n.File, n.Name, n.Kind, n.Complexity)
	}
	for _, e := range snap.Edges {
		g.AddEdge(e.Source, e.Target, e.Type)
	}
}
