package graph

// SymbolKind classifies a node in the code context graph.
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindClass    SymbolKind = "class"
	KindModule   SymbolKind = "module"
)

// EdgeKind classifies a relationship between two symbol keys.
type EdgeKind string

const (
	EdgeCalls    EdgeKind = "calls"
	EdgeInherits EdgeKind = "inherits"
	EdgeImports  EdgeKind = "imports"
	EdgeContains EdgeKind = "contains"
)

// Node is one extracted symbol, keyed by "file:name".
type Node struct {
	File       string     `json:"file"`
	Name       string     `json:"name"`
	Kind       SymbolKind `json:"kind"`
	Complexity int        `json:"complexity"`
}

// Key returns the composite identity of the node.
func (n Node) Key() string {
	return n.File + ":" + n.Name
}

// Edge is a typed directed link between two symbol keys. Endpoints are
// not required to exist in the node table at insertion time.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeKind `json:"type"`
}

// Snapshot is the serialized form of the graph: nodes and edges, each in
// insertion order. It is the sole artifact the rest of the system consumes.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
