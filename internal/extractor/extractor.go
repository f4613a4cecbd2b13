// Package extractor turns one file's text into symbols and relationship
// tuples. Two interchangeable backends share the contract: a grammar-based
// tree-sitter backend for precise names and call edges, and a heuristic
// line scanner that is always available. Extraction is best-effort and
// never surfaces a hard failure to the caller.
package extractor

import (
	"fmt"
	"strings"

	"codegenius/internal/graph"
)

// Symbol is one discovered code entity, scoped to a single file.
// Complexity is meaningful only for functions; zero means "not estimated".
type Symbol struct {
	Name       string
	Kind       graph.SymbolKind
	Complexity int
}

// Tuple is a within-file relationship between two bare symbol names.
type Tuple struct {
	Source string
	Target string
	Kind   graph.EdgeKind
}

// Import records one imported module: its root identifier (first path
// segment) and the full dotted path used for dependency discovery.
type Import struct {
	Root string
	Path string
}

// Result is the output contract shared by both backends.
type Result struct {
	Symbols []Symbol
	Edges   []Tuple
	Imports []Import
}

// Backend parses raw file content into a Result.
type Backend interface {
	Name() string
	Parse(content []byte) (Result, error)
}

// Extractor routes a file to the grammar backend when one applies and
// falls back to the heuristic scanner on any failure.
type Extractor struct {
	grammar   Backend
	heuristic *HeuristicBackend
}

// New creates an extractor with the tree-sitter backend enabled.
func New() *Extractor {
	return &Extractor{
		grammar:   NewTreeSitterBackend(),
		heuristic: NewHeuristicBackend(),
	}
}

// NewHeuristicOnly creates an extractor without a grammar backend.
func NewHeuristicOnly() *Extractor {
	return &Extractor{heuristic: NewHeuristicBackend()}
}

// Extract parses the content of one file. The grammar backend is tried
// for files it understands; any error or panic degrades silently to the
// heuristic scan, so callers only ever observe reduced precision.
func (e *Extractor) Extract(path string, content []byte) Result {
	if e.grammar != nil && strings.HasSuffix(path, ".py") {
		if res, err := e.safeParse(e.grammar, content); err == nil {
			return res
		}
	}
	res, _ := e.heuristic.Parse(content)
	return res
}

func (e *Extractor) safeParse(b Backend, content []byte) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s backend panicked: %v", b.Name(), r)
		}
	}()
	return b.Parse(content)
}

// placeholderKinds maps an edge kind to the kinds synthesized for missing
// source and target endpoints.
var placeholderKinds = map[graph.EdgeKind][2]graph.SymbolKind{
	graph.EdgeCalls:    {graph.KindFunction, graph.KindFunction},
	graph.EdgeInherits: {graph.KindClass, graph.KindClass},
	graph.EdgeContains: {graph.KindClass, graph.KindFunction},
}

// Apply merges one file's extraction result into the graph. Both endpoints
// of every relationship tuple are guaranteed to exist afterward: missing
// ones get a placeholder node before the edge is appended. Each import
// record yields an imports edge from the file's module symbol to the full
// dotted module path.
func Apply(g *graph.Graph, file string, res Result) {
	for _, s := range res.Symbols {
		if s.Complexity > 0 {
			g.AddSymbol(file, s.Name, s.Kind, s.Complexity)
		} else {
			g.AddSymbol(file, s.Name, s.Kind)
		}
	}

	for _, t := range res.Edges {
		kinds, ok := placeholderKinds[t.Kind]
		if !ok {
			kinds = [2]graph.SymbolKind{graph.KindFunction, graph.KindFunction}
		}
		if !g.HasNode(file + ":" + t.Source) {
			g.AddSymbol(file, t.Source, kinds[0])
		}
		if !g.HasNode(file + ":" + t.Target) {
			g.AddSymbol(file, t.Target, kinds[1])
		}
		g.AddEdge(file+":"+t.Source, file+":"+t.Target, t.Kind)
	}

	for _, imp := range res.Imports {
		source := file
		if imp.Root != "" {
			g.AddSymbol(file, imp.Root, graph.KindModule)
			source = file + ":" + imp.Root
		}
		g.AddEdge(source, imp.Path, graph.EdgeImports)
	}
}
