package docgen

import (
	"fmt"
	"strings"

	"codegenius/internal/graph"
)

// maxCallGraphEdges bounds the rendered call graph so large repositories
// stay readable.
const maxCallGraphEdges = 25

// ClassDiagram renders the inheritance relationships of a snapshot as a
// mermaid classDiagram. Returns "" when no inherits edges exist.
func ClassDiagram(snap graph.Snapshot) string {
	var b strings.Builder
	seen := make(map[string]bool)
	for _, e := range snap.Edges {
		if e.Type != graph.EdgeInherits {
			continue
		}
		line := fmt.Sprintf("    %s <|-- %s", mermaidID(e.Target), mermaidID(e.Source))
		if seen[line] {
			continue
		}
		seen[line] = true
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return ""
	}
	return "classDiagram\n" + b.String()
}

// CallGraph renders call relationships as a mermaid flowchart, capped at
// maxCallGraphEdges unique edges in insertion order.
func CallGraph(snap graph.Snapshot) string {
	var b strings.Builder
	seen := make(map[string]bool)
	count := 0
	for _, e := range snap.Edges {
		if e.Type != graph.EdgeCalls {
			continue
		}
		line := fmt.Sprintf("    %s --> %s", mermaidID(e.Source), mermaidID(e.Target))
		if seen[line] {
			continue
		}
		seen[line] = true
		b.WriteString(line)
		b.WriteByte('\n')
		count++
		if count >= maxCallGraphEdges {
			break
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "graph LR\n" + b.String()
}

// mermaidID turns a node key into an identifier mermaid accepts. The
// file prefix is dropped and remaining punctuation becomes underscores.
func mermaidID(key string) string {
	name := symbolName(key)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// symbolName strips the "file:" prefix from a node key.
func symbolName(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}
