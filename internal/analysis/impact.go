// Package analysis answers "what breaks if these files change" over a
// code context graph.
package analysis

import (
	"codegenius/internal/git"
	"codegenius/internal/graph"
)

// ImpactReport lists node keys touched by a set of file changes.
type ImpactReport struct {
	DirectlyAffected   []string `json:"directlyAffected"`
	IndirectlyAffected []string `json:"indirectlyAffected"`
}

// Analyzer performs impact analysis on a graph.
type Analyzer struct {
	g *graph.Graph
}

func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact returns the symbols defined in the changed files and,
// one hop out, the callers of those symbols. Results keep the graph's
// insertion order.
func (a *Analyzer) AnalyzeImpact(changes []git.Change) ImpactReport {
	report := ImpactReport{
		DirectlyAffected:   []string{},
		IndirectlyAffected: []string{},
	}

	changedFiles := make(map[string]bool)
	for _, change := range changes {
		changedFiles[change.Path] = true
	}

	snap := a.g.Serialize()
	direct := make(map[string]bool)
	for _, n := range snap.Nodes {
		if changedFiles[n.File] {
			key := n.Key()
			direct[key] = true
			report.DirectlyAffected = append(report.DirectlyAffected, key)
		}
	}

	indirect := make(map[string]bool)
	for _, e := range snap.Edges {
		if e.Type != graph.EdgeCalls {
			continue
		}
		if direct[e.Target] && !direct[e.Source] && !indirect[e.Source] {
			indirect[e.Source] = true
			report.IndirectlyAffected = append(report.IndirectlyAffected, e.Source)
		}
	}
	return report
}
