// Package stats derives read-only summaries from a serialized code
// context graph. Nothing here mutates the graph.
package stats

import (
	"sort"

	"codegenius/internal/graph"
)

// HighComplexityThreshold is the minimum complexity for a function to be
// flagged in the report.
const HighComplexityThreshold = 10

// topN bounds the high-complexity and hotspot lists.
const topN = 10

// Hotspot is a call target ranked by how many calls edges point at it.
type Hotspot struct {
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// Report summarizes a graph snapshot.
type Report struct {
	TotalSymbols int `json:"totalSymbols"`
	Classes      int `json:"classes"`
	Functions    int `json:"functions"`
	Modules      int `json:"modules"`

	TotalEdges       int `json:"totalEdges"`
	CallEdges        int `json:"callEdges"`
	InheritanceEdges int `json:"inheritanceEdges"`
	ImportEdges      int `json:"importEdges"`
	ContainsEdges    int `json:"containsEdges"`

	HighComplexity []graph.Node `json:"highComplexity"`
	Hotspots       []Hotspot    `json:"hotspots"`
	BaseClasses    []string     `json:"baseClasses"`
}

// Aggregate computes a Report from a snapshot. Ordering of the derived
// lists is deterministic: ties keep the snapshot's insertion order.
func Aggregate(snap graph.Snapshot) Report {
	rep := Report{
		TotalSymbols:   len(snap.Nodes),
		TotalEdges:     len(snap.Edges),
		HighComplexity: []graph.Node{},
		Hotspots:       []Hotspot{},
		BaseClasses:    []string{},
	}

	for _, n := range snap.Nodes {
		switch n.Kind {
		case graph.KindClass:
			rep.Classes++
		case graph.KindFunction:
			rep.Functions++
			if n.Complexity > HighComplexityThreshold {
				rep.HighComplexity = append(rep.HighComplexity, n)
			}
		case graph.KindModule:
			rep.Modules++
		}
	}
	sort.SliceStable(rep.HighComplexity, func(i, j int) bool {
		return rep.HighComplexity[i].Complexity > rep.HighComplexity[j].Complexity
	})
	if len(rep.HighComplexity) > topN {
		rep.HighComplexity = rep.HighComplexity[:topN]
	}

	callCounts := make(map[string]int)
	var callOrder []string
	seenBase := make(map[string]bool)
	for _, e := range snap.Edges {
		switch e.Type {
		case graph.EdgeCalls:
			rep.CallEdges++
			if callCounts[e.Target] == 0 {
				callOrder = append(callOrder, e.Target)
			}
			callCounts[e.Target]++
		case graph.EdgeInherits:
			rep.InheritanceEdges++
			if !seenBase[e.Target] {
				seenBase[e.Target] = true
				rep.BaseClasses = append(rep.BaseClasses, e.Target)
			}
		case graph.EdgeImports:
			rep.ImportEdges++
		case graph.EdgeContains:
			rep.ContainsEdges++
		}
	}
	for _, target := range callOrder {
		rep.Hotspots = append(rep.Hotspots, Hotspot{Target: target, Count: callCounts[target]})
	}
	sort.SliceStable(rep.Hotspots, func(i, j int) bool {
		return rep.Hotspots[i].Count > rep.Hotspots[j].Count
	})
	if len(rep.Hotspots) > topN {
		rep.Hotspots = rep.Hotspots[:topN]
	}

	return rep
}
