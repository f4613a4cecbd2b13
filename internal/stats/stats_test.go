package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"codegenius/internal/graph"
)

func TestAggregate(t *testing.T) {
	t.Run("counts nodes and edges by kind", func(t *testing.T) {
		g := graph.New()
		g.AddSymbol("a.py", "Dog", graph.KindClass)
		g.AddSymbol("a.py", "bark", graph.KindFunction, 3)
		g.AddSymbol("a.py", "os", graph.KindModule)
		g.AddEdge("a.py:bark", "a.py:log", graph.EdgeCalls)
		g.AddEdge("a.py:Dog", "a.py:Animal", graph.EdgeInherits)
		g.AddEdge("a.py:os", "os", graph.EdgeImports)
		g.AddEdge("a.py:Dog", "a.py:bark", graph.EdgeContains)

		rep := Aggregate(g.Serialize())
		assert.Equal(t, 3, rep.TotalSymbols)
		assert.Equal(t, 1, rep.Classes)
		assert.Equal(t, 1, rep.Functions)
		assert.Equal(t, 1, rep.Modules)
		assert.Equal(t, 4, rep.TotalEdges)
		assert.Equal(t, 1, rep.CallEdges)
		assert.Equal(t, 1, rep.InheritanceEdges)
		assert.Equal(t, 1, rep.ImportEdges)
		assert.Equal(t, 1, rep.ContainsEdges)
	})

	t.Run("high complexity over threshold only", func(t *testing.T) {
		g := graph.New()
		g.AddSymbol("a.py", "simple", graph.KindFunction, 10)
		g.AddSymbol("a.py", "gnarly", graph.KindFunction, 15)
		g.AddSymbol("a.py", "worse", graph.KindFunction, 22)

		rep := Aggregate(g.Serialize())
		names := []string{}
		for _, n := range rep.HighComplexity {
			names = append(names, n.Name)
		}
		assert.Equal(t, []string{"worse", "gnarly"}, names)
	})

	t.Run("high complexity ties keep insertion order and cap at ten", func(t *testing.T) {
		g := graph.New()
		for i := 0; i < 12; i++ {
			g.AddSymbol("a.py", fmt.Sprintf("f%02d", i), graph.KindFunction, 11)
		}

		rep := Aggregate(g.Serialize())
		assert.Len(t, rep.HighComplexity, 10)
		assert.Equal(t, "f00", rep.HighComplexity[0].Name)
		assert.Equal(t, "f09", rep.HighComplexity[9].Name)
	})

	t.Run("hotspots ranked by inbound calls", func(t *testing.T) {
		g := graph.New()
		g.AddEdge("a.py:f", "b.py:validate", graph.EdgeCalls)
		g.AddEdge("a.py:g", "b.py:validate", graph.EdgeCalls)
		g.AddEdge("a.py:h", "b.py:other", graph.EdgeCalls)

		rep := Aggregate(g.Serialize())
		assert.Equal(t, []Hotspot{
			{Target: "b.py:validate", Count: 2},
			{Target: "b.py:other", Count: 1},
		}, rep.Hotspots)
	})

	t.Run("hotspot ties keep first appearance order", func(t *testing.T) {
		g := graph.New()
		g.AddEdge("a.py:f", "x", graph.EdgeCalls)
		g.AddEdge("a.py:f", "y", graph.EdgeCalls)

		rep := Aggregate(g.Serialize())
		assert.Equal(t, "x", rep.Hotspots[0].Target)
		assert.Equal(t, "y", rep.Hotspots[1].Target)
	})

	t.Run("base classes deduplicated in first seen order", func(t *testing.T) {
		g := graph.New()
		g.AddEdge("a.py:Dog", "a.py:Animal", graph.EdgeInherits)
		g.AddEdge("a.py:Cat", "a.py:Animal", graph.EdgeInherits)
		g.AddEdge("a.py:Robot", "a.py:Machine", graph.EdgeInherits)

		rep := Aggregate(g.Serialize())
		assert.Equal(t, []string{"a.py:Animal", "a.py:Machine"}, rep.BaseClasses)
	})

	t.Run("empty snapshot yields zero report", func(t *testing.T) {
		rep := Aggregate(graph.New().Serialize())
		assert.Zero(t, rep.TotalSymbols)
		assert.Empty(t, rep.HighComplexity)
		assert.Empty(t, rep.Hotspots)
		assert.Empty(t, rep.BaseClasses)
	})
}
