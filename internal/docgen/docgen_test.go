package docgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegenius/internal/graph"
	"codegenius/internal/repo"
	"codegenius/internal/stats"
)

func sampleInput() Input {
	g := graph.New()
	g.AddSymbol("animals.py", "Animal", graph.KindClass)
	g.AddSymbol("animals.py", "Dog", graph.KindClass)
	g.AddSymbol("animals.py", "bark", graph.KindFunction, 12)
	g.AddEdge("animals.py:Dog", "animals.py:Animal", graph.EdgeInherits)
	g.AddEdge("main.py:run", "animals.py:bark", graph.EdgeCalls)
	snap := g.Serialize()

	return Input{
		RepoURL:       "https://github.com/owner/zoo",
		ReadmeSummary: "A small zoo simulation.",
		FileTree: repo.TreeNode{
			Path: "", Type: "dir",
			Children: []repo.TreeNode{
				{Path: "main.py", Type: "file"},
				{Path: "requirements.txt", Type: "file"},
			},
		},
		Snapshot: snap,
		Stats:    stats.Aggregate(snap),
	}
}

func TestRender(t *testing.T) {
	doc := Render(sampleInput())

	t.Run("title and overview", func(t *testing.T) {
		assert.Contains(t, doc, "# zoo - Documentation")
		assert.Contains(t, doc, "A small zoo simulation.")
	})

	t.Run("installation picks requirements", func(t *testing.T) {
		assert.Contains(t, doc, "git clone https://github.com/owner/zoo")
		assert.Contains(t, doc, "pip install -r requirements.txt")
	})

	t.Run("usage lists entry points", func(t *testing.T) {
		assert.Contains(t, doc, "Entry points detected:")
		assert.Contains(t, doc, "- `main.py`")
	})

	t.Run("architecture counts", func(t *testing.T) {
		assert.Contains(t, doc, "- **Classes**: 2")
		assert.Contains(t, doc, "- **Inheritance Relationships**: 1")
		assert.Contains(t, doc, "- `Animal`")
	})

	t.Run("mermaid diagrams embedded", func(t *testing.T) {
		assert.Contains(t, doc, "```mermaid\nclassDiagram\n    Animal <|-- Dog\n```")
		assert.Contains(t, doc, "```mermaid\ngraph LR\n    run --> bark\n```")
	})

	t.Run("api reference", func(t *testing.T) {
		assert.Contains(t, doc, "### Classes")
		assert.Contains(t, doc, "- **`Dog`**")
		assert.Contains(t, doc, "- `bark` in `animals.py` (complexity: 12)")
		assert.Contains(t, doc, "- `bark` (1 calls)")
	})

	t.Run("project structure", func(t *testing.T) {
		assert.Contains(t, doc, "## Project Structure")
		assert.Contains(t, doc, "main.py")
	})
}

func TestRenderEmpty(t *testing.T) {
	doc := Render(Input{})
	assert.Contains(t, doc, "No README content found.")
	assert.Contains(t, doc, "Please refer to the repository documentation")
	assert.Contains(t, doc, "<empty>")
	assert.NotContains(t, doc, "```mermaid")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(sampleInput(), filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "docs.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# zoo - Documentation"))
}

func TestMermaidID(t *testing.T) {
	assert.Equal(t, "bark", mermaidID("animals.py:bark"))
	assert.Equal(t, "my_func", mermaidID("a.py:my.func"))
	assert.Equal(t, "_", mermaidID(""))
}

func TestCallGraphCap(t *testing.T) {
	g := graph.New()
	for i := 0; i < 40; i++ {
		g.AddEdge("a.py:f", "b.py:"+strings.Repeat("x", i+1), graph.EdgeCalls)
	}
	diagram := CallGraph(g.Serialize())
	assert.Equal(t, maxCallGraphEdges, strings.Count(diagram, "-->"))
}
