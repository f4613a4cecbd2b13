package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegenius/internal/extractor"
	"codegenius/internal/graph"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectFiles(t *testing.T) {
	t.Run("selects analyzable extensions only", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "app.py", "def main():\n    pass\n")
		writeFile(t, root, "walker.jac", "walker init {}\n")
		writeFile(t, root, "README.md", "# hi\n")
		writeFile(t, root, "main.go", "package main\n")

		c := New(extractor.NewHeuristicOnly())
		files, err := c.CollectFiles(root)
		require.NoError(t, err)

		rels := relPaths(t, root, files)
		assert.ElementsMatch(t, []string{"app.py", "walker.jac"}, rels)
	})

	t.Run("skips ignored directories", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "pkg/mod.py", "x = 1\n")
		writeFile(t, root, "__pycache__/mod.py", "x = 1\n")
		writeFile(t, root, ".venv/lib/site.py", "x = 1\n")
		writeFile(t, root, "node_modules/dep/index.py", "x = 1\n")

		c := New(extractor.NewHeuristicOnly())
		files, err := c.CollectFiles(root)
		require.NoError(t, err)

		assert.Equal(t, []string{"pkg/mod.py"}, relPaths(t, root, files))
	})

	t.Run("honors gitignore", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, ".gitignore", "generated/\nscratch.py\n")
		writeFile(t, root, "keep.py", "x = 1\n")
		writeFile(t, root, "scratch.py", "x = 1\n")
		writeFile(t, root, "generated/out.py", "x = 1\n")

		c := New(extractor.NewHeuristicOnly())
		files, err := c.CollectFiles(root)
		require.NoError(t, err)

		assert.Equal(t, []string{"keep.py"}, relPaths(t, root, files))
	})

	t.Run("honors ignore globs", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "app.py", "x = 1\n")
		writeFile(t, root, "app_test.py", "x = 1\n")
		writeFile(t, root, "sub/util_test.py", "x = 1\n")

		c := New(extractor.NewHeuristicOnly(), WithIgnoreGlobs([]string{"**_test.py", "*_test.py"}))
		files, err := c.CollectFiles(root)
		require.NoError(t, err)

		assert.Equal(t, []string{"app.py"}, relPaths(t, root, files))
	})

	t.Run("drops invalid glob patterns without failing", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "app.py", "x = 1\n")

		c := New(extractor.NewHeuristicOnly(), WithIgnoreGlobs([]string{"[unclosed"}))
		files, err := c.CollectFiles(root)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})
}

func TestScanRepo(t *testing.T) {
	t.Run("merges extraction results into one graph", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "animals.py", "class Dog(Animal):\n    def bark(self):\n        if True:\n            return 1\n")
		writeFile(t, root, "main.py", "import os\ndef run():\n    pass\n")

		g := graph.New()
		c := New(extractor.NewHeuristicOnly())
		n, err := c.ScanRepo(context.Background(), root, g)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		assert.True(t, g.HasNode("animals.py:Dog"))
		assert.True(t, g.HasNode("animals.py:bark"))
		assert.True(t, g.HasNode("main.py:run"))
		assert.True(t, g.HasNode("main.py:os"))
	})

	t.Run("files keyed by root-relative path", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "pkg/util.py", "def helper():\n    pass\n")

		g := graph.New()
		c := New(extractor.NewHeuristicOnly())
		_, err := c.ScanRepo(context.Background(), root, g)
		require.NoError(t, err)

		assert.True(t, g.HasNode(filepath.Join("pkg", "util.py")+":helper"))
	})

	t.Run("empty tree yields empty graph", func(t *testing.T) {
		root := t.TempDir()
		g := graph.New()
		c := New(extractor.NewHeuristicOnly())
		n, err := c.ScanRepo(context.Background(), root, g)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, 0, g.NodeCount())
	})

	t.Run("multiple workers still merge every file", func(t *testing.T) {
		root := t.TempDir()
		for _, name := range []string{"a.py", "b.py", "c.py", "d.py"} {
			writeFile(t, root, name, "def f():\n    pass\n")
		}

		g := graph.New()
		c := New(extractor.NewHeuristicOnly(), WithWorkers(4))
		n, err := c.ScanRepo(context.Background(), root, g)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, 4, g.NodeCount())
	})
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}
