package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegenius/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.OutDir = filepath.Join(t.TempDir(), "out")
	return New(cfg, nil, nil)
}

func TestAnalyze(t *testing.T) {
	t.Run("single pass on self-contained repo", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "zoo")
		writeFile(t, root, "animals.py", "class Dog(Animal):\n    def bark(self):\n        if True:\n            return 1\n")

		res, err := newTestPipeline(t).Analyze(context.Background(), root)
		require.NoError(t, err)

		assert.Equal(t, 1, res.FilesAnalyzed)
		assert.Equal(t, 1, res.Iterations)
		assert.True(t, res.Discovery.DiscoveryComplete)
		assert.True(t, res.Graph.HasNode("animals.py:Dog"))
	})

	t.Run("discovery pass pulls in internal module", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "myapp")
		writeFile(t, root, "main.py", "import myapp.utils\ndef run():\n    pass\n")
		writeFile(t, root, "myapp/utils/__init__.py", "def helper():\n    pass\n")

		// Keep the package out of the initial walk so the loop has to
		// reach it through the import target.
		cfg := config.Default()
		cfg.Storage.OutDir = filepath.Join(t.TempDir(), "out")
		cfg.Analysis.IgnoreGlobs = []string{"myapp/**"}
		p := New(cfg, nil, nil)

		res, err := p.Analyze(context.Background(), root)
		require.NoError(t, err)

		assert.Equal(t, 2, res.FilesAnalyzed)
		assert.Equal(t, 2, res.Iterations)
		assert.True(t, res.Discovery.DiscoveryComplete)
		assert.Empty(t, res.Discovery.UnanalyzedInternal)
		assert.True(t, res.Graph.HasNode(filepath.Join("myapp", "utils", "__init__.py")+":helper"))
	})

	t.Run("unresolvable import terminates at iteration cap", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "myapp")
		writeFile(t, root, "main.py", "import myapp.ghost\n")

		res, err := newTestPipeline(t).Analyze(context.Background(), root)
		require.NoError(t, err)

		assert.False(t, res.Discovery.DiscoveryComplete)
		assert.Equal(t, []string{"myapp.ghost"}, res.Discovery.UnanalyzedInternal)
		// No candidate files exist, so the loop stops after the first
		// discovery rather than burning all iterations.
		assert.Equal(t, 1, res.Iterations)
	})

	t.Run("external imports do not block completion", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "myapp")
		writeFile(t, root, "main.py", "import os\nimport requests\n")

		res, err := newTestPipeline(t).Analyze(context.Background(), root)
		require.NoError(t, err)

		assert.True(t, res.Discovery.DiscoveryComplete)
		assert.Equal(t, []string{"os"}, res.Discovery.StdlibImports)
		assert.Equal(t, []string{"requests"}, res.Discovery.ExternalDependencies)
	})
}

func TestGenerateRejectsInvalidURL(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Generate(context.Background(), "https://example.com/nope")
	assert.Error(t, err)
}
