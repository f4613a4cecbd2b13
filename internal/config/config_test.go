package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "codegenius.db", cfg.Storage.DBPath)
		assert.Equal(t, 1, cfg.Analysis.Workers)
		assert.Equal(t, "truncate", cfg.AI.Provider)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := `
server:
  addr: ":9090"
analysis:
  workers: 4
  ignore_globs:
    - "*_test.py"
ai:
  provider: gemini
  model: gemini-1.5-flash
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 4, cfg.Analysis.Workers)
		assert.Equal(t, []string{"*_test.py"}, cfg.Analysis.IgnoreGlobs)
		assert.Equal(t, "gemini", cfg.AI.Provider)
		// Values absent from the file keep their defaults.
		assert.Equal(t, "codegenius.db", cfg.Storage.DBPath)
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		t.Setenv("CODEGENIUS_ADDR", ":7000")
		t.Setenv("CODEGENIUS_API_KEY", "secret")
		t.Setenv("CODEGENIUS_WORKERS", "8")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Server.Addr)
		assert.Equal(t, "secret", cfg.AI.APIKey)
		assert.Equal(t, 8, cfg.Analysis.Workers)
	})

	t.Run("invalid worker count ignored", func(t *testing.T) {
		t.Setenv("CODEGENIUS_WORKERS", "zero")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Analysis.Workers)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
