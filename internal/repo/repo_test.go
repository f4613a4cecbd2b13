package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	t.Run("accepts and normalizes github urls", func(t *testing.T) {
		for _, raw := range []string{
			"https://github.com/owner/project",
			"https://github.com/owner/project/",
			"https://github.com/owner/project.git",
			"  https://github.com/owner/project  ",
		} {
			got, err := ValidateURL(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, "https://github.com/owner/project", got)
		}
	})

	t.Run("accepts gitlab and bitbucket", func(t *testing.T) {
		for _, raw := range []string{
			"https://gitlab.com/group/project",
			"https://bitbucket.org/team/project",
		} {
			_, err := ValidateURL(raw)
			assert.NoError(t, err, raw)
		}
	})

	t.Run("rejects unsupported hosts", func(t *testing.T) {
		_, err := ValidateURL("https://example.com/owner/project")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("rejects missing owner or repo", func(t *testing.T) {
		_, err := ValidateURL("https://github.com/only-owner")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ValidateURL("   ")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("rejects bad owner characters", func(t *testing.T) {
		_, err := ValidateURL("https://github.com/bad owner/project")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestRepoName(t *testing.T) {
	assert.Equal(t, "project", RepoName("https://github.com/owner/project"))
}

func TestBuildFileTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "__pycache__"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "util.py"), []byte(""), 0o644))

	tree, err := BuildFileTree(root)
	require.NoError(t, err)

	assert.Equal(t, "dir", tree.Type)
	require.Len(t, tree.Children, 2)
	// Directories sort before files.
	assert.Equal(t, "pkg", tree.Children[0].Path)
	assert.Equal(t, "main.py", tree.Children[1].Path)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, filepath.Join("pkg", "util.py"), tree.Children[0].Children[0].Path)
}

func TestReadReadme(t *testing.T) {
	t.Run("prefers markdown", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# md"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("txt"), 0o644))

		text, ok := ReadReadme(root)
		assert.True(t, ok)
		assert.Equal(t, "# md", text)
	})

	t.Run("falls back through candidates", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "README.rst"), []byte("rst"), 0o644))

		text, ok := ReadReadme(root)
		assert.True(t, ok)
		assert.Equal(t, "rst", text)
	})

	t.Run("absent readme", func(t *testing.T) {
		_, ok := ReadReadme(t.TempDir())
		assert.False(t, ok)
	})
}

func TestFindImportantFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.py"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "__init__.py"), []byte(""), 0o644))

	tree, err := BuildFileTree(root)
	require.NoError(t, err)

	got := FindImportantFiles(tree)
	assert.ElementsMatch(t, []string{"main.py", filepath.Join("pkg", "__init__.py")}, got)
}
