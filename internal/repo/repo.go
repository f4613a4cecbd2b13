// Package repo materializes a remote repository on disk and maps its
// surface: validated URL, shallow clone, file tree, README text, and the
// entry-point files worth analyzing first.
package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	// ErrInvalidURL marks a repository URL that failed validation.
	ErrInvalidURL = errors.New("invalid repository url")
	// ErrNotFound marks a remote that the host does not know.
	ErrNotFound = errors.New("repository not found")
	// ErrAuthRequired marks a private remote.
	ErrAuthRequired = errors.New("repository requires authentication")
	// ErrCloneFailed marks a clone that failed after all retries.
	ErrCloneFailed = errors.New("git clone failed")
)

var supportedHosts = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"bitbucket.org": true,
}

var ownerRepoPattern = regexp.MustCompile(`^[\w.-]+$`)

var readmeCandidates = []string{"README.md", "README.rst", "README.txt"}

var ignoreDirs = map[string]bool{
	".git": true, "__pycache__": true, "node_modules": true,
	".venv": true, "venv": true, ".mypy_cache": true,
}

var importantNames = map[string]bool{
	"main.py": true, "app.py": true, "__main__.py": true, "__init__.py": true,
	"cli.py": true, "server.py": true, "run.py": true, "manage.py": true,
}

// ValidateURL checks that rawURL points at a supported host and returns
// the normalized form (trailing slashes and .git suffix removed).
func ValidateURL(rawURL string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !supportedHosts[parsed.Host] {
		return "", fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, parsed.Host)
	}
	parts := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: expected https://%s/owner/repo", ErrInvalidURL, parsed.Host)
	}
	owner := parts[0]
	name := strings.TrimSuffix(parts[1], ".git")
	if !ownerRepoPattern.MatchString(owner) || !ownerRepoPattern.MatchString(name) {
		return "", fmt.Errorf("%w: bad owner/repo %q/%q", ErrInvalidURL, owner, name)
	}
	return fmt.Sprintf("https://%s/%s/%s", parsed.Host, owner, name), nil
}

// RepoName extracts the repository name from a normalized URL.
func RepoName(normalizedURL string) string {
	name := normalizedURL[strings.LastIndex(normalizedURL, "/")+1:]
	return strings.TrimSuffix(name, ".git")
}

// Cloner shallow-clones repositories with retry.
type Cloner struct {
	BaseDir string
	Retries int
	Backoff time.Duration
}

// NewCloner returns a Cloner writing under baseDir. An empty baseDir
// falls back to a per-process temp directory.
func NewCloner(baseDir string) *Cloner {
	return &Cloner{BaseDir: baseDir, Retries: 2, Backoff: 2 * time.Second}
}

// Clone validates the URL, then clones it shallowly under BaseDir. An
// existing checkout is updated with a pull instead of recloned.
func (c *Cloner) Clone(ctx context.Context, rawURL string) (string, error) {
	normalized, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	base := c.BaseDir
	if base == "" {
		base, err = os.MkdirTemp("", "codegenius_")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCloneFailed, err)
		}
	}
	dest := filepath.Join(base, RepoName(normalized))

	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if _, statErr := os.Stat(filepath.Join(dest, ".git")); statErr == nil {
			if pullErr := runGit(ctx, "", "-C", dest, "pull", "--ff-only"); pullErr == nil {
				return dest, nil
			}
			// A stale checkout is recloned from scratch.
			os.RemoveAll(dest)
		}

		err = runGit(ctx, "", "clone", "--depth", "1", normalized, dest)
		if err == nil {
			return dest, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuthRequired) {
			return "", err
		}
		lastErr = err
		os.RemoveAll(dest)
		if attempt < c.Retries {
			wait := c.Backoff * time.Duration(attempt+1)
			slog.Warn("clone attempt failed, retrying", "url", normalized, "attempt", attempt+1, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrCloneFailed, c.Retries+1, lastErr)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "authentication failed") || strings.Contains(lower, "could not read username"):
			return fmt.Errorf("%w: %s", ErrAuthRequired, firstLine(msg))
		case strings.Contains(lower, "not found"):
			return fmt.Errorf("%w: %s", ErrNotFound, firstLine(msg))
		default:
			return fmt.Errorf("%w: %s", ErrCloneFailed, firstLine(msg))
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// TreeNode is one entry of the repository file tree.
type TreeNode struct {
	Path     string     `json:"path"`
	Type     string     `json:"type"` // "file" or "dir"
	Children []TreeNode `json:"children,omitempty"`
}

// BuildFileTree walks root and returns its tree with ignored directories
// pruned. Directories sort before files, then case-insensitive by name.
func BuildFileTree(root string) (TreeNode, error) {
	node, err := walkTree(root, root)
	if err != nil {
		return TreeNode{}, err
	}
	return node, nil
}

func walkTree(root, path string) (TreeNode, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	if rel == "." {
		rel = ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return TreeNode{}, err
	}
	if !info.IsDir() {
		return TreeNode{Path: rel, Type: "file"}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return TreeNode{}, err
	}
	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	node := TreeNode{Path: rel, Type: "dir"}
	for _, entry := range entries {
		if entry.IsDir() && ignoreDirs[entry.Name()] {
			continue
		}
		child, err := walkTree(root, filepath.Join(path, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable entry", "path", entry.Name(), "error", err)
			continue
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// ReadReadme returns the first README variant found under root, or
// ok=false when none exists.
func ReadReadme(root string) (string, bool) {
	for _, candidate := range readmeCandidates {
		content, err := os.ReadFile(filepath.Join(root, candidate))
		if err != nil {
			continue
		}
		return strings.ToValidUTF8(string(content), ""), true
	}
	return "", false
}

// FindImportantFiles returns the paths of conventional entry-point files
// in tree order.
func FindImportantFiles(tree TreeNode) []string {
	var found []string
	var search func(n TreeNode)
	search = func(n TreeNode) {
		if n.Type == "file" && importantNames[filepath.Base(n.Path)] {
			found = append(found, n.Path)
		}
		for _, child := range n.Children {
			search(child)
		}
	}
	search(tree)
	return found
}

// Map is the mapped surface of one repository.
type Map struct {
	RepoPath       string   `json:"repoPath"`
	URL            string   `json:"url"`
	FileTree       TreeNode `json:"fileTree"`
	Readme         string   `json:"readme"`
	ImportantFiles []string `json:"importantFiles"`
}

// MapRepository clones rawURL and maps its file tree, README, and
// entry-point files.
func (c *Cloner) MapRepository(ctx context.Context, rawURL string) (Map, error) {
	path, err := c.Clone(ctx, rawURL)
	if err != nil {
		return Map{}, err
	}
	tree, err := BuildFileTree(path)
	if err != nil {
		return Map{}, fmt.Errorf("mapping %s: %w", path, err)
	}
	readme, _ := ReadReadme(path)
	normalized, _ := ValidateURL(rawURL)
	return Map{
		RepoPath:       path,
		URL:            normalized,
		FileTree:       tree,
		Readme:         readme,
		ImportantFiles: FindImportantFiles(tree),
	}, nil
}
