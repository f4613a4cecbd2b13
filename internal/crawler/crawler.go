// Package crawler walks a repository tree, selects analyzable source
// files, and feeds each file through the extractor into one graph. Files
// are processed in isolation; the graph is mutated by a single goroutine
// regardless of the worker count.
package crawler

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"codegenius/internal/extractor"
	"codegenius/internal/graph"
)

// analyzableExts is the fixed set of source-file extensions the walker
// selects; everything else is skipped.
var analyzableExts = map[string]bool{
	".py":  true,
	".jac": true,
}

// Analyzable reports whether the walker would select this path.
func Analyzable(path string) bool {
	return analyzableExts[filepath.Ext(path)]
}

var defaultIgnoreDirs = []string{
	".git", "__pycache__", "node_modules", ".venv", "venv", ".mypy_cache",
	"vendor", "testdata",
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithIgnoreGlobs adds glob patterns matched against root-relative paths.
// Invalid patterns are dropped.
func WithIgnoreGlobs(patterns []string) Option {
	return func(c *Crawler) {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				slog.Warn("skipping invalid ignore pattern", "pattern", p, "error", err)
				continue
			}
			c.globs = append(c.globs, g)
		}
	}
}

// WithWorkers sets the number of concurrent extraction workers. The
// default of 1 keeps discovery order deterministic.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// Crawler scans a directory tree for analyzable files.
type Crawler struct {
	extractor *extractor.Extractor
	ignore    []string
	globs     []glob.Glob
	workers   int
}

// New creates a crawler around the given extractor.
func New(ext *extractor.Extractor, opts ...Option) *Crawler {
	c := &Crawler{
		extractor: ext,
		ignore:    defaultIgnoreDirs,
		workers:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScanRepo walks the root, collects every analyzable file, and merges the
// extraction results into g. It returns the number of files analyzed.
func (c *Crawler) ScanRepo(ctx context.Context, root string, g *graph.Graph) (int, error) {
	files, err := c.CollectFiles(root)
	if err != nil {
		return 0, err
	}
	return c.ScanFiles(ctx, root, files, g)
}

// CollectFiles returns the analyzable files under root in walk order,
// honoring the ignore-directory set, configured glob patterns, and the
// repository's own .gitignore when present.
func (c *Crawler) CollectFiles(root string) ([]string, error) {
	var matcher *gitignore.GitIgnore
	if m, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = m
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries never abort the walk.
			slog.Debug("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			for _, ign := range c.ignore {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !Analyzable(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		for _, pat := range c.globs {
			if pat.Match(rel) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

type fileResult struct {
	file string
	res  extractor.Result
}

// ScanFiles extracts the given files (paths under root) and merges the
// results into g. Unreadable files are skipped; invalid byte sequences are
// dropped before extraction. All graph writes happen on the calling
// goroutine.
func (c *Crawler) ScanFiles(ctx context.Context, root string, files []string, g *graph.Graph) (int, error) {
	results := make(chan fileResult)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.workers)

	go func() {
		for _, path := range files {
			if ctx.Err() != nil {
				break
			}
			eg.Go(func() error {
				content, err := os.ReadFile(path)
				if err != nil {
					slog.Debug("skipping unreadable file", "path", path, "error", err)
					return nil
				}
				decoded := strings.ToValidUTF8(string(content), "")
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					rel = path
				}
				res := c.extractor.Extract(rel, []byte(decoded))
				select {
				case results <- fileResult{file: rel, res: res}:
				case <-ctx.Done():
				}
				return nil
			})
		}
		eg.Wait() //nolint:errcheck // collected below
		close(results)
	}()

	analyzed := 0
	for r := range results {
		extractor.Apply(g, r.file, r.res)
		analyzed++
	}
	if err := eg.Wait(); err != nil {
		return analyzed, err
	}
	return analyzed, nil
}
