// Package pipeline orchestrates the full documentation run: clone, map,
// analyze, aggregate, render, persist. Each stage degrades to a partial
// result where it can instead of aborting the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"codegenius/internal/analysis"
	"codegenius/internal/config"
	"codegenius/internal/crawler"
	"codegenius/internal/discovery"
	"codegenius/internal/docgen"
	"codegenius/internal/extractor"
	"codegenius/internal/git"
	"codegenius/internal/graph"
	"codegenius/internal/knowledge"
	"codegenius/internal/repo"
	"codegenius/internal/stats"
	"codegenius/internal/storage"
)

// Pipeline wires the analysis stages together.
type Pipeline struct {
	cloner     *repo.Cloner
	crawler    *crawler.Crawler
	store      storage.Store
	summarizer knowledge.Summarizer
	outDir     string
}

// New builds a pipeline from configuration. store may be nil when
// persistence is not wanted (the analyze-only CLI path).
func New(cfg *config.Config, store storage.Store, summarizer knowledge.Summarizer) *Pipeline {
	ext := extractor.New()
	return &Pipeline{
		cloner: repo.NewCloner(cfg.Storage.CloneDir),
		crawler: crawler.New(ext,
			crawler.WithWorkers(cfg.Analysis.Workers),
			crawler.WithIgnoreGlobs(cfg.Analysis.IgnoreGlobs)),
		store:      store,
		summarizer: summarizer,
		outDir:     cfg.Storage.OutDir,
	}
}

// AnalysisResult is the outcome of analyzing one repository root.
type AnalysisResult struct {
	Graph         *graph.Graph
	FilesAnalyzed int
	Discovery     discovery.Report
	Iterations    int
}

// Analyze scans root, then re-runs discovery-driven passes over newly
// found internal modules until discovery completes or the iteration cap
// is hit.
func (p *Pipeline) Analyze(ctx context.Context, root string) (AnalysisResult, error) {
	g := graph.New()

	analyzed, err := p.crawler.ScanRepo(ctx, root, g)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("scanning %s: %w", root, err)
	}

	res := AnalysisResult{Graph: g, FilesAnalyzed: analyzed}
	visited := make(map[string]bool)
	for i := 0; i < discovery.MaxIterations; i++ {
		res.Iterations = i + 1
		res.Discovery = discovery.Discover(g, root)
		if res.Discovery.DiscoveryComplete {
			break
		}

		var next []string
		for _, file := range res.Discovery.PotentialFilesToAnalyze {
			if !visited[file] {
				visited[file] = true
				next = append(next, file)
			}
		}
		if len(next) == 0 {
			break
		}
		slog.Info("discovery pass found new files", "iteration", i+1, "files", len(next))

		n, err := p.crawler.ScanFiles(ctx, root, next, g)
		if err != nil {
			return res, fmt.Errorf("discovery pass %d: %w", i+1, err)
		}
		res.FilesAnalyzed += n
	}
	return res, nil
}

// Result is one completed documentation run.
type Result struct {
	RunID     string           `json:"runId"`
	Repo      string           `json:"repo"`
	URL       string           `json:"url"`
	DocsPath  string           `json:"docsPath"`
	Markdown  string           `json:"-"`
	Snapshot  graph.Snapshot   `json:"-"`
	Stats     stats.Report     `json:"stats"`
	Discovery discovery.Report `json:"discovery"`
	Duration  time.Duration    `json:"-"`
}

// Generate runs the whole pipeline for a repository URL.
func (p *Pipeline) Generate(ctx context.Context, repoURL string) (Result, error) {
	start := time.Now()

	mapped, err := p.cloner.MapRepository(ctx, repoURL)
	if err != nil {
		return Result{}, err
	}
	repoName := repo.RepoName(mapped.URL)
	slog.Info("repository mapped", "repo", repoName, "path", mapped.RepoPath)

	analysis, err := p.Analyze(ctx, mapped.RepoPath)
	if err != nil {
		return Result{}, err
	}
	snap := analysis.Graph.Serialize()
	report := stats.Aggregate(snap)
	slog.Info("analysis finished",
		"repo", repoName,
		"files", analysis.FilesAnalyzed,
		"symbols", report.TotalSymbols,
		"edges", report.TotalEdges,
		"iterations", analysis.Iterations)

	summary := ""
	if p.summarizer != nil {
		summary, err = p.summarizer.SummarizeReadme(ctx, mapped.Readme)
		if err != nil {
			slog.Warn("readme summarization failed", "repo", repoName, "error", err)
		}
	}

	docInput := docgen.Input{
		RepoURL:       mapped.URL,
		RepoName:      repoName,
		FileTree:      mapped.FileTree,
		ReadmeSummary: summary,
		Snapshot:      snap,
		Stats:         report,
	}
	markdown := docgen.Render(docInput)

	docsPath := ""
	if p.outDir != "" {
		docsPath, err = docgen.WriteFile(docInput, filepath.Join(p.outDir, repoName))
		if err != nil {
			return Result{}, err
		}
	}

	result := Result{
		RunID:     uuid.NewString(),
		Repo:      repoName,
		URL:       mapped.URL,
		DocsPath:  docsPath,
		Markdown:  markdown,
		Snapshot:  snap,
		Stats:     report,
		Discovery: analysis.Discovery,
		Duration:  time.Since(start),
	}

	if p.store != nil {
		err = p.store.SaveRun(ctx, storage.Run{
			ID:       result.RunID,
			Repo:     repoName,
			URL:      mapped.URL,
			Snapshot: snap,
			Markdown: markdown,
		})
		if err != nil {
			return Result{}, fmt.Errorf("persisting run: %w", err)
		}
	}
	return result, nil
}

// UpdateResult summarizes one incremental pass over a local checkout.
type UpdateResult struct {
	RunID      string                `json:"runId"`
	Repo       string                `json:"repo"`
	Changed    int                   `json:"changed"`
	Reanalyzed int                   `json:"reanalyzed"`
	Impact     analysis.ImpactReport `json:"impact"`
}

// Update re-analyzes the files changed since baseRef on top of the
// repository's latest stored snapshot. Deleted files keep their old
// symbols; the graph only ever accumulates.
func (p *Pipeline) Update(ctx context.Context, root, baseRef string) (UpdateResult, error) {
	repoName := filepath.Base(root)

	g := graph.New()
	if p.store != nil {
		prev, err := p.store.LatestRun(ctx, repoName)
		if err == nil {
			g.Load(prev.Snapshot)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return UpdateResult{}, err
		}
	}

	changes, err := git.ChangedFiles(ctx, root, baseRef)
	if err != nil {
		return UpdateResult{}, err
	}
	impact := analysis.NewAnalyzer(g).AnalyzeImpact(changes)

	var files []string
	for _, change := range changes {
		if change.Status == git.StatusDeleted || !crawler.Analyzable(change.Path) {
			continue
		}
		files = append(files, filepath.Join(root, change.Path))
	}

	n, err := p.crawler.ScanFiles(ctx, root, files, g)
	if err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{
		RunID:      uuid.NewString(),
		Repo:       repoName,
		Changed:    len(changes),
		Reanalyzed: n,
		Impact:     impact,
	}
	if p.store != nil {
		err = p.store.SaveRun(ctx, storage.Run{
			ID:       result.RunID,
			Repo:     repoName,
			Snapshot: g.Serialize(),
		})
		if err != nil {
			return UpdateResult{}, fmt.Errorf("persisting run: %w", err)
		}
	}
	return result, nil
}
