// Package storage persists analysis runs: the serialized graph snapshot
// and the rendered documentation, keyed by repository name.
package storage

import (
	"context"
	"errors"
	"time"

	"codegenius/internal/graph"
)

// ErrNotFound marks a repository or run the store does not know.
var ErrNotFound = errors.New("not found in store")

// Run is one completed analysis of a repository.
type Run struct {
	ID        string
	Repo      string
	URL       string
	Snapshot  graph.Snapshot
	Markdown  string
	CreatedAt time.Time
}

// Store persists runs and serves the latest documentation per repo.
type Store interface {
	// SaveRun persists a run and makes it the repo's latest.
	SaveRun(ctx context.Context, run Run) error

	// LoadSnapshot returns the snapshot of a run in insertion order.
	LoadSnapshot(ctx context.Context, runID string) (graph.Snapshot, error)

	// LatestRun returns the most recent run for a repository name.
	LatestRun(ctx context.Context, repo string) (Run, error)

	Close() error
}
