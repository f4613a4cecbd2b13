package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codegenius/internal/graph"
)

// SQLiteStore implements Store on a local SQLite database. Node and edge
// rows carry a sequence column so snapshots round-trip in insertion
// order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			url TEXT,
			markdown TEXT,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			file TEXT,
			name TEXT,
			kind TEXT,
			complexity INTEGER,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			source TEXT,
			target TEXT,
			type TEXT,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_repo ON runs(repo, created_at);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, repo, url, markdown, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repo=excluded.repo,
			url=excluded.url,
			markdown=excluded.markdown,
			created_at=excluded.created_at
	`, run.ID, run.Repo, run.URL, run.Markdown, createdAt)
	if err != nil {
		return err
	}

	// Re-saving a run replaces its snapshot wholesale.
	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE run_id = ?", run.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM edges WHERE run_id = ?", run.ID); err != nil {
		return err
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (run_id, seq, file, name, kind, complexity) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	for i, n := range run.Snapshot.Nodes {
		if _, err := nodeStmt.Exec(run.ID, i, n.File, n.Name, string(n.Kind), n.Complexity); err != nil {
			return err
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (run_id, seq, source, target, type) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	for i, e := range run.Snapshot.Edges {
		if _, err := edgeStmt.Exec(run.ID, i, e.Source, e.Target, string(e.Type)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, runID string) (graph.Snapshot, error) {
	snap := graph.Snapshot{Nodes: []graph.Node{}, Edges: []graph.Edge{}}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return snap, err
	}
	if exists == 0 {
		return snap, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT file, name, kind, complexity FROM nodes WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return snap, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n graph.Node
		var kind string
		if err := rows.Scan(&n.File, &n.Name, &kind, &n.Complexity); err != nil {
			return snap, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Kind = graph.SymbolKind(kind)
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	edgeRows, err := s.db.QueryContext(ctx,
		"SELECT source, target, type FROM edges WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return snap, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e graph.Edge
		var kind string
		if err := edgeRows.Scan(&e.Source, &e.Target, &kind); err != nil {
			return snap, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Type = graph.EdgeKind(kind)
		snap.Edges = append(snap.Edges, e)
	}
	return snap, edgeRows.Err()
}

func (s *SQLiteStore) LatestRun(ctx context.Context, repo string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, repo, url, markdown, created_at FROM runs
		WHERE repo = ? ORDER BY created_at DESC, id DESC LIMIT 1
	`, repo)

	var run Run
	if err := row.Scan(&run.ID, &run.Repo, &run.URL, &run.Markdown, &run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("repo %s: %w", repo, ErrNotFound)
		}
		return Run{}, err
	}

	snap, err := s.LoadSnapshot(ctx, run.ID)
	if err != nil {
		return Run{}, err
	}
	run.Snapshot = snap
	return run, nil
}
