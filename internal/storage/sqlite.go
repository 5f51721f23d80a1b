package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"mapper/internal/classifier"
	"mapper/internal/graph"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ RunStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
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
			created_at TEXT NOT NULL,
			old_root TEXT,
			new_root TEXT,
			stats JSON
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			src TEXT,
			dst TEXT,
			src_id TEXT,
			dst_id TEXT,
			score REAL,
			level TEXT,
			cascaded INTEGER,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_kind ON matches(run_id, kind);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, old_root, new_root, stats)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at=excluded.created_at,
			old_root=excluded.old_root,
			new_root=excluded.new_root,
			stats=excluded.stats
	`, run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.OldRoot, run.NewRoot, stats); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	// Replace the pair snapshot of this run.
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE run_id = ?`, run.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (run_id, seq, kind, src, dst, src_id, dst_id, score, level, cascaded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range run.Pairs {
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(p.Kind), p.Src, p.Dst, p.SrcID, p.DstID, p.Score, p.Level.String(), p.Cascaded); err != nil {
			return fmt.Errorf("failed to save match %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, old_root, new_root, stats FROM runs
		WHERE substr(id, 1, length(?)) = ?
		ORDER BY id = ? DESC
	`, id, id, id)
	if err != nil {
		return nil, err
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	case len(runs) > 1 && runs[0].ID != id:
		return nil, fmt.Errorf("%s matches %d runs: %w", id, len(runs), ErrAmbiguousRun)
	}

	run := runs[0]
	pairs, err := s.loadPairs(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Pairs = pairs
	return &run, nil
}

func (s *SQLiteStore) loadPairs(ctx context.Context, runID string) ([]graph.Pair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, src, dst, src_id, dst_id, score, level, cascaded
		FROM matches WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []graph.Pair
	for rows.Next() {
		var (
			p     graph.Pair
			kind  string
			level string
		)
		if err := rows.Scan(&kind, &p.Src, &p.Dst, &p.SrcID, &p.DstID, &p.Score, &level, &p.Cascaded); err != nil {
			return nil, err
		}
		p.Kind = graph.EntityKind(kind)
		if p.Level, err = classifier.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, old_root, new_root, stats FROM runs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE run_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
			stats   []byte
		)
		if err := rows.Scan(&r.ID, &created, &r.OldRoot, &r.NewRoot, &stats); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad created_at: %w", r.ID, err)
		}
		r.CreatedAt = t
		if len(stats) > 0 {
			if err := json.Unmarshal(stats, &r.Stats); err != nil {
				return nil, fmt.Errorf("run %s: bad stats: %w", r.ID, err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
