// Package runs persists analysis history so verdicts can be compared
// across invocations of the same log.
package runs

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
)

// Run is one recorded analysis.
type Run struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	SHA256      string    `json:"sha256"`
	Dialect     string    `json:"dialect"`
	Passed      bool      `json:"passed"`
	Events      int64     `json:"events"`
	Draws       int64     `json:"draws"`
	Repaints    int64     `json:"repaints"`
	Artists     int64     `json:"artists"`
	Pixels      int64     `json:"pixels"`
	Violations  int64     `json:"violations"`
	ParseErrors int64     `json:"parse_errors"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store manages persistent run history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens the history database, creating it when missing.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			dialect TEXT,
			passed BOOLEAN NOT NULL,
			events BIGINT,
			draws BIGINT,
			repaints BIGINT,
			artists BIGINT,
			pixels BIGINT,
			violations BIGINT,
			parse_errors BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_sha ON runs(sha256)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run. A missing ID or timestamp is filled in.
func (s *Store) Record(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, path, sha256, dialect, passed, events, draws,
		                  repaints, artists, pixels, violations, parse_errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Path, run.SHA256, run.Dialect, run.Passed, run.Events, run.Draws,
		run.Repaints, run.Artists, run.Pixels, run.Violations, run.ParseErrors, run.CreatedAt)

	return err
}

// Get retrieves a run by ID.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &Run{}
	err := s.db.QueryRow(`
		SELECT id, path, sha256, dialect, passed, events, draws, repaints,
		       artists, pixels, violations, parse_errors, created_at
		FROM runs WHERE id = ?
	`, id).Scan(
		&run.ID, &run.Path, &run.SHA256, &run.Dialect, &run.Passed, &run.Events,
		&run.Draws, &run.Repaints, &run.Artists, &run.Pixels, &run.Violations,
		&run.ParseErrors, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// List returns the most recent runs.
func (s *Store) List(limit int) ([]*Run, error) {
	return s.list(`
		SELECT id, path, sha256, dialect, passed, events, draws, repaints,
		       artists, pixels, violations, parse_errors, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
}

// ListByPath returns the most recent runs of one log.
func (s *Store) ListByPath(path string, limit int) ([]*Run, error) {
	return s.list(`
		SELECT id, path, sha256, dialect, passed, events, draws, repaints,
		       artists, pixels, violations, parse_errors, created_at
		FROM runs
		WHERE path = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, path, limit)
}

func (s *Store) list(query string, args ...any) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID, &run.Path, &run.SHA256, &run.Dialect, &run.Passed, &run.Events,
			&run.Draws, &run.Repaints, &run.Artists, &run.Pixels, &run.Violations,
			&run.ParseErrors, &run.CreatedAt,
		)
		if err != nil {
			continue
		}
		out = append(out, run)
	}

	return out, rows.Err()
}

// LastBySHA returns the most recent run of a log with the given digest,
// or nil when the content has never been analyzed.
func (s *Store) LastBySHA(sha string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &Run{}
	err := s.db.QueryRow(`
		SELECT id, path, sha256, dialect, passed, events, draws, repaints,
		       artists, pixels, violations, parse_errors, created_at
		FROM runs
		WHERE sha256 = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, sha).Scan(
		&run.ID, &run.Path, &run.SHA256, &run.Dialect, &run.Passed, &run.Events,
		&run.Draws, &run.Repaints, &run.Artists, &run.Pixels, &run.Violations,
		&run.ParseErrors, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// Cleanup removes runs older than the retention period.
func (s *Store) Cleanup(retention time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention)
	result, err := s.db.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Stats returns history statistics.
func (s *Store) Stats() (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var total, passed, failed int64
	s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&total)
	s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE passed`).Scan(&passed)
	s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE NOT passed`).Scan(&failed)

	stats["total_runs"] = total
	stats["passed_runs"] = passed
	stats["failed_runs"] = failed

	var distinctLogs int64
	s.db.QueryRow(`SELECT COUNT(DISTINCT sha256) FROM runs`).Scan(&distinctLogs)
	stats["distinct_logs"] = distinctLogs

	var totalEvents int64
	s.db.QueryRow(`SELECT COALESCE(SUM(events), 0) FROM runs`).Scan(&totalEvents)
	stats["total_events"] = totalEvents

	return stats, nil
}
