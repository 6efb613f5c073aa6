package sweep

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists sweep Results to a SQLite database, schema-managed
// by golang-migrate exactly as the teacher's internal/db.DB does for
// its own tables.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if absent) the SQLite database at path and
// migrates it to the latest schema version.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sweep: open %q: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sweep: enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sweep: sub-filesystem for migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("sweep: iofs source driver: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sweep: sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sweep: new migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sweep: migrate up: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) { log.Printf("[sweep migrate] "+format, v...) }
func (l *migrateLogger) Verbose() bool                          { return false }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult inserts one variant's scored outcome.
func (s *Store) SaveResult(r Result) error {
	_, err := s.db.Exec(
		`INSERT INTO sweep_results (run_id, variant, n_tracks, total_found_hits, total_chi2, score, created_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Variant, r.Metrics.NTracks, r.Metrics.TotalFoundHits, r.Metrics.TotalChi2, r.Metrics.Score, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sweep: save result for variant %q: %w", r.Variant, err)
	}
	return nil
}

// SaveResults inserts every result, in order, stopping at the first
// failure.
func (s *Store) SaveResults(results []Result) error {
	for _, r := range results {
		if err := s.SaveResult(r); err != nil {
			return err
		}
	}
	return nil
}

// StoredResult is one persisted row, with its autoincrement id.
type StoredResult struct {
	ID     int64
	Result Result
}

// ListByRun returns every row persisted under runID, oldest first.
func (s *Store) ListByRun(runID string) ([]StoredResult, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, variant, n_tracks, total_found_hits, total_chi2, score
		 FROM sweep_results WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("sweep: list run %q: %w", runID, err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var sr StoredResult
		if err := rows.Scan(&sr.ID, &sr.Result.RunID, &sr.Result.Variant,
			&sr.Result.Metrics.NTracks, &sr.Result.Metrics.TotalFoundHits,
			&sr.Result.Metrics.TotalChi2, &sr.Result.Metrics.Score); err != nil {
			return nil, fmt.Errorf("sweep: scan row: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
