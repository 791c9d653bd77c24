// Package store persists experiment runs and their sweeps in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("store: run not found")

// Run is the summary of one experiment run.
type Run struct {
	ID        string
	Seed      int64
	NeedleLen float64
	Spacing   float64
	Trials    int
	Crossings int
	Estimate  float64 // NaN when undefined
	CreatedAt time.Time
}

// SweepPoint is one independent run of a sweep.
type SweepPoint struct {
	N         int
	Seed      int64
	Crossings int
	Estimate  float64 // NaN when undefined
}

// Store wraps the SQLite database.
type Store struct {
	*sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{DB: db, now: time.Now}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations up to the latest version.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// Closing m would close the shared connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version and dirty state.
func (s *Store) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrateLogger routes migration messages to slog.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	slog.Debug("migrate", "msg", fmt.Sprintf(format, v...))
}

func (migrateLogger) Verbose() bool {
	return false
}

// SaveRun inserts a run. An empty ID is replaced by a new UUID and a zero
// CreatedAt by the current time; the stored run is returned.
func (s *Store) SaveRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	_, err := s.ExecContext(ctx, `
		INSERT INTO runs (run_id, seed, needle_len, spacing, trials, crossings, estimate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.NeedleLen, run.Spacing, run.Trials, run.Crossings,
		nullable(run.Estimate), run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return run, nil
}

// SaveSweep stores the sweep points of a run in one transaction.
func (s *Store) SaveSweep(ctx context.Context, runID string, points []SweepPoint) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sweep insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sweep_points (run_id, n, seed, crossings, estimate)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing sweep insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, runID, p.N, p.Seed, p.Crossings, nullable(p.Estimate)); err != nil {
			return fmt.Errorf("inserting sweep point n=%d: %w", p.N, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sweep: %w", err)
	}
	return nil
}

const runColumns = `run_id, seed, needle_len, spacing, trials, crossings, estimate, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r        Run
		estimate sql.NullFloat64
		created  int64
	)
	if err := row.Scan(&r.ID, &r.Seed, &r.NeedleLen, &r.Spacing, &r.Trials, &r.Crossings, &estimate, &created); err != nil {
		return Run{}, err
	}
	r.Estimate = fromNullable(estimate)
	r.CreatedAt = time.Unix(0, created)
	return r, nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SweepPoints returns the sweep of a run ordered by sample size.
func (s *Store) SweepPoints(ctx context.Context, runID string) ([]SweepPoint, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT n, seed, crossings, estimate FROM sweep_points
		WHERE run_id = ? ORDER BY n`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading sweep of %s: %w", runID, err)
	}
	defer rows.Close()

	var points []SweepPoint
	for rows.Next() {
		var (
			p        SweepPoint
			estimate sql.NullFloat64
		)
		if err := rows.Scan(&p.N, &p.Seed, &p.Crossings, &estimate); err != nil {
			return nil, fmt.Errorf("scanning sweep point: %w", err)
		}
		p.Estimate = fromNullable(estimate)
		points = append(points, p)
	}
	return points, rows.Err()
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
