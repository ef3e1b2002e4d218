package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/snow-ghost/dosage/core"
)

// SQLiteStore persists runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		generations INTEGER NOT NULL,
		params TEXT NOT NULL,
		dose_a REAL NOT NULL,
		dose_b REAL NOT NULL,
		dose_c REAL NOT NULL,
		best_fitness REAL NOT NULL,
		effectiveness REAL NOT NULL,
		side_effects REAL NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	`

	_, err := s.db.Exec(query)
	return err
}

const selectColumns = `id, created_at, seed, generations, params, dose_a, dose_b, dose_c,
	best_fitness, effectiveness, side_effects, duration_ns`

// Save records a run, assigning an ID when missing.
func (s *SQLiteStore) Save(ctx context.Context, rec core.RunRecord) error {
	rec = prepare(rec)
	params := string(rec.Params)
	if params == "" {
		params = "{}"
	}

	query := `
	INSERT INTO runs (` + selectColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.CreatedAt.UnixNano(),
		rec.Seed,
		rec.Generations,
		params,
		rec.Best[0],
		rec.Best[1],
		rec.Best[2],
		rec.BestFitness,
		rec.Effectiveness,
		rec.SideEffects,
		int64(rec.Duration),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Get returns the run with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (core.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// List returns up to limit runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]core.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []core.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (core.RunRecord, error) {
	var (
		rec        core.RunRecord
		createdAt  int64
		durationNs int64
		params     string
	)
	err := sc.Scan(
		&rec.ID,
		&createdAt,
		&rec.Seed,
		&rec.Generations,
		&params,
		&rec.Best[0],
		&rec.Best[1],
		&rec.Best[2],
		&rec.BestFitness,
		&rec.Effectiveness,
		&rec.SideEffects,
		&durationNs,
	)
	if err != nil {
		return core.RunRecord{}, err
	}
	rec.CreatedAt = time.Unix(0, createdAt)
	rec.Duration = time.Duration(durationNs)
	rec.Params = []byte(params)
	return rec, nil
}
