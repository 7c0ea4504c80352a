// Package runlog keeps a persistent history of manufacturing runs: one row
// per generated hot-wire program or nest layout. The log answers which
// programs were produced, from which sections, with which kerf and feed,
// without re-reading output files.
package runlog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run kinds.
const (
	KindHotWire = "hotwire"
	KindNest    = "nest"
)

// Run is one recorded manufacturing run.
type Run struct {
	RunID     string
	Kind      string
	CreatedAt time.Time

	// Hot-wire fields
	Material string
	Kerf     float64
	BaseFeed float64
	Stations int

	// Nesting fields
	Parts      int
	SheetsUsed int

	OutputPath string
	Notes      string
}

// Store is a thin wrapper over the run-log database.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the run-log database at path and applies
// any pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: migration setup: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("runlog: migrate up: %w", err)
	}

	return &Store{db}, nil
}

// Record inserts a run. RunID must be set by the caller (a UUID).
func (s *Store) Record(r Run) error {
	if r.RunID == "" {
		return fmt.Errorf("runlog: record: empty run id")
	}
	_, err := s.Exec(`
		INSERT INTO runs (run_id, kind, material, kerf, base_feed, stations,
			parts, sheets_used, output_path, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Kind, r.Material, r.Kerf, r.BaseFeed, r.Stations,
		r.Parts, r.SheetsUsed, r.OutputPath, r.Notes)
	if err != nil {
		return fmt.Errorf("runlog: record run %s: %w", r.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	rows, err := s.Query(`
		SELECT run_id, kind, created_at, material, kerf, base_feed, stations,
			parts, sheets_used, output_path, notes
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Kind, &r.CreatedAt, &r.Material,
			&r.Kerf, &r.BaseFeed, &r.Stations, &r.Parts, &r.SheetsUsed,
			&r.OutputPath, &r.Notes); err != nil {
			return nil, fmt.Errorf("runlog: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
