// Package history persists export-run records in a DuckDB file so the
// host application can list past reports.
package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// Store is a DuckDB-backed export-run log.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates (or opens) the history database in the given data directory.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "report_history.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id            VARCHAR PRIMARY KEY,
			created_at    TIMESTAMP NOT NULL,
			project_name  VARCHAR NOT NULL,
			format        VARCHAR NOT NULL,
			device_count  INTEGER NOT NULL,
			total_load    DOUBLE NOT NULL,
			worst_voltage DOUBLE NOT NULL,
			is_valid      BOOLEAN NOT NULL,
			output_path   VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one completed run.
func (s *Store) Record(run *models.ReportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, created_at, project_name, format, device_count, total_load, worst_voltage, is_valid, output_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.ProjectName, run.Format, run.DeviceCount,
		run.TotalLoad, run.WorstVoltage, run.IsValid, run.OutputPath)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent lists the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]*models.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, created_at, project_name, format, device_count, total_load, worst_voltage, is_valid, output_path
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.ReportRun, 0, limit)
	for rows.Next() {
		run := &models.ReportRun{}
		var created time.Time
		if err := rows.Scan(&run.ID, &created, &run.ProjectName, &run.Format, &run.DeviceCount,
			&run.TotalLoad, &run.WorstVoltage, &run.IsValid, &run.OutputPath); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.CreatedAt = created
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
