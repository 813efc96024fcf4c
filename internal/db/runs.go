package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/contact-harvester/internal/types"
)

// CreateRun creates a new harvest run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, source string, total int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO harvest_runs (id, source, total, status)
		 VALUES ($1, $2, $3, $4)`,
		id, source, total, types.RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// RecordRow stores the outcome for the company at position within a run
func (db *DB) RecordRow(ctx context.Context, runID uuid.UUID, position int, result types.CompanyResult) error {
	emails := result.Emails
	if emails == nil {
		emails = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO harvest_rows (run_id, position, company, outcome, emails, website, error, cached)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (run_id, position) DO UPDATE
		 SET company = $3, outcome = $4, emails = $5, website = $6, error = $7, cached = $8, created_at = NOW()`,
		runID, position, result.Company, string(result.Outcome), emails, result.Website, result.Error, result.Cached,
	)
	if err != nil {
		return fmt.Errorf("failed to record row %d: %w", position, err)
	}
	return nil
}

// CompleteRun marks a harvest run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE harvest_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil if it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, source, total, status, created_at, completed_at
		 FROM harvest_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Source, &run.Total, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, source, total, status, created_at, completed_at
		 FROM harvest_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Source, &run.Total, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRunRows returns a run's rows in input order
func (db *DB) ListRunRows(ctx context.Context, runID uuid.UUID) ([]RunRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, position, company, outcome, emails, website, error, cached, created_at
		 FROM harvest_rows WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run rows: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.RunID, &row.Position, &row.Company, &row.Outcome, &row.Emails,
			&row.Website, &row.Error, &row.Cached, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
