// Package runstore persists Production Run records to Postgres: the
// ambient state a submission needs to survive between being enqueued
// and a worker picking it up, and afterward to answer status polls.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/aaronmarkham/studioproducer/internal/models"
)

// Store wraps a Postgres connection pool for production-run
// persistence.
type Store struct {
	db *sql.DB
}

// New opens a connection pool against databaseURL (a postgres:// DSN)
// and verifies it with a ping.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new, queued production run.
func (s *Store) Create(ctx context.Context, run *models.ProductionRun) error {
	query := `
		INSERT INTO production_runs (run_id, concept, total_budget, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query, run.RunID, run.Concept, run.TotalBudget, run.Status).
		Scan(&run.CreatedAt, &run.UpdatedAt)
}

// Get fetches one run by ID.
func (s *Store) Get(ctx context.Context, runID string) (*models.ProductionRun, error) {
	query := `
		SELECT run_id, concept, total_budget, status, result, edl, error, created_at, updated_at
		FROM production_runs
		WHERE run_id = $1
	`

	run := &models.ProductionRun{}
	var resultJSON, edlJSON []byte
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID, &run.Concept, &run.TotalBudget, &run.Status,
		&resultJSON, &edlJSON, &run.Error, &run.CreatedAt, &run.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("production run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get production run: %w", err)
	}

	if len(resultJSON) > 0 {
		var result models.ProductionResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		run.Result = &result
	}
	if len(edlJSON) > 0 {
		var edl models.EDL
		if err := json.Unmarshal(edlJSON, &edl); err != nil {
			return nil, fmt.Errorf("failed to unmarshal edl: %w", err)
		}
		run.EDL = &edl
	}

	return run, nil
}

// UpdateStatus transitions a run's status, e.g. queued -> running.
func (s *Store) UpdateStatus(ctx context.Context, runID string, status models.RunStatus) error {
	query := `UPDATE production_runs SET status = $1, updated_at = NOW() WHERE run_id = $2`
	_, err := s.db.ExecContext(ctx, query, status, runID)
	return err
}

// Complete records a successful run's final result and EDL.
func (s *Store) Complete(ctx context.Context, runID string, result models.ProductionResult, edl *models.EDL) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	var edlJSON []byte
	if edl != nil {
		edlJSON, err = json.Marshal(edl)
		if err != nil {
			return fmt.Errorf("failed to marshal edl: %w", err)
		}
	}

	query := `
		UPDATE production_runs
		SET status = $1, result = $2, edl = $3, updated_at = NOW()
		WHERE run_id = $4
	`
	_, err = s.db.ExecContext(ctx, query, models.RunStatusCompleted, resultJSON, edlJSON, runID)
	return err
}

// Fail records a run's terminal error.
func (s *Store) Fail(ctx context.Context, runID string, errMsg string) error {
	query := `
		UPDATE production_runs
		SET status = $1, error = $2, updated_at = NOW()
		WHERE run_id = $3
	`
	_, err := s.db.ExecContext(ctx, query, models.RunStatusFailed, errMsg, runID)
	return err
}

// List returns runs ordered by creation date (newest first), with an
// optional status filter and pagination.
func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]models.ProductionRun, error) {
	baseSelect := `
		SELECT run_id, concept, total_budget, status, error, created_at, updated_at
		FROM production_runs
	`

	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = s.db.QueryContext(ctx, baseSelect+` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, baseSelect+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list production runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ProductionRun
	for rows.Next() {
		var r models.ProductionRun
		if err := rows.Scan(&r.RunID, &r.Concept, &r.TotalBudget, &r.Status, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan production run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, nil
}
