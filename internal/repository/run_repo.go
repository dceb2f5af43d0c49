package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// RunRepository handles automation run database operations.
type RunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

// Create inserts a new run row.
func (r *RunRepository) Create(ctx context.Context, run *models.AutomationRun) error {
	query := `
		INSERT INTO automation_runs (
			id, run_type, scope_location_id, status, started_at,
			signals_scored, recommendations_created, tasks_created,
			tasks_assigned, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.RunType,
		run.ScopeLocationID,
		run.Status,
		run.StartedAt,
		run.SignalsScored,
		run.RecommendationsCreated,
		run.TasksCreated,
		run.TasksAssigned,
		run.Error,
	)
	if err != nil {
		r.logger.Error("Failed to create run", zap.String("run_id", run.ID), zap.Error(err))
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Update writes the run's status, completion time and summary counters.
func (r *RunRepository) Update(ctx context.Context, run *models.AutomationRun) error {
	query := `
		UPDATE automation_runs
		SET status = ?, completed_at = ?, signals_scored = ?,
			recommendations_created = ?, tasks_created = ?,
			tasks_assigned = ?, error = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.CompletedAt,
		run.SignalsScored,
		run.RecommendationsCreated,
		run.TasksCreated,
		run.TasksAssigned,
		run.Error,
		run.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update run", zap.String("run_id", run.ID), zap.Error(err))
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by id, or nil when absent.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.AutomationRun, error) {
	query := `
		SELECT id, run_type, scope_location_id, status, started_at,
			completed_at, signals_scored, recommendations_created,
			tasks_created, tasks_assigned, error
		FROM automation_runs
		WHERE id = ?
	`

	var run models.AutomationRun
	var scopeLocationID sql.NullInt64
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.RunType,
		&scopeLocationID,
		&run.Status,
		&run.StartedAt,
		&completedAt,
		&run.SignalsScored,
		&run.RecommendationsCreated,
		&run.TasksCreated,
		&run.TasksAssigned,
		&run.Error,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get run", zap.String("run_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if scopeLocationID.Valid {
		run.ScopeLocationID = &scopeLocationID.Int64
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return &run, nil
}
