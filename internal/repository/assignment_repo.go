package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// AssignmentRepository handles assignment queue database operations.
type AssignmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sql.DB, logger *zap.Logger) *AssignmentRepository {
	return &AssignmentRepository{db: db, logger: logger}
}

// Create inserts a new assignment queue entry and fills in its id.
func (r *AssignmentRepository) Create(ctx context.Context, entry *models.AssignmentQueueEntry) error {
	query := `
		INSERT INTO assignment_queue (
			task_id, assigned_to, location_id, assigned_at, status,
			reason, workload_score
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.TaskID,
		entry.AssignedTo,
		entry.LocationID,
		entry.AssignedAt,
		entry.Status,
		entry.Reason,
		entry.WorkloadScore,
	)
	if err != nil {
		r.logger.Error("Failed to create assignment entry", zap.Int64("task_id", entry.TaskID), zap.Error(err))
		return fmt.Errorf("failed to create assignment entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}
