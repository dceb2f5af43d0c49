package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// TaskRepository handles compliance task database operations.
type TaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// Create inserts a new task and fills in its id.
func (r *TaskRepository) Create(ctx context.Context, task *models.ComplianceTask) error {
	query := `
		INSERT INTO compliance_tasks (
			name, description, task_type, category, due_date, status,
			location_id, assigned_to, created_by, signal_id, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Name,
		task.Description,
		task.Type,
		task.Category,
		task.DueDate,
		task.Status,
		task.LocationID,
		task.AssignedTo,
		task.CreatedBy,
		task.SignalID,
		task.RunID,
	)
	if err != nil {
		r.logger.Error("Failed to create task", zap.String("name", task.Name), zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	return nil
}

// ListPending returns pending tasks, optionally filtered by location,
// oldest first.
func (r *TaskRepository) ListPending(ctx context.Context, locationID *int64) ([]*models.ComplianceTask, error) {
	query := `
		SELECT id, name, description, task_type, category, due_date, status,
			location_id, assigned_to, created_by, signal_id, run_id, created_at
		FROM compliance_tasks
		WHERE status = ?
	`
	args := []interface{}{models.TaskStatusPending}

	if locationID != nil {
		query += " AND location_id = ?"
		args = append(args, *locationID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list pending tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.ComplianceTask
	for rows.Next() {
		var task models.ComplianceTask
		var assignedTo sql.NullInt64
		var signalID sql.NullInt64
		var runID sql.NullString

		err := rows.Scan(
			&task.ID,
			&task.Name,
			&task.Description,
			&task.Type,
			&task.Category,
			&task.DueDate,
			&task.Status,
			&task.LocationID,
			&assignedTo,
			&task.CreatedBy,
			&signalID,
			&runID,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		if assignedTo.Valid {
			task.AssignedTo = &assignedTo.Int64
		}
		if signalID.Valid {
			task.SignalID = &signalID.Int64
		}
		if runID.Valid {
			task.RunID = &runID.String
		}
		tasks = append(tasks, &task)
	}
	return tasks, rows.Err()
}

// Assign patches a task's assignee.
func (r *TaskRepository) Assign(ctx context.Context, taskID, employeeID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE compliance_tasks SET assigned_to = ? WHERE id = ?`, employeeID, taskID)
	if err != nil {
		r.logger.Error("Failed to assign task", zap.Int64("task_id", taskID), zap.Error(err))
		return fmt.Errorf("failed to assign task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d not found", taskID)
	}
	return nil
}

// UpdateStatus moves a task through its lifecycle.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID int64, status models.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE compliance_tasks SET status = ? WHERE id = ?`, status, taskID)
	if err != nil {
		r.logger.Error("Failed to update task status", zap.Int64("task_id", taskID), zap.Error(err))
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}
