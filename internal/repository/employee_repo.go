package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// EmployeeRepository is the employee directory backed by sqlite.
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{db: db, logger: logger}
}

// Create inserts a new employee and fills in their id.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	query := `
		INSERT INTO employees (name, email, role, location_id)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		employee.Name,
		employee.Email,
		employee.Role,
		employee.LocationID,
	)
	if err != nil {
		r.logger.Error("Failed to create employee", zap.String("email", employee.Email), zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	employee.ID = id
	return nil
}

// List returns employees, optionally filtered by location, in insertion
// order. Assignment tie-breaking depends on this ordering being stable.
func (r *EmployeeRepository) List(ctx context.Context, locationID *int64) ([]*models.Employee, error) {
	query := `
		SELECT id, name, email, role, location_id, created_at
		FROM employees
	`
	var args []interface{}
	if locationID != nil {
		query += ` WHERE location_id = ?`
		args = append(args, *locationID)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var employee models.Employee
		err := rows.Scan(
			&employee.ID,
			&employee.Name,
			&employee.Email,
			&employee.Role,
			&employee.LocationID,
			&employee.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, &employee)
	}
	return employees, rows.Err()
}
