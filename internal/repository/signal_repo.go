package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// SignalRepository handles signal database operations.
type SignalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSignalRepository creates a new signal repository.
func NewSignalRepository(db *sql.DB, logger *zap.Logger) *SignalRepository {
	return &SignalRepository{db: db, logger: logger}
}

// Create inserts a new signal and fills in its id.
func (r *SignalRepository) Create(ctx context.Context, signal *models.Signal) error {
	query := `
		INSERT INTO signals (
			asset_id, location_id, signal_type, severity, description,
			payload, status, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		signal.AssetID,
		signal.LocationID,
		signal.Type,
		signal.Severity,
		signal.Description,
		signal.Payload,
		signal.Status,
		signal.DetectedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create signal", zap.Error(err))
		return fmt.Errorf("failed to create signal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	signal.ID = id
	return nil
}

// ListActive returns active signals, optionally filtered by location and
// severity, oldest first.
func (r *SignalRepository) ListActive(ctx context.Context, locationID *int64, severity *models.Severity) ([]*models.Signal, error) {
	query := `
		SELECT id, asset_id, location_id, signal_type, severity, description,
			payload, status, detected_at, resolved_at
		FROM signals
		WHERE status = ?
	`
	args := []interface{}{models.SignalStatusActive}

	if locationID != nil {
		query += " AND location_id = ?"
		args = append(args, *locationID)
	}
	if severity != nil {
		query += " AND severity = ?"
		args = append(args, *severity)
	}
	query += " ORDER BY detected_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list active signals", zap.Error(err))
		return nil, fmt.Errorf("failed to list active signals: %w", err)
	}
	defer rows.Close()

	var signals []*models.Signal
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}
	return signals, rows.Err()
}

// Resolve marks a signal resolved.
func (r *SignalRepository) Resolve(ctx context.Context, id int64) error {
	query := `UPDATE signals SET status = ?, resolved_at = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query,
		models.SignalStatusResolved, time.Now(), id, models.SignalStatusActive)
	if err != nil {
		r.logger.Error("Failed to resolve signal", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to resolve signal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("signal %d not found or already resolved", id)
	}
	return nil
}

func scanSignal(rows *sql.Rows) (*models.Signal, error) {
	var signal models.Signal
	var assetID sql.NullString
	var payload sql.NullString
	var resolvedAt sql.NullTime

	err := rows.Scan(
		&signal.ID,
		&assetID,
		&signal.LocationID,
		&signal.Type,
		&signal.Severity,
		&signal.Description,
		&payload,
		&signal.Status,
		&signal.DetectedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan signal: %w", err)
	}

	if assetID.Valid {
		signal.AssetID = &assetID.String
	}
	if payload.Valid {
		signal.Payload = payload.String
	}
	if resolvedAt.Valid {
		signal.ResolvedAt = &resolvedAt.Time
	}
	return &signal, nil
}
