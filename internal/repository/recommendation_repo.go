package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// RecommendationRepository handles AI recommendation database operations.
type RecommendationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRecommendationRepository creates a new recommendation repository.
func NewRecommendationRepository(db *sql.DB, logger *zap.Logger) *RecommendationRepository {
	return &RecommendationRepository{db: db, logger: logger}
}

// Create inserts a new recommendation and fills in its id.
func (r *RecommendationRepository) Create(ctx context.Context, rec *models.AIRecommendation) error {
	query := `
		INSERT INTO ai_recommendations (
			run_id, target_type, target_id, title, description, priority,
			confidence, status, model, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.RunID,
		rec.TargetType,
		rec.TargetID,
		rec.Title,
		rec.Description,
		rec.Priority,
		rec.Confidence,
		rec.Status,
		rec.Model,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create recommendation", zap.Int64("target_id", rec.TargetID), zap.Error(err))
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// UpdateStatus updates a recommendation's review status.
func (r *RecommendationRepository) UpdateStatus(ctx context.Context, id int64, status models.RecommendationStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ai_recommendations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		r.logger.Error("Failed to update recommendation status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update recommendation status: %w", err)
	}
	return nil
}
