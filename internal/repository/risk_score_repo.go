package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// RiskScoreRepository handles risk score database operations. The table is
// append-only: every run writes a fresh row per signal.
type RiskScoreRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRiskScoreRepository creates a new risk score repository.
func NewRiskScoreRepository(db *sql.DB, logger *zap.Logger) *RiskScoreRepository {
	return &RiskScoreRepository{db: db, logger: logger}
}

// Create inserts a new risk score and fills in its id.
func (r *RiskScoreRepository) Create(ctx context.Context, score *models.RiskScore) error {
	query := `
		INSERT INTO risk_scores (
			run_id, signal_id, asset_id, location_id, score, risk_level,
			contributing_factors, confidence, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		score.RunID,
		score.SignalID,
		score.AssetID,
		score.LocationID,
		score.Score,
		score.Level,
		score.ContributingFactors,
		score.Confidence,
		score.CalculatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create risk score", zap.Int64("signal_id", score.SignalID), zap.Error(err))
		return fmt.Errorf("failed to create risk score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	score.ID = id
	return nil
}

// ListLatest returns the most recent score row per signal.
func (r *RiskScoreRepository) ListLatest(ctx context.Context) ([]*models.RiskScore, error) {
	query := `
		SELECT rs.id, rs.run_id, rs.signal_id, rs.asset_id, rs.location_id,
			rs.score, rs.risk_level, rs.contributing_factors, rs.confidence,
			rs.calculated_at
		FROM risk_scores rs
		INNER JOIN (
			SELECT signal_id, MAX(id) AS max_id
			FROM risk_scores
			GROUP BY signal_id
		) latest ON rs.id = latest.max_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list latest risk scores", zap.Error(err))
		return nil, fmt.Errorf("failed to list latest risk scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.RiskScore
	for rows.Next() {
		var score models.RiskScore
		var assetID sql.NullString

		err := rows.Scan(
			&score.ID,
			&score.RunID,
			&score.SignalID,
			&assetID,
			&score.LocationID,
			&score.Score,
			&score.Level,
			&score.ContributingFactors,
			&score.Confidence,
			&score.CalculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk score: %w", err)
		}
		if assetID.Valid {
			score.AssetID = &assetID.String
		}
		scores = append(scores, &score)
	}
	return scores, rows.Err()
}
