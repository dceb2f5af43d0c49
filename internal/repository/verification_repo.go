package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// VerificationRepository handles backup verification record database
// operations. The table is append-only.
type VerificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVerificationRepository creates a new verification repository.
func NewVerificationRepository(db *sql.DB, logger *zap.Logger) *VerificationRepository {
	return &VerificationRepository{db: db, logger: logger}
}

// Create inserts a new verification record and fills in its id.
func (r *VerificationRepository) Create(ctx context.Context, record *models.BackupVerificationRecord) error {
	query := `
		INSERT INTO backup_verifications (
			asset_id, method, status, checks_performed, issues_found,
			health_score, verified_at, next_verification_due
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.AssetID,
		record.Method,
		record.Status,
		record.ChecksPerformed,
		record.IssuesFound,
		record.HealthScore,
		record.VerifiedAt,
		record.NextVerificationDue,
	)
	if err != nil {
		r.logger.Error("Failed to create verification record", zap.String("asset_id", record.AssetID), zap.Error(err))
		return fmt.Errorf("failed to create verification record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	record.ID = id
	return nil
}

// latestPerAsset selects the newest record per asset.
const latestPerAsset = `
	SELECT bv.id, bv.asset_id, bv.method, bv.status, bv.checks_performed,
		bv.issues_found, bv.health_score, bv.verified_at,
		bv.next_verification_due
	FROM backup_verifications bv
	INNER JOIN (
		SELECT asset_id, MAX(id) AS max_id
		FROM backup_verifications
		GROUP BY asset_id
	) latest ON bv.id = latest.max_id
`

// ListDue returns the latest record per asset whose next verification is
// due at or before asOf.
func (r *VerificationRepository) ListDue(ctx context.Context, asOf time.Time) ([]*models.BackupVerificationRecord, error) {
	query := latestPerAsset + ` WHERE bv.next_verification_due <= ? ORDER BY bv.next_verification_due ASC`

	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		r.logger.Error("Failed to list due verifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list due verifications: %w", err)
	}
	defer rows.Close()
	return scanVerifications(rows)
}

// ListByAsset returns all verification passes for one asset, newest first.
func (r *VerificationRepository) ListByAsset(ctx context.Context, assetID string) ([]*models.BackupVerificationRecord, error) {
	query := `
		SELECT id, asset_id, method, status, checks_performed, issues_found,
			health_score, verified_at, next_verification_due
		FROM backup_verifications
		WHERE asset_id = ?
		ORDER BY verified_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		r.logger.Error("Failed to list verifications by asset", zap.String("asset_id", assetID), zap.Error(err))
		return nil, fmt.Errorf("failed to list verifications by asset: %w", err)
	}
	defer rows.Close()
	return scanVerifications(rows)
}

// HealthCounts returns distinct-asset counts keyed by each asset's latest
// verification status.
func (r *VerificationRepository) HealthCounts(ctx context.Context) (map[models.VerificationStatus]int, error) {
	query := `
		SELECT bv.status, COUNT(*)
		FROM backup_verifications bv
		INNER JOIN (
			SELECT asset_id, MAX(id) AS max_id
			FROM backup_verifications
			GROUP BY asset_id
		) latest ON bv.id = latest.max_id
		GROUP BY bv.status
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get health counts", zap.Error(err))
		return nil, fmt.Errorf("failed to get health counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.VerificationStatus]int)
	for rows.Next() {
		var status models.VerificationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan health count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanVerifications(rows *sql.Rows) ([]*models.BackupVerificationRecord, error) {
	var records []*models.BackupVerificationRecord
	for rows.Next() {
		var record models.BackupVerificationRecord
		var issues sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.AssetID,
			&record.Method,
			&record.Status,
			&record.ChecksPerformed,
			&issues,
			&record.HealthScore,
			&record.VerifiedAt,
			&record.NextVerificationDue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification record: %w", err)
		}
		if issues.Valid {
			record.IssuesFound = &issues.String
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
