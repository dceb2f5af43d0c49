package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// AssetRepository is the asset directory backed by sqlite.
type AssetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(db *sql.DB, logger *zap.Logger) *AssetRepository {
	return &AssetRepository{db: db, logger: logger}
}

const assetColumns = `id, name, type, location_id, purchase_date, warranty_expiry, status, created_at`

// Create inserts a new asset.
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, name, type, location_id, purchase_date, warranty_expiry, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		asset.Type,
		asset.LocationID,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create asset", zap.String("asset_id", asset.ID), zap.Error(err))
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// List returns assets, optionally filtered by location.
func (r *AssetRepository) List(ctx context.Context, locationID *int64) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	var args []interface{}
	if locationID != nil {
		query += ` WHERE location_id = ?`
		args = append(args, *locationID)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list assets", zap.Error(err))
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// GetByID retrieves an asset by its inventory tag, or nil when absent.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ?`

	var asset models.Asset
	var purchaseDate, warrantyExpiry sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Type,
		&asset.LocationID,
		&purchaseDate,
		&warrantyExpiry,
		&asset.Status,
		&asset.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get asset", zap.String("asset_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	if purchaseDate.Valid {
		asset.PurchaseDate = &purchaseDate.Time
	}
	if warrantyExpiry.Valid {
		asset.WarrantyExpiry = &warrantyExpiry.Time
	}
	return &asset, nil
}

func scanAsset(rows *sql.Rows) (*models.Asset, error) {
	var asset models.Asset
	var purchaseDate, warrantyExpiry sql.NullTime

	err := rows.Scan(
		&asset.ID,
		&asset.Name,
		&asset.Type,
		&asset.LocationID,
		&purchaseDate,
		&warrantyExpiry,
		&asset.Status,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	if purchaseDate.Valid {
		asset.PurchaseDate = &purchaseDate.Time
	}
	if warrantyExpiry.Valid {
		asset.WarrantyExpiry = &warrantyExpiry.Time
	}
	return &asset, nil
}
