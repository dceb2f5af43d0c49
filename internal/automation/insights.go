package automation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// Predictive alert kinds, derived straight from the asset directory without
// going through the signal pipeline.
const (
	AlertWarrantyExpired  = "warranty_expired"
	AlertWarrantyExpiring = "warranty_expiring"
	AlertAgingHardware    = "aging_hardware"
)

const warrantyLookahead = 30 * 24 * time.Hour

// LocationRiskInsight aggregates the latest risk scores for one location.
type LocationRiskInsight struct {
	LocationID   int64                   `json:"location_id"`
	AverageScore float64                 `json:"average_score"`
	SignalCount  int                     `json:"signal_count"`
	LevelCounts  map[models.Severity]int `json:"level_counts"`
}

// PredictiveAlert flags an asset that is likely to generate signals soon.
type PredictiveAlert struct {
	AssetID    string          `json:"asset_id"`
	LocationID int64           `json:"location_id"`
	Kind       string          `json:"kind"`
	Severity   models.Severity `json:"severity"`
	Message    string          `json:"message"`
}

// InsightsService derives read-only views: risk aggregated by location and
// warranty/age-based predictive alerts.
type InsightsService struct {
	scores RiskScoreStore
	assets AssetDirectory
	logger *zap.Logger
	now    func() time.Time
}

// NewInsightsService creates an insights service.
func NewInsightsService(scores RiskScoreStore, assets AssetDirectory, logger *zap.Logger) *InsightsService {
	return &InsightsService{scores: scores, assets: assets, logger: logger, now: time.Now}
}

// RiskByLocation aggregates the latest score per signal into per-location
// averages and level counts, ordered by location id.
func (s *InsightsService) RiskByLocation(ctx context.Context) ([]*LocationRiskInsight, error) {
	latest, err := s.scores.ListLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list latest scores: %v", ErrPersistence, err)
	}

	byLocation := make(map[int64]*LocationRiskInsight)
	totals := make(map[int64]int)
	for _, score := range latest {
		insight, ok := byLocation[score.LocationID]
		if !ok {
			insight = &LocationRiskInsight{
				LocationID:  score.LocationID,
				LevelCounts: make(map[models.Severity]int),
			}
			byLocation[score.LocationID] = insight
		}
		insight.SignalCount++
		insight.LevelCounts[score.Level]++
		totals[score.LocationID] += score.Score
	}

	insights := make([]*LocationRiskInsight, 0, len(byLocation))
	for locationID, insight := range byLocation {
		insight.AverageScore = float64(totals[locationID]) / float64(insight.SignalCount)
		insights = append(insights, insight)
	}
	sort.Slice(insights, func(i, j int) bool {
		return insights[i].LocationID < insights[j].LocationID
	})
	return insights, nil
}

// PredictiveAlerts derives warranty and age alerts for assets in scope.
func (s *InsightsService) PredictiveAlerts(ctx context.Context, scopeLocationID *int64) ([]*PredictiveAlert, error) {
	assets, err := s.assets.List(ctx, scopeLocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %v", ErrPersistence, err)
	}

	now := s.now()
	var alerts []*PredictiveAlert
	for _, asset := range assets {
		if asset.WarrantyExpiry != nil {
			switch {
			case asset.WarrantyExpiry.Before(now):
				alerts = append(alerts, &PredictiveAlert{
					AssetID:    asset.ID,
					LocationID: asset.LocationID,
					Kind:       AlertWarrantyExpired,
					Severity:   models.SeverityHigh,
					Message:    fmt.Sprintf("Warranty for %s expired on %s", asset.Name, asset.WarrantyExpiry.Format("2006-01-02")),
				})
			case asset.WarrantyExpiry.Before(now.Add(warrantyLookahead)):
				alerts = append(alerts, &PredictiveAlert{
					AssetID:    asset.ID,
					LocationID: asset.LocationID,
					Kind:       AlertWarrantyExpiring,
					Severity:   models.SeverityMedium,
					Message:    fmt.Sprintf("Warranty for %s expires on %s", asset.Name, asset.WarrantyExpiry.Format("2006-01-02")),
				})
			}
		}
		if asset.AgeYears(now) > agedAssetYears {
			alerts = append(alerts, &PredictiveAlert{
				AssetID:    asset.ID,
				LocationID: asset.LocationID,
				Kind:       AlertAgingHardware,
				Severity:   models.SeverityMedium,
				Message:    fmt.Sprintf("%s is over %d years old and due for replacement review", asset.Name, agedAssetYears),
			})
		}
	}
	return alerts, nil
}
