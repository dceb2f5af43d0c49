package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jordanwu/asset-compliance/internal/models"
)

func TestRiskByLocationAggregates(t *testing.T) {
	scores := &memScoreStore{scores: []*models.RiskScore{
		{ID: 1, LocationID: 7, Score: 100, Level: models.SeverityCritical},
		{ID: 2, LocationID: 7, Score: 40, Level: models.SeverityMedium},
		{ID: 3, LocationID: 3, Score: 20, Level: models.SeverityLow},
	}}
	svc := NewInsightsService(scores, &memAssetDirectory{}, zap.NewNop())

	insights, err := svc.RiskByLocation(context.Background())

	require.NoError(t, err)
	require.Len(t, insights, 2)

	// Ordered by location id.
	assert.Equal(t, int64(3), insights[0].LocationID)
	assert.Equal(t, 1, insights[0].SignalCount)
	assert.Equal(t, 20.0, insights[0].AverageScore)

	assert.Equal(t, int64(7), insights[1].LocationID)
	assert.Equal(t, 2, insights[1].SignalCount)
	assert.Equal(t, 70.0, insights[1].AverageScore)
	assert.Equal(t, 1, insights[1].LevelCounts[models.SeverityCritical])
	assert.Equal(t, 1, insights[1].LevelCounts[models.SeverityMedium])
}

func TestRiskByLocationEmpty(t *testing.T) {
	svc := NewInsightsService(&memScoreStore{}, &memAssetDirectory{}, zap.NewNop())

	insights, err := svc.RiskByLocation(context.Background())

	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestPredictiveAlerts(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expired := now.AddDate(0, -2, 0)
	expiringSoon := now.AddDate(0, 0, 10)
	farOut := now.AddDate(1, 0, 0)
	oldPurchase := now.AddDate(-7, 0, 0)
	recentPurchase := now.AddDate(-1, 0, 0)

	assets := &memAssetDirectory{assets: []*models.Asset{
		{ID: "A1", Name: "File server", LocationID: 7, WarrantyExpiry: &expired, PurchaseDate: &recentPurchase},
		{ID: "A2", Name: "Switch", LocationID: 7, WarrantyExpiry: &expiringSoon, PurchaseDate: &recentPurchase},
		{ID: "A3", Name: "Old laptop", LocationID: 3, WarrantyExpiry: &farOut, PurchaseDate: &oldPurchase},
		{ID: "A4", Name: "New laptop", LocationID: 3, PurchaseDate: &recentPurchase},
	}}
	svc := NewInsightsService(&memScoreStore{}, assets, zap.NewNop())
	svc.now = func() time.Time { return now }

	alerts, err := svc.PredictiveAlerts(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, alerts, 3)

	byAsset := map[string]*PredictiveAlert{}
	for _, a := range alerts {
		byAsset[a.AssetID] = a
	}
	require.Contains(t, byAsset, "A1")
	assert.Equal(t, AlertWarrantyExpired, byAsset["A1"].Kind)
	assert.Equal(t, models.SeverityHigh, byAsset["A1"].Severity)

	require.Contains(t, byAsset, "A2")
	assert.Equal(t, AlertWarrantyExpiring, byAsset["A2"].Kind)
	assert.Equal(t, models.SeverityMedium, byAsset["A2"].Severity)

	require.Contains(t, byAsset, "A3")
	assert.Equal(t, AlertAgingHardware, byAsset["A3"].Kind)
}

func TestPredictiveAlertsScoped(t *testing.T) {
	now := time.Now()
	expired := now.AddDate(0, -1, 0)
	assets := &memAssetDirectory{assets: []*models.Asset{
		{ID: "A1", Name: "Server", LocationID: 7, WarrantyExpiry: &expired},
		{ID: "B1", Name: "Server", LocationID: 3, WarrantyExpiry: &expired},
	}}
	svc := NewInsightsService(&memScoreStore{}, assets, zap.NewNop())

	scope := int64(7)
	alerts, err := svc.PredictiveAlerts(context.Background(), &scope)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "A1", alerts[0].AssetID)
}
