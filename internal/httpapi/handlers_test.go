package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jordanwu/asset-compliance/internal/automation"
	"github.com/jordanwu/asset-compliance/internal/backup"
	"github.com/jordanwu/asset-compliance/internal/models"
)

type fakeAutomationService struct {
	run      *models.AutomationRun
	runErr   error
	getRun   *models.AutomationRun
	getErr   error
	gotScope *int64
}

func (f *fakeAutomationService) Run(ctx context.Context, scopeLocationID *int64) (*models.AutomationRun, error) {
	f.gotScope = scopeLocationID
	return f.run, f.runErr
}

func (f *fakeAutomationService) GetRun(ctx context.Context, id string) (*models.AutomationRun, error) {
	return f.getRun, f.getErr
}

type fakeInsightsService struct {
	insights []*automation.LocationRiskInsight
	alerts   []*automation.PredictiveAlert
	err      error
}

func (f *fakeInsightsService) RiskByLocation(ctx context.Context) ([]*automation.LocationRiskInsight, error) {
	return f.insights, f.err
}

func (f *fakeInsightsService) PredictiveAlerts(ctx context.Context, scopeLocationID *int64) ([]*automation.PredictiveAlert, error) {
	return f.alerts, f.err
}

type fakeBackupService struct {
	summary *backup.VerificationSummary
	health  *backup.HealthSummary
	records []*models.BackupVerificationRecord
	err     error
}

func (f *fakeBackupService) RunVerification(ctx context.Context, scopeLocationID *int64) (*backup.VerificationSummary, error) {
	return f.summary, f.err
}

func (f *fakeBackupService) DueVerifications(ctx context.Context) ([]*models.BackupVerificationRecord, error) {
	return f.records, f.err
}

func (f *fakeBackupService) AssetHistory(ctx context.Context, assetID string) ([]*models.BackupVerificationRecord, error) {
	return f.records, f.err
}

func (f *fakeBackupService) HealthSummary(ctx context.Context) (*backup.HealthSummary, error) {
	return f.health, f.err
}

func (f *fakeBackupService) TriggerManualBackup(ctx context.Context, assetID string) (*backup.VerificationSummary, error) {
	return f.summary, f.err
}

func newTestRouter(auto *fakeAutomationService, insights *fakeInsightsService, backups *fakeBackupService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandlers(auto, insights, backups, zap.NewNop()).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeAutomationService{}, &fakeInsightsService{}, &fakeBackupService{})

	w, body := doRequest(t, router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
}

func TestTriggerRunReturnsTerminalRun(t *testing.T) {
	auto := &fakeAutomationService{
		run: &models.AutomationRun{ID: "run-1", Status: models.RunStatusCompleted},
	}
	router := newTestRouter(auto, &fakeInsightsService{}, &fakeBackupService{})

	w, body := doRequest(t, router, http.MethodPost, "/api/v1/automation/runs")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Nil(t, auto.gotScope)
}

func TestTriggerRunScopedByQueryParam(t *testing.T) {
	auto := &fakeAutomationService{
		run: &models.AutomationRun{ID: "run-1", Status: models.RunStatusCompleted},
	}
	router := newTestRouter(auto, &fakeInsightsService{}, &fakeBackupService{})

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/automation/runs?location_id=7")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, auto.gotScope)
	assert.Equal(t, int64(7), *auto.gotScope)
}

func TestTriggerRunBadScope(t *testing.T) {
	router := newTestRouter(&fakeAutomationService{}, &fakeInsightsService{}, &fakeBackupService{})

	w, body := doRequest(t, router, http.MethodPost, "/api/v1/automation/runs?location_id=hq")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)
}

func TestTriggerRunFailureStillReturnsRunRow(t *testing.T) {
	auto := &fakeAutomationService{
		run:    &models.AutomationRun{ID: "run-1", Status: models.RunStatusFailed, Error: "disk full"},
		runErr: fmt.Errorf("%w: persist risk score: disk full", automation.ErrPersistence),
	}
	router := newTestRouter(auto, &fakeInsightsService{}, &fakeBackupService{})

	w, body := doRequest(t, router, http.MethodPost, "/api/v1/automation/runs")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, body.Success)
	assert.NotNil(t, body.Data)
	assert.NotEmpty(t, body.Error)
}

func TestGetRunNotFound(t *testing.T) {
	auto := &fakeAutomationService{
		getErr: fmt.Errorf("%w: run nope", automation.ErrNotFound),
	}
	router := newTestRouter(auto, &fakeInsightsService{}, &fakeBackupService{})

	w, body := doRequest(t, router, http.MethodGet, "/api/v1/automation/runs/nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, body.Success)
}

func TestRiskInsights(t *testing.T) {
	insights := &fakeInsightsService{
		insights: []*automation.LocationRiskInsight{{LocationID: 7, AverageScore: 70, SignalCount: 2}},
	}
	router := newTestRouter(&fakeAutomationService{}, insights, &fakeBackupService{})

	w, body := doRequest(t, router, http.MethodGet, "/api/v1/risk/insights")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
}

func TestManualBackupErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"unknown asset", fmt.Errorf("%w: asset X", automation.ErrNotFound), http.StatusNotFound},
		{"ineligible asset", fmt.Errorf("%w: asset X", automation.ErrValidation), http.StatusBadRequest},
		{"agent unreachable", fmt.Errorf("%w: asset X", automation.ErrExternalService), http.StatusBadGateway},
		{"storage fault", fmt.Errorf("%w: asset X", automation.ErrPersistence), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backups := &fakeBackupService{err: tt.err}
			router := newTestRouter(&fakeAutomationService{}, &fakeInsightsService{}, backups)

			w, body := doRequest(t, router, http.MethodPost, "/api/v1/backups/assets/X/run")

			assert.Equal(t, tt.expected, w.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestTriggerVerification(t *testing.T) {
	backups := &fakeBackupService{
		summary: &backup.VerificationSummary{AssetsChecked: 3, Passed: 2, Failed: 1},
	}
	router := newTestRouter(&fakeAutomationService{}, &fakeInsightsService{}, backups)

	w, body := doRequest(t, router, http.MethodPost, "/api/v1/backups/verify")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
}

func TestBackupHealth(t *testing.T) {
	backups := &fakeBackupService{
		health: &backup.HealthSummary{Passed: 5, Failed: 1, Total: 6},
	}
	router := newTestRouter(&fakeAutomationService{}, &fakeInsightsService{}, backups)

	w, body := doRequest(t, router, http.MethodGet, "/api/v1/backups/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
}
