package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jordanwu/asset-compliance/internal/automation"
	"github.com/jordanwu/asset-compliance/internal/backup"
	"github.com/jordanwu/asset-compliance/internal/models"
)

// AutomationService triggers and inspects pipeline runs.
type AutomationService interface {
	Run(ctx context.Context, scopeLocationID *int64) (*models.AutomationRun, error)
	GetRun(ctx context.Context, id string) (*models.AutomationRun, error)
}

// InsightsService serves derived read-only views.
type InsightsService interface {
	RiskByLocation(ctx context.Context) ([]*automation.LocationRiskInsight, error)
	PredictiveAlerts(ctx context.Context, scopeLocationID *int64) ([]*automation.PredictiveAlert, error)
}

// BackupService drives and inspects backup verification.
type BackupService interface {
	RunVerification(ctx context.Context, scopeLocationID *int64) (*backup.VerificationSummary, error)
	DueVerifications(ctx context.Context) ([]*models.BackupVerificationRecord, error)
	AssetHistory(ctx context.Context, assetID string) ([]*models.BackupVerificationRecord, error)
	HealthSummary(ctx context.Context) (*backup.HealthSummary, error)
	TriggerManualBackup(ctx context.Context, assetID string) (*backup.VerificationSummary, error)
}

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Handlers contains all HTTP request handlers.
type Handlers struct {
	automation AutomationService
	insights   InsightsService
	backups    BackupService
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(automationSvc AutomationService, insights InsightsService, backups BackupService, logger *zap.Logger) *Handlers {
	return &Handlers{
		automation: automationSvc,
		insights:   insights,
		backups:    backups,
		logger:     logger,
	}
}

// RegisterRoutes mounts all endpoints on the router.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/automation/runs", h.TriggerRun)
		api.GET("/automation/runs/:id", h.GetRun)
		api.GET("/risk/insights", h.RiskInsights)
		api.GET("/risk/alerts", h.PredictiveAlerts)

		api.POST("/backups/verify", h.TriggerVerification)
		api.GET("/backups/health", h.BackupHealth)
		api.GET("/backups/due", h.DueVerifications)
		api.GET("/backups/assets/:id/history", h.AssetHistory)
		api.POST("/backups/assets/:id/run", h.ManualBackup)
	}
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":  "healthy",
			"service": "asset-compliance",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// TriggerRun handles POST /api/v1/automation/runs. Blocks until the run
// terminates.
func (h *Handlers) TriggerRun(c *gin.Context) {
	scope, ok := h.scopeParam(c)
	if !ok {
		return
	}

	run, err := h.automation.Run(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("Automation run request failed", zap.Error(err))
		// The terminal run row is still useful to the caller
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Data:    run,
			Error:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: run})
}

// GetRun handles GET /api/v1/automation/runs/:id.
func (h *Handlers) GetRun(c *gin.Context) {
	run, err := h.automation.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: run})
}

// RiskInsights handles GET /api/v1/risk/insights.
func (h *Handlers) RiskInsights(c *gin.Context) {
	insights, err := h.insights.RiskByLocation(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: insights})
}

// PredictiveAlerts handles GET /api/v1/risk/alerts.
func (h *Handlers) PredictiveAlerts(c *gin.Context) {
	scope, ok := h.scopeParam(c)
	if !ok {
		return
	}
	alerts, err := h.insights.PredictiveAlerts(c.Request.Context(), scope)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: alerts})
}

// TriggerVerification handles POST /api/v1/backups/verify.
func (h *Handlers) TriggerVerification(c *gin.Context) {
	scope, ok := h.scopeParam(c)
	if !ok {
		return
	}
	summary, err := h.backups.RunVerification(c.Request.Context(), scope)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// BackupHealth handles GET /api/v1/backups/health.
func (h *Handlers) BackupHealth(c *gin.Context) {
	summary, err := h.backups.HealthSummary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// DueVerifications handles GET /api/v1/backups/due.
func (h *Handlers) DueVerifications(c *gin.Context) {
	records, err := h.backups.DueVerifications(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// AssetHistory handles GET /api/v1/backups/assets/:id/history.
func (h *Handlers) AssetHistory(c *gin.Context) {
	records, err := h.backups.AssetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// ManualBackup handles POST /api/v1/backups/assets/:id/run.
func (h *Handlers) ManualBackup(c *gin.Context) {
	summary, err := h.backups.TriggerManualBackup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// scopeParam parses the optional location_id query parameter.
func (h *Handlers) scopeParam(c *gin.Context) (*int64, bool) {
	raw := c.Query("location_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "location_id must be an integer",
		})
		return nil, false
	}
	return &id, true
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, automation.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, automation.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, automation.ErrExternalService):
		status = http.StatusBadGateway
	}
	h.logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	c.JSON(status, Response{Success: false, Error: err.Error()})
}
