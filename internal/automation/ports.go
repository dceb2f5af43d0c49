package automation

import (
	"context"

	"github.com/jordanwu/asset-compliance/internal/models"
)

// SignalStore persists detected anomaly signals.
type SignalStore interface {
	Create(ctx context.Context, signal *models.Signal) error
	// ListActive returns active signals, optionally filtered by location
	// and severity.
	ListActive(ctx context.Context, locationID *int64, severity *models.Severity) ([]*models.Signal, error)
	Resolve(ctx context.Context, id int64) error
}

// RiskScoreStore persists scoring results. Rows are append-only.
type RiskScoreStore interface {
	Create(ctx context.Context, score *models.RiskScore) error
	// ListLatest returns the most recent score per signal.
	ListLatest(ctx context.Context) ([]*models.RiskScore, error)
}

// RunStore persists automation run lifecycle state.
type RunStore interface {
	Create(ctx context.Context, run *models.AutomationRun) error
	Update(ctx context.Context, run *models.AutomationRun) error
	GetByID(ctx context.Context, id string) (*models.AutomationRun, error)
}

// RecommendationStore persists AI-generated remediation guidance.
type RecommendationStore interface {
	Create(ctx context.Context, rec *models.AIRecommendation) error
}

// TaskStore persists compliance tasks.
type TaskStore interface {
	Create(ctx context.Context, task *models.ComplianceTask) error
	// ListPending returns pending tasks, optionally filtered by location.
	ListPending(ctx context.Context, locationID *int64) ([]*models.ComplianceTask, error)
	// Assign patches a task's assignee.
	Assign(ctx context.Context, taskID, employeeID int64) error
}

// AssignmentStore persists task-to-employee assignment queue entries.
type AssignmentStore interface {
	Create(ctx context.Context, entry *models.AssignmentQueueEntry) error
}

// AssetDirectory looks up IT assets.
type AssetDirectory interface {
	List(ctx context.Context, locationID *int64) ([]*models.Asset, error)
	GetByID(ctx context.Context, id string) (*models.Asset, error)
}

// EmployeeDirectory looks up staff members.
type EmployeeDirectory interface {
	List(ctx context.Context, locationID *int64) ([]*models.Employee, error)
}

// ReasoningClient is the chat-style completion interface to the external
// reasoning backend.
type ReasoningClient interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
	Model() string
}
