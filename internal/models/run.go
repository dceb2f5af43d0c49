package models

import "time"

// Run types.
const (
	RunTypeFull     = "full"
	RunTypeLocation = "location"
)

// AutomationRun tracks one batch execution of the score -> recommend ->
// task -> assign pipeline. A run is created running and makes exactly one
// terminal transition, to completed or failed.
type AutomationRun struct {
	ID                     string     `json:"id"`
	RunType                string     `json:"run_type"`
	ScopeLocationID        *int64     `json:"scope_location_id,omitempty"`
	Status                 RunStatus  `json:"status"`
	StartedAt              time.Time  `json:"started_at"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	SignalsScored          int        `json:"signals_scored"`
	RecommendationsCreated int        `json:"recommendations_created"`
	TasksCreated           int        `json:"tasks_created"`
	TasksAssigned          int        `json:"tasks_assigned"`
	Error                  string     `json:"error,omitempty"`
}

// AIRecommendation is remediation guidance produced by the reasoning backend
// for one signal during one run. Best-effort: a signal may have none.
type AIRecommendation struct {
	ID          int64                `json:"id"`
	RunID       string               `json:"run_id"`
	TargetType  string               `json:"target_type"` // currently always "signal"
	TargetID    int64                `json:"target_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Priority    Severity             `json:"priority"`
	Confidence  float64              `json:"confidence"`
	Status      RecommendationStatus `json:"status"`
	Model       string               `json:"model"`
	CreatedAt   time.Time            `json:"created_at"`
}
