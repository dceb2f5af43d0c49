package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// OrchestratorConfig bounds per-run work.
type OrchestratorConfig struct {
	// MaxRecommendations caps reasoning backend calls per run.
	MaxRecommendations int
	// MaxAssignments caps task assignments per run.
	MaxAssignments int
}

// DefaultOrchestratorConfig returns the standard per-run bounds.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{MaxRecommendations: 5, MaxAssignments: 10}
}

// Orchestrator composes scoring, recommendation, task materialization and
// assignment into one ordered, trackable batch run.
//
// A run is not transactional: writes from completed phases persist even when
// a later phase fails. Repeated runs over the same unresolved signals
// re-score and re-generate tasks; callers that want exclusive runs must
// serialize triggers externally.
type Orchestrator struct {
	signals     SignalStore
	scores      RiskScoreStore
	runs        RunStore
	recs        RecommendationStore
	tasks       TaskStore
	queue       AssignmentStore
	assets      AssetDirectory
	employees   EmployeeDirectory
	engine      *RiskScoringEngine
	recommender *RecommendationGenerator
	taskgen     *TaskGenerator
	assigner    *AssignmentOptimizer
	cfg         OrchestratorConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrchestrator wires the pipeline from its collaborators.
func NewOrchestrator(
	signals SignalStore,
	scores RiskScoreStore,
	runs RunStore,
	recs RecommendationStore,
	tasks TaskStore,
	queue AssignmentStore,
	assets AssetDirectory,
	employees EmployeeDirectory,
	engine *RiskScoringEngine,
	recommender *RecommendationGenerator,
	taskgen *TaskGenerator,
	assigner *AssignmentOptimizer,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		signals:     signals,
		scores:      scores,
		runs:        runs,
		recs:        recs,
		tasks:       tasks,
		queue:       queue,
		assets:      assets,
		employees:   employees,
		engine:      engine,
		recommender: recommender,
		taskgen:     taskgen,
		assigner:    assigner,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// runSnapshot is the fixed context a run operates over. Later phases never
// re-query signals mid-run.
type runSnapshot struct {
	signals   []*models.Signal
	assets    map[string]*models.Asset
	employees []*models.Employee
}

// Run executes one automation run over the given scope (nil means all
// sites). It blocks until the run terminates and returns the terminal run
// row. Recommendation failures are swallowed per signal; any other phase
// failure marks the run failed and is returned.
func (o *Orchestrator) Run(ctx context.Context, scopeLocationID *int64) (*models.AutomationRun, error) {
	run := &models.AutomationRun{
		ID:              uuid.NewString(),
		RunType:         models.RunTypeFull,
		ScopeLocationID: scopeLocationID,
		Status:          models.RunStatusRunning,
		StartedAt:       o.now(),
	}
	if scopeLocationID != nil {
		run.RunType = models.RunTypeLocation
	}
	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("%w: create run: %v", ErrPersistence, err)
	}

	o.logger.Info("Automation run started",
		zap.String("run_id", run.ID),
		zap.String("run_type", run.RunType))

	snapshot, err := o.gatherSnapshot(ctx, scopeLocationID)
	if err != nil {
		return run, o.fail(ctx, run, err)
	}

	if err := o.scorePhase(ctx, run, snapshot); err != nil {
		return run, o.fail(ctx, run, err)
	}
	o.recommendPhase(ctx, run, snapshot)
	if err := o.taskPhase(ctx, run, snapshot); err != nil {
		return run, o.fail(ctx, run, err)
	}
	if err := o.assignPhase(ctx, run, snapshot, scopeLocationID); err != nil {
		return run, o.fail(ctx, run, err)
	}

	completedAt := o.now()
	run.Status = models.RunStatusCompleted
	run.CompletedAt = &completedAt
	if err := o.runs.Update(ctx, run); err != nil {
		return run, fmt.Errorf("%w: complete run: %v", ErrPersistence, err)
	}

	o.logger.Info("Automation run completed",
		zap.String("run_id", run.ID),
		zap.Int("signals_scored", run.SignalsScored),
		zap.Int("recommendations", run.RecommendationsCreated),
		zap.Int("tasks_created", run.TasksCreated),
		zap.Int("tasks_assigned", run.TasksAssigned))
	return run, nil
}

func (o *Orchestrator) gatherSnapshot(ctx context.Context, scopeLocationID *int64) (*runSnapshot, error) {
	signals, err := o.signals.ListActive(ctx, scopeLocationID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list active signals: %v", ErrPersistence, err)
	}
	assets, err := o.assets.List(ctx, scopeLocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %v", ErrPersistence, err)
	}
	employees, err := o.employees.List(ctx, scopeLocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: list employees: %v", ErrPersistence, err)
	}

	assetIndex := make(map[string]*models.Asset, len(assets))
	for _, a := range assets {
		assetIndex[a.ID] = a
	}
	return &runSnapshot{signals: signals, assets: assetIndex, employees: employees}, nil
}

// scorePhase scores every signal in the snapshot and persists each score.
func (o *Orchestrator) scorePhase(ctx context.Context, run *models.AutomationRun, snap *runSnapshot) error {
	for _, signal := range snap.signals {
		sctx := ScoringContext{
			OtherActiveSignals: countOtherAssetSignals(signal, snap.signals),
			Now:                o.now(),
		}
		if signal.AssetID != nil {
			sctx.Asset = snap.assets[*signal.AssetID]
		}

		score := o.engine.Score(signal, sctx)
		score.RunID = run.ID
		if err := o.scores.Create(ctx, score); err != nil {
			return fmt.Errorf("%w: persist risk score for signal %d: %v", ErrPersistence, signal.ID, err)
		}
		run.SignalsScored++
	}
	return nil
}

// recommendPhase asks the reasoning backend for guidance on a cost-bounded
// subset of signals. Per-signal failures are logged and skipped; they never
// abort the run.
func (o *Orchestrator) recommendPhase(ctx context.Context, run *models.AutomationRun, snap *runSnapshot) {
	limit := o.cfg.MaxRecommendations
	for i, signal := range snap.signals {
		if i >= limit {
			break
		}
		rec, err := o.recommender.Generate(ctx, signal, run.ID)
		if err != nil {
			continue // already logged by the generator
		}
		if err := o.recs.Create(ctx, rec); err != nil {
			o.logger.Warn("Failed to persist recommendation",
				zap.String("run_id", run.ID),
				zap.Int64("signal_id", signal.ID),
				zap.Error(err))
			continue
		}
		run.RecommendationsCreated++
	}
}

// taskPhase materializes a compliance task for every signal in the snapshot.
func (o *Orchestrator) taskPhase(ctx context.Context, run *models.AutomationRun, snap *runSnapshot) error {
	for _, signal := range snap.signals {
		task := o.taskgen.Materialize(signal)
		runID := run.ID
		task.RunID = &runID
		if err := o.tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("%w: persist task for signal %d: %v", ErrPersistence, signal.ID, err)
		}
		run.TasksCreated++
	}
	return nil
}

// assignPhase routes up to MaxAssignments pending tasks in scope to the
// least-loaded local employees. Assignments made earlier in the phase count
// toward workload for later tasks.
func (o *Orchestrator) assignPhase(ctx context.Context, run *models.AutomationRun, snap *runSnapshot, scopeLocationID *int64) error {
	pending, err := o.tasks.ListPending(ctx, scopeLocationID)
	if err != nil {
		return fmt.Errorf("%w: list pending tasks: %v", ErrPersistence, err)
	}

	assigned := 0
	for _, task := range pending {
		if assigned >= o.cfg.MaxAssignments {
			break
		}
		if task.AssignedTo != nil {
			continue
		}

		decision := o.assigner.Assign(task, snap.employees, pending)
		if decision == nil {
			o.logger.Debug("No local employee for task",
				zap.Int64("task_id", task.ID),
				zap.Int64("location_id", task.LocationID))
			continue
		}

		entry := &models.AssignmentQueueEntry{
			TaskID:        task.ID,
			AssignedTo:    decision.Employee.ID,
			LocationID:    task.LocationID,
			AssignedAt:    o.now(),
			Status:        "queued",
			Reason:        assignmentReason,
			WorkloadScore: decision.Workload,
		}
		if err := o.queue.Create(ctx, entry); err != nil {
			return fmt.Errorf("%w: persist assignment for task %d: %v", ErrPersistence, task.ID, err)
		}
		if err := o.tasks.Assign(ctx, task.ID, decision.Employee.ID); err != nil {
			return fmt.Errorf("%w: patch task %d assignee: %v", ErrPersistence, task.ID, err)
		}

		employeeID := decision.Employee.ID
		task.AssignedTo = &employeeID
		assigned++
		run.TasksAssigned++
	}
	return nil
}

// fail records the terminal failed state and returns the causing error.
// The update is best-effort: the original failure wins.
func (o *Orchestrator) fail(ctx context.Context, run *models.AutomationRun, cause error) error {
	completedAt := o.now()
	run.Status = models.RunStatusFailed
	run.CompletedAt = &completedAt
	run.Error = cause.Error()
	if err := o.runs.Update(ctx, run); err != nil {
		o.logger.Error("Failed to mark run failed",
			zap.String("run_id", run.ID),
			zap.Error(err))
	}
	o.logger.Error("Automation run failed",
		zap.String("run_id", run.ID),
		zap.Error(cause))
	return cause
}

// GetRun returns a run row by id, for callers re-reading summaries.
func (o *Orchestrator) GetRun(ctx context.Context, id string) (*models.AutomationRun, error) {
	run, err := o.runs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get run %s: %v", ErrPersistence, id, err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return run, nil
}

func countOtherAssetSignals(signal *models.Signal, all []*models.Signal) int {
	if signal.AssetID == nil {
		return 0
	}
	count := 0
	for _, other := range all {
		if other.ID == signal.ID || other.AssetID == nil {
			continue
		}
		if *other.AssetID == *signal.AssetID && other.Status == models.SignalStatusActive {
			count++
		}
	}
	return count
}
