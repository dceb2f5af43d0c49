package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jordanwu/asset-compliance/internal/models"
)

// --- in-memory stores ---

type memSignalStore struct {
	signals []*models.Signal
	listErr error
}

func (m *memSignalStore) Create(ctx context.Context, signal *models.Signal) error {
	signal.ID = int64(len(m.signals) + 1)
	m.signals = append(m.signals, signal)
	return nil
}

func (m *memSignalStore) ListActive(ctx context.Context, locationID *int64, severity *models.Severity) ([]*models.Signal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.Signal
	for _, s := range m.signals {
		if s.Status != models.SignalStatusActive {
			continue
		}
		if locationID != nil && s.LocationID != *locationID {
			continue
		}
		if severity != nil && s.Severity != *severity {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memSignalStore) Resolve(ctx context.Context, id int64) error {
	for _, s := range m.signals {
		if s.ID == id {
			s.Status = models.SignalStatusResolved
		}
	}
	return nil
}

type memScoreStore struct {
	scores    []*models.RiskScore
	createErr error
}

func (m *memScoreStore) Create(ctx context.Context, score *models.RiskScore) error {
	if m.createErr != nil {
		return m.createErr
	}
	score.ID = int64(len(m.scores) + 1)
	m.scores = append(m.scores, score)
	return nil
}

func (m *memScoreStore) ListLatest(ctx context.Context) ([]*models.RiskScore, error) {
	return m.scores, nil
}

type memRunStore struct {
	runs map[string]*models.AutomationRun
}

func newMemRunStore() *memRunStore {
	return &memRunStore{runs: make(map[string]*models.AutomationRun)}
}

func (m *memRunStore) Create(ctx context.Context, run *models.AutomationRun) error {
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memRunStore) Update(ctx context.Context, run *models.AutomationRun) error {
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memRunStore) GetByID(ctx context.Context, id string) (*models.AutomationRun, error) {
	return m.runs[id], nil
}

type memRecStore struct {
	recs      []*models.AIRecommendation
	createErr error
}

func (m *memRecStore) Create(ctx context.Context, rec *models.AIRecommendation) error {
	if m.createErr != nil {
		return m.createErr
	}
	rec.ID = int64(len(m.recs) + 1)
	m.recs = append(m.recs, rec)
	return nil
}

type memTaskStore struct {
	tasks     []*models.ComplianceTask
	createErr error
}

func (m *memTaskStore) Create(ctx context.Context, task *models.ComplianceTask) error {
	if m.createErr != nil {
		return m.createErr
	}
	task.ID = int64(len(m.tasks) + 1)
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *memTaskStore) ListPending(ctx context.Context, locationID *int64) ([]*models.ComplianceTask, error) {
	var out []*models.ComplianceTask
	for _, t := range m.tasks {
		if t.Status != models.TaskStatusPending {
			continue
		}
		if locationID != nil && t.LocationID != *locationID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memTaskStore) Assign(ctx context.Context, taskID, employeeID int64) error {
	for _, t := range m.tasks {
		if t.ID == taskID {
			id := employeeID
			t.AssignedTo = &id
		}
	}
	return nil
}

type memAssignmentStore struct {
	entries []*models.AssignmentQueueEntry
}

func (m *memAssignmentStore) Create(ctx context.Context, entry *models.AssignmentQueueEntry) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

type memAssetDirectory struct {
	assets []*models.Asset
}

func (m *memAssetDirectory) List(ctx context.Context, locationID *int64) ([]*models.Asset, error) {
	var out []*models.Asset
	for _, a := range m.assets {
		if locationID != nil && a.LocationID != *locationID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memAssetDirectory) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	for _, a := range m.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

type memEmployeeDirectory struct {
	employees []*models.Employee
}

func (m *memEmployeeDirectory) List(ctx context.Context, locationID *int64) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range m.employees {
		if locationID != nil && e.LocationID != *locationID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// --- fixture ---

type orchestratorFixture struct {
	signals     *memSignalStore
	scores      *memScoreStore
	runs        *memRunStore
	recs        *memRecStore
	tasks       *memTaskStore
	queue       *memAssignmentStore
	assets      *memAssetDirectory
	employees   *memEmployeeDirectory
	client      *fakeReasoningClient
	orchestrate *Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		signals:   &memSignalStore{},
		scores:    &memScoreStore{},
		runs:      newMemRunStore(),
		recs:      &memRecStore{},
		tasks:     &memTaskStore{},
		queue:     &memAssignmentStore{},
		assets:    &memAssetDirectory{},
		employees: &memEmployeeDirectory{},
		client:    &fakeReasoningClient{},
	}
	f.orchestrate = NewOrchestrator(
		f.signals,
		f.scores,
		f.runs,
		f.recs,
		f.tasks,
		f.queue,
		f.assets,
		f.employees,
		NewRiskScoringEngine(),
		newTestGenerator(f.client, func(error) bool { return true }),
		NewTaskGenerator(),
		NewAssignmentOptimizer(),
		DefaultOrchestratorConfig(),
		zap.NewNop(),
	)
	return f
}

// Missing-backup signal on a critical aged server at location 7, one
// technician at the same location.
func (f *orchestratorFixture) seedMissingBackupScenario(t *testing.T) {
	t.Helper()
	purchase := time.Now().AddDate(-6, 0, 0)
	assetID := "A1"
	f.assets.assets = []*models.Asset{{
		ID:           assetID,
		Name:         "Primary file server",
		Type:         "server",
		LocationID:   7,
		PurchaseDate: &purchase,
		Status:       "active",
	}}
	f.employees.employees = []*models.Employee{
		{ID: 1, Name: "Sam", LocationID: 7},
	}
	require.NoError(t, f.signals.Create(context.Background(), &models.Signal{
		AssetID:     &assetID,
		LocationID:  7,
		Type:        models.SignalBackupMissing,
		Severity:    models.SeverityCritical,
		Description: "No backup found in retention window",
		Status:      models.SignalStatusActive,
		DetectedAt:  time.Now(),
	}))
}

// --- tests ---

func TestRunMissingBackupEndToEnd(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, models.RunTypeFull, run.RunType)
	require.NotNil(t, run.CompletedAt)

	// Phase 1: one score, critical, at least 95 (80+10+15, no density).
	require.Len(t, f.scores.scores, 1)
	score := f.scores.scores[0]
	assert.GreaterOrEqual(t, score.Score, 95)
	assert.Equal(t, models.SeverityCritical, score.Level)
	assert.Equal(t, run.ID, score.RunID)

	// Phase 2: one recommendation from the reasoning backend.
	require.Len(t, f.recs.recs, 1)
	assert.Equal(t, run.ID, f.recs.recs[0].RunID)

	// Phase 3: the templated task with the critical 3-day due date.
	require.Len(t, f.tasks.tasks, 1)
	task := f.tasks.tasks[0]
	assert.Equal(t, "Restore Missing Backup", task.Name)
	assert.Equal(t, models.TaskTypeBackup, task.Type)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 3), task.DueDate, time.Minute)

	// Phase 4: routed to the only local technician.
	require.Len(t, f.queue.entries, 1)
	entry := f.queue.entries[0]
	assert.Equal(t, int64(1), entry.AssignedTo)
	assert.Equal(t, int64(7), entry.LocationID)
	assert.Equal(t, 0, entry.WorkloadScore)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, int64(1), *task.AssignedTo)

	// Counters on the persisted terminal row match.
	stored, err := f.orchestrate.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SignalsScored)
	assert.Equal(t, 1, stored.RecommendationsCreated)
	assert.Equal(t, 1, stored.TasksCreated)
	assert.Equal(t, 1, stored.TasksAssigned)
}

func TestRunScopedToLocation(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)
	require.NoError(t, f.signals.Create(context.Background(), &models.Signal{
		LocationID: 9,
		Type:       models.SignalAuditRequired,
		Severity:   models.SeverityLow,
		Status:     models.SignalStatusActive,
	}))

	scope := int64(7)
	run, err := f.orchestrate.Run(context.Background(), &scope)

	require.NoError(t, err)
	assert.Equal(t, models.RunTypeLocation, run.RunType)
	assert.Equal(t, 1, run.SignalsScored)
	require.Len(t, f.tasks.tasks, 1)
	assert.Equal(t, int64(7), f.tasks.tasks[0].LocationID)
}

func TestRunTwiceDuplicatesWork(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)

	first, err := f.orchestrate.Run(context.Background(), nil)
	require.NoError(t, err)
	second, err := f.orchestrate.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	// Runs are not idempotent: the unresolved signal is scored and tasked
	// again.
	assert.Len(t, f.scores.scores, 2)
	assert.Len(t, f.tasks.tasks, 2)
}

func TestRunRecommendationFailureDoesNotAbort(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)
	backendDown := errors.New("status 503")
	f.client.errs = []error{backendDown, backendDown, backendDown, backendDown}

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 0, run.RecommendationsCreated)
	assert.Empty(t, f.recs.recs)
	// Later phases still ran.
	assert.Equal(t, 1, run.TasksCreated)
	assert.Equal(t, 1, run.TasksAssigned)
}

func TestRunRecommendationPersistFailureSwallowed(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)
	f.recs.createErr = errors.New("disk full")

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 0, run.RecommendationsCreated)
}

func TestRunRecommendationsBoundedByConfig(t *testing.T) {
	f := newOrchestratorFixture()
	for i := 0; i < 8; i++ {
		require.NoError(t, f.signals.Create(context.Background(), &models.Signal{
			LocationID: 7,
			Type:       models.SignalAuditRequired,
			Severity:   models.SeverityLow,
			Status:     models.SignalStatusActive,
		}))
	}

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 8, run.SignalsScored)
	assert.Equal(t, 5, run.RecommendationsCreated)
	assert.Equal(t, 5, f.client.calls)
	assert.Equal(t, 8, run.TasksCreated)
}

func TestRunScorePersistFailureMarksRunFailed(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)
	f.scores.createErr = errors.New("disk full")

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	require.NotNil(t, run.CompletedAt)
	assert.NotEmpty(t, run.Error)

	// The terminal failed state is persisted.
	stored, getErr := f.orchestrate.GetRun(context.Background(), run.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.RunStatusFailed, stored.Status)
}

func TestRunTaskPersistFailureKeepsEarlierPhases(t *testing.T) {
	f := newOrchestratorFixture()
	f.seedMissingBackupScenario(t)
	f.tasks.createErr = errors.New("disk full")

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	// Non-transactional: scores from phase 1 survive the phase 3 failure.
	assert.Len(t, f.scores.scores, 1)
	assert.Empty(t, f.queue.entries)
}

func TestRunAssignmentsBoundedAndWorkloadAware(t *testing.T) {
	f := newOrchestratorFixture()
	f.employees.employees = []*models.Employee{
		{ID: 1, LocationID: 7},
		{ID: 2, LocationID: 7},
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, f.signals.Create(context.Background(), &models.Signal{
			LocationID: 7,
			Type:       models.SignalMaintenanceOverdue,
			Severity:   models.SeverityMedium,
			Status:     models.SignalStatusActive,
		}))
	}

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 4, run.TasksAssigned)
	// Earlier assignments count toward workload, so tasks alternate between
	// the two technicians instead of piling onto one.
	perEmployee := map[int64]int{}
	for _, e := range f.queue.entries {
		perEmployee[e.AssignedTo]++
	}
	assert.Equal(t, 2, perEmployee[1])
	assert.Equal(t, 2, perEmployee[2])
}

func TestRunSkipsTasksWithoutLocalEmployees(t *testing.T) {
	f := newOrchestratorFixture()
	f.employees.employees = []*models.Employee{{ID: 1, LocationID: 3}}
	require.NoError(t, f.signals.Create(context.Background(), &models.Signal{
		LocationID: 7,
		Type:       models.SignalAuditRequired,
		Severity:   models.SeverityLow,
		Status:     models.SignalStatusActive,
	}))

	run, err := f.orchestrate.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.TasksCreated)
	assert.Equal(t, 0, run.TasksAssigned)
	assert.Empty(t, f.queue.entries)
}

func TestGetRunUnknownIDIsNotFound(t *testing.T) {
	f := newOrchestratorFixture()

	run, err := f.orchestrate.GetRun(context.Background(), "no-such-run")

	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountOtherAssetSignals(t *testing.T) {
	assetA := "A1"
	assetB := "B2"
	signals := []*models.Signal{
		{ID: 1, AssetID: &assetA, Status: models.SignalStatusActive},
		{ID: 2, AssetID: &assetA, Status: models.SignalStatusActive},
		{ID: 3, AssetID: &assetA, Status: models.SignalStatusResolved},
		{ID: 4, AssetID: &assetB, Status: models.SignalStatusActive},
		{ID: 5, Status: models.SignalStatusActive},
	}

	assert.Equal(t, 1, countOtherAssetSignals(signals[0], signals))
	assert.Equal(t, 0, countOtherAssetSignals(signals[4], signals))
}
