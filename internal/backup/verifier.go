package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jordanwu/asset-compliance/internal/automation"
	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

// Due dates for remediation tasks emitted on verification failure.
const (
	missingBackupTaskDue = 3 * 24 * time.Hour
	failedBackupTaskDue  = 24 * time.Hour
)

// checksPerformed lists what every verification pass inspects.
var checksPerformed = []string{"backup_present", "backup_recency", "backup_size"}

// VerificationStore persists backup verification records. Rows are
// append-only.
type VerificationStore interface {
	Create(ctx context.Context, record *models.BackupVerificationRecord) error
	// ListDue returns the latest record per asset whose next verification
	// is due at or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]*models.BackupVerificationRecord, error)
	ListByAsset(ctx context.Context, assetID string) ([]*models.BackupVerificationRecord, error)
	// HealthCounts returns distinct-asset counts keyed by each asset's
	// latest verification status.
	HealthCounts(ctx context.Context) (map[models.VerificationStatus]int, error)
}

// VerificationSummary reports one verification sweep.
type VerificationSummary struct {
	AssetsChecked  int `json:"assets_checked"`
	AssetsSkipped  int `json:"assets_skipped"`
	Passed         int `json:"passed"`
	Warnings       int `json:"warnings"`
	Failed         int `json:"failed"`
	SignalsCreated int `json:"signals_created"`
	TasksCreated   int `json:"tasks_created"`
	CheckErrors    int `json:"check_errors"`
}

// HealthSummary aggregates the latest verification outcome per asset.
type HealthSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// Verifier scans assets, classifies backup eligibility, runs the pluggable
// backup check, persists verification records and feeds failures back into
// the signal pipeline.
type Verifier struct {
	assets   automation.AssetDirectory
	store    VerificationStore
	signals  automation.SignalStore
	tasks    automation.TaskStore
	checker  Checker
	taskgen  *automation.TaskGenerator
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewVerifier wires the verifier from its collaborators. interval is how
// long a passed verification stays fresh before the asset is due again.
func NewVerifier(
	assets automation.AssetDirectory,
	store VerificationStore,
	signals automation.SignalStore,
	tasks automation.TaskStore,
	checker Checker,
	taskgen *automation.TaskGenerator,
	interval time.Duration,
	logger *zap.Logger,
) *Verifier {
	return &Verifier{
		assets:   assets,
		store:    store,
		signals:  signals,
		tasks:    tasks,
		checker:  checker,
		taskgen:  taskgen,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// RunVerification verifies every backup-eligible asset in scope. Ineligible
// assets (peripherals) are skipped entirely: no record, no signal. Checker
// errors are counted and skipped so one unreachable asset does not abort
// the sweep.
func (v *Verifier) RunVerification(ctx context.Context, scopeLocationID *int64) (*VerificationSummary, error) {
	assets, err := v.assets.List(ctx, scopeLocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: list assets: %v", automation.ErrPersistence, err)
	}

	summary := &VerificationSummary{}
	for _, asset := range assets {
		if !asset.BackupEligible() {
			summary.AssetsSkipped++
			continue
		}

		result, err := v.checker.Check(ctx, asset)
		if err != nil {
			v.logger.Warn("Backup check failed",
				zap.String("asset_id", asset.ID),
				zap.Error(err))
			summary.CheckErrors++
			continue
		}

		if err := v.recordAndReact(ctx, asset, result, summary); err != nil {
			return nil, err
		}
		summary.AssetsChecked++
	}

	v.logger.Info("Backup verification sweep completed",
		zap.Int("checked", summary.AssetsChecked),
		zap.Int("skipped", summary.AssetsSkipped),
		zap.Int("failed", summary.Failed),
		zap.Int("warnings", summary.Warnings))
	return summary, nil
}

// recordAndReact persists the verification record and, for non-success
// outcomes, emits a signal and immediately materializes a remediation task.
func (v *Verifier) recordAndReact(ctx context.Context, asset *models.Asset, result *CheckResult, summary *VerificationSummary) error {
	now := v.now()
	status, healthScore := models.VerificationOutcome(result.Status)

	checksJSON, _ := json.Marshal(checksPerformed)
	record := &models.BackupVerificationRecord{
		AssetID:             asset.ID,
		Method:              v.checker.Method(),
		Status:              status,
		ChecksPerformed:     string(checksJSON),
		HealthScore:         healthScore,
		VerifiedAt:          now,
		NextVerificationDue: now.Add(v.interval),
	}
	if len(result.Issues) > 0 {
		issuesJSON, _ := json.Marshal(result.Issues)
		issues := string(issuesJSON)
		record.IssuesFound = &issues
	}
	if err := v.store.Create(ctx, record); err != nil {
		return fmt.Errorf("%w: persist verification record for asset %s: %v", automation.ErrPersistence, asset.ID, err)
	}

	switch status {
	case models.VerificationPassed:
		summary.Passed++
		return nil
	case models.VerificationWarning:
		summary.Warnings++
	default:
		summary.Failed++
	}

	return v.emitFailure(ctx, asset, result, summary)
}

// emitFailure creates the signal and remediation task for a non-success
// check. Missing backups are critical and due in 3 days; failed backups are
// high severity and due the next day.
func (v *Verifier) emitFailure(ctx context.Context, asset *models.Asset, result *CheckResult, summary *VerificationSummary) error {
	now := v.now()

	signalType := models.SignalBackupFailure
	severity := models.SeverityHigh
	taskDue := failedBackupTaskDue
	if result.Status == models.BackupStatusMissing {
		signalType = models.SignalBackupMissing
		severity = models.SeverityCritical
		taskDue = missingBackupTaskDue
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"method":           v.checker.Method(),
		"last_backup_date": result.LastBackupDate,
		"size_bytes":       result.SizeBytes,
		"location":         result.Location,
		"issues":           result.Issues,
	})

	assetID := asset.ID
	signal := &models.Signal{
		AssetID:     &assetID,
		LocationID:  asset.LocationID,
		Type:        signalType,
		Severity:    severity,
		Description: failureDescription(asset, result),
		Payload:     string(payload),
		Status:      models.SignalStatusActive,
		DetectedAt:  now,
	}
	if err := v.signals.Create(ctx, signal); err != nil {
		return fmt.Errorf("%w: persist signal for asset %s: %v", automation.ErrPersistence, asset.ID, err)
	}
	summary.SignalsCreated++

	task := v.taskgen.Materialize(signal)
	task.DueDate = now.Add(taskDue)
	task.CreatedBy = "backup_verifier"
	if err := v.tasks.Create(ctx, task); err != nil {
		return fmt.Errorf("%w: persist task for asset %s: %v", automation.ErrPersistence, asset.ID, err)
	}
	summary.TasksCreated++
	return nil
}

// DueVerifications returns assets whose verification window has lapsed.
func (v *Verifier) DueVerifications(ctx context.Context) ([]*models.BackupVerificationRecord, error) {
	records, err := v.store.ListDue(ctx, v.now())
	if err != nil {
		return nil, fmt.Errorf("%w: list due verifications: %v", automation.ErrPersistence, err)
	}
	return records, nil
}

// AssetHistory returns all verification passes for one asset, newest first.
func (v *Verifier) AssetHistory(ctx context.Context, assetID string) ([]*models.BackupVerificationRecord, error) {
	records, err := v.store.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: list history for asset %s: %v", automation.ErrPersistence, assetID, err)
	}
	return records, nil
}

// HealthSummary aggregates distinct-asset pass/warning/fail counts from each
// asset's latest verification.
func (v *Verifier) HealthSummary(ctx context.Context) (*HealthSummary, error) {
	counts, err := v.store.HealthCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: health counts: %v", automation.ErrPersistence, err)
	}
	summary := &HealthSummary{
		Passed:   counts[models.VerificationPassed],
		Warnings: counts[models.VerificationWarning],
		Failed:   counts[models.VerificationFailed],
	}
	summary.Total = summary.Passed + summary.Warnings + summary.Failed
	return summary, nil
}

// TriggerManualBackup runs a best-effort backup for one asset. A successful
// run emits a low-severity confirmation signal; a non-success outcome goes
// through the regular failure path.
func (v *Verifier) TriggerManualBackup(ctx context.Context, assetID string) (*VerificationSummary, error) {
	asset, err := v.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup asset %s: %v", automation.ErrPersistence, assetID, err)
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", automation.ErrNotFound, assetID)
	}
	if !asset.BackupEligible() {
		return nil, fmt.Errorf("%w: asset %s (%s) is not backup-eligible", automation.ErrValidation, assetID, asset.Type)
	}

	result, err := v.checker.Check(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("%w: backup check for asset %s: %v", automation.ErrExternalService, assetID, err)
	}

	summary := &VerificationSummary{AssetsChecked: 1}
	if err := v.recordAndReact(ctx, asset, result, summary); err != nil {
		return nil, err
	}

	if result.Status == models.BackupStatusSuccess {
		signal := &models.Signal{
			AssetID:     &asset.ID,
			LocationID:  asset.LocationID,
			Type:        models.SignalBackupCompleted,
			Severity:    models.SeverityLow,
			Description: fmt.Sprintf("Manual backup completed for %s", asset.Name),
			Status:      models.SignalStatusActive,
			DetectedAt:  v.now(),
		}
		if err := v.signals.Create(ctx, signal); err != nil {
			return nil, fmt.Errorf("%w: persist confirmation signal for asset %s: %v", automation.ErrPersistence, assetID, err)
		}
		summary.SignalsCreated++
	}
	return summary, nil
}

func failureDescription(asset *models.Asset, result *CheckResult) string {
	if result.Status == models.BackupStatusMissing {
		return fmt.Sprintf("No backup exists for %s", asset.Name)
	}
	if len(result.Issues) > 0 {
		return fmt.Sprintf("Backup verification failed for %s: %s", asset.Name, strings.Join(result.Issues, "; "))
	}
	return fmt.Sprintf("Backup verification failed for %s", asset.Name)
}
