package backup

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
)

// CheckResult is what a backup checker reports for one asset. The shape
// mirrors what a vendor backup agent returns so a real integration can drop
// in without touching signal or task emission.
type CheckResult struct {
	Status         models.BackupStatus
	LastBackupDate *time.Time
	SizeBytes      int64
	Location       string
	Issues         []string
}

// Checker probes the backup state of one asset.
type Checker interface {
	// Check inspects the asset's backup state. For manual triggers it is
	// also expected to kick off a fresh backup attempt.
	Check(ctx context.Context, asset *models.Asset) (*CheckResult, error)
	// Method names the verification mechanism for the persisted record.
	Method() string
}

// SimulatedChecker is a deterministic stand-in for a vendor backup agent.
// Outcomes are derived from the asset id hash so repeated verification of
// the same inventory is stable.
type SimulatedChecker struct {
	now func() time.Time
}

// NewSimulatedChecker creates the simulated checker.
func NewSimulatedChecker() *SimulatedChecker {
	return &SimulatedChecker{now: time.Now}
}

// Method implements Checker.
func (c *SimulatedChecker) Method() string {
	return "simulated"
}

// Check implements Checker. Roughly one asset in five reports a failed
// backup and one in ten has none at all.
func (c *SimulatedChecker) Check(_ context.Context, asset *models.Asset) (*CheckResult, error) {
	h := fnv.New32a()
	h.Write([]byte(asset.ID))
	bucket := h.Sum32() % 10

	now := c.now()
	switch {
	case bucket == 0:
		return &CheckResult{
			Status: models.BackupStatusMissing,
			Issues: []string{"no backup found for asset"},
		}, nil
	case bucket <= 2:
		last := now.Add(-72 * time.Hour)
		return &CheckResult{
			Status:         models.BackupStatusFailed,
			LastBackupDate: &last,
			SizeBytes:      0,
			Location:       "backup-pool-1",
			Issues:         []string{"last backup attempt failed", "backup older than 48h"},
		}, nil
	default:
		last := now.Add(-6 * time.Hour)
		return &CheckResult{
			Status:         models.BackupStatusSuccess,
			LastBackupDate: &last,
			SizeBytes:      int64(h.Sum32()%64+1) * 1024 * 1024 * 1024,
			Location:       "backup-pool-1",
		}, nil
	}
}
