package automation

import (
	"fmt"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
)

// taskTemplate is the deterministic (title, type) pair for a signal type.
type taskTemplate struct {
	Title string
	Type  models.TaskType
}

var taskTemplates = map[models.SignalType]taskTemplate{
	models.SignalLicenseExpiring:    {"Renew Software License", models.TaskTypeLicenseRenewal},
	models.SignalWarrantyExpired:    {"Review Warranty Coverage", models.TaskTypeWarrantyCheck},
	models.SignalBackupFailure:      {"Resolve Backup Issue", models.TaskTypeBackup},
	models.SignalBackupMissing:      {"Restore Missing Backup", models.TaskTypeBackup},
	models.SignalSecurityPatch:      {"Apply Security Updates", models.TaskTypeSecurityAudit},
	models.SignalAuditRequired:      {"Complete Compliance Audit", models.TaskTypePolicyReview},
	models.SignalMaintenanceOverdue: {"Schedule Overdue Maintenance", models.TaskTypeSystemUpdate},
}

// Due-date offsets in days, keyed by signal severity.
var dueOffsetDays = map[models.Severity]int{
	models.SeverityCritical: 3,
	models.SeverityHigh:     7,
	models.SeverityMedium:   14,
	models.SeverityLow:      30,
}

var taskCategories = map[models.TaskType]string{
	models.TaskTypeLicenseRenewal: "licensing",
	models.TaskTypeWarrantyCheck:  "procurement",
	models.TaskTypeBackup:         "data_protection",
	models.TaskTypeSecurityAudit:  "security",
	models.TaskTypePolicyReview:   "governance",
	models.TaskTypeSystemUpdate:   "maintenance",
}

// TaskGenerator materializes remediation tasks from signals via fixed lookup
// tables. Fully deterministic for a given clock.
type TaskGenerator struct {
	now func() time.Time
}

// NewTaskGenerator creates a task generator using the real clock.
func NewTaskGenerator() *TaskGenerator {
	return &TaskGenerator{now: time.Now}
}

// NewTaskGeneratorWithClock creates a task generator with an injected clock.
func NewTaskGeneratorWithClock(now func() time.Time) *TaskGenerator {
	return &TaskGenerator{now: now}
}

// Materialize builds the remediation task for a signal. Unknown signal types
// fall through to a generic backup-categorized task.
func (g *TaskGenerator) Materialize(signal *models.Signal) *models.ComplianceTask {
	tmpl, ok := taskTemplates[signal.Type]
	if !ok {
		tmpl = taskTemplate{
			Title: fmt.Sprintf("Resolve %s", signal.Type),
			Type:  models.TaskTypeBackup,
		}
	}

	offset, ok := dueOffsetDays[signal.Severity]
	if !ok {
		offset = dueOffsetDays[models.SeverityLow]
	}

	description := signal.Description
	if signal.AssetID != nil {
		description = fmt.Sprintf("%s (asset %s)", description, *signal.AssetID)
	}

	signalID := signal.ID
	return &models.ComplianceTask{
		Name:        tmpl.Title,
		Description: description,
		Type:        tmpl.Type,
		Category:    taskCategories[tmpl.Type],
		DueDate:     g.now().AddDate(0, 0, offset),
		Status:      models.TaskStatusPending,
		LocationID:  signal.LocationID,
		CreatedBy:   "automation",
		SignalID:    &signalID,
	}
}
