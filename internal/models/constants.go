package models

// Severity classifies how urgent a detected signal is. The same scale is
// reused for risk levels derived from scoring.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsValid reports whether the severity is one of the known values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// SignalType identifies the anomaly class a detector reported. The set below
// is what the built-in detectors emit; unknown values are tolerated and fall
// through to the generic remediation task.
type SignalType string

const (
	SignalLicenseExpiring    SignalType = "license_expiring"
	SignalWarrantyExpired    SignalType = "warranty_expired"
	SignalBackupFailure      SignalType = "backup_failure"
	SignalBackupMissing      SignalType = "backup_missing"
	SignalSecurityPatch      SignalType = "security_patch"
	SignalAuditRequired      SignalType = "audit_required"
	SignalMaintenanceOverdue SignalType = "maintenance_overdue"
	SignalBackupCompleted    SignalType = "backup_completed"
)

// IsBackupKind reports whether the signal describes a backup fault.
func (t SignalType) IsBackupKind() bool {
	return t == SignalBackupFailure || t == SignalBackupMissing
}

// SignalStatus tracks the signal lifecycle.
type SignalStatus string

const (
	SignalStatusActive   SignalStatus = "active"
	SignalStatusResolved SignalStatus = "resolved"
)

// RunStatus tracks the automation run lifecycle. Terminal states are not
// resumable.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// TaskStatus tracks the compliance task lifecycle:
// pending -> in_progress -> completed, or pending -> cancelled.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskType categorizes the remediation work a task represents.
type TaskType string

const (
	TaskTypeLicenseRenewal TaskType = "license_renewal"
	TaskTypeWarrantyCheck  TaskType = "warranty_check"
	TaskTypeBackup         TaskType = "backup"
	TaskTypeSecurityAudit  TaskType = "security_audit"
	TaskTypePolicyReview   TaskType = "policy_review"
	TaskTypeSystemUpdate   TaskType = "system_update"
)

// BackupStatus is what a backup checker reports for an asset.
type BackupStatus string

const (
	BackupStatusSuccess BackupStatus = "success"
	BackupStatusFailed  BackupStatus = "failed"
	BackupStatusMissing BackupStatus = "missing"
)

// VerificationStatus is the persisted outcome of a verification pass.
type VerificationStatus string

const (
	VerificationPassed  VerificationStatus = "passed"
	VerificationWarning VerificationStatus = "warning"
	VerificationFailed  VerificationStatus = "failed"
)

// RecommendationStatus tracks what happened to a generated recommendation.
type RecommendationStatus string

const (
	RecommendationProposed  RecommendationStatus = "proposed"
	RecommendationAccepted  RecommendationStatus = "accepted"
	RecommendationDismissed RecommendationStatus = "dismissed"
)

// Asset types that never hold data worth backing up.
const (
	AssetTypeMonitor  = "monitor"
	AssetTypeKeyboard = "keyboard"
)
