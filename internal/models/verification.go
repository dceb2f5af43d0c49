package models

import "time"

// Backup health scores per verification outcome.
const (
	HealthScorePassed  = 100
	HealthScoreFailed  = 50
	HealthScoreWarning = 0
)

// BackupVerificationRecord is one verification pass over one asset.
// Rows are append-only.
type BackupVerificationRecord struct {
	ID                  int64              `json:"id"`
	AssetID             string             `json:"asset_id"`
	Method              string             `json:"method"`
	Status              VerificationStatus `json:"status"`
	ChecksPerformed     string             `json:"checks_performed"`       // JSON array of check names
	IssuesFound         *string            `json:"issues_found,omitempty"` // JSON array of issue strings
	HealthScore         int                `json:"health_score"`
	VerifiedAt          time.Time          `json:"verified_at"`
	NextVerificationDue time.Time          `json:"next_verification_due"`
}

// VerificationOutcome maps a checker status to the persisted record status
// and health score.
func VerificationOutcome(status BackupStatus) (VerificationStatus, int) {
	switch status {
	case BackupStatusSuccess:
		return VerificationPassed, HealthScorePassed
	case BackupStatusMissing:
		return VerificationWarning, HealthScoreWarning
	default:
		return VerificationFailed, HealthScoreFailed
	}
}
