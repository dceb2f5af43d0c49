package models

import "time"

// Signal is a detected anomaly about an asset or location awaiting
// remediation. Signals are immutable once created except for status and
// resolution time.
type Signal struct {
	ID          int64        `json:"id"`
	AssetID     *string      `json:"asset_id,omitempty"`
	LocationID  int64        `json:"location_id"`
	Type        SignalType   `json:"signal_type"`
	Severity    Severity     `json:"severity"`
	Description string       `json:"description"`
	Payload     string       `json:"payload,omitempty"` // JSON blob with detector detail
	Status      SignalStatus `json:"status"`
	DetectedAt  time.Time    `json:"detected_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
}

// RiskScore is one scoring pass over a signal. Rows are append-only: every
// automation run writes a fresh score per signal it saw.
type RiskScore struct {
	ID                   int64     `json:"id"`
	RunID                string    `json:"run_id"`
	SignalID             int64     `json:"signal_id"`
	AssetID              *string   `json:"asset_id,omitempty"`
	LocationID           int64     `json:"location_id"`
	Score                int       `json:"score"` // 0-100
	Level                Severity  `json:"risk_level"`
	ContributingFactors  string    `json:"contributing_factors"` // JSON map of factor -> points
	Confidence           float64   `json:"confidence"`
	CalculatedAt         time.Time `json:"calculated_at"`
}
