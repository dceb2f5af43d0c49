package automation

import (
	"encoding/json"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
)

// Scoring adjustments.
const (
	agedAssetBonus      = 10
	backupSignalBonus   = 15
	warrantySignalBonus = 10
	densityPointsPer    = 5
	densityCap          = 20
	agedAssetYears      = 5
	maxScore            = 100
)

// Risk level boundaries, inclusive at the lower edge.
const (
	criticalBoundary = 80
	highBoundary     = 60
	mediumBoundary   = 40
)

// Confidence reflects how much asset context backed the score.
const (
	confidenceWithAsset    = 0.9
	confidenceWithoutAsset = 0.7
)

// ScoringContext is the snapshot a signal is scored against.
type ScoringContext struct {
	// Asset is the referenced asset, nil when the signal carries no asset
	// or the asset is unknown to the directory.
	Asset *models.Asset
	// OtherActiveSignals counts other active signals on the same asset.
	OtherActiveSignals int
	Now                time.Time
}

// RiskScoringEngine derives a 0-100 risk score from a signal and its
// context. Pure: no I/O, no side effects.
type RiskScoringEngine struct{}

// NewRiskScoringEngine creates a new scoring engine.
func NewRiskScoringEngine() *RiskScoringEngine {
	return &RiskScoringEngine{}
}

// Score computes the risk score for one signal.
func (e *RiskScoringEngine) Score(signal *models.Signal, sctx ScoringContext) *models.RiskScore {
	factors := make(map[string]int)

	base := severityBase(signal.Severity)
	factors["base_severity"] = base

	adjustments := 0
	if sctx.Asset != nil && sctx.Asset.AgeYears(sctx.Now) > agedAssetYears {
		adjustments += agedAssetBonus
		factors["asset_age"] = agedAssetBonus
	}
	if signal.Type.IsBackupKind() {
		adjustments += backupSignalBonus
		factors["backup_signal"] = backupSignalBonus
	}
	if signal.Type == models.SignalWarrantyExpired {
		adjustments += warrantySignalBonus
		factors["warranty_signal"] = warrantySignalBonus
	}
	if sctx.OtherActiveSignals > 0 {
		density := sctx.OtherActiveSignals * densityPointsPer
		if density > densityCap {
			density = densityCap
		}
		adjustments += density
		factors["signal_density"] = density
	}

	score := base + adjustments
	if score > maxScore {
		score = maxScore
	}

	confidence := confidenceWithoutAsset
	if sctx.Asset != nil {
		confidence = confidenceWithAsset
	}

	factorsJSON, _ := json.Marshal(factors)

	return &models.RiskScore{
		SignalID:            signal.ID,
		AssetID:             signal.AssetID,
		LocationID:          signal.LocationID,
		Score:               score,
		Level:               RiskLevel(score),
		ContributingFactors: string(factorsJSON),
		Confidence:          confidence,
		CalculatedAt:        sctx.Now,
	}
}

// RiskLevel maps a score to its level. Lower bounds are inclusive.
func RiskLevel(score int) models.Severity {
	switch {
	case score >= criticalBoundary:
		return models.SeverityCritical
	case score >= highBoundary:
		return models.SeverityHigh
	case score >= mediumBoundary:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func severityBase(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return 80
	case models.SeverityHigh:
		return 60
	case models.SeverityMedium:
		return 40
	default:
		return 20
	}
}
