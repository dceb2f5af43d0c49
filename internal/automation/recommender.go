package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jordanwu/asset-compliance/internal/models"
	"go.uber.org/zap"
)

const recommendationSystemPrompt = "You are an IT compliance advisor. Given a detected anomaly about an IT asset, respond with concise, actionable remediation guidance for the responsible technician. Plain text, at most a short paragraph."

// defaultRecommendationConfidence is recorded on generated recommendations;
// the backend returns free text, so there is no per-response signal to
// derive it from.
const defaultRecommendationConfidence = 0.8

// RecommendationGenerator asks the external reasoning backend for
// remediation guidance, one signal at a time, with bounded retry on
// transient backend failures.
type RecommendationGenerator struct {
	client    ReasoningClient
	retry     *RetryStrategy
	retryable func(error) bool
	maxTokens int
	logger    *zap.Logger
}

// NewRecommendationGenerator creates a generator. The retryable classifier
// is pluggable because different backends signal retryability differently.
func NewRecommendationGenerator(client ReasoningClient, retry *RetryStrategy, retryable func(error) bool, maxTokens int, logger *zap.Logger) *RecommendationGenerator {
	return &RecommendationGenerator{
		client:    client,
		retry:     retry,
		retryable: retryable,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Generate produces a recommendation for one signal. The returned error
// wraps ErrExternalService once retries are exhausted or the failure is not
// retryable.
func (g *RecommendationGenerator) Generate(ctx context.Context, signal *models.Signal, runID string) (*models.AIRecommendation, error) {
	prompt := buildRecommendationPrompt(signal)

	var text string
	err := g.retry.Do(ctx, g.retryable, func(ctx context.Context) error {
		out, callErr := g.client.Complete(ctx, recommendationSystemPrompt, prompt, g.maxTokens)
		if callErr != nil {
			return callErr
		}
		text = out
		return nil
	})
	if err != nil {
		g.logger.Warn("Recommendation generation failed",
			zap.Int64("signal_id", signal.ID),
			zap.String("signal_type", string(signal.Type)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: recommendation for signal %d: %v", ErrExternalService, signal.ID, err)
	}

	return &models.AIRecommendation{
		RunID:       runID,
		TargetType:  "signal",
		TargetID:    signal.ID,
		Title:       fmt.Sprintf("Remediation guidance: %s", signal.Type),
		Description: strings.TrimSpace(text),
		Priority:    signal.Severity,
		Confidence:  defaultRecommendationConfidence,
		Status:      models.RecommendationProposed,
		Model:       g.client.Model(),
		CreatedAt:   time.Now(),
	}, nil
}

func buildRecommendationPrompt(signal *models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Anomaly type: %s\n", signal.Type)
	fmt.Fprintf(&b, "Severity: %s\n", signal.Severity)
	fmt.Fprintf(&b, "Detail: %s\n", signal.Description)
	if signal.AssetID != nil {
		fmt.Fprintf(&b, "Asset: %s\n", *signal.AssetID)
	}
	fmt.Fprintf(&b, "Location: %d\n", signal.LocationID)
	b.WriteString("\nWhat should the technician do to remediate this?")
	return b.String()
}
