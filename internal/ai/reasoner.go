package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Reasoner is the go-openai backed reasoning client used for remediation
// guidance.
type Reasoner struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewReasoner creates a reasoning client.
func NewReasoner(apiKey, model string, temperature float32, logger *zap.Logger) *Reasoner {
	return &Reasoner{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Model returns the configured model identifier.
func (r *Reasoner) Model() string {
	return r.model
}

// Complete sends one chat completion request and returns the response text.
func (r *Reasoner) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	r.logger.Debug("Sending completion request",
		zap.String("model", r.model),
		zap.Int("max_tokens", maxTokens))

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsRetryable classifies reasoning backend failures. Rate limits and server
// faults are transient; everything else propagates on first attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	// Transport-level faults without a status code
	msg := err.Error()
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}

func retryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code < 600
}
