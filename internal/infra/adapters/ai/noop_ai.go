package ai

import (
	"context"

	"notion-reminder-service/internal/domain/ports/adapter"
)

var _ adapter.Summarizer = (*NoopSummarizer)(nil)

// NoopSummarizer echoes the prompt back, for dev runs without an API key.
type NoopSummarizer struct{}

func NewNoopSummarizer() *NoopSummarizer { return &NoopSummarizer{} }

func (NoopSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	return prompt, nil
}
