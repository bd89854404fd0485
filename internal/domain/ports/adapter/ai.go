package adapter

import "context"

// Summarizer turns a prompt into a short natural-language summary.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
