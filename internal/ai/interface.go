package ai

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the provider answered without any choice or candidate.
var ErrEmptyCompletion = errors.New("empty completion")

// Prompt is one chat exchange: the persona as system message and the task as user message.
type Prompt struct {
	System string
	User   string
}

// Completer defines the contract for interacting with chat models.
// This interface allows for swapping providers (OpenRouter, Gemini) without touching the pipeline.
type Completer interface {
	// Complete sends the prompt and returns the raw completion text.
	// Retries on transient failures are the implementation's concern.
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
