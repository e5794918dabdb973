package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// retryBaseDelay is the wait before the first retry; it doubles on each further attempt.
var retryBaseDelay = 500 * time.Millisecond

// GeminiProvider implements Completer using Google's Gemini models.
type GeminiProvider struct {
	client     *genai.Client
	modelName  string
	maxRetries int
	timeout    time.Duration
	temp       float32
}

// NewGeminiProvider initializes a new Gemini client.
// opts.APIKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, opts Options) (*GeminiProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	return &GeminiProvider{
		client:     client,
		modelName:  modelName,
		maxRetries: opts.MaxRetries,
		timeout:    opts.Timeout,
		temp:       float32(opts.Temperature),
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Complete sends the task with the persona as system instruction. Failed attempts are
// retried up to maxRetries times with exponential backoff unless ctx is done.
func (p *GeminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	// A model handle per call keeps the system instruction request-scoped.
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(p.temp)
	if prompt.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(prompt.System))
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, retryBaseDelay<<(attempt-1)); err != nil {
				return "", fmt.Errorf("gemini: %w (last error: %v)", err, lastErr)
			}
		}
		text, err := p.generate(ctx, model, prompt.User)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrEmptyCompletion) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("gemini: giving up after %d attempts: %w", p.maxRetries+1, lastErr)
}

func (p *GeminiProvider) generate(ctx context.Context, model *genai.GenerativeModel, message string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w (no candidates)", ErrEmptyCompletion)
	}

	var textParts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			textParts = append(textParts, string(txt))
		}
	}
	return strings.TrimSpace(strings.Join(textParts, "")), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
