package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenRouterClient implements Completer against an OpenAI-compatible chat completions
// endpoint, OpenRouter by default.
type OpenRouterClient struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenRouterClient builds a client from opts. apiKey is required; empty fields fall
// back to the package defaults.
func NewOpenRouterClient(opts Options) (*OpenRouterClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openrouter: missing api key")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenRouterBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultOpenRouterModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithMaxRetries(opts.MaxRetries),
	}
	for k, v := range opts.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}

	return &OpenRouterClient{
		client:      openai.NewClient(reqOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
	}, nil
}

// Complete sends the persona and task as a two-message chat and returns the first choice.
// A choice with blank content is returned as "" without error.
func (c *OpenRouterClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: chat completion: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("openrouter: %w (no choices)", ErrEmptyCompletion)
	}

	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}
