package ai

import "time"

// Default request settings used by the travel planner.
const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-3.5-turbo"
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultTemperature       = 0.7
	DefaultMaxRetries        = 3
)

// Options configures a chat-completion client.
type Options struct {
	// APIKey authenticates against the provider. Required.
	APIKey string

	// BaseURL overrides the provider endpoint (OpenAI-compatible providers only).
	BaseURL string

	// Model is the provider-specific model identifier, e.g. "openai/gpt-3.5-turbo".
	Model string

	Temperature float64

	// MaxRetries is the number of additional attempts on transient failures.
	MaxRetries int

	// Headers are sent with every request. OpenRouter reads "HTTP-Referer" and "X-Title"
	// for app attribution.
	Headers map[string]string

	// Timeout bounds a single request attempt. Zero means no per-attempt limit.
	Timeout time.Duration
}
