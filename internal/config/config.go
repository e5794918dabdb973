// README: Config loader; .env file first, then env vars with defaults for HTTP, LLM, planner and quota settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tripcrew/internal/ai"
)

var (
	ErrMissingAPIKey   = errors.New("missing LLM API key")
	ErrUnknownProvider = errors.New("unknown LLM provider")
)

const (
	ProviderOpenRouter = ai.ProviderOpenRouter
	ProviderGemini     = ai.ProviderGemini
)

type LLMConfig struct {
	Provider    string
	APIKey      string
	GeminiKey   string
	BaseURL     string
	Model       string
	GeminiModel string
	Temperature float64
	MaxRetries  int
	Referer     string
	Title       string
	Timeout     time.Duration
}

// Key returns the API key of the selected provider.
func (c LLMConfig) Key() string {
	if c.Provider == ProviderGemini {
		return c.GeminiKey
	}
	return c.APIKey
}

// Options maps the section onto client options for the selected provider.
func (c LLMConfig) Options() ai.Options {
	if c.Provider == ProviderGemini {
		return ai.Options{
			APIKey:      c.GeminiKey,
			Model:       c.GeminiModel,
			Temperature: c.Temperature,
			MaxRetries:  c.MaxRetries,
			Timeout:     c.Timeout,
		}
	}
	return ai.Options{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxRetries:  c.MaxRetries,
		Headers: map[string]string{
			"HTTP-Referer": c.Referer,
			"X-Title":      c.Title,
		},
		Timeout: c.Timeout,
	}
}

type PlannerConfig struct {
	RunTimeout          time.Duration
	BudgetFromItinerary bool
}

type QuotaConfig struct {
	RunsPerDay int
}

type Config struct {
	HTTP struct {
		Addr string
		// TrustedProxies may set X-Forwarded-For; empty trusts none.
		TrustedProxies []string
	}
	Redis struct {
		Addr string
	}
	Maps struct {
		APIKey string
	}
	Session struct {
		TTL time.Duration
	}
	Log struct {
		Level       string
		Development bool
	}
	LLM     LLMConfig
	Planner PlannerConfig
	Quota   QuotaConfig
}

// binding ties a config key to its environment variable and default.
type binding struct {
	key, env string
	def      any
}

var bindings = []binding{
	{"http.addr", "TRIPCREW_HTTP_ADDR", ":8501"},
	{"http.trusted_proxies", "TRIPCREW_TRUSTED_PROXIES", ""},
	{"redis.addr", "TRIPCREW_REDIS_ADDR", ""},
	{"maps.api_key", "GOOGLE_MAPS_API_KEY", ""},
	{"session.ttl", "TRIPCREW_SESSION_TTL", 24 * time.Hour},
	{"log.level", "LOG_LEVEL", "info"},
	{"log.development", "LOG_DEVELOPMENT", false},
	{"llm.provider", "LLM_PROVIDER", ProviderOpenRouter},
	{"llm.api_key", "OPENAI_API_KEY", ""},
	{"llm.gemini_key", "GEMINI_API_KEY", ""},
	{"llm.base_url", "LLM_BASE_URL", "https://openrouter.ai/api/v1"},
	{"llm.model", "LLM_MODEL", "openai/gpt-3.5-turbo"},
	{"llm.gemini_model", "GEMINI_MODEL", "gemini-2.0-flash"},
	{"llm.temperature", "LLM_TEMPERATURE", 0.7},
	{"llm.max_retries", "LLM_MAX_RETRIES", 3},
	{"llm.referer", "LLM_REFERER", "http://localhost:8501"},
	{"llm.title", "LLM_TITLE", "AI Travel Planner"},
	{"llm.timeout", "LLM_TIMEOUT", 60 * time.Second},
	{"planner.run_timeout", "PLANNER_RUN_TIMEOUT", 3 * time.Minute},
	{"planner.budget_from_itinerary", "PLANNER_BUDGET_FROM_ITINERARY", false},
	{"quota.runs_per_day", "TRIPCREW_DAILY_RUN_LIMIT", 20},
}

// Load reads configuration from the environment. A .env file in the working directory is
// loaded first when present; variables already set in the process win over it.
// A missing API key for the selected provider is reported as ErrMissingAPIKey.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		_ = v.BindEnv(b.key, b.env)
	}
	return v
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.TrustedProxies = splitList(v.GetString("http.trusted_proxies"))
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Maps.APIKey = v.GetString("maps.api_key")
	cfg.Session.TTL = v.GetDuration("session.ttl")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Development = v.GetBool("log.development")

	cfg.LLM = LLMConfig{
		Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
		APIKey:      strings.TrimSpace(v.GetString("llm.api_key")),
		GeminiKey:   strings.TrimSpace(v.GetString("llm.gemini_key")),
		BaseURL:     v.GetString("llm.base_url"),
		Model:       v.GetString("llm.model"),
		GeminiModel: v.GetString("llm.gemini_model"),
		Temperature: v.GetFloat64("llm.temperature"),
		MaxRetries:  v.GetInt("llm.max_retries"),
		Referer:     v.GetString("llm.referer"),
		Title:       v.GetString("llm.title"),
		Timeout:     v.GetDuration("llm.timeout"),
	}
	cfg.Planner = PlannerConfig{
		RunTimeout:          v.GetDuration("planner.run_timeout"),
		BudgetFromItinerary: v.GetBool("planner.budget_from_itinerary"),
	}
	cfg.Quota.RunsPerDay = v.GetInt("quota.runs_per_day")

	switch cfg.LLM.Provider {
	case ProviderOpenRouter:
		if cfg.LLM.APIKey == "" {
			return cfg, fmt.Errorf("%w: OPENAI_API_KEY environment variable is not set", ErrMissingAPIKey)
		}
	case ProviderGemini:
		if cfg.LLM.GeminiKey == "" {
			return cfg, fmt.Errorf("%w: GEMINI_API_KEY environment variable is not set", ErrMissingAPIKey)
		}
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.LLM.Provider)
	}
	if cfg.LLM.MaxRetries < 0 {
		cfg.LLM.MaxRetries = 0
	}
	return cfg, nil
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
