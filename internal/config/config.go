// Package config holds the process wide configuration. Secrets and tuning
// are loaded once at start-up and passed into constructors; business logic
// never reads ambient environment state.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	"github.com/go-playground/validator/v10"
	gemini "github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

// Provider selects the structured-output chat backend
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCohere    Provider = "cohere"
)

// MissingKeyError reports an absent credential. It is raised before any
// network call is attempted.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required credential %s", e.Key)
}

// Config is the full application configuration
type Config struct {
	// Provider backend for the structured chat agents
	Provider Provider `yaml:"provider" validate:"omitempty,oneof=openai anthropic cohere"`

	OpenAIAPIKey     string `yaml:"openai_api_key"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`
	CohereAPIKey     string `yaml:"cohere_api_key"`
	CohereBaseURL    string `yaml:"cohere_base_url"`
	GeminiAPIKey     string `yaml:"gemini_api_key"`

	// ChatModel model for the structured chat agents
	ChatModel string `yaml:"chat_model"`
	// GeminiModel model for the plan-act-observe agents
	GeminiModel string `yaml:"gemini_model"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`

	// tool provider endpoints, overridable for tests and mirrors
	ExchangeBaseURL string `yaml:"exchange_base_url"`
	StockBaseURL    string `yaml:"stock_base_url"`
	NewsBaseURL     string `yaml:"news_base_url"`

	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=json console"`
}

// Default returns the baseline configuration before file and env overrides.
func Default() Config {
	return Config{
		Provider:    ProviderOpenAI,
		ChatModel:   "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
		Temperature: 0.1,
		MaxTokens:   1000,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// Load builds the configuration: .env bootstrap, optional YAML file, then
// environment overrides, then validation. path may be empty.
func Load(path string) (*Config, error) {
	godotenv.Load()
	cfg := Default()
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(bs, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setEnvString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*dst = v
				return
			}
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.Provider = Provider(v)
	}
	setEnvString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setEnvString(&c.OpenAIBaseURL, "OPENAI_API_BASE_URL")
	setEnvString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setEnvString(&c.AnthropicBaseURL, "ANTHROPIC_API_BASE_URL")
	setEnvString(&c.CohereAPIKey, "COHERE_API_KEY")
	setEnvString(&c.CohereBaseURL, "COHERE_API_BASE_URL")
	setEnvString(&c.GeminiAPIKey, "GOOGLE_API_KEY", "GEMINI_API_KEY")
	setEnvString(&c.LogLevel, "LOG_LEVEL")
	setEnvString(&c.LogFormat, "LOG_FORMAT")
}

// Instructor returns the structured-output client for the configured
// provider, or a MissingKeyError when its credential is absent.
func (c *Config) Instructor() (instructor.Instructor, error) {
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return nil, &MissingKeyError{Key: "ANTHROPIC_API_KEY"}
		}
		opts := make([]anthropic.ClientOption, 0, 1)
		if c.AnthropicBaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(c.AnthropicBaseURL))
		}
		clt := anthropic.NewClient(c.AnthropicAPIKey, opts...)
		return instructor.FromAnthropic(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithValidation()), nil
	case ProviderCohere:
		if c.CohereAPIKey == "" {
			return nil, &MissingKeyError{Key: "COHERE_API_KEY"}
		}
		opts := make([]cohereOption.RequestOption, 0, 2)
		opts = append(opts, cohereOption.WithToken(c.CohereAPIKey))
		if c.CohereBaseURL != "" {
			opts = append(opts, cohereOption.WithBaseURL(c.CohereBaseURL))
		}
		clt := cohereClient.NewClient(opts...)
		return instructor.FromCohere(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithValidation()), nil
	default:
		if c.OpenAIAPIKey == "" {
			return nil, &MissingKeyError{Key: "OPENAI_API_KEY"}
		}
		cfg := openai.DefaultConfig(c.OpenAIAPIKey)
		if c.OpenAIBaseURL != "" {
			cfg.BaseURL = c.OpenAIBaseURL
		}
		clt := openai.NewClientWithConfig(cfg)
		return instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithValidation()), nil
	}
}

// GeminiClient returns the Gemini API client, or a MissingKeyError when the
// credential is absent. No network traffic happens until the first request.
func (c *Config) GeminiClient(ctx context.Context) (*gemini.Client, error) {
	if c.GeminiAPIKey == "" {
		return nil, &MissingKeyError{Key: "GOOGLE_API_KEY"}
	}
	return gemini.NewClient(ctx, option.WithAPIKey(c.GeminiAPIKey))
}
