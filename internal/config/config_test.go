package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_API_BASE_URL",
		"ANTHROPIC_API_KEY", "ANTHROPIC_API_BASE_URL", "COHERE_API_KEY",
		"COHERE_API_BASE_URL",
		"GOOGLE_API_KEY", "GEMINI_API_KEY", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
provider: anthropic
anthropic_api_key: yaml-key
chat_model: claude-3-5-haiku-latest
temperature: 0.5
exchange_base_url: http://localhost:9999
log_format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "yaml-key", cfg.AnthropicAPIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.ChatModel)
	assert.InDelta(t, 0.5, cfg.Temperature, 1e-6)
	assert.Equal(t, "http://localhost:9999", cfg.ExchangeBaseURL)
	assert.Equal(t, "json", cfg.LogFormat)
	// untouched fields keep their defaults
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
}

func TestEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "provider: openai\n")
	t.Setenv("LLM_PROVIDER", "cohere")
	t.Setenv("COHERE_API_KEY", "env-key")
	t.Setenv("GEMINI_API_KEY", "alternate-gemini-key")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderCohere, cfg.Provider)
	assert.Equal(t, "env-key", cfg.CohereAPIKey)
	assert.Equal(t, "alternate-gemini-key", cfg.GeminiAPIKey, "GEMINI_API_KEY is the GOOGLE_API_KEY alternate")
}

func TestGoogleKeyPreferredOverAlternate(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "primary")
	t.Setenv("GEMINI_API_KEY", "alternate")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.GeminiAPIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "provider: bogus\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "temperature: 9\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log_level: loud\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestInstructorMissingKeys(t *testing.T) {
	for provider, wantKey := range map[Provider]string{
		ProviderOpenAI:    "OPENAI_API_KEY",
		ProviderAnthropic: "ANTHROPIC_API_KEY",
		ProviderCohere:    "COHERE_API_KEY",
	} {
		cfg := Default()
		cfg.Provider = provider
		_, err := cfg.Instructor()
		var missing *MissingKeyError
		require.ErrorAs(t, err, &missing, "provider %s", provider)
		assert.Equal(t, wantKey, missing.Key)
	}
}

func TestInstructorWithKey(t *testing.T) {
	cfg := Default()
	cfg.OpenAIAPIKey = "sk-test"
	clt, err := cfg.Instructor()
	require.NoError(t, err)
	assert.NotNil(t, clt)
}

func TestGeminiClientMissingKey(t *testing.T) {
	cfg := Default()
	_, err := cfg.GeminiClient(context.Background())
	var missing *MissingKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "GOOGLE_API_KEY", missing.Key)
}
