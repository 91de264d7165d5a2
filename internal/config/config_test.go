package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverVars = []string{
	"HTTP_ADDR", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL",
	"SLOT_SCHEMA_PATH", "NLU_BASE_URL", "NLU_TIMEOUT_SECONDS",
	"SUMMARIZER_BACKEND", "SUMMARY_MIN_TOKENS", "SUMMARY_MAX_TOKENS",
	"LLM_PROVIDER", "LLM_MODEL", "OPENAI_BASE_URL", "OPENAI_API_KEY",
	"ANTHROPIC_BASE_URL", "ANTHROPIC_API_KEY",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SUMMARY_CACHE_TTL_SECONDS",
	"DB_DSN", "MQTT_BROKER_URL", "MQTT_CLIENT_ID", "MQTT_USERNAME", "MQTT_PASSWORD", "MQTT_TOPIC_PREFIX",
	"SESSION_IDLE_TTL_SECONDS", "SESSION_SWEEP_INTERVAL_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range serverVars {
		t.Setenv(k, "")
	}
}

func TestLoadServerConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, BackendLexical, cfg.SummarizerBackend)
	assert.Equal(t, 20, cfg.SummaryMinTokens)
	assert.Equal(t, 80, cfg.SummaryMaxTokens)
	assert.Equal(t, 10*time.Second, cfg.NLUTimeout)
	assert.Equal(t, time.Hour, cfg.SummaryCacheTTL)
	assert.Equal(t, "vistara-chatbot", cfg.MQTTClientID)
	assert.Equal(t, "vistara", cfg.MQTTTopicPrefix)
	assert.Zero(t, cfg.SessionIdleTTL)
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval)
	assert.Empty(t, cfg.DBDSN)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadServerConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NLU_BASE_URL", "http://nlu:8100/")
	t.Setenv("SUMMARIZER_BACKEND", "NLU")
	t.Setenv("SESSION_IDLE_TTL_SECONDS", "900")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://nlu:8100", cfg.NLUBaseURL)
	assert.Equal(t, BackendNLU, cfg.SummarizerBackend)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestLoadServerConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"nlu without url", map[string]string{"SUMMARIZER_BACKEND": "nlu"}},
		{"llm openai without key", map[string]string{"SUMMARIZER_BACKEND": "llm"}},
		{"llm claude without key", map[string]string{"SUMMARIZER_BACKEND": "llm", "LLM_PROVIDER": "claude"}},
		{"unknown backend", map[string]string{"SUMMARIZER_BACKEND": "bart"}},
		{"min above max", map[string]string{"SUMMARY_MIN_TOKENS": "90", "SUMMARY_MAX_TOKENS": "80"}},
		{"zero min", map[string]string{"SUMMARY_MIN_TOKENS": "-1"}},
		{"negative ttl", map[string]string{"SESSION_IDLE_TTL_SECONDS": "-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadServerConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadServerConfigLLM(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUMMARIZER_BACKEND", "llm")
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "k")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.LLMProvider)
	assert.Equal(t, "https://api.anthropic.com", cfg.AnthropicBaseURL)
}

func TestLoadDotEnvKeepsExistingEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9999\nMQTT_TOPIC_PREFIX=fromfile\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":7000")
	require.NoError(t, os.Unsetenv("MQTT_TOPIC_PREFIX"))

	LoadDotEnv()
	t.Cleanup(func() { _ = os.Unsetenv("MQTT_TOPIC_PREFIX") })

	assert.Equal(t, ":7000", os.Getenv("HTTP_ADDR"))
	assert.Equal(t, "fromfile", os.Getenv("MQTT_TOPIC_PREFIX"))
}

func TestLoadNLUServerConfig(t *testing.T) {
	t.Setenv("NLU_HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "warn")
	cfg := LoadNLUServerConfig()
	assert.Equal(t, ":8100", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}
