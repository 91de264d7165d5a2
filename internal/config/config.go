package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendLexical = "lexical"
	BackendNLU     = "nlu"
	BackendLLM     = "llm"
)

type ServerConfig struct {
	HTTPAddr           string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	LogLevel           slog.Level

	SlotSchemaPath string

	NLUBaseURL string
	NLUTimeout time.Duration

	SummarizerBackend string
	SummaryMinTokens  int
	SummaryMaxTokens  int
	LLMProvider       string
	LLMModel          string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	AnthropicBaseURL  string
	AnthropicAPIKey   string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SummaryCacheTTL time.Duration

	DBDSN string

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration
}

type NLUServerConfig struct {
	HTTPAddr string
	LogLevel slog.Level
}

// LoadDotEnv loads the first .env file found; variables already present in
// the environment win.
func LoadDotEnv() {
	for _, path := range []string{".env", "../.env"} {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8000"),
		CORSAllowedOrigins: splitList(getenvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: getenvIntDefault("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           parseLevel(os.Getenv("LOG_LEVEL")),

		SlotSchemaPath: strings.TrimSpace(os.Getenv("SLOT_SCHEMA_PATH")),

		NLUBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("NLU_BASE_URL")), "/"),
		NLUTimeout: time.Duration(getenvIntDefault("NLU_TIMEOUT_SECONDS", 10)) * time.Second,

		SummarizerBackend: strings.ToLower(getenvDefault("SUMMARIZER_BACKEND", BackendLexical)),
		SummaryMinTokens:  getenvIntDefault("SUMMARY_MIN_TOKENS", 20),
		SummaryMaxTokens:  getenvIntDefault("SUMMARY_MAX_TOKENS", 80),
		LLMProvider:       strings.ToLower(getenvDefault("LLM_PROVIDER", "openai")),
		LLMModel:          getenvDefault("LLM_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getenvDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicBaseURL:  getenvDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getenvIntDefault("REDIS_DB", 0),
		SummaryCacheTTL: time.Duration(getenvIntDefault("SUMMARY_CACHE_TTL_SECONDS", 3600)) * time.Second,

		DBDSN: os.Getenv("DB_DSN"),

		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("MQTT_CLIENT_ID", "vistara-chatbot"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "vistara"),

		SessionIdleTTL:       time.Duration(getenvIntDefault("SESSION_IDLE_TTL_SECONDS", 0)) * time.Second,
		SessionSweepInterval: time.Duration(getenvIntDefault("SESSION_SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
	}

	switch cfg.SummarizerBackend {
	case BackendLexical:
	case BackendNLU:
		if cfg.NLUBaseURL == "" {
			return ServerConfig{}, fmt.Errorf("NLU_BASE_URL is required when SUMMARIZER_BACKEND=nlu")
		}
	case BackendLLM:
		if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
			return ServerConfig{}, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		if cfg.LLMProvider == "claude" && cfg.AnthropicAPIKey == "" {
			return ServerConfig{}, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
		}
	default:
		return ServerConfig{}, fmt.Errorf("unsupported SUMMARIZER_BACKEND: %s", cfg.SummarizerBackend)
	}

	if cfg.SummaryMinTokens <= 0 || cfg.SummaryMinTokens > cfg.SummaryMaxTokens {
		return ServerConfig{}, fmt.Errorf("invalid summary bounds: min=%d max=%d", cfg.SummaryMinTokens, cfg.SummaryMaxTokens)
	}
	if cfg.SessionIdleTTL < 0 {
		return ServerConfig{}, fmt.Errorf("SESSION_IDLE_TTL_SECONDS must not be negative")
	}
	if cfg.SessionSweepInterval <= 0 {
		cfg.SessionSweepInterval = time.Minute
	}

	return cfg, nil
}

func LoadNLUServerConfig() NLUServerConfig {
	return NLUServerConfig{
		HTTPAddr: getenvDefault("NLU_HTTP_ADDR", ":8100"),
		LogLevel: parseLevel(os.Getenv("LOG_LEVEL")),
	}
}

func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}
