package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vistara/internal/config"
	"vistara/internal/datetime"
	"vistara/internal/db"
	"vistara/internal/dialogue"
	"vistara/internal/httpapi"
	"vistara/internal/lexical"
	"vistara/internal/llm"
	"vistara/internal/metrics"
	"vistara/internal/mqtt"
	"vistara/internal/nlu"
	"vistara/internal/sessions"
	"vistara/internal/slots"
	"vistara/internal/summary"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stdout, nil)).Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schema := slots.Default()
	if cfg.SlotSchemaPath != "" {
		if schema, err = slots.Load(cfg.SlotSchemaPath); err != nil {
			logger.Error("load slot schema failed", "path", cfg.SlotSchemaPath, "error", err)
			os.Exit(1)
		}
	}

	store := sessions.NewStore(cfg.SessionIdleTTL)
	if cfg.SessionIdleTTL > 0 {
		go store.RunJanitor(ctx, cfg.SessionSweepInterval, func(removed, remaining int) {
			metrics.SetActiveSessions(remaining)
			logger.Info("idle sessions evicted", "removed", removed, "remaining", remaining)
		})
		logger.Info("session expiry enabled", "idle_ttl", cfg.SessionIdleTTL, "sweep_interval", cfg.SessionSweepInterval)
	}

	var (
		classifier dialogue.IntentClassifier
		extractor  dialogue.EntityExtractor
	)
	analyzer := lexical.NewAnalyzer()
	nluClient := nlu.NewClient(cfg.NLUBaseURL, cfg.NLUTimeout)
	if nluClient.Enabled() {
		classifier, extractor = nluClient, nluClient
		logger.Info("nlu adapters enabled", "base_url", cfg.NLUBaseURL)
	} else {
		classifier, extractor = analyzer, analyzer
		logger.Info("lexical adapters enabled", "engine", lexical.Engine)
	}

	checks := map[string]httpapi.HealthCheck{}
	var sinks []dialogue.CompletionSink
	var archive httpapi.Archive

	if cfg.DBDSN != "" {
		dbStore, err := db.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Error("connect db failed", "error", err)
			os.Exit(1)
		}
		defer dbStore.Close()

		if err := dbStore.Migrate(ctx); err != nil {
			logger.Error("migrate db failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, dbStore)
		archive = dbStore
		checks["db"] = dbStore.Ping
		logger.Info("completion archive enabled")
	}

	if cfg.MQTTBrokerURL != "" {
		publisher := mqtt.NewPublisher(mqtt.PublisherConfig{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, logger)
		if err := publisher.Start(ctx); err != nil {
			logger.Error("start mqtt publisher failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, publisher)
		logger.Info("completion publisher enabled", "topic", mqtt.TopicCompletions(cfg.MQTTTopicPrefix))
	}

	engine := dialogue.New(dialogue.Config{}, schema, store, classifier, extractor, datetime.NewWhenParser(time.Now), logger, sinks...)

	summarizer, err := newSummarizer(cfg, analyzer, nluClient)
	if err != nil {
		logger.Error("init summarizer failed", "error", err)
		os.Exit(1)
	}

	var cache summary.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := summary.NewRedisCache(ctx, summary.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SummaryCacheTTL,
		})
		if err != nil {
			logger.Warn("summary cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
			checks["redis"] = redisCache.HealthCheck
			logger.Info("summary cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SummaryCacheTTL)
		}
	}

	summarySvc := summary.New(summary.Config{
		MinTokens: cfg.SummaryMinTokens,
		MaxTokens: cfg.SummaryMaxTokens,
		Timeout:   cfg.NLUTimeout,
	}, summarizer, cache, logger)

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Config{
			AllowedOrigins:     cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}, engine, summarySvc, archive, checks, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("vistara chatbot started",
			"addr", cfg.HTTPAddr,
			"intents", schema.IntentNames(),
			"summarizer", cfg.SummarizerBackend,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	cancel()
}

func newSummarizer(cfg config.ServerConfig, analyzer *lexical.Analyzer, nluClient *nlu.Client) (summary.Summarizer, error) {
	switch cfg.SummarizerBackend {
	case config.BackendLexical:
		return analyzer, nil
	case config.BackendNLU:
		return nluClient, nil
	case config.BackendLLM:
		provider, err := llm.NewProvider(llm.Config{
			Provider:         cfg.LLMProvider,
			OpenAIBaseURL:    cfg.OpenAIBaseURL,
			OpenAIAPIKey:     cfg.OpenAIAPIKey,
			AnthropicBaseURL: cfg.AnthropicBaseURL,
			AnthropicAPIKey:  cfg.AnthropicAPIKey,
			Timeout:          cfg.NLUTimeout,
		})
		if err != nil {
			return nil, err
		}
		return llm.NewSummarizer(provider, cfg.LLMModel), nil
	default:
		return nil, fmt.Errorf("unsupported summarizer backend: %s", cfg.SummarizerBackend)
	}
}
