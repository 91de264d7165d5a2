package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"vistara/internal/config"
	"vistara/internal/domain"
	"vistara/internal/lexical"
	"vistara/internal/nlu"
)

const readBodyMaxBytes = 64 << 10

func main() {
	config.LoadDotEnv()
	cfg := config.LoadNLUServerConfig()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(lexical.NewAnalyzer(), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("nlu server started", "addr", cfg.HTTPAddr, "engine", lexical.Engine)
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
}

// newRouter serves the lexical analyzer over the wire format nlu.Client
// speaks.
func newRouter(analyzer *lexical.Analyzer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "engine": lexical.Engine})
	})
	r.Post(nlu.PathClassify, func(w http.ResponseWriter, req *http.Request) {
		var in domain.ClassifyRequest
		if err := decodeJSONBody(w, req, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.Text) == "" || len(in.Candidates) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "text and candidates are required"})
			return
		}
		writeJSON(w, http.StatusOK, domain.ClassifyResponse{Labels: analyzer.Rank(in.Text, in.Candidates)})
	})
	r.Post(nlu.PathExtract, func(w http.ResponseWriter, req *http.Request) {
		var in domain.ExtractRequest
		if err := decodeJSONBody(w, req, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.Text) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "text is required"})
			return
		}
		writeJSON(w, http.StatusOK, domain.ExtractResponse{Entities: analyzer.Extract(in.Text)})
	})
	r.Post(nlu.PathSummarize, func(w http.ResponseWriter, req *http.Request) {
		var in domain.SummarizeTextRequest
		if err := decodeJSONBody(w, req, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if strings.TrimSpace(in.Text) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "text is required"})
			return
		}
		start := time.Now()
		out := analyzer.Extractive(in.Text, in.MaxTokens)
		logger.Debug("summarized", "chars", len(in.Text), "latency", time.Since(start))
		writeJSON(w, http.StatusOK, domain.SummarizeTextResponse{Summary: out})
	})
	return r
}

func decodeJSONBody(w http.ResponseWriter, req *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, readBodyMaxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid json")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
