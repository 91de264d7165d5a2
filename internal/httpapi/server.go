package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vistara/internal/dialogue"
	"vistara/internal/domain"
)

type Converser interface {
	ProcessTurn(ctx context.Context, sessionID, text string) (dialogue.TurnResult, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, slots map[string]string) (string, error)
}

// Archive is the read side of the completion archive.
type Archive interface {
	ListCompletions(ctx context.Context, intent string, limit int) ([]domain.ArchivedCompletion, error)
	GetCompletion(ctx context.Context, sessionID string) (domain.ArchivedCompletion, error)
}

// HealthCheck reports whether an optional dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
}

type Server struct {
	converser  Converser
	summarizer Summarizer
	archive    Archive
	checks     map[string]HealthCheck
	logger     *slog.Logger
}

// NewRouter builds the HTTP surface. archive may be nil, which leaves the
// completion routes unmounted.
func NewRouter(cfg Config, converser Converser, summarizer Summarizer, archive Archive, checks map[string]HealthCheck, logger *slog.Logger) http.Handler {
	s := &Server{
		converser:  converser,
		summarizer: summarizer,
		archive:    archive,
		checks:     checks,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(cors(cfg.AllowedOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(limitBody)
		r.Post("/converse", s.handleConverse)
		r.Post("/summarize", s.handleSummarize)
	})

	if archive != nil {
		r.Route("/v1/completions", func(r chi.Router) {
			r.Get("/", s.handleListCompletions)
			r.Get("/{sessionID}", s.handleGetCompletion)
		})
	}
	return r
}

func (s *Server) handleConverse(w http.ResponseWriter, r *http.Request) {
	var req domain.ConverseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.converser.ProcessTurn(r.Context(), req.SessionID, req.Text)
	if err != nil {
		writeError(w, s.logger, "converse", err)
		return
	}
	writeJSON(w, http.StatusOK, dialogue.BuildResponse(result))
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req domain.SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	summary, err := s.summarizer.Summarize(r.Context(), req.Slots)
	if err != nil {
		writeError(w, s.logger, "summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, domain.SummarizeResponse{Summary: summary})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	failing := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failing[name] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	body := map[string]any{"ok": status == http.StatusOK}
	if len(failing) > 0 {
		body["failing"] = failing
	}
	writeJSON(w, status, body)
}

func (s *Server) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	items, err := s.archive.ListCompletions(r.Context(), r.URL.Query().Get("intent"), limit)
	if err != nil {
		writeError(w, s.logger, "list completions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completions": items})
}

func (s *Server) handleGetCompletion(w http.ResponseWriter, r *http.Request) {
	item, err := s.archive.GetCompletion(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, s.logger, "get completion", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
