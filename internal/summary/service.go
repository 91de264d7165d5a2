package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"vistara/internal/dialogue"
	"vistara/internal/domain"
	"vistara/internal/metrics"
)

const Apology = "Sorry, I didn’t get enough details to summarize."

const (
	DefaultMinTokens = 20
	DefaultMaxTokens = 80
	DefaultTimeout   = 30 * time.Second
)

// Summarizer is the external text summarization model.
type Summarizer interface {
	Summarize(ctx context.Context, req domain.SummarizeTextRequest) (string, error)
}

// Cache stores summaries by template digest. A miss returns ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Config struct {
	MinTokens int
	MaxTokens int
	// Timeout bounds one shared model call; it does not end when the
	// caller that started it gives up.
	Timeout time.Duration
}

type Service struct {
	summarizer Summarizer
	cache      Cache
	minTokens  int
	maxTokens  int
	timeout    time.Duration
	group      singleflight.Group
	logger     *slog.Logger
}

// New builds the summarization service. cache may be nil.
func New(cfg Config, summarizer Summarizer, cache Cache, logger *slog.Logger) *Service {
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = DefaultMinTokens
	}
	if cfg.MaxTokens < cfg.MinTokens {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		summarizer: summarizer,
		cache:      cache,
		minTokens:  cfg.MinTokens,
		maxTokens:  cfg.MaxTokens,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Summarize turns a completed slot set into a one-paragraph description.
// Announcements (a non-blank message slot) are returned as-is; event details
// go through the summarization model unless every field is blank.
func (s *Service) Summarize(ctx context.Context, slots map[string]string) (string, error) {
	if msg := strings.TrimSpace(slots[domain.SlotMessage]); msg != "" {
		metrics.RecordSummary(metrics.SummaryMessage)
		return msg, nil
	}

	text, ok := ComposeTemplate(slots)
	if !ok {
		metrics.RecordSummary(metrics.SummaryApology)
		return Apology, nil
	}

	key := cacheKey(text)
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("summary cache get failed", "error", err)
		} else if hit {
			metrics.RecordSummary(metrics.SummaryCache)
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.summarizer.Summarize(callCtx, domain.SummarizeTextRequest{
			Text:      text,
			MinTokens: s.minTokens,
			MaxTokens: s.maxTokens,
			DoSample:  false,
		})
	})
	if err != nil {
		metrics.RecordAdapterError("summarize")
		return "", &dialogue.AdapterError{Op: "summarize", Err: err}
	}
	out := strings.TrimSpace(v.(string))
	metrics.RecordSummary(metrics.SummaryModel)

	if s.cache != nil && out != "" {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn("summary cache set failed", "error", err)
		}
	}
	return out, nil
}

// ComposeTemplate renders the event description fed to the summarizer.
// ok is false when every field is blank.
func ComposeTemplate(slots map[string]string) (string, bool) {
	field := func(name string) string { return strings.TrimSpace(slots[name]) }

	informative := false
	for _, name := range []string{
		domain.SlotTitle, domain.SlotDate, domain.SlotStartTime,
		domain.SlotEndTime, domain.SlotLocation, domain.SlotDescription,
	} {
		if field(name) != "" {
			informative = true
			break
		}
	}
	if !informative {
		return "", false
	}

	text := fmt.Sprintf(
		"Title: %s. Date: %s. Time: %s to %s. Location: %s. Details: %s.",
		field(domain.SlotTitle),
		field(domain.SlotDate),
		field(domain.SlotStartTime),
		field(domain.SlotEndTime),
		field(domain.SlotLocation),
		field(domain.SlotDescription),
	)
	return text, true
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
