package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vistara/internal/datetime"
	"vistara/internal/domain"
	"vistara/internal/metrics"
	"vistara/internal/sessions"
	"vistara/internal/slots"
)

// IntentClassifier ranks candidates for text, best first.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, text string, candidates []string) ([]string, error)
}

type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]domain.Entity, error)
}

// CompletionSink receives a session's completed slot set exactly once.
type CompletionSink interface {
	OnComplete(ctx context.Context, event domain.CompletionEvent) error
}

type Config struct {
	SinkTimeout time.Duration
	Now         func() time.Time
}

type Service struct {
	schema      *slots.Schema
	sessions    *sessions.Store
	classifier  IntentClassifier
	extractor   EntityExtractor
	parser      datetime.Parser
	sinks       []CompletionSink
	sinkTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

func New(cfg Config, schema *slots.Schema, store *sessions.Store, classifier IntentClassifier, extractor EntityExtractor, parser datetime.Parser, logger *slog.Logger, sinks ...CompletionSink) *Service {
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		schema:      schema,
		sessions:    store,
		classifier:  classifier,
		extractor:   extractor,
		parser:      parser,
		sinks:       sinks,
		sinkTimeout: cfg.SinkTimeout,
		now:         cfg.Now,
		logger:      logger,
	}
}

// ProcessTurn feeds one utterance into the session identified by sessionID
// (a new session when empty or unknown) and returns the next prompt or the
// completed slot set.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrInvalidInput
	}

	sess, created := s.sessions.GetOrCreate(sessionID)
	if created {
		metrics.SetActiveSessions(s.sessions.Len())
	}

	sess.Lock()
	result, event, err := s.advance(ctx, sess, text)
	sess.Unlock()
	if err != nil {
		metrics.RecordTurn(metrics.OutcomeError)
		return TurnResult{}, err
	}

	if event != nil {
		s.notify(ctx, *event)
	}
	return result, nil
}

func (s *Service) advance(ctx context.Context, sess *sessions.Session, text string) (TurnResult, *domain.CompletionEvent, error) {
	if sess.Intent == "" {
		if s.schema.IsGreeting(text) {
			metrics.RecordTurn(metrics.OutcomeGreeting)
			return TurnResult{SessionID: sess.ID, Prompt: s.schema.Welcome}, nil, nil
		}
		if err := s.establishIntent(ctx, sess, text); err != nil {
			return TurnResult{}, nil, err
		}
	} else {
		s.fillTargetSlot(sess, text)
	}
	return s.decide(sess)
}

// establishIntent classifies the utterance and harvests every slot it can
// from the same text. Nothing is written to the session unless all adapter
// calls succeed.
func (s *Service) establishIntent(ctx context.Context, sess *sessions.Session, text string) error {
	ranked, err := s.classifier.ClassifyIntent(ctx, text, s.schema.IntentNames())
	if err != nil {
		return s.adapterError("classify_intent", err)
	}
	if len(ranked) == 0 {
		return s.adapterError("classify_intent", errEmptyRanking)
	}
	intent := strings.TrimSpace(ranked[0])
	if _, ok := s.schema.RequiredSlots(intent); !ok {
		return s.adapterError("classify_intent", fmt.Errorf("label %q is not a configured intent", intent))
	}

	entities, err := s.extractor.ExtractEntities(ctx, text)
	if err != nil {
		return s.adapterError("extract_entities", err)
	}

	filled := make(map[string]string)
	sources := make(map[string]string)
	put := func(slot, value, source string) {
		if _, ok := filled[slot]; ok || !s.schema.Requires(intent, slot) {
			return
		}
		filled[slot] = value
		sources[slot] = source
	}

	for _, e := range entities {
		label := strings.ToLower(strings.TrimSpace(e.Label))
		value := strings.TrimSpace(e.Value)
		if value == "" {
			continue
		}
		put(label, value, metrics.SourceEntity)
	}

	if s.schema.Requires(intent, domain.SlotDate) {
		if _, ok := filled[domain.SlotDate]; !ok {
			if p, ok := s.parser.ParseDateTime(text, true); ok && p.HasDate {
				put(domain.SlotDate, datetime.FormatDate(p.Time), metrics.SourceDateFallback)
			}
		}
	}

	if s.schema.HasTimeRange(intent) {
		r := datetime.FindRange(s.parser, text)
		if r.Outcome == datetime.BothParsed || r.Outcome == datetime.OnlyFirstParsed {
			put(domain.SlotStartTime, datetime.FormatClock(r.Start), metrics.SourceTimeRange)
		}
		if r.Outcome == datetime.BothParsed || r.Outcome == datetime.OnlySecondParsed {
			put(domain.SlotEndTime, datetime.FormatClock(r.End), metrics.SourceTimeRange)
		}
	}

	sess.Intent = intent
	for slot, value := range filled {
		s.setSlot(sess, slot, value, sources[slot])
	}
	s.logger.Info("intent established", "session_id", sess.ID, "intent", intent, "prefilled", len(filled))
	return nil
}

// fillTargetSlot interprets text as the value of the first missing slot.
// A completed session has no target and the text is ignored.
func (s *Service) fillTargetSlot(sess *sessions.Session, text string) {
	target, ok := s.schema.NextMissing(sess.Intent, sess.Slots)
	if !ok {
		return
	}

	switch target {
	case domain.SlotDate:
		value := text
		if p, ok := s.parser.ParseDateTime(text, true); ok && p.HasDate {
			value = datetime.FormatDate(p.Time)
		} else {
			s.parseMiss(sess, target, text)
		}
		s.setSlot(sess, target, value, metrics.SourceTurn)
	case domain.SlotStartTime:
		if r := datetime.SplitRange(s.parser, text); r.Outcome == datetime.BothParsed {
			s.setSlot(sess, domain.SlotStartTime, datetime.FormatClock(r.Start), metrics.SourceTimeRange)
			if s.schema.Requires(sess.Intent, domain.SlotEndTime) {
				s.setSlot(sess, domain.SlotEndTime, datetime.FormatClock(r.End), metrics.SourceTimeRange)
			}
			return
		}
		s.setSlot(sess, target, s.clockOrRaw(sess, target, text), metrics.SourceTurn)
	case domain.SlotEndTime:
		s.setSlot(sess, target, s.clockOrRaw(sess, target, text), metrics.SourceTurn)
	default:
		s.setSlot(sess, target, text, metrics.SourceTurn)
	}
}

func (s *Service) clockOrRaw(sess *sessions.Session, slot, text string) string {
	if p, ok := s.parser.ParseDateTime(text, false); ok && p.HasClock {
		return datetime.FormatClock(p.Time)
	}
	s.parseMiss(sess, slot, text)
	return text
}

// setSlot never overwrites: slots are append-only.
func (s *Service) setSlot(sess *sessions.Session, slot, value, source string) {
	if _, ok := sess.Slots[slot]; ok {
		return
	}
	sess.Slots[slot] = value
	metrics.RecordSlotFilled(slot, source)
}

func (s *Service) parseMiss(sess *sessions.Session, slot, text string) {
	metrics.RecordParseMiss(slot)
	s.logger.Debug("parse fallback miss, storing verbatim", "session_id", sess.ID, "slot", slot, "text", text)
}

func (s *Service) decide(sess *sessions.Session) (TurnResult, *domain.CompletionEvent, error) {
	if slot, missing := s.schema.NextMissing(sess.Intent, sess.Slots); missing {
		metrics.RecordTurn(metrics.OutcomePrompt)
		return TurnResult{SessionID: sess.ID, Prompt: s.schema.Prompt(slot)}, nil, nil
	}

	result := TurnResult{
		SessionID:  sess.ID,
		Completion: &domain.Completion{Intent: sess.Intent, Slots: sess.SlotsSnapshot()},
	}
	var event *domain.CompletionEvent
	if !sess.Completed {
		sess.Completed = true
		event = &domain.CompletionEvent{
			SessionID:   sess.ID,
			Intent:      sess.Intent,
			Slots:       sess.SlotsSnapshot(),
			CompletedAt: s.now().UTC(),
		}
		s.logger.Info("session complete", "session_id", sess.ID, "intent", sess.Intent)
	}
	metrics.RecordTurn(metrics.OutcomeComplete)
	return result, event, nil
}

func (s *Service) notify(ctx context.Context, event domain.CompletionEvent) {
	if len(s.sinks) == 0 {
		return
	}
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sinkTimeout)
	defer cancel()
	for _, sink := range s.sinks {
		if err := sink.OnComplete(sinkCtx, event); err != nil {
			s.logger.Warn("completion sink failed", "session_id", event.SessionID, "sink", fmt.Sprintf("%T", sink), "error", err)
		}
	}
}

func (s *Service) adapterError(op string, err error) error {
	metrics.RecordAdapterError(op)
	return &AdapterError{Op: op, Err: err}
}
