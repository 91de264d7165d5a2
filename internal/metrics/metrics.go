package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistara_turns_total",
		Help: "Dialogue turns processed by outcome",
	}, []string{"outcome"}) // outcome=greeting|prompt|complete|error

	slotsFilledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistara_slots_filled_total",
		Help: "Slots filled by slot name and extraction source",
	}, []string{"slot", "source"}) // source=entity|date_fallback|time_range|turn

	parseFallbackMissTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistara_parse_fallback_miss_total",
		Help: "Date/time parse misses that fell back to verbatim storage",
	}, []string{"slot"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vistara_sessions_active",
		Help: "Sessions currently held in memory",
	})

	summariesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistara_summaries_total",
		Help: "Summaries produced by path",
	}, []string{"path"}) // path=message|model|cache|apology

	adapterErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistara_adapter_errors_total",
		Help: "Extraction/summarization adapter failures by operation",
	}, []string{"op"})
)

const (
	OutcomeGreeting = "greeting"
	OutcomePrompt   = "prompt"
	OutcomeComplete = "complete"
	OutcomeError    = "error"

	SourceEntity       = "entity"
	SourceDateFallback = "date_fallback"
	SourceTimeRange    = "time_range"
	SourceTurn         = "turn"

	SummaryMessage = "message"
	SummaryModel   = "model"
	SummaryCache   = "cache"
	SummaryApology = "apology"
)

func RecordTurn(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
}

func RecordSlotFilled(slot, source string) {
	slotsFilledTotal.WithLabelValues(slot, source).Inc()
}

func RecordParseMiss(slot string) {
	parseFallbackMissTotal.WithLabelValues(slot).Inc()
}

func SetActiveSessions(n int) {
	sessionsActive.Set(float64(n))
}

func RecordSummary(path string) {
	summariesTotal.WithLabelValues(path).Inc()
}

func RecordAdapterError(op string) {
	adapterErrorsTotal.WithLabelValues(op).Inc()
}
