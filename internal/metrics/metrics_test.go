package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTurn(t *testing.T) {
	before := testutil.ToFloat64(turnsTotal.WithLabelValues(OutcomePrompt))
	RecordTurn(OutcomePrompt)
	RecordTurn(OutcomePrompt)
	if got := testutil.ToFloat64(turnsTotal.WithLabelValues(OutcomePrompt)); got != before+2 {
		t.Fatalf("turns=%v, want %v", got, before+2)
	}
}

func TestSetActiveSessions(t *testing.T) {
	SetActiveSessions(7)
	if got := testutil.ToFloat64(sessionsActive); got != 7 {
		t.Fatalf("sessions_active=%v, want 7", got)
	}
}

func TestMetricsExposed(t *testing.T) {
	RecordSlotFilled("date", SourceDateFallback)
	RecordParseMiss("end_time")
	RecordSummary(SummaryApology)
	RecordAdapterError("classify_intent")

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{
		"vistara_slots_filled_total",
		"vistara_parse_fallback_miss_total",
		"vistara_summaries_total",
		"vistara_adapter_errors_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}
