package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistara/internal/datetime"
	"vistara/internal/domain"
)

func newWhenHarness(ranked []string, entities ...domain.Entity) *harness {
	return newHarnessWithParser(datetime.NewWhenParser(func() time.Time { return day(10, 15, 9, 0) }), ranked, entities...)
}

func TestWhenParserEventFirstTurn(t *testing.T) {
	h := newWhenHarness(eventFirst, domain.Entity{Label: "LOCATION", Value: "office"})

	res := h.turn(t, "", "schedule a meeting tomorrow from 3pm to 5pm at the office")
	assert.Equal(t, "What’s the title of the event?", res.Prompt)
	assert.Equal(t, map[string]string{
		"date":       "2026-10-16",
		"start_time": "15:00",
		"end_time":   "17:00",
		"location":   "office",
	}, h.session(t, res.SessionID).Slots)
}

func TestWhenParserContentDateTurn(t *testing.T) {
	h := newWhenHarness(contentFirst, domain.Entity{Label: "content_type", Value: "update"})

	res := h.turn(t, "", "I need to post an update")
	assert.Equal(t, "On which date should it happen?", res.Prompt)

	res = h.turn(t, res.SessionID, "next Friday")
	assert.Equal(t, "What’s the content message?", res.Prompt)
	assert.Equal(t, "2026-10-23", h.session(t, res.SessionID).Slots["date"])
}

func TestWhenParserDateTurnFormats(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"2026-10-20", "2026-10-20"},
		{"10/20/2026", "2026-10-20"},
		{"2026/10/20", "2026-10-20"},
		{"March 3", "2027-03-03"},
		{"3rd of March", "2027-03-03"},
		{"in march", "2027-03-15"},
		{"friday", "2026-10-16"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			h := newWhenHarness(contentFirst, domain.Entity{Label: "content_type", Value: "update"})
			res := h.turn(t, "", "I need to post an update")
			res = h.turn(t, res.SessionID, tt.text)
			assert.Equal(t, tt.want, h.session(t, res.SessionID).Slots["date"])
		})
	}
}

func TestWhenParserFirstTurnISODate(t *testing.T) {
	h := newWhenHarness(eventFirst)
	res := h.turn(t, "", "book the hall on 2026-10-20 from 3pm to 5pm")
	sess := h.session(t, res.SessionID)
	assert.Equal(t, "2026-10-20", sess.Slots["date"])
	assert.Equal(t, "15:00", sess.Slots["start_time"])
	assert.Equal(t, "17:00", sess.Slots["end_time"])
}

func TestWhenParserFirstTurnWithoutDateLeavesDateOpen(t *testing.T) {
	for _, text := range []string{
		"create event from 3pm to 5pm",
		"may I schedule a meeting",
	} {
		t.Run(text, func(t *testing.T) {
			h := newWhenHarness(eventFirst, domain.Entity{Label: "title", Value: "Sync"})
			res := h.turn(t, "", text)
			sess := h.session(t, res.SessionID)
			_, has := sess.Slots["date"]
			require.False(t, has, "date should stay unfilled, got %q", sess.Slots["date"])
			assert.Equal(t, "On which date should it happen?", res.Prompt)
		})
	}
}

func TestWhenParserClockForDateTargetStoredVerbatim(t *testing.T) {
	h := newWhenHarness(contentFirst, domain.Entity{Label: "content_type", Value: "update"})
	res := h.turn(t, "", "I need to post an update")
	res = h.turn(t, res.SessionID, "3pm")
	assert.Equal(t, "3pm", h.session(t, res.SessionID).Slots["date"])
}
