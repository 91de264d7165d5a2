package datetime

import (
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) // Thursday
}

func TestWhenParserDates(t *testing.T) {
	p := NewWhenParser(fixedNow)
	tests := []struct {
		text string
		want string
	}{
		{"tomorrow", "2026-10-16"},
		{"today", "2026-10-15"},
		{"the day after tomorrow", "2026-10-17"},
		{"in 3 days", "2026-10-18"},

		{"friday", "2026-10-16"},
		{"Friday", "2026-10-16"},
		{"this friday", "2026-10-16"},
		{"on fri", "2026-10-16"},
		{"thursday", "2026-10-15"},
		{"next Friday", "2026-10-23"},
		{"next monday", "2026-10-19"},
		{"next thursday", "2026-10-22"},
		{"last friday", "2026-10-09"},
		{"lunch with Sam on Friday", "2026-10-16"},

		{"2026-10-20", "2026-10-20"},
		{"2026/10/20", "2026-10-20"},
		{"10/20/2026", "2026-10-20"},
		{"10/20", "2026-10-20"},
		{"on 2026-10-20 please", "2026-10-20"},

		{"March 3", "2027-03-03"},
		{"mar 3rd", "2027-03-03"},
		{"3rd of March", "2027-03-03"},
		{"January 5", "2027-01-05"},
		{"Dec 24", "2026-12-24"},
		{"October 20", "2026-10-20"},
		{"March 3, 2026", "2026-03-03"},
		{"9/1", "2027-09-01"},

		{"June", "2027-06-15"},
		{"in march", "2027-03-15"},
		{"sometime during november", "2026-11-15"},
		{"October", "2026-10-15"},
		{"june 2026", "2026-06-15"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := p.ParseDateTime(tt.text, true)
			if !ok || !got.HasDate {
				t.Fatalf("ParseDateTime(%q) = %+v, %v; want a date", tt.text, got, ok)
			}
			if FormatDate(got.Time) != tt.want {
				t.Fatalf("date=%s, want %s", FormatDate(got.Time), tt.want)
			}
		})
	}
}

func TestWhenParserWithoutFutureBias(t *testing.T) {
	p := NewWhenParser(fixedNow)
	for text, want := range map[string]string{
		"March 3":    "2026-03-03",
		"June":       "2026-06-15",
		"friday":     "2026-10-16",
		"2026-10-20": "2026-10-20",
	} {
		got, ok := p.ParseDateTime(text, false)
		if !ok || FormatDate(got.Time) != want {
			t.Fatalf("ParseDateTime(%q, false) = %s, %v; want %s", text, FormatDate(got.Time), ok, want)
		}
	}
}

func TestWhenParserClock(t *testing.T) {
	p := NewWhenParser(fixedNow)
	tests := []struct {
		text string
		want string
	}{
		{"3pm", "15:00"},
		{"5 PM", "17:00"},
		{"9:30", "09:30"},
		{"11:15am", "11:15"},
		{"noon", "12:00"},
		{"midnight", "00:00"},
	}
	for _, tt := range tests {
		got, ok := p.ParseDateTime(tt.text, false)
		if !ok || !got.HasClock {
			t.Fatalf("ParseDateTime(%q) = %+v, %v; want a clock", tt.text, got, ok)
		}
		if got.HasDate {
			t.Fatalf("ParseDateTime(%q) reported a date", tt.text)
		}
		if FormatClock(got.Time) != tt.want {
			t.Fatalf("clock(%q)=%s, want %s", tt.text, FormatClock(got.Time), tt.want)
		}
		if FormatDate(got.Time) != "2026-10-15" {
			t.Fatalf("clock-only %q should sit on today, got %s", tt.text, FormatDate(got.Time))
		}
	}
}

func TestWhenParserDateAndClock(t *testing.T) {
	p := NewWhenParser(fixedNow)
	got, ok := p.ParseDateTime("friday at 3pm", true)
	if !ok || !got.HasDate || !got.HasClock {
		t.Fatalf("got %+v, %v", got, ok)
	}
	if want := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC); !got.Time.Equal(want) {
		t.Fatalf("time=%s, want %s", got.Time, want)
	}

	got, ok = p.ParseDateTime("2026-10-20", true)
	if !ok || got.HasClock {
		t.Fatalf("an ISO date must not read as a clock: %+v", got)
	}
}

func TestWhenParserClockOnlySentenceHasNoDate(t *testing.T) {
	p := NewWhenParser(fixedNow)
	got, ok := p.ParseDateTime("create event from 3pm to 5pm", true)
	if !ok {
		t.Fatalf("expected the clock to parse")
	}
	if got.HasDate {
		t.Fatalf("clock-only sentence reported a date: %s", FormatDate(got.Time))
	}
}

func TestWhenParserRejects(t *testing.T) {
	p := NewWhenParser(fixedNow)
	for _, in := range []string{
		"",
		"   ",
		"the office kitchen",
		"may I schedule a meeting",
		"we may need a room",
		"24/7 support",
		"2026-13-40",
	} {
		if got, ok := p.ParseDateTime(in, true); ok {
			t.Fatalf("ParseDateTime(%q) unexpectedly succeeded: %+v", in, got)
		}
	}
}

func TestResolveWeekday(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	if got := resolveWeekday(sunday, "next", time.Monday); FormatDate(got) != "2026-10-19" {
		t.Fatalf("next monday from sunday = %s", FormatDate(got))
	}
	if got := resolveWeekday(sunday, "", time.Sunday); FormatDate(got) != "2026-10-18" {
		t.Fatalf("sunday from sunday = %s", FormatDate(got))
	}
	if got := resolveWeekday(sunday, "last", time.Sunday); FormatDate(got) != "2026-10-11" {
		t.Fatalf("last sunday from sunday = %s", FormatDate(got))
	}
}
