package datetime

import (
	"regexp"
	"strings"
	"time"
)

// Outcome tags how much of a time range could be parsed.
type Outcome int

const (
	NoneParsed Outcome = iota
	OnlyFirstParsed
	OnlySecondParsed
	BothParsed
)

func (o Outcome) String() string {
	switch o {
	case OnlyFirstParsed:
		return "only_first"
	case OnlySecondParsed:
		return "only_second"
	case BothParsed:
		return "both"
	default:
		return "none"
	}
}

type Range struct {
	Outcome Outcome
	Start   time.Time
	End     time.Time
}

var (
	// two clock expressions joined by "to" or a dash, e.g. "3pm to 5pm", "9:30-11 AM"
	rangePattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s*(?:AM|PM)?)\s*(?:to|-)\s*(\d{1,2}(?::\d{2})?\s*(?:AM|PM)?)`)
	rangeSplit   = regexp.MustCompile(`(?i)\s+to\s+|\s*-\s*`)
)

// FindRange searches anywhere in text for a clock range. Each side is parsed
// on its own, so one side may succeed while the other fails. Candidates where
// neither side is a clock (the "10-20" inside "2026-10-20") are skipped.
func FindRange(p Parser, text string) Range {
	for _, m := range rangePattern.FindAllStringSubmatch(text, -1) {
		if r := parsePair(p, m[1], m[2]); r.Outcome != NoneParsed {
			return r
		}
	}
	return Range{}
}

// SplitRange treats the whole text as "<start> to <end>" (or "<start> - <end>").
// Text that does not split into at least two parts yields NoneParsed.
func SplitRange(p Parser, text string) Range {
	parts := rangeSplit.Split(strings.TrimSpace(text), -1)
	if len(parts) < 2 {
		return Range{}
	}
	return parsePair(p, parts[0], parts[1])
}

func parsePair(p Parser, first, second string) Range {
	var r Range
	start, okStart := parseSide(p, first)
	end, okEnd := parseSide(p, second)
	switch {
	case okStart && okEnd:
		r.Outcome = BothParsed
	case okStart:
		r.Outcome = OnlyFirstParsed
	case okEnd:
		r.Outcome = OnlySecondParsed
	}
	if okStart {
		r.Start = start
	}
	if okEnd {
		r.End = end
	}
	return r
}

func parseSide(p Parser, s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	parsed, ok := p.ParseDateTime(s, false)
	if !ok || !parsed.HasClock {
		return time.Time{}, false
	}
	return parsed.Time, true
}
