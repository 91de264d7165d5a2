// Package datetime turns free-form English date and time expressions into
// slot values.
package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Parsed is a resolved expression. HasDate and HasClock report which parts the
// text actually stated; a missing date is filled with the reference day and a
// missing clock with midnight.
type Parsed struct {
	Time     time.Time
	HasDate  bool
	HasClock bool
}

// Parser resolves text to a point in time. ok is false when nothing in text
// could be understood; it never fails otherwise.
type Parser interface {
	ParseDateTime(text string, futureBias bool) (p Parsed, ok bool)
}

func FormatDate(t time.Time) string  { return t.Format(DateLayout) }
func FormatClock(t time.Time) string { return t.Format(ClockLayout) }

const (
	monthAlt   = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	numberAlt  = `(?:a|an|one|two|three|four|five|six|seven|eight|nine|ten|\d+)`
	periodAlt  = `(?:days?|weeks?|months?|years?)`
	meridiemRe = `(?:a\.m\.|p\.m\.|am|pm)`
)

var (
	isoDate   = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	slashDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	monthDay  = regexp.MustCompile(`\b` + monthAlt + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	dayMonth  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthAlt + `\b\.?(?:,?\s+(\d{4})\b)?`)

	weekdayPhrase = regexp.MustCompile(`\b(?:(next|this|coming|last)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	weekdayShort  = regexp.MustCompile(`^(?:(next|this|coming|last|on)\s+)?(mon|tues?|wed|thur?s?|fri|sat|sun)\.?$`)

	// a month on its own ("june", "next march 2027") or introduced by a
	// preposition inside a sentence ("sometime in march"); a bare "may" in
	// running text is a verb
	monthWhole    = regexp.MustCompile(`^(?:(?:in|during|this|next)\s+)?` + monthAlt + `\.?(?:\s+(\d{4}))?$`)
	monthInPhrase = regexp.MustCompile(`\b(?:in|during)\s+` + monthAlt + `\b(?:\s+(\d{4})\b)?`)

	relativeDate = regexp.MustCompile(`\b(?:(?:the\s+)?day\s+after\s+tomorrow|today|tonight|tomorrow|tmr|yesterday|(?:in|within)\s+` + numberAlt + `\s+` + periodAlt + `|` + numberAlt + `\s+` + periodAlt + `\s+ago)\b`)

	clockSpan = regexp.MustCompile(`\b\d{1,2}(?::[0-5]\d)?\s*` + meridiemRe + `(?:\W|$)|\b(?:[01]?\d|2[0-3]):[0-5]\d\b`)
	namedHour = regexp.MustCompile(`\b(noon|midday|midnight)\b`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdayByPrefix = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday, "thu": time.Thursday,
	"fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

// WhenParser recognises calendar dates, weekdays and month names itself and
// hands relative phrases ("tomorrow", "in 3 days") and clock times to the
// when rule engine.
type WhenParser struct {
	w   *when.Parser
	now func() time.Time
}

// NewWhenParser builds a parser with the English and common rule sets.
// now is the reference clock for relative expressions; nil means time.Now.
func NewWhenParser(now func() time.Time) *WhenParser {
	if now == nil {
		now = time.Now
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{w: w, now: now}
}

// ParseDateTime resolves the date and clock parts of text independently.
// With futureBias, a month and day written without a year that falls before
// today moves to next year.
func (p *WhenParser) ParseDateTime(text string, futureBias bool) (Parsed, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Parsed{}, false
	}
	base := p.now()
	today := startOfDay(base)

	date, hasDate := p.resolveDate(lower, today, base, futureBias)
	hour, minute, hasClock := p.resolveClock(lower, base)
	if !hasDate && !hasClock {
		return Parsed{}, false
	}
	if !hasDate {
		date = today
	}
	return Parsed{
		Time:     time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, base.Location()),
		HasDate:  hasDate,
		HasClock: hasClock,
	}, true
}

func (p *WhenParser) resolveDate(text string, today, base time.Time, futureBias bool) (time.Time, bool) {
	for _, m := range isoDate.FindAllStringSubmatch(text, -1) {
		if d, ok := calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), today.Location()); ok {
			return d, true
		}
	}
	for _, m := range slashDate.FindAllStringSubmatch(text, -1) {
		if d, ok := yearOptional(m[3], atoi(m[1]), atoi(m[2]), today, futureBias); ok {
			return d, true
		}
	}
	for _, m := range monthDay.FindAllStringSubmatch(text, -1) {
		if d, ok := yearOptional(m[3], int(monthOf(m[1])), atoi(m[2]), today, futureBias); ok {
			return d, true
		}
	}
	for _, m := range dayMonth.FindAllStringSubmatch(text, -1) {
		if d, ok := yearOptional(m[3], int(monthOf(m[2])), atoi(m[1]), today, futureBias); ok {
			return d, true
		}
	}

	if m := weekdayPhrase.FindStringSubmatch(text); m != nil {
		return resolveWeekday(today, m[1], weekdayByPrefix[m[2][:3]]), true
	}
	if m := weekdayShort.FindStringSubmatch(text); m != nil {
		return resolveWeekday(today, m[1], weekdayByPrefix[m[2][:3]]), true
	}

	if span := relativeDate.FindString(text); span != "" {
		if strings.Contains(span, "after tomorrow") {
			return today.AddDate(0, 0, 2), true
		}
		res, err := p.w.Parse(span, base)
		if err == nil && res != nil {
			return startOfDay(res.Time), true
		}
	}

	m := monthWhole.FindStringSubmatch(text)
	if m == nil {
		m = monthInPhrase.FindStringSubmatch(text)
	}
	if m != nil {
		month := monthOf(m[1])
		year := today.Year()
		if m[2] != "" {
			year = atoi(m[2])
		}
		d := time.Date(year, month, min(today.Day(), daysIn(year, month)), 0, 0, 0, 0, today.Location())
		if m[2] == "" && futureBias && d.Before(today) {
			d = time.Date(year+1, month, min(today.Day(), daysIn(year+1, month)), 0, 0, 0, 0, today.Location())
		}
		return d, true
	}
	return time.Time{}, false
}

func (p *WhenParser) resolveClock(text string, base time.Time) (hour, minute int, ok bool) {
	if span := clockSpan.FindString(text); span != "" {
		res, err := p.w.Parse(span, base)
		if err == nil && res != nil {
			return res.Time.Hour(), res.Time.Minute(), true
		}
	}
	if m := namedHour.FindStringSubmatch(text); m != nil {
		if m[1] == "midnight" {
			return 0, 0, true
		}
		return 12, 0, true
	}
	return 0, 0, false
}

// resolveWeekday picks the day for a weekday name. A bare name (or "this",
// "coming") is the next occurrence counting today; "next" is that weekday in
// the following Monday-based week; "last" is the most recent one before today.
func resolveWeekday(today time.Time, modifier string, wd time.Weekday) time.Time {
	switch modifier {
	case "next":
		monday := today.AddDate(0, 0, 7-mondayIndex(today.Weekday()))
		return monday.AddDate(0, 0, mondayIndex(wd))
	case "last":
		back := (int(today.Weekday()) - int(wd) + 7) % 7
		if back == 0 {
			back = 7
		}
		return today.AddDate(0, 0, -back)
	default:
		return today.AddDate(0, 0, (int(wd)-int(today.Weekday())+7)%7)
	}
}

func mondayIndex(wd time.Weekday) int { return (int(wd) + 6) % 7 }

// yearOptional builds month/day in the given year, or in today's year when
// year is empty, rolling forward under futureBias.
func yearOptional(year string, month, day int, today time.Time, futureBias bool) (time.Time, bool) {
	if year != "" {
		y := atoi(year)
		if len(year) == 2 {
			y += 2000
		}
		return calendarDate(y, month, day, today.Location())
	}
	d, ok := calendarDate(today.Year(), month, day, today.Location())
	if !ok {
		return time.Time{}, false
	}
	if futureBias && d.Before(today) {
		if next, ok := calendarDate(today.Year()+1, month, day, today.Location()); ok {
			return next, true
		}
	}
	return d, true
}

func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func monthOf(name string) time.Month {
	if len(name) < 3 {
		return 0
	}
	return monthByPrefix[name[:3]]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
