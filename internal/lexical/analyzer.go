// Package lexical is a dependency-free stand-in for the model-backed NLU
// adapters: keyword intent ranking, pattern entity extraction and an
// extractive summarizer. It lets the chatbot run without a model server.
package lexical

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"vistara/internal/domain"
)

const Engine = "go-lexical-v1"

var intentKeywords = map[string][]string{
	domain.IntentCreateEvent: {
		"event", "meeting", "meetup", "schedule", "party", "workshop", "seminar",
		"conference", "session", "organize", "organise", "plan", "book", "webinar",
		"lecture", "gathering", "concert", "hackathon", "celebration",
	},
	domain.IntentCreateContent: {
		"announce", "announcement", "post", "content", "update", "news", "publish",
		"notice", "alert", "reminder", "message", "share", "story", "bulletin",
	},
}

var contentTypes = []string{"announcement", "update", "news", "notice", "alert", "reminder", "story", "bulletin"}

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}']+`)
	quotedPattern   = regexp.MustCompile(`["“]([^"”]{2,})["”]`)
	locationPattern = regexp.MustCompile(`(?i)\b(?:at|in)\s+(?:the\s+)?([a-z][a-z0-9' ]*?)\s*(?:\b(?:on|from|by|tomorrow|today|tonight|next|this|for|with)\b|[.,!?;]|$)`)
)

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ClassifyIntent returns every candidate ranked by keyword hits. Candidates
// with equal scores keep their configured order.
func (a *Analyzer) ClassifyIntent(_ context.Context, text string, candidates []string) ([]string, error) {
	return a.Rank(text, candidates), nil
}

func (a *Analyzer) Rank(text string, candidates []string) []string {
	words := tokenize(text)
	scores := make(map[string]int, len(candidates))
	for _, c := range candidates {
		for _, kw := range intentKeywords[c] {
			if words[kw] {
				scores[c]++
			}
		}
	}
	out := append([]string(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i]] > scores[out[j]]
	})
	return out
}

func (a *Analyzer) ExtractEntities(_ context.Context, text string) ([]domain.Entity, error) {
	return a.Extract(text), nil
}

// Extract emits entities labelled with slot names.
func (a *Analyzer) Extract(text string) []domain.Entity {
	var out []domain.Entity
	if m := quotedPattern.FindStringSubmatch(text); m != nil {
		out = append(out, domain.Entity{Label: domain.SlotTitle, Value: strings.TrimSpace(m[1])})
	}
	for _, m := range locationPattern.FindAllStringSubmatch(text, -1) {
		loc := strings.TrimSpace(m[1])
		if loc == "" || startsWithDigit(loc) {
			continue
		}
		out = append(out, domain.Entity{Label: domain.SlotLocation, Value: loc})
	}
	words := tokenize(text)
	for _, ct := range contentTypes {
		if words[ct] {
			out = append(out, domain.Entity{Label: domain.SlotContentType, Value: ct})
			break
		}
	}
	return out
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = true
	}
	return words
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
