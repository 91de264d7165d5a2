package lexical

import (
	"context"
	"regexp"
	"strings"

	"vistara/internal/domain"
)

// "Label: ." and "Time:  to ." style fragments carry no information.
var emptySegment = regexp.MustCompile(`^[A-Za-z ]+:\s*(?:to\s*)?\.?$`)

// Summarize keeps the informative sentences of text and truncates the result
// to MaxTokens words. It is deterministic regardless of DoSample.
func (a *Analyzer) Summarize(_ context.Context, req domain.SummarizeTextRequest) (string, error) {
	return a.Extractive(req.Text, req.MaxTokens), nil
}

func (a *Analyzer) Extractive(text string, maxTokens int) string {
	var kept []string
	for _, seg := range strings.SplitAfter(text, ".") {
		seg = strings.Join(strings.Fields(seg), " ")
		if seg == "" || emptySegment.MatchString(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	words := strings.Fields(strings.Join(kept, " "))
	if maxTokens > 0 && len(words) > maxTokens {
		words = words[:maxTokens]
	}
	return strings.Join(words, " ")
}
