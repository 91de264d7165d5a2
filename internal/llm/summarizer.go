package llm

import (
	"context"
	"fmt"
	"strings"

	"vistara/internal/domain"
)

const summarySystemPrompt = "You write short, friendly event blurbs for a campus bulletin. " +
	"Summarize the details you are given in plain prose. Do not invent facts that are not in the details."

// Summarizer adapts a completion provider to the summarization contract.
type Summarizer struct {
	provider Provider
	model    string
}

func NewSummarizer(provider Provider, model string) *Summarizer {
	return &Summarizer{provider: provider, model: model}
}

// Summarize always decodes greedily (temperature 0); DoSample is ignored.
func (s *Summarizer) Summarize(ctx context.Context, req domain.SummarizeTextRequest) (string, error) {
	prompt := fmt.Sprintf("Write a summary of between %d and %d words.\n\n%s", req.MinTokens, req.MaxTokens, req.Text)
	out, err := s.provider.Complete(ctx, Request{
		Model:       s.model,
		System:      summarySystemPrompt,
		Prompt:      prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
