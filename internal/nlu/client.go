package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vistara/internal/domain"
)

const (
	PathClassify  = "/v1/intent/classify"
	PathExtract   = "/v1/entities/extract"
	PathSummarize = "/v1/summarize"
)

// Client talks to an NLU model server (zero-shot intent classifier, NER
// and summarization pipelines) over JSON.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) ClassifyIntent(ctx context.Context, text string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("intent candidates are empty")
	}
	var out domain.ClassifyResponse
	if err := c.post(ctx, PathClassify, domain.ClassifyRequest{Text: text, Candidates: candidates}, &out); err != nil {
		return nil, err
	}
	return out.Labels, nil
}

func (c *Client) ExtractEntities(ctx context.Context, text string) ([]domain.Entity, error) {
	var out domain.ExtractResponse
	if err := c.post(ctx, PathExtract, domain.ExtractRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

func (c *Client) Summarize(ctx context.Context, req domain.SummarizeTextRequest) (string, error) {
	var out domain.SummarizeTextResponse
	if err := c.post(ctx, PathSummarize, req, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Summary), nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if !c.Enabled() {
		return fmt.Errorf("nlu service is not configured")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("nlu %s status=%d body=%s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}
