package domain

import "time"

const (
	IntentCreateEvent   = "create_event"
	IntentCreateContent = "create_content"
)

const (
	SlotTitle       = "title"
	SlotDate        = "date"
	SlotStartTime   = "start_time"
	SlotEndTime     = "end_time"
	SlotLocation    = "location"
	SlotDescription = "description"
	SlotContentType = "content_type"
	SlotMessage     = "message"
)

type ConverseRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

// ConverseResponse carries exactly one of Prompt or Complete.
type ConverseResponse struct {
	SessionID string      `json:"session_id"`
	Prompt    string      `json:"prompt,omitempty"`
	Complete  *Completion `json:"complete,omitempty"`
}

type Completion struct {
	Intent string            `json:"intent"`
	Slots  map[string]string `json:"slots"`
}

// CompletionEvent is emitted once per session when its last slot is filled.
type CompletionEvent struct {
	SessionID   string            `json:"session_id"`
	Intent      string            `json:"intent"`
	Slots       map[string]string `json:"slots"`
	CompletedAt time.Time         `json:"completed_at"`
}

type Entity struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SummarizeRequest struct {
	Slots map[string]string `json:"slots"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// NLU sidecar wire format

type ClassifyRequest struct {
	Text       string   `json:"text"`
	Candidates []string `json:"candidates"`
}

type ClassifyResponse struct {
	Labels []string `json:"labels"`
}

type ExtractRequest struct {
	Text string `json:"text"`
}

type ExtractResponse struct {
	Entities []Entity `json:"entities"`
}

type SummarizeTextRequest struct {
	Text      string `json:"text"`
	MinTokens int    `json:"min_tokens"`
	MaxTokens int    `json:"max_tokens"`
	DoSample  bool   `json:"do_sample"`
}

type SummarizeTextResponse struct {
	Summary string `json:"summary"`
}

// ArchivedCompletion is a completion event as persisted by the archive.
type ArchivedCompletion struct {
	ID          int64             `json:"id"`
	SessionID   string            `json:"session_id"`
	Intent      string            `json:"intent"`
	Slots       map[string]string `json:"slots"`
	CompletedAt time.Time         `json:"completed_at"`
}
