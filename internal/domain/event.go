package domain

import "encoding/json"

// EventType represents the type of an assistant relay event.
type EventType string

const (
	EventTypeStreamStarted EventType = "stream_started"
	EventTypeStreamDone    EventType = "stream_done"
)

// Event is a recorded assistant relay event.
type Event struct {
	EventID   string          `json:"event_id"`
	RequestID string          `json:"request_id"`
	Ts        int64           `json:"ts"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// StreamStartedPayload is the payload for stream_started.
type StreamStartedPayload struct {
	Model        string `json:"model"`
	MessageCount int    `json:"message_count"`
	CustomPrompt bool   `json:"custom_prompt"`
	Escalation   bool   `json:"escalation"`
	Transport    string `json:"transport"`
}

// StreamDonePayload is the payload for stream_done.
type StreamDonePayload struct {
	Model            string `json:"model"`
	LatencyMs        int64  `json:"latency_ms"`
	FirstChunkMs     int64  `json:"first_chunk_ms,omitempty"`
	Chunks           int    `json:"chunks"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	TotalTokens      int    `json:"total_tokens,omitempty"`
	Error            string `json:"error,omitempty"`
}
