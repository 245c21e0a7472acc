// Package protocol defines the assistant WebSocket frames shared by the
// relay server and its clients.
package protocol

import "github.com/2014Akamanzi/kiul-app-sub001/internal/domain"

// Message types from client to server
const (
	TypeChat = "chat"
)

// Message types from server to client
const (
	TypeStart = "start"
	TypeDelta = "delta"
	TypeDone  = "done"
	TypeError = "error"
)

// Error codes carried by error frames.
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeBusy           = "busy"
	ErrorCodeUpstream       = "upstream_error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
}

// ChatMessage asks the server to relay a conversation.
type ChatMessage struct {
	BaseMessage
	Messages     []domain.ConversationMessage `json:"messages"`
	SystemPrompt string                       `json:"systemPrompt,omitempty"`
}

// StartMessage opens a relay stream.
type StartMessage struct {
	BaseMessage
	Escalation bool `json:"escalation"`
}

// DeltaMessage carries one token fragment.
type DeltaMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// DoneMessage closes a relay stream that completed normally.
type DoneMessage struct {
	BaseMessage
}

// ErrorMessage reports a failed request or stream.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
