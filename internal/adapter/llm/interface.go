// Package llm provides an abstraction for the upstream chat-completion API.
package llm

import (
	"context"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// ChatCompletionRequest is the outbound streaming request.
type ChatCompletionRequest struct {
	Model       string
	Messages    []domain.ConversationMessage
	Temperature float32
	MaxTokens   int
}

// Usage reports token accounting when the upstream provides it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamCallback receives each token fragment in upstream order.
// Returning an error stops the stream.
type StreamCallback func(delta string) error

// Client defines the interface for upstream completion operations.
type Client interface {
	// CreateChatCompletionStream sends a streaming chat completion request.
	// The callback is called for each text fragment received.
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, callback StreamCallback) (*Usage, error)
}

var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*MockClient)(nil)
)
