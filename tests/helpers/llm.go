package helpers

import (
	"context"
	"sync"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/llm"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// ScriptedLLM replays Chunks, then returns Err. With Block set it waits for
// ctx to end after the chunks instead of finishing.
type ScriptedLLM struct {
	Chunks []string
	Err    error
	Block  bool
	Usage  *llm.Usage

	mu       sync.Mutex
	requests []*llm.ChatCompletionRequest
}

func (f *ScriptedLLM) CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest, callback llm.StreamCallback) (*llm.Usage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for _, chunk := range f.Chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := callback(chunk); err != nil {
			return nil, err
		}
	}
	if f.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Usage, nil
}

// Requests returns the requests received so far.
func (f *ScriptedLLM) Requests() []*llm.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*llm.ChatCompletionRequest(nil), f.requests...)
}

// RecordingSender records messages instead of sending them.
type RecordingSender struct {
	Err error

	mu   sync.Mutex
	sent []domain.EmailRequest
}

func (s *RecordingSender) Mode() string { return "test" }

func (s *RecordingSender) Send(_ context.Context, req domain.EmailRequest) (*domain.EmailResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	if s.Err != nil {
		return nil, s.Err
	}
	return &domain.EmailResult{Message: "Email sent successfully", Data: map[string]any{"id": "test"}}, nil
}

// Sent returns the messages handed to the sender.
func (s *RecordingSender) Sent() []domain.EmailRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EmailRequest(nil), s.sent...)
}
