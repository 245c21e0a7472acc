package llm

import (
	"context"
	"fmt"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// MockClient is a canned upstream used in mock mode and tests.
type MockClient struct {
	// ChunkSize is the number of runes per streamed fragment.
	ChunkSize int
}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{ChunkSize: 10}
}

// CreateChatCompletionStream simulates a streaming response.
func (m *MockClient) CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, callback StreamCallback) (*Usage, error) {
	content := m.generateMockResponse(req)

	for _, chunk := range splitIntoChunks(content, m.ChunkSize) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := callback(chunk); err != nil {
			return nil, err
		}
	}

	prompt := estimateTokens(req)
	return &Usage{
		PromptTokens:     prompt,
		CompletionTokens: len(content) / 4,
		TotalTokens:      prompt + len(content)/4,
	}, nil
}

func (m *MockClient) generateMockResponse(req *ChatCompletionRequest) string {
	last := domain.LatestUserMessage(req.Messages)
	if last == "" {
		return "[MOCK] This is a mock response from the assistant."
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(last, 100))
}

func estimateTokens(req *ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}

func splitIntoChunks(s string, size int) []string {
	if size <= 0 {
		size = 10
	}
	runes := []rune(s)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
