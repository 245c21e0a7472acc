// Package assistantclient is the Go client for the site's assistant relay
// and publication search routes.
package assistantclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

const readBufferSize = 4096

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("assistant returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("assistant returned status %d: %s", e.StatusCode, e.Message)
}

// Client calls the site API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for the site at baseURL.
// The HTTP client has no timeout; callers bound streams with ctx.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		log:        log,
	}
}

type assistantRequest struct {
	Messages     []domain.ConversationMessage `json:"messages"`
	SystemPrompt string                       `json:"systemPrompt,omitempty"`
}

// StreamChatCompletion posts messages to the assistant relay and calls
// onChunk with the decoded text of each body read, in arrival order.
// It returns nil when the stream ends normally. A non-2xx response is
// returned as a *StatusError before any of the body is consumed.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []domain.ConversationMessage, onChunk func(string) error, systemPrompt string) error {
	body, err := json.Marshal(assistantRequest{Messages: messages, SystemPrompt: systemPrompt})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/assistant", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Msg("assistant request failed")
		return fmt.Errorf("failed to call assistant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := newStatusError(resp)
		c.log.Error().Int("status", resp.StatusCode).Str("error", statusErr.Message).Msg("assistant returned error status")
		return statusErr
	}

	log := c.log.With().Str("request_id", resp.Header.Get("X-Request-ID")).Logger()
	if err := consumeStream(resp.Body, onChunk); err != nil {
		log.Error().Err(err).Msg("assistant stream failed")
		return err
	}
	return nil
}

// Search queries the publication search route.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	endpoint := c.baseURL + "/api/search?q=" + url.QueryEscape(query)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp)
	}

	var results []domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return results, nil
}

func newStatusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// consumeStream reads r until EOF and hands each read's text to onChunk.
// Bytes of a multi-byte character split across reads are held back until
// the character is complete.
func consumeStream(r io.Reader, onChunk func(string) error) error {
	buf := make([]byte, readBufferSize)
	var pending []byte

	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			data := append(pending, buf[:n]...)
			complete, rest := splitUTF8(data)
			pending = append([]byte(nil), rest...)
			if len(complete) > 0 {
				if err := onChunk(string(complete)); err != nil {
					return fmt.Errorf("chunk callback failed: %w", err)
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			if len(pending) > 0 {
				if err := onChunk(string(pending)); err != nil {
					return fmt.Errorf("chunk callback failed: %w", err)
				}
			}
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read stream: %w", readErr)
		}
	}
}

// splitUTF8 splits b before a trailing incomplete UTF-8 sequence.
func splitUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b, nil
		}
		return b[:i], b[i:]
	}
	return b, nil
}
