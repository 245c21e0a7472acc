package assistantclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/protocol"
)

// FrameError is an error frame sent by the WebSocket relay.
type FrameError struct {
	Code    string
	Message string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("assistant error (%s): %s", e.Code, e.Message)
}

// WSClient streams conversations over the assistant WebSocket route.
// The connection is opened on first use and reused across streams.
type WSClient struct {
	url    string
	dialer *websocket.Dialer
	log    zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a WebSocket client for the site at baseURL.
func NewWSClient(baseURL string, log zerolog.Logger) *WSClient {
	u := strings.TrimSuffix(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return &WSClient{
		url:    u + "/api/assistant/ws",
		dialer: websocket.DefaultDialer,
		log:    log,
	}
}

// StreamChatCompletion sends one chat frame and calls onChunk with each
// delta until the stream is done. An error frame is returned as *FrameError.
func (c *WSClient) StreamChatCompletion(ctx context.Context, messages []domain.ConversationMessage, onChunk func(string) error, systemPrompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	msg := protocol.ChatMessage{
		BaseMessage:  protocol.BaseMessage{Type: protocol.TypeChat, Ts: time.Now().UnixMilli()},
		Messages:     messages,
		SystemPrompt: systemPrompt,
	}
	if err := conn.WriteJSON(msg); err != nil {
		c.reset()
		return fmt.Errorf("failed to send chat message: %w", err)
	}

	// Unblock the read loop when ctx ends.
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var requestID string
	for {
		var frame struct {
			protocol.BaseMessage
			Text    string `json:"text"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			c.reset()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			c.log.Error().Err(err).Str("request_id", requestID).Msg("assistant websocket read failed")
			return fmt.Errorf("failed to read stream: %w", err)
		}

		switch frame.Type {
		case protocol.TypeStart:
			requestID = frame.RequestID
		case protocol.TypeDelta:
			if err := onChunk(frame.Text); err != nil {
				c.reset()
				return fmt.Errorf("chunk callback failed: %w", err)
			}
		case protocol.TypeDone:
			return nil
		case protocol.TypeError:
			if frame.RequestID != "" && requestID != "" && frame.RequestID != requestID {
				continue
			}
			return &FrameError{Code: frame.Code, Message: frame.Message}
		}
	}
}

// Close closes the underlying connection, if any.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *WSClient) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	c.conn = conn
	return conn, nil
}

// reset drops a connection whose stream state is no longer known.
func (c *WSClient) reset() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
