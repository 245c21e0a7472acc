// Package ws serves the assistant relay over WebSocket for clients that
// cannot consume a chunked HTTP body.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/protocol"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
)

const (
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// Server handles WebSocket connections.
type Server struct {
	service  *service.Service
	cfg      *config.Config
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(svc *service.Service, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{
		service: svc,
		cfg:     cfg,
		log:     log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the WebSocket route.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/assistant/ws", s.HandleWebSocket)
}

// connection is one client socket. Only the write pump writes to conn.
type connection struct {
	conn   *websocket.Conn
	send   chan any
	ctx    context.Context
	cancel context.CancelFunc
	// busy is set by the read pump when it hands over a chat and cleared
	// before the stream's final frame is queued.
	busy atomic.Bool
}

// enqueue hands a frame to the write pump. It reports false once the
// connection is closing.
func (c *connection) enqueue(frame any) bool {
	select {
	case c.send <- frame:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// HandleWebSocket upgrades the request and serves chat frames until the
// client disconnects. One relay stream runs at a time per connection.
// GET /api/assistant/ws
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to upgrade websocket")
		return nil
	}
	ws.SetReadLimit(s.cfg.WSMaxMessageSize)

	ctx, cancel := context.WithCancel(c.Request().Context())
	conn := &connection{
		conn:   ws,
		send:   make(chan any, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump(conn)
	}()

	requests := make(chan protocol.ChatMessage, 1)
	go s.readPump(conn, requests)

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case msg := <-requests:
			final := s.handleChat(conn, msg)
			conn.busy.Store(false)
			if final != nil {
				conn.enqueue(final)
			}
		}
	}
}

// readPump reads frames and cancels the connection when the client goes away.
func (s *Server) readPump(conn *connection, requests chan<- protocol.ChatMessage) {
	defer conn.cancel()

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}

		var base protocol.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			conn.enqueue(newError("", protocol.ErrorCodeInvalidMessage, "invalid JSON message"))
			continue
		}
		if base.Type != protocol.TypeChat {
			conn.enqueue(newError(base.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+base.Type))
			continue
		}

		var msg protocol.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.enqueue(newError(base.RequestID, protocol.ErrorCodeInvalidMessage, "invalid chat message"))
			continue
		}

		if !conn.busy.CompareAndSwap(false, true) {
			conn.enqueue(newError(base.RequestID, protocol.ErrorCodeBusy, "a stream is already in progress"))
			continue
		}
		requests <- msg
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (s *Server) writePump(conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.conn.Close()
	}()

	for {
		select {
		case frame := <-conn.send:
			conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if err := conn.conn.WriteJSON(frame); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				conn.cancel()
				return
			}

		case <-ticker.C:
			conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.cancel()
				return
			}

		case <-conn.ctx.Done():
			conn.conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			conn.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleChat runs one relay stream, queueing start and delta frames. It
// returns the final done or error frame, or nil when the connection closed.
func (s *Server) handleChat(conn *connection, msg protocol.ChatMessage) any {
	req := domain.AssistantRequest{Messages: msg.Messages, SystemPrompt: msg.SystemPrompt}
	if err := req.Validate(); err != nil {
		return newError(msg.RequestID, protocol.ErrorCodeInvalidMessage, err.Error())
	}

	requestID := "asst_" + uuid.New().String()[:8]
	escalation := s.service.ShouldEscalate(req.Messages)

	conn.enqueue(protocol.StartMessage{
		BaseMessage: newBase(protocol.TypeStart, requestID),
		Escalation:  escalation,
	})

	err := s.service.RelayAssistantStream(conn.ctx, service.RelayInfo{
		RequestID:  requestID,
		Transport:  service.TransportWebSocket,
		Escalation: escalation,
	}, &req, func(delta string) error {
		if !conn.enqueue(protocol.DeltaMessage{BaseMessage: newBase(protocol.TypeDelta, requestID), Text: delta}) {
			return conn.ctx.Err()
		}
		return nil
	})
	if err != nil {
		if conn.ctx.Err() != nil {
			return nil
		}
		return newError(requestID, protocol.ErrorCodeUpstream, err.Error())
	}

	return protocol.DoneMessage{BaseMessage: newBase(protocol.TypeDone, requestID)}
}

func newBase(msgType, requestID string) protocol.BaseMessage {
	return protocol.BaseMessage{Type: msgType, Ts: time.Now().UnixMilli(), RequestID: requestID}
}

func newError(requestID, code, message string) protocol.ErrorMessage {
	return protocol.ErrorMessage{
		BaseMessage: newBase(protocol.TypeError, requestID),
		Code:        code,
		Message:     message,
	}
}
