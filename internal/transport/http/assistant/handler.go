// Package assistant serves the streaming assistant relay.
package assistant

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/service"
)

// Response headers set on every relay response.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderEscalation = "X-Assistant-Escalation"
)

// Handler handles assistant relay HTTP requests.
type Handler struct {
	service *service.Service
	log     zerolog.Logger
}

// NewHandler creates a new assistant relay handler.
func NewHandler(svc *service.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: svc,
		log:     log.With().Str("component", "assistant").Logger(),
	}
}

// RegisterRoutes registers the relay route.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/assistant", h.Stream)
}

// Stream relays a conversation to the completion API and writes each token
// fragment to the response as soon as it arrives.
// POST /api/assistant
//
// Failures before the first fragment produce a 500 JSON error. Once the
// body has started, an upstream failure aborts the connection so the caller
// sees a read error instead of a silently truncated reply.
func (h *Handler) Stream(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.AssistantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	requestID := "asst_" + uuid.New().String()[:8]
	escalation := h.service.ShouldEscalate(req.Messages)

	res := c.Response()
	res.Header().Set(HeaderRequestID, requestID)
	res.Header().Set(HeaderEscalation, strconv.FormatBool(escalation))

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
	}

	started := false
	start := func() {
		res.Header().Set(echo.HeaderContentType, "text/event-stream; charset=utf-8")
		res.Header().Set("Cache-Control", "no-cache")
		res.Header().Set("Connection", "keep-alive")
		res.WriteHeader(http.StatusOK)
		started = true
	}

	err := h.service.RelayAssistantStream(ctx, service.RelayInfo{
		RequestID:  requestID,
		Transport:  service.TransportHTTP,
		Escalation: escalation,
	}, &req, func(delta string) error {
		if !started {
			start()
		}
		if _, err := io.WriteString(res, delta); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	switch {
	case err == nil:
		if !started {
			start()
		}
		return nil
	case ctx.Err() != nil:
		// Caller went away; nothing left to write to.
		return nil
	case !started:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("request_id", requestID).Msg("aborting assistant stream after upstream failure")
		panic(http.ErrAbortHandler)
	}
}
