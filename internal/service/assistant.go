package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/llm"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/metrics"
)

// Relay transports.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// RelayInfo identifies one relay stream.
type RelayInfo struct {
	RequestID  string
	Transport  string
	Escalation bool
}

// BuildCompletionRequest prepends exactly one system message to the
// conversation. The request's own prompt wins over the site persona.
func (s *Service) BuildCompletionRequest(req *domain.AssistantRequest) *llm.ChatCompletionRequest {
	prompt := req.SystemPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = s.site.Persona
	}

	messages := make([]domain.ConversationMessage, 0, len(req.Messages)+1)
	messages = append(messages, domain.ConversationMessage{Role: domain.RoleSystem, Content: prompt})
	messages = append(messages, req.Messages...)

	return &llm.ChatCompletionRequest{
		Model:       s.config.AssistantModel,
		Messages:    messages,
		Temperature: s.config.AssistantTemperature,
		MaxTokens:   s.config.AssistantMaxTokens,
	}
}

// ShouldEscalate checks the latest user turn for risk phrases.
func (s *Service) ShouldEscalate(messages []domain.ConversationMessage) bool {
	matches := s.classifier.Matches(domain.LatestUserMessage(messages))
	if len(matches) == 0 {
		return false
	}
	metrics.EscalationsTotal.Inc()
	s.log.Warn().Strs("phrases", matches).Msg("conversation flagged for escalation")
	return true
}

// RelayAssistantStream streams the completion for req, calling callback with
// each non-empty fragment in upstream order.
func (s *Service) RelayAssistantStream(ctx context.Context, info RelayInfo, req *domain.AssistantRequest, callback llm.StreamCallback) error {
	completion := s.BuildCompletionRequest(req)
	log := s.log.With().Str("request_id", info.RequestID).Str("transport", info.Transport).Logger()

	if timeout := s.config.AssistantStreamTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "assistant.relay")
	defer span.End()
	span.SetAttributes(
		attribute.String("assistant.request_id", info.RequestID),
		attribute.String("assistant.transport", info.Transport),
		attribute.String("assistant.model", completion.Model),
		attribute.Int("assistant.messages", len(req.Messages)),
		attribute.Bool("assistant.escalation", info.Escalation),
	)

	// Events outlive a disconnected caller.
	recordCtx := context.WithoutCancel(ctx)
	if err := s.recordEvent(recordCtx, info.RequestID, domain.EventTypeStreamStarted, domain.StreamStartedPayload{
		Model:        completion.Model,
		MessageCount: len(req.Messages),
		CustomPrompt: strings.TrimSpace(req.SystemPrompt) != "",
		Escalation:   info.Escalation,
		Transport:    info.Transport,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to record stream_started event")
	}

	startTime := time.Now()
	var (
		chunks     int
		firstChunk time.Duration
	)
	forward := func(delta string) error {
		if delta == "" {
			return nil
		}
		if chunks == 0 {
			firstChunk = time.Since(startTime)
			metrics.AssistantFirstChunkSeconds.Observe(firstChunk.Seconds())
		}
		chunks++
		metrics.AssistantChunksTotal.Inc()
		return callback(delta)
	}

	usage, err := s.llmClient.CreateChatCompletionStream(ctx, completion, forward)

	outcome := streamOutcome(err, chunks)
	metrics.AssistantStreamsTotal.WithLabelValues(info.Transport, outcome).Inc()

	payload := domain.StreamDonePayload{
		Model:        completion.Model,
		LatencyMs:    time.Since(startTime).Milliseconds(),
		FirstChunkMs: firstChunk.Milliseconds(),
		Chunks:       chunks,
	}
	if usage != nil {
		payload.PromptTokens = usage.PromptTokens
		payload.CompletionTokens = usage.CompletionTokens
		payload.TotalTokens = usage.TotalTokens
	}
	if err != nil {
		payload.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.SetAttributes(attribute.Int("assistant.chunks", chunks))

	if recordErr := s.recordEvent(recordCtx, info.RequestID, domain.EventTypeStreamDone, payload); recordErr != nil {
		log.Warn().Err(recordErr).Msg("failed to record stream_done event")
	}

	evt := log.Info()
	if err != nil && outcome != metrics.OutcomeCanceled {
		evt = log.Error().Err(err)
	}
	evt.Str("outcome", outcome).
		Int("chunks", chunks).
		Int64("latency_ms", payload.LatencyMs).
		Msg("assistant stream finished")

	return err
}

func streamOutcome(err error, chunks int) string {
	switch {
	case err == nil:
		return metrics.OutcomeCompleted
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case chunks == 0:
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeStreamError
	}
}
