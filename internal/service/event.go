package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// recordEvent records a relay event to the store.
func (s *Service) recordEvent(ctx context.Context, requestID string, eventType domain.EventType, payload any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.Event{
		EventID:   "evt_" + uuid.New().String()[:8],
		RequestID: requestID,
		Ts:        time.Now().UnixMilli(),
		Type:      eventType,
		Payload:   payloadBytes,
	}

	return s.store.CreateEvent(ctx, event)
}

// ListAssistantEvents returns the recorded events of one relay request.
func (s *Service) ListAssistantEvents(ctx context.Context, requestID string) ([]domain.Event, error) {
	events, err := s.store.GetEvents(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrNotFound
	}
	return events, nil
}
