package service

import (
	"context"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/metrics"
)

// SendEmail validates req and hands it to the configured sender.
// Invalid requests never reach the sender.
func (s *Service) SendEmail(ctx context.Context, req *domain.EmailRequest) (*domain.EmailResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mode := s.emailSender.Mode()
	result, err := s.emailSender.Send(ctx, *req)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(mode, "error").Inc()
		s.log.Error().Err(err).Str("mode", mode).Str("to", req.To).Msg("failed to send email")
		return nil, err
	}

	metrics.EmailsTotal.WithLabelValues(mode, "sent").Inc()
	s.log.Info().Str("mode", mode).Str("to", req.To).Msg("email handled")
	return result, nil
}
