// Package service implements the site backend operations.
package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/email"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/llm"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/escalation"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/store"
)

const tracerName = "github.com/2014Akamanzi/kiul-app-sub001/internal/service"

type Service struct {
	store       store.Store
	llmClient   llm.Client
	emailSender email.Sender
	config      *config.Config
	site        *config.Site
	classifier  *escalation.Classifier
	tracer      trace.Tracer
	log         zerolog.Logger
}

func New(store store.Store, llmClient llm.Client, emailSender email.Sender, cfg *config.Config, site *config.Site, log zerolog.Logger) *Service {
	if site == nil {
		site = config.DefaultSite()
	}
	return &Service{
		store:       store,
		llmClient:   llmClient,
		emailSender: emailSender,
		config:      cfg,
		site:        site,
		classifier:  escalation.New(site.EscalationPhrases...),
		tracer:      otel.Tracer(tracerName),
		log:         log.With().Str("component", "service").Logger(),
	}
}

// Site returns the site content the service was built with.
func (s *Service) Site() *config.Site {
	return s.site
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
