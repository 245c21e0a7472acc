package llm

import (
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
)

// NewLLMClient creates the upstream client selected by configuration.
// LLM_MODE=MOCK returns a MockClient; otherwise an OpenAIClient.
func NewLLMClient(cfg *config.Config, log zerolog.Logger) Client {
	if cfg.MockLLM() {
		log.Info().Msg("LLM_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}
	return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)
}
