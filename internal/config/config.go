// Package config provides configuration for the site backend.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// LLMModeMock selects the in-process mock completion client.
	LLMModeMock = "MOCK"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"kiul-site"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:kiul.db?cache=shared&mode=rwc"`

	// Completion API
	OpenAIAPIKey           string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL          string        `env:"OPENAI_BASE_URL"`
	LLMMode                string        `env:"LLM_MODE"`
	AssistantModel         string        `env:"ASSISTANT_MODEL" envDefault:"gpt-4o-mini"`
	AssistantTemperature   float32       `env:"ASSISTANT_TEMPERATURE" envDefault:"0.7"`
	AssistantMaxTokens     int           `env:"ASSISTANT_MAX_TOKENS" envDefault:"500"`
	AssistantStreamTimeout time.Duration `env:"ASSISTANT_STREAM_TIMEOUT" envDefault:"0s"`

	// Email provider
	EmailAPIKey  string        `env:"EMAIL_API_KEY"`
	EmailAPIURL  string        `env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	EmailFrom    string        `env:"EMAIL_FROM" envDefault:"KIUL <no-reply@kiul.ac.tz>"`
	EmailTimeout time.Duration `env:"EMAIL_TIMEOUT" envDefault:"15s"`

	// Publications
	PublicationsDir string `env:"PUBLICATIONS_DIR" envDefault:"public/publications"`
	SiteConfig      string `env:"SITE_CONFIG"`

	// Admin access
	AdminJWTSecret    string   `env:"ADMIN_JWT_SECRET"`
	AdminEmails       []string `env:"ADMIN_EMAILS" envSeparator:","`
	AdminEditorEmails []string `env:"ADMIN_EDITOR_EMAILS" envSeparator:","`

	// WebSocket relay
	WSMaxMessageSize int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`
	WSWriteTimeout   time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`

	// Tracing
	EnableTracing bool   `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the environment into Config and validates it.
//
// Loading order (highest priority first): process environment, .env files
// listed in envFiles (missing files are skipped), struct tag defaults.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		// godotenv.Load never overrides variables that are already set.
		_ = godotenv.Load(f)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and, in production, required credentials.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.AssistantMaxTokens <= 0 {
		return fmt.Errorf("ASSISTANT_MAX_TOKENS must be positive, got %d", c.AssistantMaxTokens)
	}
	if c.AssistantTemperature < 0 || c.AssistantTemperature > 2 {
		return fmt.Errorf("ASSISTANT_TEMPERATURE must be within [0, 2], got %v", c.AssistantTemperature)
	}
	if strings.TrimSpace(c.AssistantModel) == "" {
		return fmt.Errorf("ASSISTANT_MODEL is required")
	}

	if !c.IsProduction() {
		return nil
	}

	var missing []string
	if !c.MockLLM() && strings.TrimSpace(c.OpenAIAPIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if strings.TrimSpace(c.EmailAPIKey) == "" {
		missing = append(missing, "EMAIL_API_KEY")
	}
	if strings.TrimSpace(c.AdminJWTSecret) == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration in production: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// MockLLM reports whether the mock completion client is selected.
func (c *Config) MockLLM() bool {
	return strings.EqualFold(c.LLMMode, LLMModeMock)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
