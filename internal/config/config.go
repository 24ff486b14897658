package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment backed configuration for todo-api.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Auth
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	Issuer    string        `env:"ISSUER" envDefault:"todo-api"`

	// Completion provider
	LLMBaseURL string        `env:"LLM_BASE_URL,notEmpty"`
	LLMAPIKey  string        `env:"LLM_API_KEY"`
	LLMModel   string        `env:"LLM_MODEL" envDefault:"gemini-1.5-pro"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Agent loop
	AgentMaxToolRounds int           `env:"AGENT_MAX_TOOL_ROUNDS" envDefault:"5"`
	AgentHistoryWindow int           `env:"AGENT_HISTORY_WINDOW" envDefault:"20"`
	ChatTimeout        time.Duration `env:"CHAT_TIMEOUT" envDefault:"10s"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"todo-api"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"todo"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if len(cfg.JWTSecret) < 16 {
		return nil, errors.New("JWT_SECRET must be at least 16 bytes")
	}

	if _, err := url.ParseRequestURI(cfg.LLMBaseURL); err != nil {
		return nil, fmt.Errorf("invalid LLM_BASE_URL: %w", err)
	}

	if cfg.AgentMaxToolRounds < 1 {
		return nil, errors.New("AGENT_MAX_TOOL_ROUNDS must be at least 1")
	}
	if cfg.AgentHistoryWindow < 1 {
		return nil, errors.New("AGENT_HISTORY_WINDOW must be at least 1")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	return cfg, nil
}

var Version = "dev"
