// Package config sources every tunable of the loop from environment
// variables, with a .env file honored for local runs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Model provider
	Provider           string  `envconfig:"LLM_PROVIDER" default:"anthropic"`
	Model              string  `envconfig:"LLM" default:"claude-3-7-sonnet-latest"`
	MaxTokens          int     `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	RequestTimeoutSecs float64 `envconfig:"LLM_REQ_TIMEOUT_SECONDS" default:"120"`
	OpenAIAPIKey       string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL      string  `envconfig:"OPENAI_BASE_URL"`

	// Tools
	ServerURL       string  `envconfig:"MCP_SERVER_URL" default:"http://localhost:8000/sse"`
	ToolTimeoutSecs float64 `envconfig:"TOOL_TIMEOUT_SECONDS" default:"60"`
	MaxToolRounds   int     `envconfig:"MAX_TOOL_ROUNDS" default:"10"`

	// Memory
	ContextTokenBudget int    `envconfig:"CONTEXT_TOKEN_BUDGET" default:"0"`
	SessionStore       string `envconfig:"SESSION_STORE"`
	SessionID          string `envconfig:"SESSION_ID"`

	// Output
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Verbose  bool   `envconfig:"VERBOSE" default:"false"`
}

// Load reads .env (when present) and the process environment. A missing
// SESSION_ID gets a generated UUID so transcripts always have a key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want anthropic or openai)", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("LLM_REQ_TIMEOUT_SECONDS must be positive, got %v", c.RequestTimeoutSecs)
	}
	if c.ToolTimeoutSecs < 0 {
		return fmt.Errorf("TOOL_TIMEOUT_SECONDS must not be negative, got %v", c.ToolTimeoutSecs)
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("MAX_TOOL_ROUNDS must be positive, got %d", c.MaxToolRounds)
	}
	if c.ContextTokenBudget < 0 {
		return fmt.Errorf("CONTEXT_TOKEN_BUDGET must not be negative, got %d", c.ContextTokenBudget)
	}
	return nil
}

// RequestTimeout bounds one model call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs * float64(time.Second))
}

// ToolTimeout bounds one tool call; zero disables the bound.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutSecs * float64(time.Second))
}
