package config_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/seralind/toolloop/internal/config"
)

var allVars = []string{
	"LLM_PROVIDER", "LLM", "LLM_MAX_TOKENS", "LLM_REQ_TIMEOUT_SECONDS",
	"OPENAI_API_KEY", "OPENAI_BASE_URL",
	"MCP_SERVER_URL", "TOOL_TIMEOUT_SECONDS", "MAX_TOOL_ROUNDS",
	"CONTEXT_TOKEN_BUDGET", "SESSION_STORE", "SESSION_ID",
	"LOG_LEVEL", "VERBOSE",
}

// clearEnv unsets every config variable while keeping t.Setenv's restore.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.Model != "claude-3-7-sonnet-latest" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", cfg.MaxTokens)
	}
	if got := cfg.RequestTimeout(); got != 2*time.Minute {
		t.Errorf("RequestTimeout = %v, want 2m", got)
	}
	if got := cfg.ToolTimeout(); got != time.Minute {
		t.Errorf("ToolTimeout = %v, want 1m", got)
	}
	if cfg.ServerURL != "http://localhost:8000/sse" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.MaxToolRounds != 10 {
		t.Errorf("MaxToolRounds = %d, want 10", cfg.MaxToolRounds)
	}
	if cfg.ContextTokenBudget != 0 {
		t.Errorf("ContextTokenBudget = %d, want 0", cfg.ContextTokenBudget)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Verbose {
		t.Error("Verbose defaulted to true")
	}
	if _, err := uuid.Parse(cfg.SessionID); err != nil {
		t.Errorf("SessionID %q is not a UUID: %v", cfg.SessionID, err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM", "gpt-4o")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("LLM_REQ_TIMEOUT_SECONDS", "1.5")
	t.Setenv("TOOL_TIMEOUT_SECONDS", "2.5")
	t.Setenv("MAX_TOOL_ROUNDS", "3")
	t.Setenv("CONTEXT_TOKEN_BUDGET", "2048")
	t.Setenv("SESSION_ID", "weekend-trip")
	t.Setenv("SESSION_STORE", "redis://localhost:6379/0")
	t.Setenv("VERBOSE", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai (normalized)", cfg.Provider)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
	if got := cfg.RequestTimeout(); got != 1500*time.Millisecond {
		t.Errorf("RequestTimeout = %v, want 1.5s", got)
	}
	if got := cfg.ToolTimeout(); got != 2500*time.Millisecond {
		t.Errorf("ToolTimeout = %v, want 2.5s", got)
	}
	if cfg.MaxToolRounds != 3 {
		t.Errorf("MaxToolRounds = %d", cfg.MaxToolRounds)
	}
	if cfg.ContextTokenBudget != 2048 {
		t.Errorf("ContextTokenBudget = %d", cfg.ContextTokenBudget)
	}
	if cfg.SessionID != "weekend-trip" {
		t.Errorf("SessionID = %q", cfg.SessionID)
	}
	if cfg.SessionStore != "redis://localhost:6379/0" {
		t.Errorf("SessionStore = %q", cfg.SessionStore)
	}
	if !cfg.Verbose {
		t.Error("Verbose not picked up")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		frag string
	}{
		{name: "unknown provider", key: "LLM_PROVIDER", val: "bedrock", frag: "LLM_PROVIDER"},
		{name: "zero max tokens", key: "LLM_MAX_TOKENS", val: "0", frag: "LLM_MAX_TOKENS"},
		{name: "zero request timeout", key: "LLM_REQ_TIMEOUT_SECONDS", val: "0", frag: "LLM_REQ_TIMEOUT_SECONDS"},
		{name: "negative tool timeout", key: "TOOL_TIMEOUT_SECONDS", val: "-1", frag: "TOOL_TIMEOUT_SECONDS"},
		{name: "zero rounds", key: "MAX_TOOL_ROUNDS", val: "0", frag: "MAX_TOOL_ROUNDS"},
		{name: "negative budget", key: "CONTEXT_TOKEN_BUDGET", val: "-5", frag: "CONTEXT_TOKEN_BUDGET"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := config.Load()
			if err == nil {
				t.Fatalf("Load accepted %s=%s", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.frag) {
				t.Fatalf("error %q does not mention %s", err, tc.frag)
			}
		})
	}
}
