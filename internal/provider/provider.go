// Package provider adapts concrete model APIs to the chat.Client contract.
// The orchestrator never sees wire shapes; it speaks chat.Message and gets
// back a parsed chat.Response.
package provider

import (
	"fmt"

	"github.com/seralind/toolloop/chat"
	"github.com/seralind/toolloop/internal/config"
)

// FromConfig picks the adapter named by cfg.Provider.
func FromConfig(cfg *config.Config) (chat.Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg.Model, cfg.MaxTokens), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
