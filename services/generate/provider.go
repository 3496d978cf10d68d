package generate

import (
	"context"
	"fmt"

	"playbook-controlplane/pkg/config"
)

// Provider is the text-generation collaborator. One implementation exists per
// backend; the active one is selected by configuration at construction time.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
