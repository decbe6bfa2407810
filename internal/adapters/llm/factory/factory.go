package factory

import (
	"fmt"
	"strings"
	"time"

	"tskit/internal/adapters/llm/ollama"
	"tskit/internal/adapters/llm/openrouter"
	"tskit/internal/domain"
	"tskit/internal/ports"
)

// FromProvider builds the client for a provider record. A timeout in the
// provider options overrides fallbackTimeout.
func FromProvider(p *domain.Provider, fallbackTimeout time.Duration) (ports.Provider, error) {
	timeout := fallbackTimeout
	if s := p.Options().TimeoutSeconds; s > 0 {
		timeout = time.Duration(s) * time.Second
	}
	switch strings.ToLower(p.Type) {
	case domain.ProviderOllama:
		return ollama.New(p.BaseURL, p.Model, timeout), nil
	case domain.ProviderOpenRouter:
		return openrouter.New(p.APIKey, p.BaseURL, p.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", p.Type)
	}
}
