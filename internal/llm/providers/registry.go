package providers

import (
	"fmt"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/llm/transport"
)

// Config holds per-provider connection settings.
type Config struct {
	Endpoint string
	APIKey   string
	Headers  map[string]string
}

// CapabilityAdapter is a provider adapter that also exposes its resolved
// model capability table.
type CapabilityAdapter interface {
	transport.ProviderAdapter
	Capabilities(model string) Capabilities
}

// Registry routes requests to the adapter for each configured provider and
// answers capability queries for the completion client.
type Registry struct {
	adapters map[domain.Provider]CapabilityAdapter
}

// NewRegistry constructs adapters for every configured provider.
// Unconfigured providers are simply absent; picking one is an error.
func NewRegistry(configs map[domain.Provider]Config) (*Registry, error) {
	adapters := make(map[domain.Provider]CapabilityAdapter, len(configs))

	for provider, cfg := range configs {
		switch provider {
		case domain.ProviderOpenAI:
			adapters[provider] = NewOpenAIAdapter(cfg)
		case domain.ProviderGroq:
			adapters[provider] = NewGroqAdapter(cfg)
		default:
			return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, provider)
		}
	}

	return &Registry{adapters: adapters}, nil
}

// Pick implements transport.Router.
func (r *Registry) Pick(provider domain.Provider, _ string) (transport.ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, provider)
	}
	return adapter, nil
}

// Capabilities reports the capability set for a provider/model pair.
func (r *Registry) Capabilities(provider domain.Provider, model string) (Capabilities, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, provider)
	}
	return adapter.Capabilities(model), nil
}
