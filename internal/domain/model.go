// Package domain holds the core types shared across the question-generation
// and model-comparison services: the model catalog, question payloads, and
// the reasoning-effort dial passed through to providers.
package domain

import "fmt"

// Provider identifies one of the supported LLM backends.
// The set is closed; routing and capability resolution key off these values.
type Provider string

const (
	// ProviderOpenAI covers OpenAI chat-completion models.
	ProviderOpenAI Provider = "openai"

	// ProviderGroq covers models hosted on Groq's OpenAI-compatible API.
	ProviderGroq Provider = "groq"
)

// ReasoningEffort controls how much internal deliberation a model performs
// before answering. Adapters translate it into each provider's dialect;
// values outside a family's vocabulary are mapped at request-build time.
type ReasoningEffort string

const (
	ReasoningNone    ReasoningEffort = "none"
	ReasoningDefault ReasoningEffort = "default"
	ReasoningLow     ReasoningEffort = "low"
	ReasoningMedium  ReasoningEffort = "medium"
	ReasoningHigh    ReasoningEffort = "high"
)

// ModelEntry identifies a callable model in the static catalog.
// Entries are immutable and never persisted.
type ModelEntry struct {
	ModelID  string   `json:"modelId"`
	Provider Provider `json:"provider"`
}

// DisplayName returns the human-facing identifier used as the key for
// comparison history and vote tallies.
func (m ModelEntry) DisplayName() string {
	return fmt.Sprintf("[%s] %s", m.Provider, m.ModelID)
}

// Catalog returns the full set of models eligible for comparison rounds.
// The slice is freshly allocated on every call so callers may shuffle it.
func Catalog() []ModelEntry {
	return []ModelEntry{
		{ModelID: "gpt-4o", Provider: ProviderOpenAI},
		{ModelID: "gpt-4o-mini", Provider: ProviderOpenAI},
		{ModelID: "gpt-4.1-mini", Provider: ProviderOpenAI},
		{ModelID: "o4-mini", Provider: ProviderOpenAI},
		{ModelID: "llama-3.3-70b-versatile", Provider: ProviderGroq},
		{ModelID: "qwen/qwen3-32b", Provider: ProviderGroq},
		{ModelID: "deepseek-r1-distill-llama-70b", Provider: ProviderGroq},
		{ModelID: "gemma2-9b-it", Provider: ProviderGroq},
	}
}
