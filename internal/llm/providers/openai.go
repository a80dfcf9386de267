package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm/transport"
)

// OpenAIAdapter implements transport.ProviderAdapter for OpenAI models.
// Reasoning models in this family take a top-level reasoning_effort of
// low/medium/high plus a boolean asking for the reasoning trace; o1-prefixed
// models additionally lack system-role support.
type OpenAIAdapter struct {
	config Config
	caps   map[string]Capabilities
}

// NewOpenAIAdapter creates an OpenAI adapter with the default endpoint and a
// capability table resolved from the static catalog.
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	return &OpenAIAdapter{
		config: cfg,
		caps:   buildCapabilityTable(domain.ProviderOpenAI, openAIFamilies),
	}
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() domain.Provider { return domain.ProviderOpenAI }

// Capabilities returns the resolved capabilities for a model.
func (a *OpenAIAdapter) Capabilities(model string) Capabilities {
	return capabilitiesFor(a.caps, openAIFamilies, model)
}

// Build constructs the chat-completions HTTP request.
func (a *OpenAIAdapter) Build(ctx context.Context, req *transport.Request) (*http.Request, error) {
	caps := a.Capabilities(req.Model)

	messages := req.Messages
	if !caps.SupportsSystemRole {
		messages = foldSystemMessage(messages)
	}

	body := chatRequest{
		Model:               req.Model,
		Messages:            messages,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
		ResponseFormat:      newResponseFormat(req.ResponseFormat),
	}

	if caps.Reasoning == DialectEffort {
		if effort := openAIEffort(req.ReasoningEffort); effort != "" {
			body.ReasoningEffort = effort
			body.IncludeReasoning = true
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.Endpoint+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// Parse normalizes the OpenAI response envelope.
func (a *OpenAIAdapter) Parse(httpResp *http.Response) (*transport.Response, error) {
	return parseChatResponse(domain.ProviderOpenAI, httpResp)
}

// openAIEffort maps the request effort onto this family's vocabulary.
// The format-dialect values none/default have no meaning here and collapse
// to "no reasoning parameters".
func openAIEffort(effort domain.ReasoningEffort) string {
	switch effort {
	case domain.ReasoningLow, domain.ReasoningMedium, domain.ReasoningHigh:
		return string(effort)
	default:
		return ""
	}
}
