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

// GroqAdapter implements transport.ProviderAdapter for Groq-hosted models.
// Reasoning models here use the format dialect: reasoning_effort limited to
// none/default and reasoning_format of parsed/hidden. The raw format is
// never sent when a structured-output clause is present, since raw mode
// interleaves think tags with the content and breaks JSON output.
type GroqAdapter struct {
	config Config
	caps   map[string]Capabilities
}

// NewGroqAdapter creates a Groq adapter with the default endpoint and a
// capability table resolved from the static catalog.
func NewGroqAdapter(cfg Config) *GroqAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.groq.com/openai/v1"
	}
	return &GroqAdapter{
		config: cfg,
		caps:   buildCapabilityTable(domain.ProviderGroq, groqFamilies),
	}
}

// Name returns the provider identifier.
func (a *GroqAdapter) Name() domain.Provider { return domain.ProviderGroq }

// Capabilities returns the resolved capabilities for a model.
func (a *GroqAdapter) Capabilities(model string) Capabilities {
	return capabilitiesFor(a.caps, groqFamilies, model)
}

// Build constructs the chat-completions HTTP request.
func (a *GroqAdapter) Build(ctx context.Context, req *transport.Request) (*http.Request, error) {
	caps := a.Capabilities(req.Model)

	messages := req.Messages
	if !caps.SupportsSystemRole {
		messages = foldSystemMessage(messages)
	}

	body := chatRequest{
		Model:          req.Model,
		Messages:       messages,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: newResponseFormat(req.ResponseFormat),
	}

	if caps.Reasoning == DialectFormat {
		body.ReasoningEffort = groqEffort(req.ReasoningEffort)
		if body.ReasoningEffort != "none" {
			body.ReasoningFormat = "parsed"
		} else {
			body.ReasoningFormat = "hidden"
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

// Parse normalizes the Groq response envelope, which follows the
// OpenAI-compatible format.
func (a *GroqAdapter) Parse(httpResp *http.Response) (*transport.Response, error) {
	return parseChatResponse(domain.ProviderGroq, httpResp)
}

// groqEffort maps the request effort onto this family's vocabulary, where
// only none and default exist. The effort-dialect values low/medium/high all
// mean "reasoning on" and collapse to default.
func groqEffort(effort domain.ReasoningEffort) string {
	switch effort {
	case domain.ReasoningNone, "":
		return "none"
	default:
		return "default"
	}
}
