// Package transport defines the normalized request/response types exchanged
// between the completion client and provider adapters, plus the Handler
// abstraction the middleware pipeline is built on.
package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lldarena/arena/internal/domain"
)

// Message roles in provider chat APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SchemaFormat is the structured-output clause attached to a request.
// Schema is carried as raw JSON so user-supplied schema bodies round-trip
// to the provider untouched, with no casing transform applied.
type SchemaFormat struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

// Request is the provider-agnostic completion request. Adapters translate it
// into each provider's wire format. At most one structured-output clause may
// be attached; the client strips it for the plain-text retry.
type Request struct {
	Provider domain.Provider
	Model    string
	Messages []Message

	Temperature     *float64
	MaxTokens       int
	ReasoningEffort domain.ReasoningEffort

	// ResponseFormat, when set, requests schema-constrained output.
	ResponseFormat *SchemaFormat

	TraceID string
	Timeout time.Duration
}

// WithoutResponseFormat returns a shallow copy of the request with the
// structured-output clause removed, used for the single plain-text retry.
func (r *Request) WithoutResponseFormat() *Request {
	cp := *r
	cp.ResponseFormat = nil
	return &cp
}

// Usage carries normalized token accounting from a provider response.
type Usage struct {
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
	LatencyMs        int64 `json:"latencyMs"`
}

// Response is the normalized result parsed from a provider envelope.
type Response struct {
	Content            string
	ReasoningTrace     string
	Usage              Usage
	StatusCode         int
	ProviderRequestIDs []string
	Headers            http.Header
	RawBody            []byte
}
