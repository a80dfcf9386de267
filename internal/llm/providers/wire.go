package providers

import (
	"encoding/json"

	"github.com/lldarena/arena/internal/llm/transport"
)

// chatRequest is the OpenAI-compatible chat-completions request body shared
// by both backends; family-specific fields are omitted when empty so each
// provider sees exactly the parameters it understands.
type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []transport.Message `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`

	// OpenAI names the output cap max_completion_tokens; Groq still uses
	// max_tokens. Adapters set exactly one.
	MaxCompletionTokens int `json:"max_completion_tokens,omitempty"`
	MaxTokens           int `json:"max_tokens,omitempty"`

	ReasoningEffort  string `json:"reasoning_effort,omitempty"`
	IncludeReasoning bool   `json:"include_reasoning,omitempty"`
	ReasoningFormat  string `json:"reasoning_format,omitempty"`

	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat is the structured-output clause.
type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

// jsonSchema carries the schema body as raw JSON so caller-supplied schemas
// round-trip untouched.
type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

func newResponseFormat(f *transport.SchemaFormat) *responseFormat {
	if f == nil {
		return nil
	}
	return &responseFormat{
		Type: "json_schema",
		JSONSchema: jsonSchema{
			Name:   f.Name,
			Schema: f.Schema,
			Strict: f.Strict,
		},
	}
}

// chatResponse is the OpenAI-compatible chat-completions response envelope.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			Reasoning string `json:"reasoning"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// foldSystemMessage merges a leading system message into the first user
// message for model families with no system-role support. The system message
// is omitted entirely from the result.
func foldSystemMessage(messages []transport.Message) []transport.Message {
	if len(messages) == 0 || messages[0].Role != transport.RoleSystem {
		return messages
	}

	system := messages[0]
	rest := messages[1:]
	folded := make([]transport.Message, 0, len(rest))
	merged := false
	for _, m := range rest {
		if !merged && m.Role == transport.RoleUser {
			m.Content = system.Content + "\n\n" + m.Content
			merged = true
		}
		folded = append(folded, m)
	}
	if !merged {
		folded = append([]transport.Message{{Role: transport.RoleUser, Content: system.Content}}, folded...)
	}
	return folded
}
