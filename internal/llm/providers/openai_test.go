package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/llm/transport"
)

func decodeBody(t *testing.T, httpReq *http.Request) map[string]any {
	t.Helper()
	body, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	return decoded
}

func TestOpenAIAdapter_Build(t *testing.T) {
	adapter := NewOpenAIAdapter(Config{APIKey: "test-key"})

	tests := []struct {
		name     string
		request  *transport.Request
		validate func(t *testing.T, body map[string]any, httpReq *http.Request)
	}{
		{
			name: "plain_model_gets_no_reasoning_parameters",
			request: &transport.Request{
				Provider: domain.ProviderOpenAI,
				Model:    "gpt-4o",
				Messages: []transport.Message{
					{Role: transport.RoleSystem, Content: "be brief"},
					{Role: transport.RoleUser, Content: "hello"},
				},
				MaxTokens:       100,
				ReasoningEffort: domain.ReasoningHigh,
			},
			validate: func(t *testing.T, body map[string]any, httpReq *http.Request) {
				assert.Equal(t, "gpt-4o", body["model"])
				assert.NotContains(t, body, "reasoning_effort")
				assert.NotContains(t, body, "include_reasoning")
				assert.Equal(t, float64(100), body["max_completion_tokens"])
				assert.NotContains(t, body, "max_tokens")
				assert.Equal(t, "Bearer test-key", httpReq.Header.Get("Authorization"))

				messages := body["messages"].([]any)
				require.Len(t, messages, 2)
				assert.Equal(t, "system", messages[0].(map[string]any)["role"])
			},
		},
		{
			name: "reasoning_model_gets_effort_and_trace_flag",
			request: &transport.Request{
				Provider:        domain.ProviderOpenAI,
				Model:           "o4-mini",
				Messages:        []transport.Message{{Role: transport.RoleUser, Content: "hello"}},
				MaxTokens:       100,
				ReasoningEffort: domain.ReasoningMedium,
			},
			validate: func(t *testing.T, body map[string]any, _ *http.Request) {
				assert.Equal(t, "medium", body["reasoning_effort"])
				assert.Equal(t, true, body["include_reasoning"])
			},
		},
		{
			name: "o1_prefix_folds_system_into_user",
			request: &transport.Request{
				Provider: domain.ProviderOpenAI,
				Model:    "o1-mini",
				Messages: []transport.Message{
					{Role: transport.RoleSystem, Content: "be brief"},
					{Role: transport.RoleUser, Content: "hello"},
				},
				MaxTokens: 100,
			},
			validate: func(t *testing.T, body map[string]any, _ *http.Request) {
				messages := body["messages"].([]any)
				require.Len(t, messages, 1)
				first := messages[0].(map[string]any)
				assert.Equal(t, "user", first["role"])
				assert.Equal(t, "be brief\n\nhello", first["content"])
			},
		},
		{
			name: "structured_output_clause_is_verbatim",
			request: &transport.Request{
				Provider:  domain.ProviderOpenAI,
				Model:     "gpt-4o-mini",
				Messages:  []transport.Message{{Role: transport.RoleUser, Content: "hello"}},
				MaxTokens: 100,
				ResponseFormat: &transport.SchemaFormat{
					Name:   "my_schema",
					Schema: json.RawMessage(`{"type":"object","properties":{"camelCaseKey":{"type":"string"}}}`),
					Strict: true,
				},
			},
			validate: func(t *testing.T, body map[string]any, _ *http.Request) {
				rf := body["response_format"].(map[string]any)
				assert.Equal(t, "json_schema", rf["type"])
				js := rf["json_schema"].(map[string]any)
				assert.Equal(t, "my_schema", js["name"])
				assert.Equal(t, true, js["strict"])

				// Schema keys must round-trip untouched, casing included.
				schema := js["schema"].(map[string]any)
				props := schema["properties"].(map[string]any)
				assert.Contains(t, props, "camelCaseKey")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpReq, err := adapter.Build(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, http.MethodPost, httpReq.Method)
			assert.True(t, strings.HasSuffix(httpReq.URL.Path, "/chat/completions"))
			tt.validate(t, decodeBody(t, httpReq), httpReq)
		})
	}
}

func TestOpenAIAdapter_Parse(t *testing.T) {
	adapter := NewOpenAIAdapter(Config{APIKey: "test-key"})

	t.Run("success_envelope", func(t *testing.T) {
		resp, err := adapter.Parse(fakeResponse(http.StatusOK, `{
			"choices":[{"message":{"role":"assistant","content":"{\"a\":1}","reasoning":"thought hard"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}
		}`))
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, resp.Content)
		assert.Equal(t, "thought hard", resp.ReasoningTrace)
		assert.Equal(t, int64(10), resp.Usage.PromptTokens)
		assert.Equal(t, int64(20), resp.Usage.CompletionTokens)
	})

	t.Run("structured_error_body", func(t *testing.T) {
		_, err := adapter.Parse(fakeResponse(http.StatusBadRequest,
			`{"error":{"message":"Invalid parameter: response_format","type":"invalid_request_error","code":"unsupported_response_format"}}`))
		require.Error(t, err)

		var provErr *llmerrors.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.True(t, provErr.RejectsStructuredOutput())
		assert.Equal(t, llmerrors.KindStructuredOutputRejected, llmerrors.Classify(err))
	})

	t.Run("plain_status_error", func(t *testing.T) {
		_, err := adapter.Parse(fakeResponse(http.StatusBadGateway, "upstream exploded"))
		require.Error(t, err)

		var statusErr *llmerrors.HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Equal(t, llmerrors.KindHTTPStatus, llmerrors.Classify(err))
	})

	t.Run("undecodable_envelope", func(t *testing.T) {
		_, err := adapter.Parse(fakeResponse(http.StatusOK, "not json at all"))
		require.Error(t, err)
		assert.Equal(t, llmerrors.KindResponseParse, llmerrors.Classify(err))
	})
}

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
