package providers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/llm/transport"
)

// parseChatResponse normalizes an OpenAI-compatible chat-completions
// envelope. Both backends speak this format, so the parse path is shared and
// only the provider tag differs in the resulting errors.
func parseChatResponse(provider domain.Provider, httpResp *http.Response) (*transport.Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &llmerrors.ParseError{Provider: string(provider), Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, parseErrorBody(provider, httpResp.StatusCode, body)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &llmerrors.ParseError{Provider: string(provider), Err: err}
	}

	// Some backends report failures in-band with a 200 status.
	if resp.Error != nil {
		return nil, &llmerrors.ProviderError{
			Provider:   string(provider),
			StatusCode: httpResp.StatusCode,
			Message:    resp.Error.Message,
			Code:       resp.Error.Code,
			Type:       resp.Error.Type,
		}
	}

	var content, reasoning string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		reasoning = resp.Choices[0].Message.Reasoning
	}

	var requestIDs []string
	if reqID := httpResp.Header.Get("x-request-id"); reqID != "" {
		requestIDs = append(requestIDs, reqID)
	}

	return &transport.Response{
		Content:            content,
		ReasoningTrace:     reasoning,
		StatusCode:         httpResp.StatusCode,
		ProviderRequestIDs: requestIDs,
		Headers:            httpResp.Header,
		RawBody:            body,
		Usage: transport.Usage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
			TotalTokens:      int64(resp.Usage.TotalTokens),
		},
	}, nil
}

// parseErrorBody converts a non-2xx body into a ProviderError when the body
// carries a structured error object, or an HTTPStatusError otherwise.
func parseErrorBody(provider domain.Provider, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &llmerrors.ProviderError{
			Provider:   string(provider),
			StatusCode: statusCode,
			Message:    errResp.Error.Message,
			Code:       errResp.Error.Code,
			Type:       errResp.Error.Type,
		}
	}

	return &llmerrors.HTTPStatusError{
		Provider:   string(provider),
		StatusCode: statusCode,
		Body:       string(body),
	}
}
