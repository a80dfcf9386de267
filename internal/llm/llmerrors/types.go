// Package llmerrors defines the failure taxonomy for LLM completion calls.
// Every failure a completion can hit is classified into a Kind so the client
// can fold it into a failed result with a descriptive message instead of
// letting it escape as an unhandled fault.
package llmerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes completion failures. Kinds are mutually exclusive and
// surface verbatim in result error messages and metrics labels.
type Kind string

const (
	// KindNetwork indicates the HTTP call itself failed (DNS, dial, TLS,
	// connection reset).
	KindNetwork Kind = "network"

	// KindResponseParse indicates the provider's response envelope could not
	// be decoded.
	KindResponseParse Kind = "response_parse"

	// KindProvider indicates the provider returned an explicit error object
	// in its response body.
	KindProvider Kind = "provider"

	// KindHTTPStatus indicates a non-2xx status with no structured error body.
	KindHTTPStatus Kind = "http_status"

	// KindStructuredOutputRejected indicates the provider rejected the
	// structured-output clause specifically; the client retries once in
	// plain-text mode before surfacing anything.
	KindStructuredOutputRejected Kind = "structured_output_rejected"

	// KindSchemaValidation indicates text came back but no schema-valid JSON
	// could be recovered from it.
	KindSchemaValidation Kind = "schema_validation"

	// KindCancelled indicates the caller's context was cancelled or its
	// deadline expired.
	KindCancelled Kind = "cancelled"
)

// Sentinel errors for conditions without provider context.
var (
	// ErrUnknownProvider indicates a provider outside the configured set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownModel indicates a model absent from the capability table.
	ErrUnknownModel = errors.New("unknown model")

	// ErrEmptyCompletion indicates the provider returned a well-formed
	// envelope with no content.
	ErrEmptyCompletion = errors.New("empty completion content")
)

// ProviderError captures a structured error response from a provider,
// including the HTTP status and the provider's own error code, so callers
// can distinguish structured-output rejections from other failures.
type ProviderError struct {
	Provider   string `json:"provider"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	Type       string `json:"type"`
}

// Error returns the formatted provider error with status context.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// RejectsStructuredOutput reports whether this error is attributable to the
// structured-output clause. Providers signal it either with a dedicated code
// or by naming the offending parameter in the message.
func (e *ProviderError) RejectsStructuredOutput() bool {
	switch e.Code {
	case "unsupported_response_format", "response_format_unsupported":
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "response_format") ||
		strings.Contains(msg, "json_schema") ||
		strings.Contains(msg, "structured output")
}

// HTTPStatusError represents a non-2xx response whose body carried no
// structured error object.
type HTTPStatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error returns the formatted status error with a body excerpt.
func (e *HTTPStatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, body)
}
