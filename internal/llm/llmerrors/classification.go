package llmerrors

import (
	"context"
	"errors"
	"net"
)

// Classify maps an error from a completion attempt to its failure Kind.
// Typed errors win over sentinel checks; anything unrecognized is treated as
// a network-level failure since it occurred below the envelope parser.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		if provErr.RejectsStructuredOutput() {
			return KindStructuredOutputRejected
		}
		return KindProvider
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return KindHTTPStatus
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindCancelled
		}
		return KindNetwork
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return KindResponseParse
	}

	return KindNetwork
}

// ParseError wraps an envelope-decode failure with the provider that
// produced the undecodable body.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return "failed to decode " + e.Provider + " response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
