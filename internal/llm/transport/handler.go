package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lldarena/arena/internal/domain"
)

// ProviderAdapter abstracts provider-specific HTTP communication. Each
// backend in the closed provider set implements this interface, encoding its
// quirks (reasoning dialect, role support, structured-output support) as
// pure data transforms.
type ProviderAdapter interface {
	// Build constructs the provider-specific HTTP request from a normalized
	// completion request.
	Build(ctx context.Context, req *Request) (*http.Request, error)

	// Parse extracts a normalized Response from the provider's envelope, or
	// a classified error when the envelope reports failure.
	Parse(httpResp *http.Response) (*Response, error)

	// Name returns the canonical provider identifier.
	Name() domain.Provider
}

// Router selects the adapter responsible for a provider/model pair.
type Router interface {
	Pick(provider domain.Provider, model string) (ProviderAdapter, error)
}

// Handler processes completion requests through the middleware pipeline.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, *Request) (*Response, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware transforms a Handler into an enhanced Handler.
type Middleware func(Handler) Handler

// Chain wraps a core handler with middleware. The first middleware is
// outermost, so it sees the request first and the response last.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// NewHTTPHandler creates the core handler that executes provider HTTP calls.
// Every request body, response body, and status code is logged verbatim
// before any transformation so provider drift can be diagnosed after the
// fact.
func NewHTTPHandler(client *http.Client, router Router, logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpHandler{client: client, router: router, logger: logger}
}

type httpHandler struct {
	client *http.Client
	router Router
	logger *zap.Logger
}

// Handle builds the provider request, executes it, and parses the envelope.
func (h *httpHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	adapter, err := h.router.Pick(req.Provider, req.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to select provider: %w", err)
	}

	reqCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := adapter.Build(reqCtx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	h.logOutbound(httpReq, req)

	start := time.Now()
	httpResp, err := h.client.Do(httpReq)
	latency := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	resp, err := adapter.Parse(httpResp)
	if err != nil {
		return nil, err
	}

	resp.Usage.LatencyMs = latency.Milliseconds()

	h.logger.Debug("provider response",
		zap.String("provider", string(req.Provider)),
		zap.String("model", req.Model),
		zap.String("trace_id", req.TraceID),
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("body", resp.RawBody),
	)

	return resp, nil
}

// logOutbound logs the exact JSON body going over the wire. The body is
// recovered through GetBody, which adapters guarantee by building requests
// from byte readers.
func (h *httpHandler) logOutbound(httpReq *http.Request, req *Request) {
	var body []byte
	if httpReq.GetBody != nil {
		if rc, err := httpReq.GetBody(); err == nil {
			body, _ = io.ReadAll(rc)
			_ = rc.Close()
		}
	}
	h.logger.Debug("provider request",
		zap.String("provider", string(req.Provider)),
		zap.String("model", req.Model),
		zap.String("trace_id", req.TraceID),
		zap.String("url", httpReq.URL.String()),
		zap.ByteString("body", body),
	)
}
