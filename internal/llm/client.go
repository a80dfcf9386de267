package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/llm/providers"
	"github.com/lldarena/arena/internal/llm/transport"
)

// Default client limits.
const (
	DefaultHTTPTimeout = 120 * time.Second
	DefaultMaxTokens   = 4096
)

// StructuredRequest describes one structured completion: the target model,
// the prompts, and the schema the answer must validate against.
type StructuredRequest struct {
	Model            domain.ModelEntry
	SystemPrompt     string
	UserPrompt       string
	AssistantContext string

	SchemaName string
	Schema     json.RawMessage

	Temperature     *float64
	MaxTokens       int
	ReasoningEffort domain.ReasoningEffort
}

// Options configures a Client.
type Options struct {
	Providers   map[domain.Provider]providers.Config
	HTTPClient  *http.Client
	HTTPTimeout time.Duration

	// Cooldown, when positive, is awaited after each call before the
	// concurrency gate is released. Defaults to zero (no throttle delay).
	Cooldown time.Duration

	Logger      *zap.Logger
	Middlewares []transport.Middleware
}

// Client executes structured completions against the configured providers.
//
// A client serializes its outbound HTTP calls through a single-slot gate:
// some providers throttle by concurrent-connection count rather than rate,
// so at most one call per client is in flight at a time. Callers that need
// true parallelism use separate client instances (one per provider in this
// codebase) or accept serialization.
type Client struct {
	registry *providers.Registry
	handler  transport.Handler
	gate     *semaphore.Weighted
	cooldown time.Duration
	logger   *zap.Logger

	onStructuredFallback func(provider, model string)
}

// NewClient builds a client with the logging middleware innermost to the
// caller and any supplied middlewares outside it.
func NewClient(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := providers.NewRegistry(opts.Providers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider registry: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.HTTPTimeout
		if timeout == 0 {
			timeout = DefaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	core := transport.NewHTTPHandler(httpClient, registry, logger)
	middlewares := append([]transport.Middleware{}, opts.Middlewares...)
	middlewares = append(middlewares, transport.NewLoggingMiddleware(logger))
	handler := transport.Chain(core, middlewares...)

	return &Client{
		registry: registry,
		handler:  handler,
		gate:     semaphore.NewWeighted(1),
		cooldown: opts.Cooldown,
		logger:   logger,
	}, nil
}

// SetStructuredFallbackObserver registers a hook invoked whenever the client
// falls back to plain-text mode after a structured-output rejection.
func (c *Client) SetStructuredFallbackObserver(fn func(provider, model string)) {
	c.onStructuredFallback = fn
}

// Complete runs one structured completion and decodes the answer into T.
// The protocol: build messages, attach the structured-output clause when the
// model supports it, execute over HTTP, retry once in plain-text mode on a
// structured-format rejection, then recover and validate JSON from whatever
// text came back. Every failure is folded into the result.
func Complete[T any](ctx context.Context, c *Client, req StructuredRequest) Result[T] {
	resp, err := c.execute(ctx, req)
	if err != nil {
		return failureResult[T](err)
	}

	result := decode[T](resp)
	result.Usage = &resp.Usage
	result.ReasoningTrace = resp.ReasoningTrace
	return result
}

// execute serializes the HTTP call through the gate and applies the
// single plain-text retry on structured-output rejection.
func (c *Client) execute(ctx context.Context, req StructuredRequest) (*transport.Response, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer func() {
		if c.cooldown > 0 {
			time.Sleep(c.cooldown)
		}
		c.gate.Release(1)
	}()

	treq, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.handler.Handle(ctx, treq)
	if err != nil && treq.ResponseFormat != nil &&
		llmerrors.Classify(err) == llmerrors.KindStructuredOutputRejected {
		c.logger.Warn("structured output rejected, retrying in plain-text mode",
			zap.String("provider", string(req.Model.Provider)),
			zap.String("model", req.Model.ModelID),
			zap.Error(err),
		)
		if c.onStructuredFallback != nil {
			c.onStructuredFallback(string(req.Model.Provider), req.Model.ModelID)
		}
		resp, err = c.handler.Handle(ctx, treq.WithoutResponseFormat())
	}

	return resp, err
}

// buildRequest assembles the normalized transport request: message list in
// system → user → assistant-context order, plus the structured-output clause
// for models that support it. System-role folding for models that lack the
// role happens in the adapter.
func (c *Client) buildRequest(req StructuredRequest) (*transport.Request, error) {
	caps, err := c.registry.Capabilities(req.Model.Provider, req.Model.ModelID)
	if err != nil {
		return nil, err
	}

	var messages []transport.Message
	if req.SystemPrompt != "" {
		messages = append(messages, transport.Message{Role: transport.RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, transport.Message{Role: transport.RoleUser, Content: req.UserPrompt})
	if req.AssistantContext != "" {
		messages = append(messages, transport.Message{Role: transport.RoleAssistant, Content: req.AssistantContext})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	treq := &transport.Request{
		Provider:        req.Model.Provider,
		Model:           req.Model.ModelID,
		Messages:        messages,
		Temperature:     req.Temperature,
		MaxTokens:       maxTokens,
		ReasoningEffort: req.ReasoningEffort,
	}

	if len(req.Schema) > 0 && caps.SupportsStructuredOutput {
		treq.ResponseFormat = &transport.SchemaFormat{
			Name:   req.SchemaName,
			Schema: req.Schema,
			Strict: true,
		}
	}

	return treq, nil
}

// decode recovers a schema-valid T from the response content: first a direct
// unmarshal, then one attempt on the substring the extractor recovers.
func decode[T any](resp *transport.Response) Result[T] {
	raw := resp.Content
	if raw == "" {
		return Result[T]{
			Kind:         llmerrors.KindSchemaValidation,
			ErrorMessage: llmerrors.ErrEmptyCompletion.Error(),
		}
	}

	var data T
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		candidate, ok := ExtractJSONObject(raw)
		if !ok {
			return Result[T]{
				Kind:         llmerrors.KindSchemaValidation,
				ErrorMessage: "no JSON object found in model output",
				RawText:      raw,
			}
		}
		data = *new(T)
		if err := json.Unmarshal([]byte(candidate), &data); err != nil {
			return Result[T]{
				Kind:         llmerrors.KindSchemaValidation,
				ErrorMessage: fmt.Sprintf("extracted JSON does not match target schema: %v", err),
				RawText:      raw,
			}
		}
	}

	if v, ok := any(&data).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return Result[T]{
				Kind:         llmerrors.KindSchemaValidation,
				ErrorMessage: fmt.Sprintf("model output failed validation: %v", err),
				RawText:      raw,
			}
		}
	}

	return Result[T]{
		Success: true,
		RawText: raw,
		Data:    &data,
	}
}
