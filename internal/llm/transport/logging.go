package transport

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lldarena/arena/internal/llm/llmerrors"
)

// NewLoggingMiddleware wraps a handler with request-lifecycle logging.
// It records start/completion events with provider, model, and usage fields,
// and classifies failures by kind for log-based alerting.
func NewLoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			if req.TraceID == "" {
				req.TraceID = uuid.New().String()
			}

			logger.Info("completion request started",
				zap.String("trace_id", req.TraceID),
				zap.String("provider", string(req.Provider)),
				zap.String("model", req.Model),
				zap.Int("messages", len(req.Messages)),
				zap.Int("max_tokens", req.MaxTokens),
				zap.String("reasoning_effort", string(req.ReasoningEffort)),
				zap.Bool("structured_output", req.ResponseFormat != nil),
			)

			start := time.Now()
			resp, err := next.Handle(ctx, req)
			duration := time.Since(start)

			if err != nil {
				logger.Warn("completion request failed",
					zap.String("trace_id", req.TraceID),
					zap.String("provider", string(req.Provider)),
					zap.String("model", req.Model),
					zap.Duration("duration", duration),
					zap.String("kind", string(llmerrors.Classify(err))),
					zap.Error(err),
				)
				return resp, err
			}

			logger.Info("completion request completed",
				zap.String("trace_id", req.TraceID),
				zap.String("provider", string(req.Provider)),
				zap.String("model", req.Model),
				zap.Duration("duration", duration),
				zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
			)
			return resp, nil
		})
	}
}
