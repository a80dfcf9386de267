package question

import (
	"context"

	"go.uber.org/zap"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm"
	"github.com/lldarena/arena/internal/llm/llmerrors"
)

// Completer abstracts the structured-completion client for one provider.
type Completer interface {
	CompleteQuestion(ctx context.Context, req llm.StructuredRequest) llm.Result[domain.QuestionResponse]
}

// ClientCompleter adapts *llm.Client to the Completer interface.
type ClientCompleter struct {
	Client *llm.Client
}

// CompleteQuestion runs a structured completion typed to QuestionResponse.
func (c ClientCompleter) CompleteQuestion(ctx context.Context, req llm.StructuredRequest) llm.Result[domain.QuestionResponse] {
	return llm.Complete[domain.QuestionResponse](ctx, c.Client, req)
}

// DefaultFallbackModels is the priority list tried in order by default-mode
// generation. All entries share one provider so a single client (and its
// concurrency gate) serves the whole list.
func DefaultFallbackModels() []domain.ModelEntry {
	return []domain.ModelEntry{
		{ModelID: "llama-3.3-70b-versatile", Provider: domain.ProviderGroq},
		{ModelID: "qwen/qwen3-32b", Provider: domain.ProviderGroq},
		{ModelID: "deepseek-r1-distill-llama-70b", Provider: domain.ProviderGroq},
	}
}

// GenerateInput carries the caller's parameters for one generation.
type GenerateInput struct {
	Difficulty   domain.Difficulty
	AlreadyAsked []string

	// UserID keys the history store; empty means anonymous.
	UserID string
}

// Service builds prompts and delegates to per-provider completion clients.
type Service struct {
	completers map[domain.Provider]Completer
	fallback   []domain.ModelEntry
	history    HistoryStore
	logger     *zap.Logger
}

// NewService wires the generation service. The fallback list defaults to
// DefaultFallbackModels when nil; history may be nil to skip persistence.
func NewService(completers map[domain.Provider]Completer, fallback []domain.ModelEntry, history HistoryStore, logger *zap.Logger) *Service {
	if fallback == nil {
		fallback = DefaultFallbackModels()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completers: completers,
		fallback:   fallback,
		history:    history,
		logger:     logger,
	}
}

// Generate runs default-mode generation: each fallback model is tried in
// priority order and the first success wins. When every model fails, the
// last failure is returned.
func (s *Service) Generate(ctx context.Context, in GenerateInput) llm.Result[domain.QuestionResponse] {
	var last llm.Result[domain.QuestionResponse]
	for _, model := range s.fallback {
		last = s.GenerateWith(ctx, model, domain.ReasoningDefault, in)
		if last.Success {
			return last
		}
		s.logger.Warn("fallback model failed, trying next",
			zap.String("model", model.DisplayName()),
			zap.String("error", last.ErrorMessage),
		)
		if last.Kind == llmerrors.KindCancelled {
			break
		}
	}
	return last
}

// GenerateWith runs targeted-mode generation against exactly one model with
// no fallback.
func (s *Service) GenerateWith(ctx context.Context, model domain.ModelEntry, effort domain.ReasoningEffort, in GenerateInput) llm.Result[domain.QuestionResponse] {
	completer, ok := s.completers[model.Provider]
	if !ok {
		return llm.Result[domain.QuestionResponse]{
			Kind:         llmerrors.KindProvider,
			ErrorMessage: "no client configured for provider " + string(model.Provider),
		}
	}

	result := completer.CompleteQuestion(ctx, llm.StructuredRequest{
		Model:           model,
		SystemPrompt:    systemPrompt(in.Difficulty, in.AlreadyAsked),
		UserPrompt:      userPrompt(in.AlreadyAsked),
		SchemaName:      domain.QuestionSchemaName,
		Schema:          domain.QuestionSchema(),
		ReasoningEffort: effort,
	})

	if result.Success {
		s.recordHistory(ctx, in.UserID, result.Data.ShortTitle)
	}
	return result
}

// recordHistory saves the short title best-effort: a store failure is logged
// and swallowed so a computed response is never aborted by persistence.
func (s *Service) recordHistory(ctx context.Context, userID, shortTitle string) {
	if s.history == nil || shortTitle == "" {
		return
	}
	if userID == "" {
		userID = "anonymous"
	}
	if err := s.history.SaveShortTitle(ctx, userID, shortTitle); err != nil {
		s.logger.Warn("failed to record question history",
			zap.String("user_id", userID),
			zap.String("short_title", shortTitle),
			zap.Error(err),
		)
	}
}
