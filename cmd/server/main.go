// Command server runs the question-generation and model-comparison backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lldarena/arena/internal/comparison"
	"github.com/lldarena/arena/internal/config"
	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm"
	"github.com/lldarena/arena/internal/llm/providers"
	"github.com/lldarena/arena/internal/llm/transport"
	"github.com/lldarena/arena/internal/metrics"
	"github.com/lldarena/arena/internal/question"
	"github.com/lldarena/arena/internal/server"
)

func main() {
	// Local development keys live in .env; absence is fine in production.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("ARENA_CONFIG_DIR"))
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	providerConfigs := cfg.ProviderConfigs()
	if len(providerConfigs) == 0 {
		logger.Fatal("no providers configured; set OPENAI_API_KEY or GROQ_API_KEY")
	}

	// One client per provider: each client serializes its own calls through
	// a single-slot gate, so separate providers run truly in parallel.
	completers := make(map[domain.Provider]question.Completer, len(providerConfigs))
	for provider, pc := range providerConfigs {
		client, err := llm.NewClient(llm.Options{
			Providers:   map[domain.Provider]providers.Config{provider: pc},
			HTTPTimeout: cfg.Completion.HTTPTimeout,
			Cooldown:    cfg.Completion.Cooldown,
			Logger:      logger.Named(string(provider)),
			Middlewares: []transport.Middleware{metrics.NewTransportMiddleware()},
		})
		if err != nil {
			logger.Fatal("failed to build completion client",
				zap.String("provider", string(provider)), zap.Error(err))
		}
		client.SetStructuredFallbackObserver(metrics.ObserveStructuredFallback)
		completers[provider] = question.ClientCompleter{Client: client}
	}

	history := question.NewMemoryHistory()
	questions := question.NewService(completers, cfg.FallbackModels(), history, logger.Named("question"))
	engine := comparison.NewEngine(domain.Catalog(), questions, logger.Named("comparison"))

	srv := server.New(questions, engine, logger.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
