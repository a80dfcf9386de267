// Package server exposes the HTTP surface: question generation, comparison
// rounds, voting, analysis, and operational endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lldarena/arena/internal/comparison"
	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm"
	"github.com/lldarena/arena/internal/question"
)

// QuestionService is the slice of question.Service the handlers need.
type QuestionService interface {
	Generate(ctx context.Context, in question.GenerateInput) llm.Result[domain.QuestionResponse]
}

// ComparisonEngine is the slice of comparison.Engine the handlers need.
type ComparisonEngine interface {
	RunRound(ctx context.Context, difficulty domain.Difficulty, effort domain.ReasoningEffort) comparison.RoundResult
	RecordVote(winner, loser string)
	Analysis() comparison.AnalysisResult
	Reset()
	ModelNames() []string
}

// Server wires the handlers onto a gin router.
type Server struct {
	questions QuestionService
	engine    ComparisonEngine
	logger    *zap.Logger
	router    *gin.Engine
}

// New builds the server and registers all routes.
func New(questions QuestionService, engine ComparisonEngine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		questions: questions,
		engine:    engine,
		logger:    logger,
		router:    router,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.POST("/LldQuestion/generate", s.handleGenerateQuestion)

	mc := api.Group("/ModelComparison")
	mc.POST("/generate", s.handleComparisonRound)
	mc.POST("/vote", s.handleVote)
	mc.GET("/results", s.handleResults)
	mc.POST("/reset", s.handleReset)
	mc.GET("/models", s.handleModels)

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the underlying http.Handler, used by main and tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then drains with the given timeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs each HTTP request with latency and status.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
