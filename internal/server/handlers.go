package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/question"
)

type generateQuestionRequest struct {
	Difficulty              string   `json:"difficulty"`
	AlreadyAskedShortTitles []string `json:"alreadyAskedShortTitles"`
}

type comparisonRoundRequest struct {
	Difficulty      string `json:"difficulty"`
	ReasoningEffort string `json:"reasoningEffort"`
}

type voteRequest struct {
	WinningModel string `json:"winningModel"`
	LosingModel  string `json:"losingModel"`
}

// handleGenerateQuestion serves POST /api/LldQuestion/generate. A generation
// failure across the whole fallback list maps to 502.
func (s *Server) handleGenerateQuestion(c *gin.Context) {
	var req generateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := s.questions.Generate(c.Request.Context(), question.GenerateInput{
		Difficulty:   normalizeDifficulty(req.Difficulty),
		AlreadyAsked: req.AlreadyAskedShortTitles,
	})
	if !result.Success {
		c.JSON(http.StatusBadGateway, gin.H{"error": result.ErrorMessage})
		return
	}

	c.JSON(http.StatusOK, result.Data)
}

// handleComparisonRound serves POST /api/ModelComparison/generate. Only a
// round where both sides failed maps to 502.
func (s *Server) handleComparisonRound(c *gin.Context) {
	var req comparisonRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	round := s.engine.RunRound(c.Request.Context(),
		normalizeDifficulty(req.Difficulty),
		domain.ReasoningEffort(req.ReasoningEffort),
	)
	if !round.Success {
		c.JSON(http.StatusBadGateway, gin.H{"error": round.ErrorMessage})
		return
	}

	c.JSON(http.StatusOK, round)
}

// handleVote serves POST /api/ModelComparison/vote. Blank model names are a
// caller error.
func (s *Server) handleVote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.WinningModel) == "" || strings.TrimSpace(req.LosingModel) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winningModel and losingModel are required"})
		return
	}

	s.engine.RecordVote(req.WinningModel, req.LosingModel)
	c.Status(http.StatusOK)
}

// handleResults serves GET /api/ModelComparison/results.
func (s *Server) handleResults(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Analysis())
}

// handleReset serves POST /api/ModelComparison/reset.
func (s *Server) handleReset(c *gin.Context) {
	s.engine.Reset()
	c.Status(http.StatusOK)
}

// handleModels serves GET /api/ModelComparison/models.
func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ModelNames())
}

func normalizeDifficulty(raw string) domain.Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return domain.DifficultyEasy
	case "hard":
		return domain.DifficultyHard
	default:
		return domain.DifficultyMedium
	}
}
