package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lldarena/arena/internal/comparison"
	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm"
	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/question"
)

type stubQuestions struct {
	result  llm.Result[domain.QuestionResponse]
	lastIn  question.GenerateInput
	invoked bool
}

func (s *stubQuestions) Generate(_ context.Context, in question.GenerateInput) llm.Result[domain.QuestionResponse] {
	s.invoked = true
	s.lastIn = in
	return s.result
}

type stubEngine struct {
	round    comparison.RoundResult
	analysis comparison.AnalysisResult
	names    []string

	votes  [][2]string
	resets int

	lastDifficulty domain.Difficulty
	lastEffort     domain.ReasoningEffort
}

func (s *stubEngine) RunRound(_ context.Context, d domain.Difficulty, e domain.ReasoningEffort) comparison.RoundResult {
	s.lastDifficulty = d
	s.lastEffort = e
	return s.round
}

func (s *stubEngine) RecordVote(winner, loser string) {
	s.votes = append(s.votes, [2]string{winner, loser})
}
func (s *stubEngine) Analysis() comparison.AnalysisResult { return s.analysis }
func (s *stubEngine) Reset()                              { s.resets++ }
func (s *stubEngine) ModelNames() []string                { return s.names }

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGenerateQuestion_Success(t *testing.T) {
	questions := &stubQuestions{result: llm.Result[domain.QuestionResponse]{
		Success: true,
		Data: &domain.QuestionResponse{
			Question:    "Design a parking lot",
			ShortTitle:  "PARKING_LOT",
			Constraints: []string{"support multiple levels"},
		},
	}}
	srv := New(questions, &stubEngine{}, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/LldQuestion/generate",
		`{"difficulty":"hard","alreadyAskedShortTitles":["ELEVATOR"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DifficultyHard, questions.lastIn.Difficulty)
	assert.Equal(t, []string{"ELEVATOR"}, questions.lastIn.AlreadyAsked)

	var got domain.QuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "PARKING_LOT", got.ShortTitle)
}

func TestGenerateQuestion_DefaultsDifficultyToMedium(t *testing.T) {
	questions := &stubQuestions{result: llm.Result[domain.QuestionResponse]{
		Success: true,
		Data:    &domain.QuestionResponse{Question: "q", ShortTitle: "T"},
	}}
	srv := New(questions, &stubEngine{}, zap.NewNop())

	doRequest(t, srv, http.MethodPost, "/api/LldQuestion/generate", `{"difficulty":"extreme"}`)

	assert.Equal(t, domain.DifficultyMedium, questions.lastIn.Difficulty)
}

func TestGenerateQuestion_FailureMapsTo502(t *testing.T) {
	questions := &stubQuestions{result: llm.Result[domain.QuestionResponse]{
		Kind:         llmerrors.KindProvider,
		ErrorMessage: "every fallback model failed",
	}}
	srv := New(questions, &stubEngine{}, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/LldQuestion/generate", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "every fallback model failed")
}

func TestGenerateQuestion_MalformedBody(t *testing.T) {
	srv := New(&stubQuestions{}, &stubEngine{}, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/LldQuestion/generate", `{"difficulty":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparisonRound_Success(t *testing.T) {
	engine := &stubEngine{round: comparison.RoundResult{
		Success: true,
		ModelA:  comparison.SideResult{Model: "[openai] gpt-4o", Success: true, Question: &domain.QuestionResponse{ShortTitle: "A"}},
		ModelB:  comparison.SideResult{Model: "[groq] qwen/qwen3-32b", Success: false, Error: "timed out"},
	}}
	srv := New(&stubQuestions{}, engine, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/ModelComparison/generate",
		`{"difficulty":"easy","reasoningEffort":"high"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DifficultyEasy, engine.lastDifficulty)
	assert.Equal(t, domain.ReasoningHigh, engine.lastEffort)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, true, got["isSuccess"])
	assert.NotContains(t, got, "errorMessage")
}

func TestComparisonRound_BothSidesFailedMapsTo502(t *testing.T) {
	engine := &stubEngine{round: comparison.RoundResult{
		Success:      false,
		ErrorMessage: "[openai] gpt-4o failed: x; [groq] qwen/qwen3-32b failed: y",
	}}
	srv := New(&stubQuestions{}, engine, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/ModelComparison/generate", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed: x")
}

func TestVote_RecordsWinnerAndLoser(t *testing.T) {
	engine := &stubEngine{}
	srv := New(&stubQuestions{}, engine, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/ModelComparison/vote",
		`{"winningModel":"[openai] gpt-4o","losingModel":"[groq] gemma2-9b-it"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, engine.votes, 1)
	assert.Equal(t, [2]string{"[openai] gpt-4o", "[groq] gemma2-9b-it"}, engine.votes[0])
}

func TestVote_BlankModelNamesRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing_winner", `{"losingModel":"[groq] gemma2-9b-it"}`},
		{"missing_loser", `{"winningModel":"[openai] gpt-4o"}`},
		{"whitespace_only", `{"winningModel":"   ","losingModel":"x"}`},
		{"empty_body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			srv := New(&stubQuestions{}, engine, zap.NewNop())

			rec := doRequest(t, srv, http.MethodPost, "/api/ModelComparison/vote", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, engine.votes, "no vote may be recorded on a rejected request")
		})
	}
}

func TestResults(t *testing.T) {
	engine := &stubEngine{analysis: comparison.AnalysisResult{
		TotalRounds: 3,
		Scores: []comparison.ModelScore{
			{Model: "[openai] gpt-4o", TimesShown: 3, TimesSelected: 2, SelectionPercentage: 66.7},
		},
	}}
	srv := New(&stubQuestions{}, engine, zap.NewNop())

	rec := doRequest(t, srv, http.MethodGet, "/api/ModelComparison/results", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got comparison.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalRounds)
	require.Len(t, got.Scores, 1)
	assert.InDelta(t, 66.7, got.Scores[0].SelectionPercentage, 1e-9)
}

func TestReset(t *testing.T) {
	engine := &stubEngine{}
	srv := New(&stubQuestions{}, engine, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/api/ModelComparison/reset", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, engine.resets)
}

func TestModels(t *testing.T) {
	engine := &stubEngine{names: []string{"[openai] gpt-4o", "[groq] gemma2-9b-it"}}
	srv := New(&stubQuestions{}, engine, zap.NewNop())

	rec := doRequest(t, srv, http.MethodGet, "/api/ModelComparison/models", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, engine.names, got)
}

func TestHealthz(t *testing.T) {
	srv := New(&stubQuestions{}, &stubEngine{}, zap.NewNop())

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
