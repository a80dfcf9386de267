// Package comparison runs head-to-head question-generation rounds between
// two randomly chosen models and keeps the per-model history and vote
// tallies used for A/B preference analysis.
package comparison

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm"
	"github.com/lldarena/arena/internal/metrics"
	"github.com/lldarena/arena/internal/question"
)

// Generator produces a question from one specific model. Implemented by
// question.Service.
type Generator interface {
	GenerateWith(ctx context.Context, model domain.ModelEntry, effort domain.ReasoningEffort, in question.GenerateInput) llm.Result[domain.QuestionResponse]
}

// SideResult is one model's outcome within a round.
type SideResult struct {
	Model    string                   `json:"model"`
	Success  bool                     `json:"success"`
	Question *domain.QuestionResponse `json:"question,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// RoundResult is the outcome of one comparison round. The round succeeds if
// either side succeeds; ErrorMessage is set only when both sides fail.
type RoundResult struct {
	Success      bool       `json:"isSuccess"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	ModelA       SideResult `json:"modelA"`
	ModelB       SideResult `json:"modelB"`
}

// ModelScore is one row of the aggregate analysis.
type ModelScore struct {
	Model               string  `json:"model"`
	TimesShown          int     `json:"timesShown"`
	TimesSelected       int     `json:"timesSelected"`
	SelectionPercentage float64 `json:"selectionPercentage"`
}

// AnalysisResult aggregates vote statistics across all rounds.
type AnalysisResult struct {
	TotalRounds int          `json:"totalRounds"`
	Scores      []ModelScore `json:"scores"`
}

type tally struct {
	timesShown    int
	timesSelected int
}

// Engine owns all mutable comparison state: the per-model short-title
// history and the vote tallies. Both live in memory for the process
// lifetime, are created at construction, cleared only by Reset, and are
// mutated only under the engine mutex so concurrent rounds never lose
// updates. Rounds still in flight across a Reset write into the post-reset
// maps because every write re-enters the lock and addresses the current
// maps rather than a cached reference.
type Engine struct {
	catalog   []domain.ModelEntry
	generator Generator
	logger    *zap.Logger

	mu          sync.Mutex
	history     map[string]map[string]struct{}
	scores      map[string]*tally
	totalRounds int
}

// NewEngine creates an engine over the given catalog. The catalog must hold
// at least two entries; this is a construction-time precondition, not a
// runtime check.
func NewEngine(catalog []domain.ModelEntry, generator Generator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:   catalog,
		generator: generator,
		logger:    logger,
		history:   make(map[string]map[string]struct{}),
		scores:    make(map[string]*tally),
	}
}

// ModelNames lists the display names of every catalog entry.
func (e *Engine) ModelNames() []string {
	names := make([]string, len(e.catalog))
	for i, m := range e.catalog {
		names[i] = m.DisplayName()
	}
	return names
}

// PickTwoModels shuffles the catalog uniformly at random and returns the
// first two distinct entries.
func (e *Engine) PickTwoModels() (domain.ModelEntry, domain.ModelEntry) {
	shuffled := append([]domain.ModelEntry(nil), e.catalog...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	first := shuffled[0]
	for _, candidate := range shuffled[1:] {
		if candidate != first {
			return first, candidate
		}
	}
	// Unreachable while the catalog precondition holds.
	return first, shuffled[1]
}

// RunRound executes one comparison round: two distinct models, generation in
// parallel, history appended for each side that produced a question.
// Cancelling ctx propagates into both generations and their HTTP calls.
func (e *Engine) RunRound(ctx context.Context, difficulty domain.Difficulty, effort domain.ReasoningEffort) RoundResult {
	modelA, modelB := e.PickTwoModels()

	// Each side avoids only its own prior titles, snapshotted before the
	// round starts.
	askedA := e.historySnapshot(modelA.DisplayName())
	askedB := e.historySnapshot(modelB.DisplayName())

	var resultA, resultB llm.Result[domain.QuestionResponse]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resultA = e.generator.GenerateWith(gctx, modelA, effort, question.GenerateInput{
			Difficulty:   difficulty,
			AlreadyAsked: askedA,
		})
		return nil
	})
	g.Go(func() error {
		resultB = e.generator.GenerateWith(gctx, modelB, effort, question.GenerateInput{
			Difficulty:   difficulty,
			AlreadyAsked: askedB,
		})
		return nil
	})
	_ = g.Wait()

	sideA := e.finishSide(modelA, resultA)
	sideB := e.finishSide(modelB, resultB)

	round := RoundResult{
		Success: sideA.Success || sideB.Success,
		ModelA:  sideA,
		ModelB:  sideB,
	}
	if !round.Success {
		round.ErrorMessage = fmt.Sprintf("%s failed: %s; %s failed: %s",
			sideA.Model, sideA.Error, sideB.Model, sideB.Error)
	}

	metrics.ObserveRound()
	e.logger.Info("comparison round finished",
		zap.String("model_a", sideA.Model),
		zap.String("model_b", sideB.Model),
		zap.Bool("success", round.Success),
	)

	return round
}

// finishSide converts a generation result into a side outcome and appends
// the short title to that model's history when generation succeeded.
func (e *Engine) finishSide(model domain.ModelEntry, result llm.Result[domain.QuestionResponse]) SideResult {
	name := model.DisplayName()
	if !result.Success {
		return SideResult{Model: name, Error: result.ErrorMessage}
	}

	e.appendHistory(name, result.Data.ShortTitle)
	return SideResult{Model: name, Success: true, Question: result.Data}
}

// historySnapshot copies a model's short-title set for use outside the lock.
func (e *Engine) historySnapshot(model string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	titles := make([]string, 0, len(e.history[model]))
	for t := range e.history[model] {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// appendHistory adds a short title to a model's history set. Idempotent
// under concurrent duplicates.
func (e *Engine) appendHistory(model, shortTitle string) {
	if shortTitle == "" {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	set, ok := e.history[model]
	if !ok {
		set = make(map[string]struct{})
		e.history[model] = set
	}
	set[shortTitle] = struct{}{}
}

// RecordVote registers the caller's preference: the winner is credited with
// a show and a selection, the loser with a show only, and the round counter
// advances. The three updates commit as one unit under the engine lock, so
// no observer sees a selection without its paired show.
func (e *Engine) RecordVote(winner, loser string) {
	e.mu.Lock()
	e.tallyFor(winner).timesShown++
	e.tallyFor(winner).timesSelected++
	e.tallyFor(loser).timesShown++
	e.totalRounds++
	e.mu.Unlock()

	metrics.ObserveVote()
}

// tallyFor returns the tally for a model, creating it on first use.
// Callers must hold e.mu.
func (e *Engine) tallyFor(model string) *tally {
	t, ok := e.scores[model]
	if !ok {
		t = &tally{}
		e.scores[model] = t
	}
	return t
}

// Analysis computes per-model selection percentages, sorted descending by
// percentage and then by selections.
func (e *Engine) Analysis() AnalysisResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	scores := make([]ModelScore, 0, len(e.scores))
	for model, t := range e.scores {
		pct := 0.0
		if t.timesShown > 0 {
			pct = math.Round(float64(t.timesSelected)/float64(t.timesShown)*1000) / 10
		}
		scores = append(scores, ModelScore{
			Model:               model,
			TimesShown:          t.timesShown,
			TimesSelected:       t.timesSelected,
			SelectionPercentage: pct,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].SelectionPercentage != scores[j].SelectionPercentage {
			return scores[i].SelectionPercentage > scores[j].SelectionPercentage
		}
		if scores[i].TimesSelected != scores[j].TimesSelected {
			return scores[i].TimesSelected > scores[j].TimesSelected
		}
		return scores[i].Model < scores[j].Model
	})

	return AnalysisResult{TotalRounds: e.totalRounds, Scores: scores}
}

// Reset clears all history and scores and zeroes the round counter. Safe to
// call while rounds are in flight: their later writes land in the fresh maps.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = make(map[string]map[string]struct{})
	e.scores = make(map[string]*tally)
	e.totalRounds = 0
}

// HistoryFor returns a model's current history snapshot.
func (e *Engine) HistoryFor(model string) []string {
	return e.historySnapshot(model)
}
