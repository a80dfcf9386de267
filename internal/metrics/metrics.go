// Package metrics exposes Prometheus collectors for completion traffic and
// comparison activity, plus a transport middleware that feeds them.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lldarena/arena/internal/llm/llmerrors"
	"github.com/lldarena/arena/internal/llm/transport"
)

var (
	completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_completions_total",
			Help: "Completion attempts by provider, model, and outcome.",
		},
		[]string{"provider", "model", "outcome"},
	)
	completionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Provider round-trip latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)
	structuredFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_structured_output_fallbacks_total",
			Help: "Plain-text retries after a structured-output rejection.",
		},
		[]string{"provider", "model"},
	)
	comparisonRounds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comparison_rounds_total",
			Help: "Comparison rounds executed.",
		},
	)
	comparisonVotes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comparison_votes_total",
			Help: "Votes recorded across all rounds.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		completionsTotal,
		completionDuration,
		structuredFallbacks,
		comparisonRounds,
		comparisonVotes,
	)
}

// ObserveStructuredFallback counts a plain-text retry for the given model.
func ObserveStructuredFallback(provider, model string) {
	structuredFallbacks.WithLabelValues(provider, model).Inc()
}

// ObserveRound counts one executed comparison round.
func ObserveRound() { comparisonRounds.Inc() }

// ObserveVote counts one recorded vote.
func ObserveVote() { comparisonVotes.Inc() }

// NewTransportMiddleware instruments completion calls with outcome counters
// and latency histograms.
func NewTransportMiddleware() transport.Middleware {
	return func(next transport.Handler) transport.Handler {
		return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			start := time.Now()
			resp, err := next.Handle(ctx, req)

			provider := string(req.Provider)
			completionDuration.WithLabelValues(provider, req.Model).Observe(time.Since(start).Seconds())

			outcome := "success"
			if err != nil {
				outcome = string(llmerrors.Classify(err))
			}
			completionsTotal.WithLabelValues(provider, req.Model, outcome).Inc()

			return resp, err
		})
	}
}
